package dialogue

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/seu-repo/sigec-casa/internal/domain"
	"github.com/seu-repo/sigec-casa/internal/mocks"
)

func securedRoom(t *testing.T, plainCode string) *domain.RoomConfig {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(plainCode), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	room := kitchenRoom()
	room.Security = &domain.SecurityInfo{
		Moniker:        "bus.security",
		Area:           "Area1",
		ArmingCodeHash: string(hash),
		ArmModes:       map[string]string{"Away": "ArmedAway", "Stay": "ArmedStay"},
		Zones:          []domain.SecurityZone{{Name: "back door", StatusField: "Zone4"}},
	}
	room.BuildCapabilities()
	return room
}

func TestHVACSetPoint_ClarifiesShakyNumberOnce(t *testing.T) {
	// Arrange: the temperature came through below the bar for a write.
	rig := newTestRig(t, kitchenRoom())
	rig.rec.Push(makeEvent(domain.ActionClarify, 0.90,
		domain.Slot{Name: domain.SlotNum, Value: "72", Confidence: 0.90}))

	// Act
	outcome := rig.c.dispatch(makeEvent(domain.ActionHVACSetPoint, 0.90,
		domain.Slot{Name: domain.SlotNum, Value: "72", Confidence: 0.60}))

	// Assert
	if outcome != OutcomeSuccess {
		t.Fatalf("expected success, spoken: %v", rig.spk.Spoken())
	}

	spoken := rig.spk.Spoken()
	if len(spoken) != 2 || spoken[0] != "To what temperature?" {
		t.Errorf("expected a single clarification then the ack, got %v", spoken)
	}
	if !strings.Contains(spoken[1], "cooling") || !strings.Contains(spoken[1], "72") {
		t.Errorf("unexpected ack: %q", spoken[1])
	}

	// The degrees rule was scoped around the question and released.
	wantToggles := []string{domain.RuleDegrees + ":on", domain.RuleDegrees + ":off"}
	if len(rig.rec.RuleToggles) != 2 ||
		rig.rec.RuleToggles[0] != wantToggles[0] || rig.rec.RuleToggles[1] != wantToggles[1] {
		t.Errorf("expected %v, got %v", wantToggles, rig.rec.RuleToggles)
	}

	calls := rig.exec.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected one write, got %v", calls)
	}
	want := mocks.BusCall{Op: "write", Moniker: "bus.hvac", Field: "CoolSetPoint", Value: "72"}
	if !reflect.DeepEqual(calls[0], want) {
		t.Errorf("expected %+v, got %+v", want, calls[0])
	}
}

func TestHVACSetPoint_HeatPicksLowSetPoint(t *testing.T) {
	// Arrange
	rig := newTestRig(t, kitchenRoom())

	// Act
	outcome := rig.c.dispatch(makeEvent(domain.ActionHVACSetPoint, 0.90,
		domain.Slot{Name: domain.SlotNum, Value: "68", Confidence: 0.90},
		domain.Slot{Name: domain.SlotInfo, Value: "heat", Confidence: 0.90}))

	// Assert
	if outcome != OutcomeSuccess {
		t.Fatalf("expected success, spoken: %v", rig.spk.Spoken())
	}
	calls := rig.exec.Calls()
	if len(calls) != 1 || calls[0].Field != "HeatSetPoint" {
		t.Errorf("expected the heating set-point, got %v", calls)
	}
	if !strings.Contains(rig.spk.Last(), "heating") {
		t.Errorf("ack should name the mode, got %q", rig.spk.Last())
	}
}

func TestHVACSetPoint_RejectsOutOfBandDegrees(t *testing.T) {
	// Arrange
	rig := newTestRig(t, kitchenRoom())

	// Act
	outcome := rig.c.dispatch(makeEvent(domain.ActionHVACSetPoint, 0.90,
		domain.Slot{Name: domain.SlotNum, Value: "120", Confidence: 0.90}))

	// Assert
	if outcome != OutcomeFailure {
		t.Fatal("expected failure for 120 degrees")
	}
	if len(rig.exec.Calls()) != 0 {
		t.Errorf("a rejected value must never reach the bus, got %v", rig.exec.Calls())
	}
	if !strings.Contains(rig.spk.Last(), "between 50 and 90") {
		t.Errorf("expected the band in the refusal, got %q", rig.spk.Last())
	}
}

func TestHVACQueryPoint(t *testing.T) {
	// Arrange
	rig := newTestRig(t, kitchenRoom())
	rig.exec.ReadFieldFunc = func(ctx context.Context, moniker, field string) (string, error) {
		return " 71 ", nil
	}

	// Act
	outcome := rig.c.dispatch(makeEvent(domain.ActionHVACQueryPoint, 0.90))

	// Assert
	if outcome != OutcomeSuccess {
		t.Fatal("expected success")
	}
	if rig.spk.Last() != "It's currently 71 degrees." {
		t.Errorf("unexpected reply: %q", rig.spk.Last())
	}
}

func TestZoneQuery_NotConfigured(t *testing.T) {
	// Arrange: the kitchen fixture has no security record at all.
	rig := newTestRig(t, kitchenRoom())

	// Act
	outcome := rig.c.dispatch(makeEvent(domain.ActionSecZoneQuery, 0.90,
		domain.Slot{Name: domain.SlotTarget, Value: "back door", Confidence: 0.90}))

	// Assert
	if outcome != OutcomeFailure {
		t.Fatal("expected failure")
	}
	if len(rig.spk.Spoken()) != 1 {
		t.Errorf("expected exactly one refusal, got %v", rig.spk.Spoken())
	}
	if len(rig.exec.Calls()) != 0 {
		t.Errorf("an unconfigured domain must never reach the bus")
	}
}

func TestZoneQuery_ReadsStatusField(t *testing.T) {
	// Arrange
	rig := newTestRig(t, securedRoom(t, "1234"))
	rig.exec.ReadFieldFunc = func(ctx context.Context, moniker, field string) (string, error) {
		return "Secure", nil
	}

	// Act
	outcome := rig.c.dispatch(makeEvent(domain.ActionSecZoneQuery, 0.90,
		domain.Slot{Name: domain.SlotTarget, Value: "Back Door", Confidence: 0.70}))

	// Assert
	if outcome != OutcomeSuccess {
		t.Fatalf("expected success, spoken: %v", rig.spk.Spoken())
	}
	calls := rig.exec.Calls()
	if len(calls) != 1 || calls[0].Op != "read" || calls[0].Field != "Zone4" {
		t.Errorf("unexpected bus traffic: %v", calls)
	}
	if rig.spk.Last() != "The back door zone is secure." {
		t.Errorf("unexpected reply: %q", rig.spk.Last())
	}
}

func TestSecArm_MatchesModeCaseInsensitively(t *testing.T) {
	// Arrange
	rig := newTestRig(t, securedRoom(t, "1234"))

	// Act
	outcome := rig.c.dispatch(makeEvent(domain.ActionSecArm, 0.90,
		domain.Slot{Name: domain.SlotState, Value: "away", Confidence: 0.90}))

	// Assert
	if outcome != OutcomeSuccess {
		t.Fatalf("expected success, spoken: %v", rig.spk.Spoken())
	}
	calls := rig.exec.Calls()
	want := mocks.BusCall{Op: "write", Moniker: "bus.security", Field: "Area1", Value: "ArmedAway"}
	if len(calls) != 1 || !reflect.DeepEqual(calls[0], want) {
		t.Errorf("expected %+v, got %v", want, calls)
	}
	if !strings.Contains(rig.spk.Last(), "away mode") {
		t.Errorf("unexpected ack: %q", rig.spk.Last())
	}
}

func TestSecDisarm_CorrectCode(t *testing.T) {
	// Arrange
	rig := newTestRig(t, securedRoom(t, "1234"))

	// Act
	outcome := rig.c.dispatch(makeEvent(domain.ActionSecDisarm, 0.90,
		domain.Slot{Name: domain.SlotCode, Value: "1234", Confidence: 0.90}))

	// Assert
	if outcome != OutcomeSuccess {
		t.Fatalf("expected success, spoken: %v", rig.spk.Spoken())
	}
	calls := rig.exec.Calls()
	if len(calls) != 1 || calls[0].Value != disarmValue {
		t.Errorf("expected the disarm write, got %v", calls)
	}
}

func TestSecDisarm_WrongCodeNeverTouchesBus(t *testing.T) {
	// Arrange
	rig := newTestRig(t, securedRoom(t, "1234"))

	// Act
	outcome := rig.c.dispatch(makeEvent(domain.ActionSecDisarm, 0.90,
		domain.Slot{Name: domain.SlotCode, Value: "9999", Confidence: 0.90}))

	// Assert
	if outcome != OutcomeFailure {
		t.Fatal("expected failure")
	}
	if len(rig.exec.Calls()) != 0 {
		t.Errorf("a refused code must not reach the bus, got %v", rig.exec.Calls())
	}
	if rig.spk.Last() != "That code isn't right." {
		t.Errorf("unexpected reply: %q", rig.spk.Last())
	}
}

func TestSecDisarm_SecretProviderOverridesConfiguredHash(t *testing.T) {
	// Arrange: vault holds the current code, the config file an old one.
	rig := newTestRig(t, securedRoom(t, "1234"))
	current, _ := bcrypt.GenerateFromPassword([]byte("4321"), bcrypt.MinCost)
	rig.c.secrets = &mocks.MockSecretProvider{
		ArmingCodeHashFunc: func(ctx context.Context) (string, error) {
			return string(current), nil
		},
	}

	// Act
	outcome := rig.c.dispatch(makeEvent(domain.ActionSecDisarm, 0.90,
		domain.Slot{Name: domain.SlotCode, Value: "4321", Confidence: 0.90}))

	// Assert
	if outcome != OutcomeSuccess {
		t.Fatalf("expected the vault hash to win, spoken: %v", rig.spk.Spoken())
	}
}

func TestSecDisarm_SecretProviderFailureFallsBack(t *testing.T) {
	// Arrange
	rig := newTestRig(t, securedRoom(t, "1234"))
	rig.c.secrets = &mocks.MockSecretProvider{
		ArmingCodeHashFunc: func(ctx context.Context) (string, error) {
			return "", errors.New("vault sealed")
		},
	}

	// Act
	outcome := rig.c.dispatch(makeEvent(domain.ActionSecDisarm, 0.90,
		domain.Slot{Name: domain.SlotCode, Value: "1234", Confidence: 0.90}))

	// Assert
	if outcome != OutcomeSuccess {
		t.Fatalf("expected fallback to the configured hash, spoken: %v", rig.spk.Spoken())
	}
}

func TestLightLevel_WritesDimField(t *testing.T) {
	// Arrange
	rig := newTestRig(t, kitchenRoom())

	// Act
	outcome := rig.c.dispatch(makeEvent(domain.ActionLightLevel, 0.90,
		domain.Slot{Name: domain.SlotTarget, Value: "kitchen lights", Confidence: 0.70},
		domain.Slot{Name: domain.SlotNum, Value: "40", Confidence: 0.90}))

	// Assert
	if outcome != OutcomeSuccess {
		t.Fatalf("expected success, spoken: %v", rig.spk.Spoken())
	}
	calls := rig.exec.Calls()
	want := mocks.BusCall{Op: "write", Moniker: "bus.kitchen.main", Field: "DimLevel", Value: "40"}
	if len(calls) != 1 || !reflect.DeepEqual(calls[0], want) {
		t.Errorf("expected %+v, got %v", want, calls)
	}
}

func TestLightLevel_NonDimmableRefused(t *testing.T) {
	// Arrange
	rig := newTestRig(t, kitchenRoom())

	// Act
	outcome := rig.c.dispatch(makeEvent(domain.ActionLightLevel, 0.90,
		domain.Slot{Name: domain.SlotTarget, Value: "Counter Lamp", Confidence: 0.90},
		domain.Slot{Name: domain.SlotNum, Value: "40", Confidence: 0.90}))

	// Assert
	if outcome != OutcomeFailure {
		t.Fatal("expected failure")
	}
	if !strings.Contains(rig.spk.Last(), "isn't dimmable") {
		t.Errorf("unexpected reply: %q", rig.spk.Last())
	}
	if len(rig.exec.Calls()) != 0 {
		t.Errorf("non-dimmable light must not be written, got %v", rig.exec.Calls())
	}
}

func TestLightQuery(t *testing.T) {
	// Arrange
	rig := newTestRig(t, kitchenRoom())
	rig.exec.ReadFieldFunc = func(ctx context.Context, moniker, field string) (string, error) {
		return "True", nil
	}

	// Act
	outcome := rig.c.dispatch(makeEvent(domain.ActionLightQuery, 0.90,
		domain.Slot{Name: domain.SlotTarget, Value: "Kitchen Lights", Confidence: 0.90}))

	// Assert
	if outcome != OutcomeSuccess {
		t.Fatal("expected success")
	}
	if rig.spk.Last() != "The Kitchen Lights is on." {
		t.Errorf("unexpected reply: %q", rig.spk.Last())
	}
}

func TestLightOn_UnknownNameSpokenNotWritten(t *testing.T) {
	// Arrange
	rig := newTestRig(t, kitchenRoom())

	// Act
	outcome := rig.c.dispatch(makeEvent(domain.ActionLightOn, 0.90,
		domain.Slot{Name: domain.SlotTarget, Value: "disco ball", Confidence: 0.90}))

	// Assert
	if outcome != OutcomeFailure {
		t.Fatal("expected failure")
	}
	if n := countSpoken(rig.spk.Spoken(), "disco ball"); n != 1 {
		t.Errorf("the refusal should name what was asked for, got %v", rig.spk.Spoken())
	}
	if len(rig.exec.Calls()) != 0 {
		t.Errorf("unknown light must not be written")
	}
}

func TestItOff_UsesLastTarget(t *testing.T) {
	// Arrange: a prior turn acted on the kitchen lights.
	rig := newTestRig(t, kitchenRoom())
	rig.c.dispatch(makeEvent(domain.ActionLightOn, 0.90,
		domain.Slot{Name: domain.SlotTarget, Value: "Kitchen Lights", Confidence: 0.90}))

	// Act
	outcome := rig.c.dispatch(makeEvent(domain.ActionItOff, 0.90))

	// Assert
	if outcome != OutcomeSuccess {
		t.Fatalf("expected success, spoken: %v", rig.spk.Spoken())
	}
	calls := rig.exec.Calls()
	if len(calls) != 2 {
		t.Fatalf("expected two writes, got %v", calls)
	}
	want := mocks.BusCall{Op: "write", Moniker: "bus.kitchen.main", Field: "Switch", Value: "False"}
	if !reflect.DeepEqual(calls[1], want) {
		t.Errorf("expected %+v, got %+v", want, calls[1])
	}
}

func TestItOn_NoMemoryIsLostContext(t *testing.T) {
	// Arrange
	rig := newTestRig(t, kitchenRoom())

	// Act
	outcome := rig.c.dispatch(makeEvent(domain.ActionItOn, 0.90))

	// Assert
	if outcome != OutcomeFailure {
		t.Fatal("expected failure")
	}
	if len(rig.exec.Calls()) != 0 {
		t.Errorf("no memory, no bus traffic")
	}
}

func TestSetIt_DimsRememberedLight(t *testing.T) {
	// Arrange
	rig := newTestRig(t, kitchenRoom())
	rig.c.dispatch(makeEvent(domain.ActionLightOn, 0.90,
		domain.Slot{Name: domain.SlotTarget, Value: "Kitchen Lights", Confidence: 0.90}))

	// Act
	outcome := rig.c.dispatch(makeEvent(domain.ActionSetIt, 0.90,
		domain.Slot{Name: domain.SlotNum, Value: "25", Confidence: 0.90}))

	// Assert
	if outcome != OutcomeSuccess {
		t.Fatalf("expected success, spoken: %v", rig.spk.Spoken())
	}
	calls := rig.exec.Calls()
	want := mocks.BusCall{Op: "write", Moniker: "bus.kitchen.main", Field: "DimLevel", Value: "25"}
	if len(calls) != 2 || !reflect.DeepEqual(calls[1], want) {
		t.Errorf("expected %+v, got %v", want, calls)
	}
}

func TestMediaPlay_RunsRepoAction(t *testing.T) {
	// Arrange
	rig := newTestRig(t, kitchenRoom())

	// Act
	outcome := rig.c.dispatch(makeEvent(domain.ActionMediaPlay, 0.90,
		domain.Slot{Name: domain.SlotTarget, Value: "dinner jazz", Confidence: 0.70}))

	// Assert
	if outcome != OutcomeSuccess {
		t.Fatalf("expected success, spoken: %v", rig.spk.Spoken())
	}
	calls := rig.exec.Calls()
	if len(calls) != 1 || calls[0].Op != "action" || calls[0].Moniker != "bus.media.repo" ||
		calls[0].Field != actionPlay || len(calls[0].Params) != 1 || calls[0].Params[0] != "pl-17" {
		t.Errorf("unexpected bus traffic: %+v", calls)
	}
	if !strings.Contains(rig.spk.Last(), "Dinner Jazz") {
		t.Errorf("ack should use the configured name, got %q", rig.spk.Last())
	}
}

func TestMediaPlay_FallsBackToCategories(t *testing.T) {
	// Arrange
	rig := newTestRig(t, kitchenRoom())

	// Act
	outcome := rig.c.dispatch(makeEvent(domain.ActionMediaPlay, 0.90,
		domain.Slot{Name: domain.SlotTarget, Value: "classical", Confidence: 0.90}))

	// Assert
	if outcome != OutcomeSuccess {
		t.Fatalf("expected success, spoken: %v", rig.spk.Spoken())
	}
	calls := rig.exec.Calls()
	if len(calls) != 1 || calls[0].Params[0] != "cat-3" {
		t.Errorf("expected the category id, got %v", calls)
	}
}

func TestMediaTransport_CanonicalizesVerb(t *testing.T) {
	// Arrange
	rig := newTestRig(t, kitchenRoom())

	// Act
	outcome := rig.c.dispatch(makeEvent(domain.ActionMediaTransport, 0.90,
		domain.Slot{Name: domain.SlotState, Value: "PAUSE", Confidence: 0.90}))

	// Assert
	if outcome != OutcomeSuccess {
		t.Fatal("expected success")
	}
	calls := rig.exec.Calls()
	if len(calls) != 1 || calls[0].Moniker != "bus.media.renderer" || calls[0].Field != "Pause" {
		t.Errorf("unexpected bus traffic: %v", calls)
	}
}

func TestMediaMute_OffStateUnmutes(t *testing.T) {
	// Arrange
	rig := newTestRig(t, kitchenRoom())

	// Act
	rig.c.dispatch(makeEvent(domain.ActionMediaMute, 0.90))
	rig.c.dispatch(makeEvent(domain.ActionMediaMute, 0.90,
		domain.Slot{Name: domain.SlotState, Value: "off", Confidence: 0.90}))

	// Assert
	calls := rig.exec.Calls()
	if len(calls) != 2 {
		t.Fatalf("expected two writes, got %v", calls)
	}
	if calls[0].Value != "True" || calls[1].Value != "False" {
		t.Errorf("expected mute then unmute, got %v", calls)
	}
}

func TestMediaVolume_BoundsChecked(t *testing.T) {
	// Arrange
	rig := newTestRig(t, kitchenRoom())

	// Act
	outcome := rig.c.dispatch(makeEvent(domain.ActionMediaVolume, 0.90,
		domain.Slot{Name: domain.SlotNum, Value: "250", Confidence: 0.90}))

	// Assert
	if outcome != OutcomeFailure {
		t.Fatal("expected failure")
	}
	if len(rig.exec.Calls()) != 0 {
		t.Errorf("out-of-band volume must not be written")
	}
}

func TestMediaPlaylistMode(t *testing.T) {
	// Arrange
	rig := newTestRig(t, kitchenRoom())

	// Act
	outcome := rig.c.dispatch(makeEvent(domain.ActionMediaPlaylistMode, 0.90,
		domain.Slot{Name: domain.SlotState, Value: "shuffle", Confidence: 0.90}))

	// Assert
	if outcome != OutcomeSuccess {
		t.Fatal("expected success")
	}
	calls := rig.exec.Calls()
	want := mocks.BusCall{Op: "write", Moniker: "bus.media.renderer", Field: fieldPlayMode, Value: "Shuffle"}
	if len(calls) != 1 || !reflect.DeepEqual(calls[0], want) {
		t.Errorf("expected %+v, got %v", want, calls)
	}
}

func TestRoomMode_RunsConfiguredAction(t *testing.T) {
	// Arrange
	rig := newTestRig(t, kitchenRoom())

	// Act
	outcome := rig.c.dispatch(makeEvent(domain.ActionRoomMode, 0.90,
		domain.Slot{Name: domain.SlotTarget, Value: "movie", Confidence: 0.70}))

	// Assert
	if outcome != OutcomeSuccess {
		t.Fatalf("expected success, spoken: %v", rig.spk.Spoken())
	}
	calls := rig.exec.Calls()
	if len(calls) != 1 || calls[0].Op != "action" || calls[0].Moniker != "bus.modes" || calls[0].Field != "Movie" {
		t.Errorf("unexpected bus traffic: %v", calls)
	}
}

func TestQueryTime_SpeaksWithMarkup(t *testing.T) {
	// Arrange
	rig := newTestRig(t, kitchenRoom())
	var gotMarkup bool
	var gotText string
	rig.spk.SpeakFunc = func(ctx context.Context, text string, markup bool) error {
		gotText, gotMarkup = text, markup
		return nil
	}

	// Act
	rig.c.dispatch(makeEvent(domain.ActionQueryTime, 0.90))

	// Assert
	if !gotMarkup {
		t.Error("the time reply must be flagged as markup")
	}
	if !strings.Contains(gotText, `<say-as interpret-as="time">`) {
		t.Errorf("expected the say-as wrapper, got %q", gotText)
	}
}

func TestQueryVersion(t *testing.T) {
	// Arrange
	rig := newTestRig(t, kitchenRoom())

	// Act
	rig.c.dispatch(makeEvent(domain.ActionQueryVersion, 0.90))

	// Assert
	if rig.spk.Last() != "I'm running version 1.2.3." {
		t.Errorf("unexpected reply: %q", rig.spk.Last())
	}
}

func TestWeatherCurrent(t *testing.T) {
	// Arrange
	rig := newTestRig(t, kitchenRoom())
	rig.exec.ReadFieldFunc = func(ctx context.Context, moniker, field string) (string, error) {
		if moniker != "bus.weather" || field != "Current" {
			t.Errorf("unexpected read %s/%s", moniker, field)
		}
		return "sunny and 75", nil
	}

	// Act
	outcome := rig.c.dispatch(makeEvent(domain.ActionWeatherCurrent, 0.90))

	// Assert
	if outcome != OutcomeSuccess {
		t.Fatal("expected success")
	}
	if rig.spk.Last() != "Right now it's sunny and 75." {
		t.Errorf("unexpected reply: %q", rig.spk.Last())
	}
}

func TestWeatherForecast_NotConfigured(t *testing.T) {
	// Arrange
	room := kitchenRoom()
	room.Weather = nil
	room.BuildCapabilities()
	rig := newTestRig(t, room)

	// Act
	outcome := rig.c.dispatch(makeEvent(domain.ActionWeatherForecast, 0.90))

	// Assert
	if outcome != OutcomeFailure {
		t.Fatal("expected failure")
	}
	if len(rig.exec.Calls()) != 0 {
		t.Errorf("unconfigured weather must not be read")
	}
}

func TestReminderAdd(t *testing.T) {
	// Arrange
	rig := newTestRig(t, kitchenRoom())

	// Act
	outcome := rig.c.dispatch(makeEvent(domain.ActionReminderAdd, 0.90,
		domain.Slot{Name: domain.SlotInfo, Value: "feed the cat", Confidence: 0.90},
		domain.Slot{Name: domain.SlotNum, Value: "10", Confidence: 0.90}))

	// Assert
	if outcome != OutcomeSuccess {
		t.Fatalf("expected success, spoken: %v", rig.spk.Spoken())
	}
	if rig.sched.Pending() != 1 {
		t.Errorf("expected one pending reminder, got %d", rig.sched.Pending())
	}
	if !strings.Contains(rig.spk.Last(), "10 minutes") {
		t.Errorf("unexpected ack: %q", rig.spk.Last())
	}
}

func TestReminderAdd_RejectsAbsurdDelay(t *testing.T) {
	// Arrange
	rig := newTestRig(t, kitchenRoom())

	// Act
	outcome := rig.c.dispatch(makeEvent(domain.ActionReminderAdd, 0.90,
		domain.Slot{Name: domain.SlotInfo, Value: "feed the cat", Confidence: 0.90},
		domain.Slot{Name: domain.SlotNum, Value: "9000", Confidence: 0.90}))

	// Assert
	if outcome != OutcomeFailure {
		t.Fatal("expected failure")
	}
	if rig.sched.Pending() != 0 {
		t.Errorf("nothing should be scheduled, got %d", rig.sched.Pending())
	}
}

func TestReminderCancel_LastAdded(t *testing.T) {
	// Arrange
	rig := newTestRig(t, kitchenRoom())
	rig.c.dispatch(makeEvent(domain.ActionReminderAdd, 0.90,
		domain.Slot{Name: domain.SlotInfo, Value: "feed the cat", Confidence: 0.90},
		domain.Slot{Name: domain.SlotNum, Value: "10", Confidence: 0.90}))

	// Act
	outcome := rig.c.dispatch(makeEvent(domain.ActionReminderCancel, 0.90))

	// Assert
	if outcome != OutcomeSuccess {
		t.Fatal("expected success")
	}
	if rig.sched.Pending() != 0 {
		t.Errorf("the reminder should be gone, got %d", rig.sched.Pending())
	}

	// A second cancel has nothing left to point at.
	if rig.c.dispatch(makeEvent(domain.ActionReminderCancel, 0.90)) != OutcomeFailure {
		t.Error("expected failure when nothing was recently added")
	}
}

func TestReminderCancelAll_EmptyIsStillSuccess(t *testing.T) {
	// Arrange
	rig := newTestRig(t, kitchenRoom())

	// Act
	outcome := rig.c.dispatch(makeEvent(domain.ActionReminderCancelAll, 0.90))

	// Assert
	if outcome != OutcomeSuccess {
		t.Fatal("cancelling nothing is not an error")
	}
	if rig.spk.Last() != "You don't have any reminders set." {
		t.Errorf("unexpected reply: %q", rig.spk.Last())
	}
}

func TestReminderUpdate_PushesDueTimeOut(t *testing.T) {
	// Arrange
	rig := newTestRig(t, kitchenRoom())
	rig.c.dispatch(makeEvent(domain.ActionReminderAdd, 0.90,
		domain.Slot{Name: domain.SlotInfo, Value: "feed the cat", Confidence: 0.90},
		domain.Slot{Name: domain.SlotNum, Value: "10", Confidence: 0.90}))

	// Act
	outcome := rig.c.dispatch(makeEvent(domain.ActionReminderUpdate, 0.90,
		domain.Slot{Name: domain.SlotInfo, Value: "Feed The Cat", Confidence: 0.90},
		domain.Slot{Name: domain.SlotNum, Value: "45", Confidence: 0.90}))

	// Assert
	if outcome != OutcomeSuccess {
		t.Fatalf("expected success, spoken: %v", rig.spk.Spoken())
	}
	if rig.sched.Pending() != 1 {
		t.Errorf("update must not duplicate, got %d pending", rig.sched.Pending())
	}
	if !strings.Contains(rig.spk.Last(), "45 minutes") {
		t.Errorf("unexpected ack: %q", rig.spk.Last())
	}
}

func TestWriteFailure_IsSpokenNotEscalated(t *testing.T) {
	// Arrange
	rig := newTestRig(t, kitchenRoom())
	rig.exec.WriteFieldFunc = func(ctx context.Context, moniker, field, value string, waitForAck bool) error {
		return errors.New("bus timeout")
	}

	// Act
	outcome := rig.c.dispatch(makeEvent(domain.ActionLightOn, 0.90,
		domain.Slot{Name: domain.SlotTarget, Value: "Kitchen Lights", Confidence: 0.90}))

	// Assert
	if outcome != OutcomeFailure {
		t.Fatal("expected failure")
	}
	if n := countSpoken(rig.spk.Spoken(), "Kitchen Lights"); n != 1 {
		t.Errorf("the failure reply should name the light, got %v", rig.spk.Spoken())
	}
}

func TestClarification_CancelAbandonsCommand(t *testing.T) {
	// Arrange: a shaky target and a change of mind.
	rig := newTestRig(t, kitchenRoom())
	rig.rec.Push(makeEvent(domain.ActionCancel, 0.90))

	// Act
	outcome := rig.c.dispatch(makeEvent(domain.ActionLightOn, 0.90,
		domain.Slot{Name: domain.SlotTarget, Value: "Kitchen Lights", Confidence: 0.40}))

	// Assert
	if outcome != OutcomeFailure {
		t.Fatal("expected failure")
	}
	if len(rig.exec.Calls()) != 0 {
		t.Errorf("a cancelled clarification must not write, got %v", rig.exec.Calls())
	}
	// The target rule was scoped and released around the question.
	wantToggles := []string{domain.RuleTargetName + ":on", domain.RuleTargetName + ":off"}
	if len(rig.rec.RuleToggles) != 2 ||
		rig.rec.RuleToggles[0] != wantToggles[0] || rig.rec.RuleToggles[1] != wantToggles[1] {
		t.Errorf("expected %v, got %v", wantToggles, rig.rec.RuleToggles)
	}
}
