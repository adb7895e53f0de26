package domain

// Well-known slot names produced by the recognition engine.
const (
	SlotAction   = "Action"
	SlotTarget   = "Target"
	SlotState    = "State"
	SlotNum      = "Num"
	SlotInfo     = "Info"
	SlotCode     = "Code"
	SlotPrefixed = "Prefixed"
)

// PrefixedValue is the value the engine places in the Prefixed slot when
// the user spoke the key phrase and the command in one breath.
const PrefixedValue = "prefixed"

// Action names the dialogue tree knows how to dispatch. These match the
// rule names in the engine's grammar.
const (
	ActionWake = "WakeUp"

	ActionYes    = "Yes"
	ActionNo     = "No"
	ActionCancel = "Cancel"

	// ActionClarify tags the reply events produced by the narrowed
	// clarification rules; the answer rides in whichever slot the
	// question asked for.
	ActionClarify = "Clarify"

	ActionLightOn    = "LightOn"
	ActionLightOff   = "LightOff"
	ActionLightLevel = "LightLevel"
	ActionLightQuery = "LightQuery"
	ActionItOn       = "ItOn"
	ActionItOff      = "ItOff"
	ActionSetIt      = "SetIt"

	ActionHVACSetPoint   = "HVACSetPoint"
	ActionHVACQueryPoint = "HVACQueryPoint"

	ActionSecArm       = "SecArm"
	ActionSecDisarm    = "SecDisarm"
	ActionSecZoneQuery = "SecZoneQuery"

	ActionMediaPlay         = "MediaPlay"
	ActionMediaEnqueue      = "MediaEnqueue"
	ActionMediaTransport    = "MediaTransport"
	ActionMediaMute         = "MediaMute"
	ActionMediaVolume       = "MediaVolume"
	ActionMediaPlaylistMode = "MediaPlaylistMode"

	ActionRoomMode = "RoomMode"

	ActionReminderAdd       = "ReminderAdd"
	ActionReminderUpdate    = "ReminderUpdate"
	ActionReminderCancel    = "ReminderCancel"
	ActionReminderCancelAll = "ReminderCancelAll"

	ActionQueryTime    = "QueryTime"
	ActionQueryDate    = "QueryDate"
	ActionQueryVersion = "QueryVersion"

	ActionWeatherCurrent  = "WeatherCurrent"
	ActionWeatherForecast = "WeatherForecast"
)

// Grammar rule ids used to scope clarification prompts. Each one enables
// exactly the utterances that answer the question being asked.
const (
	RuleYesNo      = "Clarify.YesNo"
	RuleTargetName = "Clarify.TargetName"
	RuleNumber     = "Clarify.Number"
	RuleDegrees    = "Clarify.Degrees"
	RuleZoneName   = "Clarify.ZoneName"
	RuleArmMode    = "Clarify.ArmMode"
	RuleArmCode    = "Clarify.ArmCode"
	RulePlaylist   = "Clarify.Playlist"
	RuleCategory   = "Clarify.Category"
	RuleTransport  = "Clarify.Transport"
)

// Slot is one semantically-named value extracted from an utterance. The
// confidence score is per slot, not per event.
type Slot struct {
	Name       string  `json:"name"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

// RecognitionEvent is a single recognition result: an ordered slot list
// whose Action slot identifies the command or query it represents.
type RecognitionEvent struct {
	Slots []Slot `json:"slots"`
}

// Slot returns the first slot with the given name, or nil.
func (e *RecognitionEvent) Slot(name string) *Slot {
	for i := range e.Slots {
		if e.Slots[i].Name == name {
			return &e.Slots[i]
		}
	}
	return nil
}

// Action returns the Action slot, or nil for a malformed event. Events
// without an Action slot are protocol errors and must not be dispatched.
func (e *RecognitionEvent) Action() *Slot {
	return e.Slot(SlotAction)
}

// ActionName returns the Action slot value, or "" for a malformed event.
func (e *RecognitionEvent) ActionName() string {
	if s := e.Action(); s != nil {
		return s.Value
	}
	return ""
}

// IsPrefixed reports whether the event carries the spoken key phrase
// inline, at High confidence. Lower-confidence Prefixed slots are treated
// as noise.
func (e *RecognitionEvent) IsPrefixed() bool {
	s := e.Slot(SlotPrefixed)
	return s != nil && s.Value == PrefixedValue && Classify(s.Confidence) >= ConfidenceHigh
}
