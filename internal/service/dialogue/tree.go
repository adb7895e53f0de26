package dialogue

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/sigec-casa/internal/domain"
	"github.com/seu-repo/sigec-casa/internal/observability/telemetry"
)

// Outcome is the two-state result of a handler run. There is no
// suspended state: a handler either completes its bounded chain of
// clarifications and a single command, or fails outright.
type Outcome int

const (
	OutcomeFailure Outcome = iota
	OutcomeSuccess
)

func (o Outcome) String() string {
	if o == OutcomeSuccess {
		return "success"
	}
	return "failure"
}

// handlerFunc is the uniform node contract. Handlers read the current
// slot list through the controller's tree context and never let errors
// escape: every failure path ends in a spoken reply and OutcomeFailure.
type handlerFunc func(c *Controller) Outcome

// newHandlerMap binds action names to their handlers. Flat dispatch,
// one level deep; the start node is not in the map because it is the
// loop that calls into it.
func newHandlerMap() map[string]handlerFunc {
	return map[string]handlerFunc{
		domain.ActionLightOn:    runLightOn,
		domain.ActionLightOff:   runLightOff,
		domain.ActionLightLevel: runLightLevel,
		domain.ActionLightQuery: runLightQuery,
		domain.ActionItOn:       runItOn,
		domain.ActionItOff:      runItOff,
		domain.ActionSetIt:      runSetIt,

		domain.ActionHVACSetPoint:   runHVACSetPoint,
		domain.ActionHVACQueryPoint: runHVACQueryPoint,

		domain.ActionSecArm:       runSecArm,
		domain.ActionSecDisarm:    runSecDisarm,
		domain.ActionSecZoneQuery: runSecZoneQuery,

		domain.ActionMediaPlay:         runMediaPlay,
		domain.ActionMediaEnqueue:      runMediaEnqueue,
		domain.ActionMediaTransport:    runMediaTransport,
		domain.ActionMediaMute:         runMediaMute,
		domain.ActionMediaVolume:       runMediaVolume,
		domain.ActionMediaPlaylistMode: runMediaPlaylistMode,

		domain.ActionRoomMode: runRoomMode,

		domain.ActionReminderAdd:       runReminderAdd,
		domain.ActionReminderUpdate:    runReminderUpdate,
		domain.ActionReminderCancel:    runReminderCancel,
		domain.ActionReminderCancelAll: runReminderCancelAll,

		domain.ActionQueryTime:    runQueryTime,
		domain.ActionQueryDate:    runQueryDate,
		domain.ActionQueryVersion: runQueryVersion,

		domain.ActionWeatherCurrent:  runWeatherCurrent,
		domain.ActionWeatherForecast: runWeatherForecast,
	}
}

// requireCapability is the capability gate every handler runs first: if
// the domain is not configured for this room, the user hears which one
// and the handler fails without touching the room record.
func (c *Controller) requireCapability(cap domain.Capability, spoken string) bool {
	if c.caps.Has(cap) {
		return true
	}
	c.sayPoolf(notConfiguredReplies, spoken, c.room.Name)
	return false
}

// requireSlot returns the named slot's value, clarifying when its
// confidence is below the required level (or the slot is missing
// entirely). The clarification narrows the grammar to the given rule,
// asks the question, and accepts one reply; Cancel, Timeout and
// shutdown all surface as ok=false, which the handler converts to
// OutcomeFailure.
//
// When the whole event arrived at full confidence the per-slot gate is
// skipped: the utterance is trustworthy enough as a unit.
func (c *Controller) requireSlot(name string, level domain.ConfidenceLevel, ruleID, question, waitingFor string) (string, bool) {
	s := c.tctx.Slot(name)
	if s != nil && (c.tctx.FullyTrusted() || domain.Classify(s.Confidence) >= level) {
		return s.Value, true
	}

	release := c.scopeRule(ruleID)
	defer release()

	c.say(question)
	st, _, ev := c.waiter.WaitForOneOf(c.runCtx, []string{domain.ActionClarify}, waitingFor)
	if st != WaitSuccess {
		return "", false
	}

	answer := ev.Slot(name)
	if answer == nil {
		c.log.Warn("Clarification reply missing expected slot",
			zap.String("slot", name),
			zap.String("rule", ruleID),
		)
		c.sayPool(tryAgainPrompts)
		return "", false
	}
	return answer.Value, true
}

const commandTimeout = 5 * time.Second

// writeField issues a field write on the automation bus. Failures are
// logged and spoken, naming the entity the user asked about; the
// handler sees a plain bool.
func (c *Controller) writeField(moniker, field, value, spokenName string, waitForAck bool) bool {
	ctx, cancel := c.commandCtx()
	defer cancel()

	start := time.Now()
	err := c.exec.WriteField(ctx, moniker, field, value, waitForAck)
	telemetry.CommandBusLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		telemetry.CommandBusErrors.WithLabelValues("write").Inc()
		c.log.Error("Field write failed",
			zap.String("moniker", moniker),
			zap.String("field", field),
			zap.Error(err),
		)
		c.sayPoolf(commandFailedReplies, spokenName)
		return false
	}
	return true
}

// readField issues a field read on the automation bus.
func (c *Controller) readField(moniker, field, spokenName string) (string, bool) {
	ctx, cancel := c.commandCtx()
	defer cancel()

	start := time.Now()
	val, err := c.exec.ReadField(ctx, moniker, field)
	telemetry.CommandBusLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		telemetry.CommandBusErrors.WithLabelValues("read").Inc()
		c.log.Error("Field read failed",
			zap.String("moniker", moniker),
			zap.String("field", field),
			zap.Error(err),
		)
		c.sayPoolf(commandFailedReplies, spokenName)
		return "", false
	}
	return val, true
}

// runAction runs a global action on the automation bus.
func (c *Controller) runAction(action domain.ActionDescriptor, params []string, spokenName string) bool {
	ctx, cancel := c.commandCtx()
	defer cancel()

	start := time.Now()
	err := c.exec.RunGlobalAction(ctx, action, params)
	telemetry.CommandBusLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		telemetry.CommandBusErrors.WithLabelValues("action").Inc()
		c.log.Error("Global action failed",
			zap.String("moniker", action.Moniker),
			zap.String("path", action.Path),
			zap.Error(err),
		)
		c.sayPoolf(commandFailedReplies, spokenName)
		return false
	}
	return true
}

func (c *Controller) commandCtx() (context.Context, context.CancelFunc) {
	base := c.runCtx
	if base == nil {
		base = context.Background()
	}
	return context.WithTimeout(base, commandTimeout)
}
