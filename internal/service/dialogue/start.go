package dialogue

import (
	"strings"

	"go.uber.org/zap"

	"github.com/seu-repo/sigec-casa/internal/domain"
	"github.com/seu-repo/sigec-casa/internal/observability/telemetry"
)

// runConversation is the start node: the top-level conversation loop
// and the only node that does not return until the conversation ends.
//
// entry == nil means the wake word opened the conversation: the
// controller greets the user and keeps listening without requiring the
// wake word again. A non-nil entry is a prefixed one-shot command: the
// matching handler runs once and the conversation ends.
//
// Whatever happens inside individual rounds is reported to the user by
// speech and never escalated; the conversation as a whole always ends
// cleanly back in the idle state.
func (c *Controller) runConversation(entry *domain.RecognitionEvent) {
	c.state.Store(int32(StateConversing))
	defer c.state.Store(int32(StateIdle))

	c.convoID.Store(newConversationID())
	telemetry.ConversationsTotal.Inc()
	c.publishEvent(domain.DialogueEvent{Kind: domain.EventKindSession, Detail: "start"})
	defer c.publishEvent(domain.DialogueEvent{Kind: domain.EventKindSession, Detail: "end"})

	if entry != nil {
		// One-shot: a single dispatch attempt, then back to idle.
		c.log.Info("One-shot command",
			zap.String("conversation", c.ConversationID()),
			zap.String("action", entry.ActionName()),
		)
		c.dispatch(entry)
		return
	}

	c.log.Info("Conversation opened", zap.String("conversation", c.ConversationID()))
	c.sayPool(wakePrompts)

	for {
		st, ev := c.waiter.WaitForGoodEvent(c.runCtx, c.cfg.ConvoWait)
		switch st {
		case WaitFailure:
			// Shutdown requested; unwind without speaking.
			return
		case WaitTimeout, WaitCancel:
			c.sayPool(signOffs)
			return
		}

		action := ev.ActionName()
		if strings.EqualFold(action, domain.ActionNo) || strings.EqualFold(action, domain.ActionCancel) {
			c.sayPool(signOffs)
			return
		}

		c.dispatch(ev)
	}
}

// dispatch installs the event's slots into the tree context and runs
// the matched handler. A handler's Failure has already been spoken to
// the user; the loop just moves on.
func (c *Controller) dispatch(ev *domain.RecognitionEvent) Outcome {
	action := ev.ActionName()
	c.tctx.SetSlots(ev)

	h, ok := c.handlers[action]
	if !ok {
		c.log.Warn("No handler for action", zap.String("action", action))
		c.sayPool(unknownCommandReplies)
		telemetry.CommandsTotal.WithLabelValues(action, "unmatched").Inc()
		return OutcomeFailure
	}

	outcome := h(c)

	telemetry.CommandsTotal.WithLabelValues(action, outcome.String()).Inc()
	c.publishEvent(domain.DialogueEvent{
		Kind:    domain.EventKindCommand,
		Action:  action,
		Outcome: outcome.String(),
	})
	c.log.Info("Command handled",
		zap.String("conversation", c.ConversationID()),
		zap.String("action", action),
		zap.String("outcome", outcome.String()),
	)
	return outcome
}
