package dialogue

import (
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/seu-repo/sigec-casa/internal/domain"
	"github.com/seu-repo/sigec-casa/internal/observability/telemetry"
	"github.com/seu-repo/sigec-casa/internal/service/reminder"
)

// maxReminderMinutes keeps spoken delays inside one day; anything longer
// is almost certainly a number misrecognition.
const maxReminderMinutes = 24 * 60

// reminderArgs gathers the shared text-plus-minutes slots. The text
// comes from the grammar's reminder phrases, so a low-confidence Info
// slot is a misrecognition and not worth a clarification round.
func reminderArgs(c *Controller) (text string, minutes int, ok bool) {
	info := c.tctx.Slot(domain.SlotInfo)
	if info == nil || (!c.tctx.FullyTrusted() && !domain.AtLeastMedium(info.Confidence)) {
		c.sayPool(tryAgainPrompts)
		return "", 0, false
	}

	raw, ok := c.requireSlot(domain.SlotNum, domain.ConfidenceHigh,
		domain.RuleNumber,
		"In how many minutes?",
		"a number of minutes")
	if !ok {
		return "", 0, false
	}

	minutes, err := strconv.Atoi(raw)
	if err != nil || minutes < 1 || minutes > maxReminderMinutes {
		c.say("I need a delay between one minute and a day.")
		return "", 0, false
	}
	return info.Value, minutes, true
}

func runReminderAdd(c *Controller) Outcome {
	text, minutes, ok := reminderArgs(c)
	if !ok {
		return OutcomeFailure
	}

	id, err := c.reminders.Add(text, minutes)
	if err != nil {
		if errors.Is(err, reminder.ErrQueueFull) {
			c.say("I'm sorry, I can't keep track of any more reminders.")
		} else {
			c.log.Error("Reminder add failed", zap.Error(err))
			c.sayPoolf(commandFailedReplies, "the reminder")
		}
		return OutcomeFailure
	}

	telemetry.RemindersPending.Set(float64(c.reminders.Pending()))
	c.log.Info("Reminder scheduled",
		zap.Uint32("id", id),
		zap.Int("minutes", minutes))
	c.say(fmt.Sprintf("Okay, I'll remind you in %d minutes.", minutes))
	return OutcomeSuccess
}

func runReminderUpdate(c *Controller) Outcome {
	text, minutes, ok := reminderArgs(c)
	if !ok {
		return OutcomeFailure
	}

	if err := c.reminders.UpdateByText(text, minutes); err != nil {
		if errors.Is(err, reminder.ErrNotFound) {
			c.say("I don't have that reminder set.")
		} else {
			c.log.Error("Reminder update failed", zap.Error(err))
			c.sayPoolf(commandFailedReplies, "the reminder")
		}
		return OutcomeFailure
	}

	c.say(fmt.Sprintf("Okay, that's now %d minutes out.", minutes))
	return OutcomeSuccess
}

func runReminderCancel(c *Controller) Outcome {
	if !c.reminders.CancelLast() {
		c.say("There's no recent reminder to cancel.")
		return OutcomeFailure
	}

	telemetry.RemindersPending.Set(float64(c.reminders.Pending()))
	c.publishEvent(domain.DialogueEvent{
		Kind:   domain.EventKindReminderCancelled,
		Detail: "last",
	})
	c.say("Okay, I've cancelled it.")
	return OutcomeSuccess
}

func runReminderCancelAll(c *Controller) Outcome {
	n := c.reminders.CancelAll()
	if n == 0 {
		c.say("You don't have any reminders set.")
		return OutcomeSuccess
	}

	telemetry.RemindersPending.Set(float64(c.reminders.Pending()))
	c.publishEvent(domain.DialogueEvent{
		Kind:   domain.EventKindReminderCancelled,
		Detail: strconv.Itoa(n),
	})
	if n == 1 {
		c.say("Okay, I've cancelled your reminder.")
	} else {
		c.say(fmt.Sprintf("Okay, I've cancelled all %d reminders.", n))
	}
	return OutcomeSuccess
}
