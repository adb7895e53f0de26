package dialogue

import (
	"fmt"
	"strings"

	"github.com/seu-repo/sigec-casa/internal/domain"
)

func runRoomMode(c *Controller) Outcome {
	if !c.requireCapability(domain.CapRoomModes, "room modes") {
		return OutcomeFailure
	}

	spoken, ok := c.requireSlot(domain.SlotTarget, domain.ConfidenceMedium,
		domain.RuleCategory,
		"Which mode did you mean?",
		"the name of a room mode")
	if !ok {
		return OutcomeFailure
	}

	var desc domain.ActionDescriptor
	mode := ""
	for name, d := range c.room.RoomModes {
		if strings.EqualFold(name, spoken) {
			mode, desc = name, d
			break
		}
	}
	if mode == "" {
		c.sayPoolf(notFoundReplies, spoken)
		return OutcomeFailure
	}

	if !c.runAction(desc, nil, mode+" mode") {
		return OutcomeFailure
	}

	c.say(fmt.Sprintf("Okay, %s mode.", strings.ToLower(mode)))
	return OutcomeSuccess
}
