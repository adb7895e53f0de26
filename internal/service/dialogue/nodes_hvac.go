package dialogue

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/seu-repo/sigec-casa/internal/domain"
)

// Spoken set-points outside this band are treated as misrecognitions
// rather than written to the thermostat.
const (
	minSetPoint = 50
	maxSetPoint = 90
)

func runHVACSetPoint(c *Controller) Outcome {
	if !c.requireCapability(domain.CapHVACData, "climate control") {
		return OutcomeFailure
	}
	hvac := c.room.HVACData()

	raw, ok := c.requireSlot(domain.SlotNum, domain.ConfidenceHigh,
		domain.RuleDegrees,
		"To what temperature?",
		"a temperature in degrees")
	if !ok {
		return OutcomeFailure
	}

	degrees, err := strconv.Atoi(raw)
	if err != nil || degrees < minSetPoint || degrees > maxSetPoint {
		c.say(fmt.Sprintf("I can only set between %d and %d degrees.", minSetPoint, maxSetPoint))
		return OutcomeFailure
	}

	// The Info slot picks the heating or cooling set-point. Absent or
	// unrecognized it defaults to cooling, which is the common ask.
	field, mode := hvac.HighSetPoint, "cooling"
	if info := c.tctx.Slot(domain.SlotInfo); info != nil && strings.EqualFold(info.Value, "heat") {
		field, mode = hvac.LowSetPoint, "heating"
	}

	if !c.writeField(hvac.Moniker, field, strconv.Itoa(degrees), "the thermostat", true) {
		return OutcomeFailure
	}

	c.say(fmt.Sprintf("Okay, %s set-point is %d degrees.", mode, degrees))
	return OutcomeSuccess
}

func runHVACQueryPoint(c *Controller) Outcome {
	if !c.requireCapability(domain.CapHVACData, "climate control") {
		return OutcomeFailure
	}
	hvac := c.room.HVACData()

	val, ok := c.readField(hvac.Moniker, hvac.CurrentTempFl, "the thermostat")
	if !ok {
		return OutcomeFailure
	}

	c.say(fmt.Sprintf("It's currently %s degrees.", strings.TrimSpace(val)))
	return OutcomeSuccess
}
