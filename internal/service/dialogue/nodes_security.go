package dialogue

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/seu-repo/sigec-casa/internal/domain"
)

// disarmValue is what the area field is written with to stand the
// system down; the arm values come from the configured mode table.
const disarmValue = "Disarmed"

func runSecArm(c *Controller) Outcome {
	if !c.requireCapability(domain.CapSecData, "security") {
		return OutcomeFailure
	}
	if !c.requireCapability(domain.CapSecArmModes, "arming modes") {
		return OutcomeFailure
	}
	sec := c.room.SecData()

	spoken, ok := c.requireSlot(domain.SlotState, domain.ConfidenceHigh,
		domain.RuleArmMode,
		"In which mode should I arm?",
		"an arming mode")
	if !ok {
		return OutcomeFailure
	}

	value := ""
	mode := ""
	for name, v := range sec.ArmModes {
		if strings.EqualFold(name, spoken) {
			mode, value = name, v
			break
		}
	}
	if value == "" {
		c.sayPoolf(notFoundReplies, spoken)
		return OutcomeFailure
	}

	if !c.writeField(sec.Moniker, sec.Area, value, "the security system", true) {
		return OutcomeFailure
	}

	c.say(fmt.Sprintf("Okay, arming in %s mode.", strings.ToLower(mode)))
	return OutcomeSuccess
}

func runSecDisarm(c *Controller) Outcome {
	if !c.requireCapability(domain.CapSecData, "security") {
		return OutcomeFailure
	}
	if !c.requireCapability(domain.CapSecArmingCode, "a disarm code") {
		return OutcomeFailure
	}
	sec := c.room.SecData()

	code, ok := c.requireSlot(domain.SlotCode, domain.ConfidenceHigh,
		domain.RuleArmCode,
		"What's the code?",
		"the disarm code")
	if !ok {
		return OutcomeFailure
	}

	hash := sec.ArmingCodeHash
	if c.secrets != nil {
		if h, err := c.secrets.ArmingCodeHash(c.runCtx); err != nil {
			c.log.Warn("Secret provider unavailable, using configured hash", zap.Error(err))
		} else if h != "" {
			hash = h
		}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)); err != nil {
		c.log.Info("Disarm refused, code mismatch", zap.String("room", c.room.Name))
		c.say("That code isn't right.")
		return OutcomeFailure
	}

	if !c.writeField(sec.Moniker, sec.Area, disarmValue, "the security system", true) {
		return OutcomeFailure
	}

	c.say("Okay, the system is disarmed.")
	return OutcomeSuccess
}

func runSecZoneQuery(c *Controller) Outcome {
	if !c.requireCapability(domain.CapSecData, "security") {
		return OutcomeFailure
	}
	if !c.requireCapability(domain.CapSecZones, "security zones") {
		return OutcomeFailure
	}
	sec := c.room.SecData()

	name, ok := c.requireSlot(domain.SlotTarget, domain.ConfidenceMedium,
		domain.RuleZoneName,
		"Which zone?",
		"the name of a zone")
	if !ok {
		return OutcomeFailure
	}

	zone := sec.Zone(name)
	if zone == nil {
		c.sayPoolf(notFoundReplies, name)
		return OutcomeFailure
	}

	val, ok := c.readField(sec.Moniker, zone.StatusField, zone.Name)
	if !ok {
		return OutcomeFailure
	}

	c.say(fmt.Sprintf("The %s zone is %s.", zone.Name, strings.ToLower(val)))
	return OutcomeSuccess
}
