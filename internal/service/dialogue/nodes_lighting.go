package dialogue

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/seu-repo/sigec-casa/internal/domain"
)

// resolveLight runs the target gate shared by the lighting handlers:
// slot confidence check with clarification, then lookup against the
// room snapshot. A nil return means the failure was already spoken.
func resolveLight(c *Controller) *domain.LightInfo {
	name, ok := c.requireSlot(domain.SlotTarget, domain.ConfidenceMedium,
		domain.RuleTargetName,
		"Which light did you mean?",
		"the name of a light")
	if !ok {
		return nil
	}

	light := c.room.Light(name)
	if light == nil {
		c.sayPoolf(notFoundReplies, name)
		return nil
	}
	return light
}

func runLightOn(c *Controller) Outcome {
	return switchLight(c, true)
}

func runLightOff(c *Controller) Outcome {
	return switchLight(c, false)
}

func switchLight(c *Controller, on bool) Outcome {
	if !c.requireCapability(domain.CapRoomData, "lighting") {
		return OutcomeFailure
	}

	light := resolveLight(c)
	if light == nil {
		return OutcomeFailure
	}

	c.rememberTarget(light.Moniker, targetKindLight, light.Name)

	value, word := "False", "off"
	if on {
		value, word = "True", "on"
	}
	if !c.writeField(light.Moniker, light.SwitchField, value, light.Name, true) {
		return OutcomeFailure
	}

	c.say(fmt.Sprintf("Okay, the %s is %s.", light.Name, word))
	return OutcomeSuccess
}

func runLightLevel(c *Controller) Outcome {
	if !c.requireCapability(domain.CapRoomData, "lighting") {
		return OutcomeFailure
	}

	light := resolveLight(c)
	if light == nil {
		return OutcomeFailure
	}
	if !light.Dimmable {
		c.say(fmt.Sprintf("The %s isn't dimmable, I'm afraid.", light.Name))
		return OutcomeFailure
	}

	// Numeric levels drive a visible change, so the bar is High.
	raw, ok := c.requireSlot(domain.SlotNum, domain.ConfidenceHigh,
		domain.RuleNumber,
		fmt.Sprintf("To what percent should I set the %s?", light.Name),
		"a brightness level")
	if !ok {
		return OutcomeFailure
	}

	level, err := strconv.Atoi(raw)
	if err != nil || level < 0 || level > 100 {
		c.say("I need a level between zero and one hundred.")
		return OutcomeFailure
	}

	// Remembered even if the write fails, so "set it to forty" can
	// retry against the same light.
	c.rememberTarget(light.Moniker, targetKindLight, light.Name)

	if !c.writeField(light.Moniker, light.DimField, strconv.Itoa(level), light.Name, true) {
		return OutcomeFailure
	}

	c.say(fmt.Sprintf("Okay, the %s is at %d percent.", light.Name, level))
	return OutcomeSuccess
}

func runLightQuery(c *Controller) Outcome {
	if !c.requireCapability(domain.CapRoomData, "lighting") {
		return OutcomeFailure
	}

	light := resolveLight(c)
	if light == nil {
		return OutcomeFailure
	}

	val, ok := c.readField(light.Moniker, light.SwitchField, light.Name)
	if !ok {
		return OutcomeFailure
	}

	state := "off"
	if strings.EqualFold(val, "True") {
		state = "on"
	}
	c.say(fmt.Sprintf("The %s is %s.", light.Name, state))
	return OutcomeSuccess
}

// recallLight resolves "it" from the cross-turn memory. Both a missing
// memory and a remembered kind these handlers don't understand get the
// distinct lost-context reply.
func recallLight(c *Controller) (moniker, name string, ok bool) {
	kind, kindOK := c.tctx.Var(varGroupLastTarget, varKeyKind)
	moniker, monOK := c.tctx.Var(varGroupLastTarget, varKeyMoniker)
	name, nameOK := c.tctx.Var(varGroupLastTarget, varKeyName)

	if !kindOK || !monOK || !nameOK || kind != targetKindLight {
		c.sayPool(lostContextReplies)
		return "", "", false
	}
	return moniker, name, true
}

func runItOn(c *Controller) Outcome {
	return switchIt(c, true)
}

func runItOff(c *Controller) Outcome {
	return switchIt(c, false)
}

func switchIt(c *Controller, on bool) Outcome {
	if !c.requireCapability(domain.CapRoomData, "lighting") {
		return OutcomeFailure
	}

	moniker, name, ok := recallLight(c)
	if !ok {
		return OutcomeFailure
	}

	value, word := "False", "off"
	if on {
		value, word = "True", "on"
	}

	light := c.room.Light(name)
	field := ""
	if light != nil {
		field = light.SwitchField
	}
	if field == "" {
		c.sayPool(lostContextReplies)
		return OutcomeFailure
	}

	if !c.writeField(moniker, field, value, name, true) {
		return OutcomeFailure
	}

	c.say(fmt.Sprintf("Okay, the %s is %s.", name, word))
	return OutcomeSuccess
}

func runSetIt(c *Controller) Outcome {
	if !c.requireCapability(domain.CapRoomData, "lighting") {
		return OutcomeFailure
	}

	_, name, ok := recallLight(c)
	if !ok {
		return OutcomeFailure
	}

	light := c.room.Light(name)
	if light == nil || !light.Dimmable {
		c.sayPool(lostContextReplies)
		return OutcomeFailure
	}

	raw, ok := c.requireSlot(domain.SlotNum, domain.ConfidenceHigh,
		domain.RuleNumber,
		fmt.Sprintf("To what percent should I set the %s?", name),
		"a brightness level")
	if !ok {
		return OutcomeFailure
	}

	level, err := strconv.Atoi(raw)
	if err != nil || level < 0 || level > 100 {
		c.say("I need a level between zero and one hundred.")
		return OutcomeFailure
	}

	if !c.writeField(light.Moniker, light.DimField, strconv.Itoa(level), name, true) {
		return OutcomeFailure
	}

	c.say(fmt.Sprintf("Okay, the %s is at %d percent.", name, level))
	return OutcomeSuccess
}
