package dialogue

import (
	"fmt"
	"strings"

	"github.com/seu-repo/sigec-casa/internal/domain"
)

func runQueryTime(c *Controller) Outcome {
	now := c.clock()
	c.sayMarkup(fmt.Sprintf(
		`It's <say-as interpret-as="time">%s</say-as>.`, now.Format("3:04 PM")))
	return OutcomeSuccess
}

func runQueryDate(c *Controller) Outcome {
	now := c.clock()
	c.say(fmt.Sprintf("Today is %s.", now.Format("Monday, January 2")))
	return OutcomeSuccess
}

func runQueryVersion(c *Controller) Outcome {
	c.say(fmt.Sprintf("I'm running version %s.", c.cfg.Version))
	return OutcomeSuccess
}

func runWeatherCurrent(c *Controller) Outcome {
	if !c.requireCapability(domain.CapWeatherData, "weather") {
		return OutcomeFailure
	}
	wx := c.room.WeatherData()

	val, ok := c.readField(wx.Moniker, wx.CurrentField, "the weather station")
	if !ok {
		return OutcomeFailure
	}

	c.say(fmt.Sprintf("Right now it's %s.", strings.TrimSpace(val)))
	return OutcomeSuccess
}

func runWeatherForecast(c *Controller) Outcome {
	if !c.requireCapability(domain.CapWeatherData, "weather") {
		return OutcomeFailure
	}
	wx := c.room.WeatherData()

	val, ok := c.readField(wx.Moniker, wx.ForecastField, "the weather station")
	if !ok {
		return OutcomeFailure
	}

	c.say(fmt.Sprintf("The forecast is %s.", strings.TrimSpace(val)))
	return OutcomeSuccess
}
