package dialogue

import (
	"fmt"
	"math/rand"
)

// Reply pools. Each user-visible failure or prompt is phrased from a
// small fixed pool so the system does not sound robotic; the draw is a
// plain uniform index, seeded once per process and confined to the
// dialogue worker.

var wakePrompts = []string{
	"Yes? What can I do for you?",
	"I'm listening. What do you need?",
	"What can I do for you?",
	"Go ahead, I'm listening.",
}

var signOffs = []string{
	"Call me if you need me.",
	"Okay, I'll be here if you need anything.",
	"Alright, just say the word when you need me.",
	"Okay then. Talk to you later.",
}

var tryAgainPrompts = []string{
	"Sorry, I didn't catch that. Could you say it again?",
	"I didn't quite get that. One more time?",
	"Could you repeat that, please?",
}

var unknownCommandReplies = []string{
	"Sorry, I don't know how to do that.",
	"That's not something I can help with, I'm afraid.",
	"I didn't understand what you wanted me to do.",
}

var protocolErrorReplies = []string{
	"Something went wrong understanding you. If this keeps happening, please contact support.",
	"I received a garbled command. Please contact support if it happens again.",
}

var commandFailedReplies = []string{
	"Sorry, %s didn't respond. You may want to try again.",
	"I couldn't reach %s just now.",
	"Something went wrong talking to %s.",
}

var notConfiguredReplies = []string{
	"Sorry, %s isn't set up for the %s.",
	"The %[2]s doesn't have %[1]s configured.",
	"I don't have %s available in the %s.",
}

var notFoundReplies = []string{
	"I couldn't find anything called %s.",
	"Sorry, I don't know %s.",
	"There's no %s that I know of.",
}

var lostContextReplies = []string{
	"Sorry, I don't know what we were just talking about.",
	"I've lost track of what you meant by that.",
}

var waitingForReplies = []string{
	"I was waiting to hear %s, but didn't catch anything.",
	"I didn't hear %s, so never mind.",
}

// pick draws one phrasing from a pool.
func pick(rng *rand.Rand, pool []string) string {
	return pool[rng.Intn(len(pool))]
}

// pickf draws one phrasing and fills in its inserts.
func pickf(rng *rand.Rand, pool []string, args ...interface{}) string {
	return fmt.Sprintf(pick(rng, pool), args...)
}
