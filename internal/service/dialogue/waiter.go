package dialogue

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/sigec-casa/internal/domain"
	"github.com/seu-repo/sigec-casa/internal/observability/telemetry"
	"github.com/seu-repo/sigec-casa/internal/ports"
)

// WaitStatus is the outcome of every blocking wait-for-reply operation.
// Callers must branch on all four values.
type WaitStatus int

const (
	WaitSuccess WaitStatus = iota
	WaitCancel
	WaitTimeout
	WaitFailure
)

func (s WaitStatus) String() string {
	switch s {
	case WaitSuccess:
		return "success"
	case WaitCancel:
		return "cancel"
	case WaitTimeout:
		return "timeout"
	default:
		return "failure"
	}
}

// errShuttingDown unwinds a blocked wait when the cooperative shutdown
// flag is observed. It is polled, never thrown past the waiter.
var errShuttingDown = errors.New("shutdown requested")

// EventWaiter polls the recognition source in bounded slices and
// implements the wait-for-reply protocols used throughout the tree.
// Every blocking call re-checks the stop channel between slices, so the
// worker can always be unwound within one slice.
type EventWaiter struct {
	rec   ports.Recognizer
	speak func(text string)
	rng   *rand.Rand
	stop  <-chan struct{}
	log   *zap.Logger

	pollSlice time.Duration
	replyWait time.Duration
}

func NewEventWaiter(rec ports.Recognizer, speak func(string), rng *rand.Rand, stop <-chan struct{}, pollSlice, replyWait time.Duration, log *zap.Logger) *EventWaiter {
	if pollSlice <= 0 {
		pollSlice = 250 * time.Millisecond
	}
	if replyWait <= 0 {
		replyWait = 4 * time.Second
	}
	return &EventWaiter{
		rec:       rec,
		speak:     speak,
		rng:       rng,
		stop:      stop,
		log:       log,
		pollSlice: pollSlice,
		replyWait: replyWait,
	}
}

// PollOnce asks the recognition source for the next event in pollSlice
// increments, for at most maxWait total. An event with no Action slot is
// a protocol error: it is logged, answered with a fallback reply, and
// treated as if nothing was heard. An event whose Action confidence is
// below High is discarded unless includeLowConfidence is set, in which
// case it is returned so the caller can ask the user to try again.
// Returns (nil, nil) when the window elapses quietly and
// errShuttingDown when the stop channel fires.
func (w *EventWaiter) PollOnce(ctx context.Context, maxWait time.Duration, includeLowConfidence bool) (*domain.RecognitionEvent, error) {
	deadline := time.Now().Add(maxWait)

	for {
		select {
		case <-w.stop:
			return nil, errShuttingDown
		case <-ctx.Done():
			return nil, errShuttingDown
		default:
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, nil
		}
		slice := w.pollSlice
		if remaining < slice {
			slice = remaining
		}

		ev, err := w.rec.PollNext(ctx, slice)
		if err != nil {
			w.log.Error("Recognition source poll failed", zap.Error(err))
			return nil, nil
		}
		if ev == nil {
			continue
		}

		action := ev.Action()
		if action == nil {
			// Protocol error: never dispatched as a valid event.
			w.log.Error("Recognition event without Action slot discarded",
				zap.Int("slots", len(ev.Slots)),
			)
			w.speak(pick(w.rng, protocolErrorReplies))
			continue
		}

		if !domain.AtLeastHigh(action.Confidence) && !includeLowConfidence {
			w.log.Debug("Discarding low-confidence event",
				zap.String("action", action.Value),
				zap.Float64("confidence", action.Confidence),
			)
			continue
		}

		return ev, nil
	}
}

// WaitForGoodEvent waits up to maxWait for an event whose Action slot is
// at Medium confidence or better. A lower-confidence action gets a
// randomized "try again" prompt and the wait continues against the same
// deadline.
func (w *EventWaiter) WaitForGoodEvent(ctx context.Context, maxWait time.Duration) (WaitStatus, *domain.RecognitionEvent) {
	deadline := time.Now().Add(maxWait)

	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return WaitTimeout, nil
		}

		ev, err := w.PollOnce(ctx, remaining, true)
		if err != nil {
			return WaitFailure, nil
		}
		if ev == nil {
			return WaitTimeout, nil
		}

		if domain.AtLeastMedium(ev.Action().Confidence) {
			return WaitSuccess, ev
		}
		w.speak(pick(w.rng, tryAgainPrompts))
	}
}

// WaitForOneOf waits for an event matching one of the candidate actions
// and returns the matched index. This is the disambiguation protocol, so
// it is stricter than the free-form pass: every slot of the reply must
// be at Medium confidence or better. A Cancel action always yields
// WaitCancel, an unmatched or sloppy event triggers a "try again" prompt
// against the same per-attempt deadline, and on timeout the description
// is spoken back so the user knows what was expected.
func (w *EventWaiter) WaitForOneOf(ctx context.Context, candidates []string, description string) (WaitStatus, int, *domain.RecognitionEvent) {
	deadline := time.Now().Add(w.replyWait)

	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			telemetry.WaitTimeouts.Inc()
			w.speak(pickf(w.rng, waitingForReplies, description))
			return WaitTimeout, -1, nil
		}

		ev, err := w.PollOnce(ctx, remaining, true)
		if err != nil {
			return WaitFailure, -1, nil
		}
		if ev == nil {
			telemetry.WaitTimeouts.Inc()
			w.speak(pickf(w.rng, waitingForReplies, description))
			return WaitTimeout, -1, nil
		}

		action := ev.ActionName()
		if strings.EqualFold(action, domain.ActionCancel) {
			return WaitCancel, -1, ev
		}

		if !domain.AllSlotsAtLeast(ev, domain.ConfidenceMedium) {
			w.speak(pick(w.rng, tryAgainPrompts))
			continue
		}

		for i, cand := range candidates {
			if strings.EqualFold(action, cand) {
				return WaitSuccess, i, ev
			}
		}

		w.speak(pick(w.rng, tryAgainPrompts))
	}
}

// WaitForActionOrNo waits for one required action, treating an implicit
// No like a cancellation.
func (w *EventWaiter) WaitForActionOrNo(ctx context.Context, action, description string) (WaitStatus, *domain.RecognitionEvent) {
	st, idx, ev := w.WaitForOneOf(ctx, []string{action, domain.ActionNo}, description)
	if st == WaitSuccess && idx == 1 {
		return WaitCancel, ev
	}
	return st, ev
}

// WaitForYesNo asks for confirmation. On WaitSuccess the bool reports
// whether the answer was Yes.
func (w *EventWaiter) WaitForYesNo(ctx context.Context, description string) (WaitStatus, bool) {
	st, idx, _ := w.WaitForOneOf(ctx, []string{domain.ActionYes, domain.ActionNo}, description)
	return st, st == WaitSuccess && idx == 0
}
