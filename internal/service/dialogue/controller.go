package dialogue

import (
	"context"
	"encoding/json"
	"math/rand"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seu-repo/sigec-casa/internal/adapter/queue"
	"github.com/seu-repo/sigec-casa/internal/domain"
	"github.com/seu-repo/sigec-casa/internal/observability/telemetry"
	"github.com/seu-repo/sigec-casa/internal/ports"
	"github.com/seu-repo/sigec-casa/internal/service/reminder"
)

// State of the conversation machine, readable from other goroutines via
// the status endpoint.
type State int32

const (
	StateIdle State = iota
	StateConversing
)

func (s State) String() string {
	if s == StateConversing {
		return "conversing"
	}
	return "idle"
}

// Config carries the timing knobs and identity of the dialogue worker.
// Confidence thresholds are fixed; only timings are configurable.
type Config struct {
	// PollSlice bounds a single recognition poll so shutdown is always
	// observed quickly.
	PollSlice time.Duration
	// IdleSlice bounds the idle-loop poll between reminder sweeps.
	IdleSlice time.Duration
	// ReplyWait is the per-attempt clarification deadline.
	ReplyWait time.Duration
	// ConvoWait is how long a conversation keeps listening for the next
	// utterance before signing off.
	ConvoWait time.Duration
	// Version is spoken by the version query.
	Version string
}

func (c *Config) applyDefaults() {
	if c.PollSlice <= 0 {
		c.PollSlice = 250 * time.Millisecond
	}
	if c.IdleSlice <= 0 {
		c.IdleSlice = 500 * time.Millisecond
	}
	if c.ReplyWait <= 0 {
		c.ReplyWait = 4 * time.Second
	}
	if c.ConvoWait <= 0 {
		c.ConvoWait = 12 * time.Second
	}
	if c.Version == "" {
		c.Version = "unknown"
	}
}

// Deps are the collaborators injected into the controller. Queue, Cache
// and Secrets may be nil; the matching features degrade quietly.
type Deps struct {
	Recognizer ports.Recognizer
	Speaker    ports.Speaker
	Executor   ports.CommandExecutor
	Reminders  *reminder.Scheduler
	Queue      queue.MessageQueue
	Cache      ports.Cache
	Secrets    ports.SecretProvider
	Room       *domain.RoomConfig
	Logger     *zap.Logger
}

// Controller owns the conversation state machine: it decides which
// recognition events enter the tree, runs the matching handler, and
// sweeps due reminders while idle. A single worker goroutine owns all of
// its mutable state; the status endpoint reads only the atomics below
// (and the scheduler, which takes its own lock).
type Controller struct {
	cfg  Config
	room *domain.RoomConfig
	caps domain.CapabilitySet

	rec       ports.Recognizer
	speaker   ports.Speaker
	exec      ports.CommandExecutor
	reminders *reminder.Scheduler
	mq        queue.MessageQueue
	cache     ports.Cache
	secrets   ports.SecretProvider

	tctx     *TreeContext
	waiter   *EventWaiter
	handlers map[string]handlerFunc
	rng      *rand.Rand
	clock    func() time.Time
	log      *zap.Logger

	runCtx context.Context

	stopOnce sync.Once
	stopCh   chan struct{}
	state    atomic.Int32
	convoID  atomic.Value // string, read by the status endpoint

	reloadMu      sync.Mutex
	reloadPending bool
	reloadGrammar []byte
	reloadRoom    *domain.RoomConfig
}

// NewController wires a controller. The room snapshot must already have
// its capabilities built.
func NewController(cfg Config, deps Deps) *Controller {
	cfg.applyDefaults()

	c := &Controller{
		cfg:       cfg,
		room:      deps.Room,
		caps:      deps.Room.Capabilities(),
		rec:       deps.Recognizer,
		speaker:   deps.Speaker,
		exec:      deps.Executor,
		reminders: deps.Reminders,
		mq:        deps.Queue,
		cache:     deps.Cache,
		secrets:   deps.Secrets,
		tctx:      NewTreeContext(),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		clock:     time.Now,
		log:       deps.Logger,
		stopCh:    make(chan struct{}),
	}
	c.waiter = NewEventWaiter(deps.Recognizer, c.say, c.rng, c.stopCh, cfg.PollSlice, cfg.ReplyWait, deps.Logger)
	c.handlers = newHandlerMap()
	c.restoreLastTarget()
	return c
}

// Run is the dialogue worker loop. It polls for wake/prefixed events
// with a short timeout so shutdown and reload requests are noticed
// promptly, and sweeps due reminders between polls. It returns when the
// context is cancelled or Stop is called.
func (c *Controller) Run(ctx context.Context) error {
	c.runCtx = ctx
	c.log.Info("Dialogue worker started",
		zap.String("room", c.room.Name),
		zap.Strings("capabilities", c.caps.List()),
	)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.stopCh:
			return nil
		default:
		}

		if c.takeReload() {
			continue
		}

		c.sweepReminders()

		ev, err := c.waiter.PollOnce(ctx, c.cfg.IdleSlice, false)
		if err != nil {
			return nil // shutdown observed mid-poll
		}
		if ev == nil {
			continue
		}

		switch {
		case strings.EqualFold(ev.ActionName(), domain.ActionWake):
			c.runConversation(nil)
		case ev.IsPrefixed():
			c.runConversation(ev)
		default:
			// Not addressed to us; stay idle.
			c.log.Debug("Ignoring unaddressed event", zap.String("action", ev.ActionName()))
		}
	}
}

// Stop requests a cooperative shutdown. The worker unwinds within one
// poll slice.
func (c *Controller) Stop() {
	c.stopOnce.Do(func() { close(c.stopCh) })
}

// State reports the current conversation state.
func (c *Controller) State() State {
	return State(c.state.Load())
}

// ConversationID returns the id of the current or most recent
// conversation, for the status endpoint.
func (c *Controller) ConversationID() string {
	id, _ := c.convoID.Load().(string)
	return id
}

// RequestReload asks the worker to rebuild its room snapshot (and
// optionally push new grammar to the engine) at the top of its next
// idle iteration. Safe to call from other goroutines; at most one extra
// iteration of staleness.
func (c *Controller) RequestReload(room *domain.RoomConfig, grammar []byte) {
	c.reloadMu.Lock()
	defer c.reloadMu.Unlock()
	c.reloadPending = true
	c.reloadRoom = room
	c.reloadGrammar = grammar
}

func (c *Controller) takeReload() bool {
	c.reloadMu.Lock()
	pending := c.reloadPending
	room := c.reloadRoom
	grammar := c.reloadGrammar
	c.reloadPending = false
	c.reloadRoom = nil
	c.reloadGrammar = nil
	c.reloadMu.Unlock()

	if !pending {
		return false
	}

	if room != nil {
		c.room = room
		c.caps = room.Capabilities()
		c.tctx.ClearGroup(varGroupLastTarget)
		c.log.Info("Room configuration reloaded",
			zap.String("room", room.Name),
			zap.Strings("capabilities", c.caps.List()),
		)
	}
	if len(grammar) > 0 {
		if err := c.rec.ReloadGrammar(grammar); err != nil {
			c.log.Error("Grammar reload failed", zap.Error(err))
		}
	}
	return true
}

// say speaks a plain-text reply and blocks until playback completes.
// All failure handling stays here: a broken output channel is logged,
// never propagated into the tree.
func (c *Controller) say(text string) {
	c.speakText(text, false)
}

// sayMarkup speaks a reply carrying the inline say-as/pause vocabulary.
func (c *Controller) sayMarkup(text string) {
	c.speakText(text, true)
}

func (c *Controller) speakText(text string, markup bool) {
	telemetry.RepliesSpoken.Inc()
	ctx := c.runCtx
	if ctx == nil {
		ctx = context.Background()
	}
	if err := c.speaker.Speak(ctx, text, markup); err != nil {
		c.log.Error("Reply output failed", zap.Error(err), zap.String("text", text))
	}
}

func (c *Controller) sayPool(pool []string) {
	c.say(pick(c.rng, pool))
}

func (c *Controller) sayPoolf(pool []string, args ...interface{}) {
	c.say(pickf(c.rng, pool, args...))
}

// sweepReminders delivers every due reminder, speaking each one. The
// scheduler re-checks the clock between deliveries, so reminders that
// come due while an earlier one is being spoken still fire in the same
// sweep.
func (c *Controller) sweepReminders() {
	fired := c.reminders.SweepDue(func(r domain.Reminder) {
		c.say("Here's your reminder: " + r.Text)
		telemetry.RemindersFired.Inc()
		c.publishEvent(domain.DialogueEvent{
			Kind:   domain.EventKindReminderFired,
			Detail: r.Text,
		})
	})
	if fired > 0 {
		c.log.Info("Reminders delivered", zap.Int("count", fired))
	}
	telemetry.RemindersPending.Set(float64(c.reminders.Pending()))
}

func (c *Controller) publishEvent(ev domain.DialogueEvent) {
	if c.mq == nil {
		return
	}
	if ev.ConversationID == "" {
		ev.ConversationID = c.ConversationID()
	}
	ev.At = c.clock().Unix()

	subject := queue.SubjectCommand
	switch ev.Kind {
	case domain.EventKindSession:
		subject = queue.SubjectSession
	case domain.EventKindReminderFired, domain.EventKindReminderCancelled:
		subject = queue.SubjectReminders
	}
	if err := queue.PublishJSON(c.mq, subject, ev); err != nil {
		c.log.Warn("Lifecycle event publish failed", zap.String("kind", ev.Kind), zap.Error(err))
	}
}

// scopeRule enables one grammar rule for the duration of a
// clarification and returns the release that restores the prior state.
// Callers defer the release so every exit path, including failures,
// re-disables the rule.
func (c *Controller) scopeRule(ruleID string) func() {
	if err := c.rec.SetRuleEnabled(ruleID, true); err != nil {
		c.log.Warn("Failed to enable grammar rule", zap.String("rule", ruleID), zap.Error(err))
	}
	return func() {
		if err := c.rec.SetRuleEnabled(ruleID, false); err != nil {
			c.log.Warn("Failed to disable grammar rule", zap.String("rule", ruleID), zap.Error(err))
		}
	}
}

const lastTargetTTL = 12 * time.Hour

type lastTargetRecord struct {
	Moniker string `json:"moniker"`
	Kind    string `json:"kind"`
	Name    string `json:"name"`
}

// rememberTarget records what the user just acted on, so a follow-up
// "turn it off" can resolve "it". Written through to the cache so the
// memory survives a restart.
func (c *Controller) rememberTarget(moniker, kind, name string) {
	c.tctx.SetVar(varGroupLastTarget, varKeyMoniker, moniker)
	c.tctx.SetVar(varGroupLastTarget, varKeyKind, kind)
	c.tctx.SetVar(varGroupLastTarget, varKeyName, name)

	if c.cache == nil {
		return
	}
	data, err := json.Marshal(lastTargetRecord{Moniker: moniker, Kind: kind, Name: name})
	if err != nil {
		return
	}
	if err := c.cache.Set(context.Background(), c.lastTargetKey(), data, lastTargetTTL); err != nil {
		c.log.Debug("Last-target cache write failed", zap.Error(err))
	}
}

func (c *Controller) restoreLastTarget() {
	if c.cache == nil {
		return
	}
	raw, err := c.cache.Get(context.Background(), c.lastTargetKey())
	if err != nil {
		return
	}
	var rec lastTargetRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return
	}
	c.tctx.SetVar(varGroupLastTarget, varKeyMoniker, rec.Moniker)
	c.tctx.SetVar(varGroupLastTarget, varKeyKind, rec.Kind)
	c.tctx.SetVar(varGroupLastTarget, varKeyName, rec.Name)
}

func (c *Controller) lastTargetKey() string {
	return "lasttarget:" + strings.ToLower(c.room.Name)
}

func newConversationID() string {
	return uuid.NewString()
}
