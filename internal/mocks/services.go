package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/seu-repo/sigec-casa/internal/domain"
)

// ScriptedRecognizer is a mock implementation of the Recognizer
// interface. Events queued with Push are returned one per PollNext call;
// an empty queue returns the nil/nil "window elapsed" result. Rule
// toggles are recorded so tests can assert clarification scoping.
type ScriptedRecognizer struct {
	mu     sync.Mutex
	queue  []*domain.RecognitionEvent
	paused bool
	rules  map[string]bool

	PollNextFunc       func(ctx context.Context, timeout time.Duration) (*domain.RecognitionEvent, error)
	SetRuleEnabledFunc func(ruleID string, enabled bool) error
	ReloadGrammarFunc  func(grammar []byte) error

	RuleToggles []string
	Reloads     int
}

func NewScriptedRecognizer() *ScriptedRecognizer {
	return &ScriptedRecognizer{rules: make(map[string]bool)}
}

// Push appends events to the script in poll order.
func (m *ScriptedRecognizer) Push(events ...*domain.RecognitionEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, events...)
}

func (m *ScriptedRecognizer) PollNext(ctx context.Context, timeout time.Duration) (*domain.RecognitionEvent, error) {
	if m.PollNextFunc != nil {
		return m.PollNextFunc(ctx, timeout)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.queue) == 0 {
		return nil, nil
	}
	ev := m.queue[0]
	m.queue = m.queue[1:]
	return ev, nil
}

func (m *ScriptedRecognizer) PauseInput(pause bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paused = pause
	return nil
}

func (m *ScriptedRecognizer) Paused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused
}

func (m *ScriptedRecognizer) SetRuleEnabled(ruleID string, enabled bool) error {
	if m.SetRuleEnabledFunc != nil {
		return m.SetRuleEnabledFunc(ruleID, enabled)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules[ruleID] = enabled
	state := "off"
	if enabled {
		state = "on"
	}
	m.RuleToggles = append(m.RuleToggles, ruleID+":"+state)
	return nil
}

// RuleEnabled reports the last recorded state of a rule.
func (m *ScriptedRecognizer) RuleEnabled(ruleID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rules[ruleID]
}

func (m *ScriptedRecognizer) ReloadGrammar(grammar []byte) error {
	if m.ReloadGrammarFunc != nil {
		return m.ReloadGrammarFunc(grammar)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Reloads++
	return nil
}

func (m *ScriptedRecognizer) Close() error { return nil }

// MockSpeaker is a mock implementation of the Speaker interface that
// records every spoken text.
type MockSpeaker struct {
	mu    sync.Mutex
	texts []string

	SpeakFunc func(ctx context.Context, text string, markup bool) error
}

func (m *MockSpeaker) Speak(ctx context.Context, text string, markup bool) error {
	if m.SpeakFunc != nil {
		return m.SpeakFunc(ctx, text, markup)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.texts = append(m.texts, text)
	return nil
}

// Spoken returns a copy of everything spoken so far.
func (m *MockSpeaker) Spoken() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.texts))
	copy(out, m.texts)
	return out
}

// Last returns the most recent spoken text, or "".
func (m *MockSpeaker) Last() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.texts) == 0 {
		return ""
	}
	return m.texts[len(m.texts)-1]
}

// BusCall records one call against the MockCommandExecutor.
type BusCall struct {
	Op      string // "read", "write", "action"
	Moniker string
	Field   string
	Value   string
	Params  []string
}

// MockCommandExecutor is a mock implementation of the CommandExecutor
// interface.
type MockCommandExecutor struct {
	mu    sync.Mutex
	calls []BusCall

	ReadFieldFunc       func(ctx context.Context, moniker, field string) (string, error)
	WriteFieldFunc      func(ctx context.Context, moniker, field, value string, waitForAck bool) error
	RunGlobalActionFunc func(ctx context.Context, action domain.ActionDescriptor, params []string) error
}

func (m *MockCommandExecutor) ReadField(ctx context.Context, moniker, field string) (string, error) {
	m.record(BusCall{Op: "read", Moniker: moniker, Field: field})
	if m.ReadFieldFunc != nil {
		return m.ReadFieldFunc(ctx, moniker, field)
	}
	return "", nil
}

func (m *MockCommandExecutor) WriteField(ctx context.Context, moniker, field, value string, waitForAck bool) error {
	m.record(BusCall{Op: "write", Moniker: moniker, Field: field, Value: value})
	if m.WriteFieldFunc != nil {
		return m.WriteFieldFunc(ctx, moniker, field, value, waitForAck)
	}
	return nil
}

func (m *MockCommandExecutor) RunGlobalAction(ctx context.Context, action domain.ActionDescriptor, params []string) error {
	m.record(BusCall{Op: "action", Moniker: action.Moniker, Field: action.Path, Params: params})
	if m.RunGlobalActionFunc != nil {
		return m.RunGlobalActionFunc(ctx, action, params)
	}
	return nil
}

func (m *MockCommandExecutor) record(c BusCall) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, c)
}

// Calls returns a copy of the recorded bus traffic.
func (m *MockCommandExecutor) Calls() []BusCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]BusCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// MockSecretProvider is a mock implementation of the SecretProvider
// interface.
type MockSecretProvider struct {
	ArmingCodeHashFunc func(ctx context.Context) (string, error)
}

func (m *MockSecretProvider) ArmingCodeHash(ctx context.Context) (string, error) {
	if m.ArmingCodeHashFunc != nil {
		return m.ArmingCodeHashFunc(ctx)
	}
	return "", nil
}

// MockVisualSink is a mock implementation of the VisualSink interface.
type MockVisualSink struct {
	mu      sync.Mutex
	replies []domain.VisualReply

	ShowFunc func(reply domain.VisualReply)
}

func (m *MockVisualSink) Show(reply domain.VisualReply) {
	if m.ShowFunc != nil {
		m.ShowFunc(reply)
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, reply)
}

func (m *MockVisualSink) Replies() []domain.VisualReply {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.VisualReply, len(m.replies))
	copy(out, m.replies)
	return out
}
