package ports

import (
	"context"
	"time"

	"github.com/seu-repo/sigec-casa/internal/domain"
)

// Recognizer is the speech recognition engine as the dialogue core sees
// it. PollNext blocks for at most the given timeout; a nil event with a
// nil error means the window elapsed with nothing to report. The worker
// always polls in short slices so a shutdown request is observed quickly.
type Recognizer interface {
	PollNext(ctx context.Context, timeout time.Duration) (*domain.RecognitionEvent, error)

	// PauseInput stops event production while a reply is being spoken so
	// the system does not hear its own voice.
	PauseInput(pause bool) error

	// SetRuleEnabled toggles one grammar rule, scoping the next utterance
	// to exactly the clarification being asked for.
	SetRuleEnabled(ruleID string, enabled bool) error

	// ReloadGrammar replaces the engine's grammar wholesale.
	ReloadGrammar(grammar []byte) error

	Close() error
}

// Speaker is the text-to-speech output channel. Speak returns once
// playback has completed; markup indicates the text carries the inline
// say-as/pause vocabulary and needs the XML envelope.
type Speaker interface {
	Speak(ctx context.Context, text string, markup bool) error
}

// VisualSink receives the plain-text twin of every spoken reply.
type VisualSink interface {
	Show(reply domain.VisualReply)
}

// CommandExecutor is the opaque home-automation command layer. All calls
// are synchronous and may fail on communication errors; the dialogue core
// catches, logs, and converts every failure to a spoken reply.
type CommandExecutor interface {
	ReadField(ctx context.Context, moniker, field string) (string, error)
	WriteField(ctx context.Context, moniker, field, value string, waitForAck bool) error
	RunGlobalAction(ctx context.Context, action domain.ActionDescriptor, params []string) error
}

// Cache is a small key/value store with TTL, used for the cross-restart
// last-target memory.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping() error
	Close() error
}

// SecretProvider resolves secrets the room snapshot references by name,
// such as the security arming-code hash.
type SecretProvider interface {
	ArmingCodeHash(ctx context.Context) (string, error)
}
