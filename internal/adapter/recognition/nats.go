package recognition

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/seu-repo/sigec-casa/internal/domain"
)

// Subjects of the speech-engine bridge. The engine publishes recognition
// events; the dialogue side publishes control messages back.
const (
	SubjectEvents  = "casa.speech.events"
	SubjectRules   = "casa.speech.rules"
	SubjectPause   = "casa.speech.pause"
	SubjectGrammar = "casa.speech.grammar"
)

// eventBuffer bounds how many unconsumed recognition events are held;
// beyond it the oldest are dropped, stale speech is worse than lost
// speech.
const eventBuffer = 16

type ruleMsg struct {
	Rule    string `json:"rule"`
	Enabled bool   `json:"enabled"`
}

type pauseMsg struct {
	Pause bool `json:"pause"`
}

// NATSRecognizer adapts the NATS speech-engine bridge to the Recognizer
// port. Events arrive as JSON on SubjectEvents and are buffered until
// the dialogue worker polls them off.
type NATSRecognizer struct {
	conn   *nats.Conn
	sub    *nats.Subscription
	events chan *domain.RecognitionEvent
	logger *zap.Logger
}

// NewNATSRecognizer connects and subscribes to the engine's event
// subject.
func NewNATSRecognizer(url string, logger *zap.Logger) (*NATSRecognizer, error) {
	conn, err := nats.Connect(url,
		nats.Name("sigec-casa-recognizer"),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	r := &NATSRecognizer{
		conn:   conn,
		events: make(chan *domain.RecognitionEvent, eventBuffer),
		logger: logger,
	}

	sub, err := conn.Subscribe(SubjectEvents, r.onMessage)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", SubjectEvents, err)
	}
	r.sub = sub

	logger.Info("Connected to speech engine via NATS", zap.String("url", url))
	return r, nil
}

func (r *NATSRecognizer) onMessage(msg *nats.Msg) {
	var ev domain.RecognitionEvent
	if err := json.Unmarshal(msg.Data, &ev); err != nil {
		r.logger.Warn("Malformed recognition event", zap.Error(err))
		return
	}
	select {
	case r.events <- &ev:
	default:
		// Buffer full. Drop the oldest so the newest utterance wins.
		select {
		case <-r.events:
		default:
		}
		select {
		case r.events <- &ev:
		default:
		}
		r.logger.Warn("Recognition event buffer full, dropped oldest")
	}
}

// PollNext returns the next buffered event, or nil/nil when the timeout
// elapses with nothing to report.
func (r *NATSRecognizer) PollNext(ctx context.Context, timeout time.Duration) (*domain.RecognitionEvent, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case ev := <-r.events:
		return ev, nil
	case <-timer.C:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *NATSRecognizer) PauseInput(pause bool) error {
	data, err := json.Marshal(pauseMsg{Pause: pause})
	if err != nil {
		return err
	}
	return r.conn.Publish(SubjectPause, data)
}

func (r *NATSRecognizer) SetRuleEnabled(ruleID string, enabled bool) error {
	data, err := json.Marshal(ruleMsg{Rule: ruleID, Enabled: enabled})
	if err != nil {
		return err
	}
	return r.conn.Publish(SubjectRules, data)
}

func (r *NATSRecognizer) ReloadGrammar(grammar []byte) error {
	return r.conn.Publish(SubjectGrammar, grammar)
}

func (r *NATSRecognizer) Close() error {
	if r.sub != nil {
		if err := r.sub.Unsubscribe(); err != nil {
			r.logger.Warn("Failed to unsubscribe", zap.Error(err))
		}
	}
	r.conn.Close()
	return nil
}
