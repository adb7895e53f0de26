package recognition

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"

	"github.com/seu-repo/sigec-casa/internal/domain"
)

// Frame types on the engine's websocket stream.
const (
	frameEvent   = "event"
	framePause   = "pause"
	frameRule    = "rule"
	frameGrammar = "grammar"
)

type streamFrame struct {
	Type    string                   `json:"type"`
	Event   *domain.RecognitionEvent `json:"event,omitempty"`
	Pause   bool                     `json:"pause,omitempty"`
	Rule    string                   `json:"rule,omitempty"`
	Enabled bool                     `json:"enabled,omitempty"`
	Grammar string                   `json:"grammar,omitempty"`
}

// StreamRecognizer talks to a speech engine over a single bidirectional
// websocket instead of the NATS bridge, for engines that expose a
// streaming endpoint directly. Recognition events arrive as "event"
// frames; control goes out as typed frames on the same connection.
type StreamRecognizer struct {
	conn   *websocket.Conn
	cancel context.CancelFunc
	events chan *domain.RecognitionEvent
	logger *zap.Logger
}

// NewStreamRecognizer dials the engine and starts the read loop.
func NewStreamRecognizer(ctx context.Context, url string, logger *zap.Logger) (*StreamRecognizer, error) {
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial speech engine: %w", err)
	}

	readCtx, cancel := context.WithCancel(context.Background())
	r := &StreamRecognizer{
		conn:   conn,
		cancel: cancel,
		events: make(chan *domain.RecognitionEvent, eventBuffer),
		logger: logger,
	}
	go r.readLoop(readCtx)

	logger.Info("Connected to speech engine stream", zap.String("url", url))
	return r, nil
}

func (r *StreamRecognizer) readLoop(ctx context.Context) {
	defer close(r.events)
	for {
		_, data, err := r.conn.Read(ctx)
		if err != nil {
			if ctx.Err() == nil {
				r.logger.Error("Speech stream read failed", zap.Error(err))
			}
			return
		}

		var frame streamFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			r.logger.Warn("Malformed stream frame", zap.Error(err))
			continue
		}
		if frame.Type != frameEvent || frame.Event == nil {
			continue
		}

		select {
		case r.events <- frame.Event:
		case <-ctx.Done():
			return
		}
	}
}

// PollNext returns the next streamed event, or nil/nil on timeout. A
// closed stream reports an error so the worker can surface it.
func (r *StreamRecognizer) PollNext(ctx context.Context, timeout time.Duration) (*domain.RecognitionEvent, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case ev, ok := <-r.events:
		if !ok {
			return nil, fmt.Errorf("speech stream closed")
		}
		return ev, nil
	case <-timer.C:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *StreamRecognizer) PauseInput(pause bool) error {
	return r.send(streamFrame{Type: framePause, Pause: pause})
}

func (r *StreamRecognizer) SetRuleEnabled(ruleID string, enabled bool) error {
	return r.send(streamFrame{Type: frameRule, Rule: ruleID, Enabled: enabled})
}

func (r *StreamRecognizer) ReloadGrammar(grammar []byte) error {
	return r.send(streamFrame{Type: frameGrammar, Grammar: string(grammar)})
}

func (r *StreamRecognizer) send(frame streamFrame) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.conn.Write(ctx, websocket.MessageText, data)
}

func (r *StreamRecognizer) Close() error {
	r.cancel()
	return r.conn.Close(websocket.StatusNormalClosure, "shutdown")
}
