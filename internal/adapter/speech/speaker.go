package speech

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/seu-repo/sigec-casa/internal/domain"
	"github.com/seu-repo/sigec-casa/internal/ports"
)

// SubjectSay is the TTS request subject. The engine replies once
// playback has completed, which is what lets the dialogue side hold the
// microphone closed for exactly the playback window.
const SubjectSay = "casa.tts.say"

// defaultSpeakTimeout bounds a single utterance end to end. Long spoken
// replies are a handful of seconds; a reply that takes this long means
// the engine is gone.
const defaultSpeakTimeout = 30 * time.Second

type sayRequest struct {
	Text   string `json:"text"`
	Markup bool   `json:"markup"`
}

var markupTags = regexp.MustCompile(`<[^>]*>`)

// StripMarkup removes the inline say-as/pause tags for the visual twin
// of a spoken reply.
func StripMarkup(text string) string {
	out := markupTags.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(out), " ")
}

// Speaker sends replies to the TTS engine over NATS request/reply,
// pausing recognition for the duration of playback so the system does
// not hear its own voice. Every reply is also fanned out to the visual
// sinks as stripped plain text.
type Speaker struct {
	conn    *nats.Conn
	rec     ports.Recognizer
	sinks   []ports.VisualSink
	timeout time.Duration
	logger  *zap.Logger
}

// NewSpeaker wires the TTS channel. rec may be nil when there is no
// input to pause; sinks may be empty; a zero timeout means the default.
func NewSpeaker(conn *nats.Conn, rec ports.Recognizer, sinks []ports.VisualSink, timeout time.Duration, logger *zap.Logger) *Speaker {
	if timeout <= 0 {
		timeout = defaultSpeakTimeout
	}
	return &Speaker{
		conn:    conn,
		rec:     rec,
		sinks:   sinks,
		timeout: timeout,
		logger:  logger,
	}
}

// Speak blocks until the engine reports playback complete.
func (s *Speaker) Speak(ctx context.Context, text string, markup bool) error {
	plain := text
	if markup {
		plain = StripMarkup(text)
		text = "<speak>" + text + "</speak>"
	}

	s.show(domain.VisualReply{Text: plain, Speaking: true})
	defer s.show(domain.VisualReply{Text: plain, Speaking: false})

	if s.rec != nil {
		if err := s.rec.PauseInput(true); err != nil {
			s.logger.Warn("Failed to pause recognition for playback", zap.Error(err))
		}
		defer func() {
			if err := s.rec.PauseInput(false); err != nil {
				s.logger.Warn("Failed to resume recognition after playback", zap.Error(err))
			}
		}()
	}

	data, err := json.Marshal(sayRequest{Text: text, Markup: markup})
	if err != nil {
		return err
	}

	reqCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.conn.RequestWithContext(reqCtx, SubjectSay, data); err != nil {
		return fmt.Errorf("tts request failed: %w", err)
	}
	return nil
}

func (s *Speaker) show(reply domain.VisualReply) {
	for _, sink := range s.sinks {
		sink.Show(reply)
	}
}
