package command

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/seu-repo/sigec-casa/internal/domain"
	"github.com/seu-repo/sigec-casa/pkg/config"
)

// Subjects of the automation-bus bridge.
const (
	SubjectRead   = "casa.ctrl.read"
	SubjectWrite  = "casa.ctrl.write"
	SubjectAction = "casa.ctrl.action"
)

type busRequest struct {
	Moniker    string   `json:"moniker"`
	Field      string   `json:"field,omitempty"`
	Value      string   `json:"value,omitempty"`
	Path       string   `json:"path,omitempty"`
	Params     []string `json:"params,omitempty"`
	WaitForAck bool     `json:"wait_for_ack,omitempty"`
}

type busReply struct {
	OK    bool   `json:"ok"`
	Value string `json:"value,omitempty"`
	Error string `json:"error,omitempty"`
}

// Executor runs field reads/writes and global actions against the home
// automation bus over NATS request/reply, behind a circuit breaker so a
// dead bus fails fast instead of stalling every spoken command.
type Executor struct {
	conn    *nats.Conn
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

func NewExecutor(conn *nats.Conn, bc config.CircuitBreakerConfig, logger *zap.Logger) *Executor {
	maxRequests := uint32(3)
	if bc.MaxRequests > 0 {
		maxRequests = uint32(bc.MaxRequests)
	}
	interval := time.Minute
	if bc.Interval > 0 {
		interval = bc.Interval
	}
	timeout := 30 * time.Second
	if bc.Timeout > 0 {
		timeout = bc.Timeout
	}
	threshold := 0.6
	if bc.FailureThreshold > 0 {
		threshold = bc.FailureThreshold
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "automation-bus",
		MaxRequests: maxRequests,
		Interval:    interval,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= threshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Automation bus breaker state changed",
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Executor{conn: conn, breaker: cb, logger: logger}
}

func (e *Executor) ReadField(ctx context.Context, moniker, field string) (string, error) {
	reply, err := e.request(ctx, "read", SubjectRead, busRequest{
		Moniker: moniker,
		Field:   field,
	})
	if err != nil {
		return "", err
	}
	return reply.Value, nil
}

func (e *Executor) WriteField(ctx context.Context, moniker, field, value string, waitForAck bool) error {
	_, err := e.request(ctx, "write", SubjectWrite, busRequest{
		Moniker:    moniker,
		Field:      field,
		Value:      value,
		WaitForAck: waitForAck,
	})
	return err
}

func (e *Executor) RunGlobalAction(ctx context.Context, action domain.ActionDescriptor, params []string) error {
	_, err := e.request(ctx, "action", SubjectAction, busRequest{
		Moniker: action.Moniker,
		Path:    action.Path,
		Params:  params,
	})
	return err
}

// BreakerState reports the circuit breaker's current state name.
func (e *Executor) BreakerState() string {
	return e.breaker.State().String()
}

func (e *Executor) request(ctx context.Context, op, subject string, req busRequest) (*busReply, error) {
	ctx, span := otel.Tracer("command").Start(ctx, "bus."+op)
	defer span.End()
	span.SetAttributes(
		attribute.String("bus.moniker", req.Moniker),
		attribute.String("bus.field", req.Field),
	)

	data, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	res, err := e.breaker.Execute(func() (interface{}, error) {
		msg, err := e.conn.RequestWithContext(ctx, subject, data)
		if err != nil {
			return nil, fmt.Errorf("bus %s failed: %w", op, err)
		}
		var reply busReply
		if err := json.Unmarshal(msg.Data, &reply); err != nil {
			return nil, fmt.Errorf("malformed bus reply: %w", err)
		}
		if !reply.OK {
			return nil, fmt.Errorf("bus %s refused: %s", op, reply.Error)
		}
		return &reply, nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return res.(*busReply), nil
}
