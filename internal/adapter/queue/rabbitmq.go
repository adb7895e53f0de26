package queue

import (
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// lifecycleExchange is the single topic exchange carrying all dialogue
// lifecycle events. Subjects (casa.dialogue.session, .command,
// .reminders) become routing keys, so a consumer can bind one queue to
// "casa.dialogue.*" instead of discovering exchanges per subject.
const lifecycleExchange = "casa.dialogue"

// RabbitMQQueue publishes dialogue lifecycle events over AMQP, for
// installations whose home bus already runs on RabbitMQ.
type RabbitMQQueue struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	url     string
	mu      sync.RWMutex
	log     *zap.Logger
}

func NewRabbitMQQueue(url string, log *zap.Logger) (MessageQueue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq: connect: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("rabbitmq: open channel: %w", err)
	}

	if err := declareLifecycleExchange(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	q := &RabbitMQQueue{
		conn:    conn,
		channel: ch,
		url:     url,
		log:     log,
	}

	go q.monitorConnection()

	log.Info("Lifecycle events routed through RabbitMQ",
		zap.String("exchange", lifecycleExchange),
	)
	return q, nil
}

func declareLifecycleExchange(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(lifecycleExchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq: declare exchange: %w", err)
	}
	return nil
}

// Publish routes the event to the lifecycle exchange with the subject
// as routing key. Events are fire-and-forget: a lost lifecycle event
// never blocks or fails the conversation that produced it.
func (q *RabbitMQQueue) Publish(subject string, data []byte) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.channel == nil {
		return fmt.Errorf("rabbitmq: channel not available")
	}

	err := q.channel.Publish(
		lifecycleExchange, subject, false, false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        data,
			Timestamp:   time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("rabbitmq: publish %s: %w", subject, err)
	}
	return nil
}

// Subscribe binds an exclusive queue to the subject pattern. AMQP topic
// wildcards work here, so "casa.dialogue.*" receives every lifecycle
// kind.
func (q *RabbitMQQueue) Subscribe(subject string, handler func(data []byte) error) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.channel == nil {
		return fmt.Errorf("rabbitmq: channel not available")
	}

	queue, err := q.channel.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return fmt.Errorf("rabbitmq: declare queue: %w", err)
	}

	if err := q.channel.QueueBind(queue.Name, subject, lifecycleExchange, false, nil); err != nil {
		return fmt.Errorf("rabbitmq: bind %s: %w", subject, err)
	}

	msgs, err := q.channel.Consume(queue.Name, "", true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("rabbitmq: consume: %w", err)
	}

	go func() {
		for msg := range msgs {
			if err := handler(msg.Body); err != nil {
				q.log.Error("Lifecycle event handler failed",
					zap.String("subject", subject),
					zap.Error(err),
				)
			}
		}
	}()

	q.log.Info("Subscribed to lifecycle events", zap.String("subject", subject))
	return nil
}

func (q *RabbitMQQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.channel != nil {
		q.channel.Close()
	}
	if q.conn != nil {
		return q.conn.Close()
	}
	return nil
}

func (q *RabbitMQQueue) monitorConnection() {
	for {
		reason, ok := <-q.conn.NotifyClose(make(chan *amqp.Error))
		if !ok {
			return
		}
		q.log.Warn("RabbitMQ connection lost, reconnecting", zap.String("reason", reason.Reason))

		for {
			time.Sleep(5 * time.Second)
			conn, err := amqp.Dial(q.url)
			if err != nil {
				q.log.Error("RabbitMQ reconnect failed", zap.Error(err))
				continue
			}
			ch, err := conn.Channel()
			if err != nil {
				conn.Close()
				continue
			}
			if err := declareLifecycleExchange(ch); err != nil {
				ch.Close()
				conn.Close()
				continue
			}

			q.mu.Lock()
			q.conn = conn
			q.channel = ch
			q.mu.Unlock()

			q.log.Info("RabbitMQ connection re-established")
			break
		}
	}
}
