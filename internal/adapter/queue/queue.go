package queue

import "encoding/json"

// Subjects carrying dialogue lifecycle events for downstream consumers
// (history writers, notifiers, dashboards).
const (
	SubjectSession   = "casa.dialogue.session"
	SubjectCommand   = "casa.dialogue.command"
	SubjectReminders = "casa.dialogue.reminders"
)

// MessageQueue is the interface for the lifecycle event bus.
type MessageQueue interface {
	Publish(subject string, data []byte) error
	Subscribe(subject string, handler func(data []byte) error) error
	Close() error
}

// PublishJSON marshals v and publishes it on the subject.
func PublishJSON(mq MessageQueue, subject string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return mq.Publish(subject, data)
}
