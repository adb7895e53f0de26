package mocks

import "sync"

// Published is one message captured by the MockMessageQueue.
type Published struct {
	Subject string
	Data    []byte
}

// MockMessageQueue is a mock implementation of the MessageQueue
// interface that records published messages and fans them out to local
// subscribers.
type MockMessageQueue struct {
	mu       sync.Mutex
	messages []Published
	subs     map[string][]func([]byte) error

	PublishFunc func(subject string, data []byte) error
}

func NewMockMessageQueue() *MockMessageQueue {
	return &MockMessageQueue{subs: make(map[string][]func([]byte) error)}
}

func (m *MockMessageQueue) Publish(subject string, data []byte) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(subject, data)
	}
	m.mu.Lock()
	m.messages = append(m.messages, Published{Subject: subject, Data: data})
	handlers := append([]func([]byte) error{}, m.subs[subject]...)
	m.mu.Unlock()
	for _, h := range handlers {
		_ = h(data)
	}
	return nil
}

func (m *MockMessageQueue) Subscribe(subject string, handler func(data []byte) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs[subject] = append(m.subs[subject], handler)
	return nil
}

func (m *MockMessageQueue) Close() error { return nil }

// Messages returns a copy of everything published so far.
func (m *MockMessageQueue) Messages() []Published {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Published, len(m.messages))
	copy(out, m.messages)
	return out
}

// OnSubject returns the captured messages for one subject.
func (m *MockMessageQueue) OnSubject(subject string) []Published {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Published
	for _, msg := range m.messages {
		if msg.Subject == subject {
			out = append(out, msg)
		}
	}
	return out
}
