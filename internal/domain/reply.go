package domain

// VisualReply is the plain-text side channel of a spoken reply: the
// markup-stripped text plus a flag telling the GUI to keep a "still
// speaking" indicator up until playback completes.
type VisualReply struct {
	Text     string `json:"text"`
	Speaking bool   `json:"speaking"`
}

// DialogueEvent is the compact lifecycle record published on the message
// queue for downstream consumers (notifiers, history, dashboards).
type DialogueEvent struct {
	ConversationID string `json:"conversation_id,omitempty"`
	Kind           string `json:"kind"`
	Action         string `json:"action,omitempty"`
	Target         string `json:"target,omitempty"`
	Outcome        string `json:"outcome,omitempty"`
	Detail         string `json:"detail,omitempty"`
	At             int64  `json:"at"`
}

// Lifecycle event kinds.
const (
	EventKindSession           = "session"
	EventKindCommand           = "command"
	EventKindReminderFired     = "reminder.fired"
	EventKindReminderCancelled = "reminder.cancelled"
)
