package domain

import "time"

// Reminder is one pending spoken reminder. IDs are assigned
// monotonically; 0 is reserved and never valid.
type Reminder struct {
	ID    uint32    `json:"id" gorm:"primaryKey"`
	Text  string    `json:"text"`
	DueAt time.Time `json:"due_at" gorm:"index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Due reports whether the reminder should be delivered at the given
// instant.
func (r *Reminder) Due(now time.Time) bool {
	return !r.DueAt.After(now)
}
