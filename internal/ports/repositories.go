package ports

import (
	"context"

	"github.com/seu-repo/sigec-casa/internal/domain"
)

// ReminderStore persists pending reminders so they survive a restart.
// The scheduler keeps its own in-memory ordering; the store is written
// through on every mutation and read once at startup.
type ReminderStore interface {
	Save(ctx context.Context, r *domain.Reminder) error
	Delete(ctx context.Context, id uint32) error
	DeleteAll(ctx context.Context) error
	LoadPending(ctx context.Context) ([]domain.Reminder, error)
}
