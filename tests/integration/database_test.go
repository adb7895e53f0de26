package integration

import (
	"context"
	"testing"
	"time"

	"github.com/seu-repo/sigec-casa/internal/adapter/storage/postgres"
	"github.com/seu-repo/sigec-casa/internal/domain"
	"github.com/seu-repo/sigec-casa/internal/service/reminder"
)

// TestDatabase_ReminderStore exercises the persisted reminder lifecycle
func TestDatabase_ReminderStore(t *testing.T) {
	env := SetupTestEnvironment(t)
	if env == nil || env.DB == nil {
		t.Skip("Database not available")
	}
	CleanDatabase(t, env.DB)

	store := postgres.NewReminderStore(env.DB, env.Logger)
	ctx := context.Background()

	due := time.Now().Add(10 * time.Minute).Truncate(time.Second)

	t.Run("Save", func(t *testing.T) {
		err := store.Save(ctx, &domain.Reminder{ID: 1, Text: "feed the cat", DueAt: due})
		if err != nil {
			t.Fatalf("Failed to save reminder: %v", err)
		}
	})

	t.Run("SaveIsUpsert", func(t *testing.T) {
		err := store.Save(ctx, &domain.Reminder{ID: 1, Text: "feed the cat", DueAt: due.Add(time.Hour)})
		if err != nil {
			t.Fatalf("Failed to re-save reminder: %v", err)
		}

		pending, err := store.LoadPending(ctx)
		if err != nil {
			t.Fatalf("Failed to load pending: %v", err)
		}
		if len(pending) != 1 {
			t.Fatalf("Expected 1 pending reminder, got %d", len(pending))
		}
		if !pending[0].DueAt.After(due) {
			t.Errorf("Expected the due time to be pushed out, got %v", pending[0].DueAt)
		}
	})

	t.Run("LoadPendingOrdersByDueTime", func(t *testing.T) {
		if err := store.Save(ctx, &domain.Reminder{ID: 2, Text: "take out the trash", DueAt: due.Add(-5 * time.Minute)}); err != nil {
			t.Fatalf("Failed to save reminder: %v", err)
		}

		pending, err := store.LoadPending(ctx)
		if err != nil {
			t.Fatalf("Failed to load pending: %v", err)
		}
		if len(pending) != 2 {
			t.Fatalf("Expected 2 pending reminders, got %d", len(pending))
		}
		if pending[0].ID != 2 {
			t.Errorf("Expected the soonest reminder first, got id %d", pending[0].ID)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := store.Delete(ctx, 2); err != nil {
			t.Fatalf("Failed to delete reminder: %v", err)
		}

		pending, err := store.LoadPending(ctx)
		if err != nil {
			t.Fatalf("Failed to load pending: %v", err)
		}
		if len(pending) != 1 || pending[0].ID != 1 {
			t.Errorf("Expected only reminder 1 left, got %+v", pending)
		}
	})

	t.Run("DeleteAll", func(t *testing.T) {
		if err := store.DeleteAll(ctx); err != nil {
			t.Fatalf("Failed to delete all: %v", err)
		}

		pending, err := store.LoadPending(ctx)
		if err != nil {
			t.Fatalf("Failed to load pending: %v", err)
		}
		if len(pending) != 0 {
			t.Errorf("Expected no reminders, got %d", len(pending))
		}
	})
}

// TestDatabase_SchedulerRestore verifies reminders survive a process restart
func TestDatabase_SchedulerRestore(t *testing.T) {
	env := SetupTestEnvironment(t)
	if env == nil || env.DB == nil {
		t.Skip("Database not available")
	}
	CleanDatabase(t, env.DB)

	store := postgres.NewReminderStore(env.DB, env.Logger)
	ctx := context.Background()

	// First process schedules two reminders.
	first := reminder.NewScheduler(store, env.Logger)
	if _, err := first.Add("water the plants", 30); err != nil {
		t.Fatalf("Failed to add reminder: %v", err)
	}
	id, err := first.Add("check the oven", 5)
	if err != nil {
		t.Fatalf("Failed to add reminder: %v", err)
	}

	// Second process restores them.
	second := reminder.NewScheduler(store, env.Logger)
	if err := second.Restore(ctx); err != nil {
		t.Fatalf("Failed to restore: %v", err)
	}
	if second.Pending() != 2 {
		t.Fatalf("Expected 2 restored reminders, got %d", second.Pending())
	}

	// Ids keep counting past the restored ones.
	next, err := second.Add("preheat the grill", 10)
	if err != nil {
		t.Fatalf("Failed to add reminder: %v", err)
	}
	if next <= id {
		t.Errorf("Expected a fresh id above %d, got %d", id, next)
	}

	// An overdue reminder fires on the first sweep after restore.
	third := reminder.NewScheduler(store, env.Logger)
	if err := third.Restore(ctx); err != nil {
		t.Fatalf("Failed to restore: %v", err)
	}
	third.SetClock(func() time.Time { return time.Now().Add(time.Hour) })

	var delivered []string
	third.SweepDue(func(r domain.Reminder) { delivered = append(delivered, r.Text) })
	if len(delivered) != 3 {
		t.Errorf("Expected all 3 reminders delivered, got %v", delivered)
	}

	// The sweep also cleared the persisted rows.
	pending, err := store.LoadPending(ctx)
	if err != nil {
		t.Fatalf("Failed to load pending: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("Expected delivered reminders to be unpersisted, got %d rows", len(pending))
	}
}
