package reminder

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/sigec-casa/internal/domain"
	"github.com/seu-repo/sigec-casa/internal/ports"
)

// MaxPending caps the number of reminders held at once.
const MaxPending = 1024

var (
	// ErrQueueFull is returned by Add when the pending count would
	// exceed MaxPending.
	ErrQueueFull = errors.New("reminder queue is full")

	// ErrNotFound is returned by UpdateByText when no reminder matches.
	ErrNotFound = errors.New("reminder not found")
)

// Scheduler holds pending reminders sorted ascending by due time. The
// dialogue worker mutates it while the status endpoint reads Pending and
// Snapshot from request goroutines, so every method takes the mutex; all
// failures surface as the two sentinel errors above, never as panics.
type Scheduler struct {
	mu        sync.Mutex
	items     []domain.Reminder
	nextID    uint32
	lastAdded uint32

	store ports.ReminderStore // optional write-through persistence
	clock func() time.Time
	log   *zap.Logger
}

// NewScheduler creates an empty scheduler. store may be nil for purely
// in-memory operation.
func NewScheduler(store ports.ReminderStore, log *zap.Logger) *Scheduler {
	return &Scheduler{
		nextID: 1,
		store:  store,
		clock:  time.Now,
		log:    log,
	}
}

// SetClock overrides the wall clock, for tests.
func (s *Scheduler) SetClock(clock func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = clock
}

// Restore loads previously persisted reminders at startup. Reminders
// already overdue are kept; the next sweep delivers them immediately.
func (s *Scheduler) Restore(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	pending, err := s.store.LoadPending(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items[:0], pending...)
	s.resort()
	for i := range s.items {
		if s.items[i].ID >= s.nextID {
			s.nextID = s.items[i].ID + 1
		}
	}
	if len(s.items) > 0 {
		s.log.Info("Restored pending reminders", zap.Int("count", len(s.items)))
	}
	return nil
}

// Add schedules a reminder due in the given number of minutes and
// returns its id, which callers keep as the "last reminder" handle.
func (s *Scheduler) Add(text string, minutes int) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.items) >= MaxPending {
		return 0, ErrQueueFull
	}

	r := domain.Reminder{
		ID:    s.allocID(),
		Text:  text,
		DueAt: s.clock().Add(time.Duration(minutes) * time.Minute),
	}

	// Insert keeping the ascending-due order.
	pos := sort.Search(len(s.items), func(i int) bool {
		return s.items[i].DueAt.After(r.DueAt)
	})
	s.items = append(s.items, domain.Reminder{})
	copy(s.items[pos+1:], s.items[pos:])
	s.items[pos] = r

	s.lastAdded = r.ID
	s.persist(&r)

	s.log.Info("Reminder scheduled",
		zap.Uint32("id", r.ID),
		zap.Time("due_at", r.DueAt),
	)
	return r.ID, nil
}

// UpdateByText finds a pending reminder by case-insensitive text match,
// pushes its due time out to now+minutes, and re-sorts. The collection
// stays small, so a linear scan is fine.
func (s *Scheduler) UpdateByText(text string, minutes int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if strings.EqualFold(s.items[i].Text, text) {
			s.items[i].DueAt = s.clock().Add(time.Duration(minutes) * time.Minute)
			s.lastAdded = s.items[i].ID
			s.persist(&s.items[i])
			s.resort()
			return nil
		}
	}
	return ErrNotFound
}

// CancelLast removes the most recently added reminder if it has not
// fired yet, and reports whether anything was removed. The "last added"
// memory is cleared either way.
func (s *Scheduler) CancelLast() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.lastAdded
	s.lastAdded = 0
	if id == 0 {
		return false
	}
	for i := range s.items {
		if s.items[i].ID == id {
			s.remove(i)
			s.unpersist(id)
			return true
		}
	}
	return false
}

// CancelAll empties the collection and returns how many reminders were
// cancelled, so the caller can phrase the reply correctly for 0/1/N.
func (s *Scheduler) CancelAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.items)
	s.items = s.items[:0]
	s.lastAdded = 0
	if n > 0 && s.store != nil {
		if err := s.store.DeleteAll(context.Background()); err != nil {
			s.log.Warn("Failed to clear persisted reminders", zap.Error(err))
		}
	}
	return n
}

// SweepDue delivers every due reminder in ascending order, removing each
// before handing it to deliver. Announcing a reminder consumes wall-clock
// time, so the clock is re-sampled after each delivery; a reminder that
// became due while the previous one was being spoken is caught in the
// same sweep. Returns the number delivered.
func (s *Scheduler) SweepDue(deliver func(domain.Reminder)) int {
	delivered := 0
	for {
		s.mu.Lock()
		if len(s.items) == 0 || !s.items[0].Due(s.clock()) {
			s.mu.Unlock()
			return delivered
		}
		r := s.items[0]
		s.remove(0)
		if s.lastAdded == r.ID {
			s.lastAdded = 0
		}
		// Delivery speaks, which takes wall-clock time; the mutex is
		// released so the status endpoint is not blocked behind playback.
		s.mu.Unlock()

		s.unpersist(r.ID)
		deliver(r)
		delivered++
	}
}

// Pending returns the number of reminders waiting to fire.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Snapshot returns a copy of the pending reminders in due order, for the
// status endpoint.
func (s *Scheduler) Snapshot() []domain.Reminder {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Reminder, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Scheduler) allocID() uint32 {
	id := s.nextID
	s.nextID++
	if s.nextID == 0 { // id 0 is reserved
		s.nextID = 1
	}
	return id
}

func (s *Scheduler) remove(i int) {
	s.items = append(s.items[:i], s.items[i+1:]...)
}

func (s *Scheduler) resort() {
	sort.SliceStable(s.items, func(i, j int) bool {
		return s.items[i].DueAt.Before(s.items[j].DueAt)
	})
}

func (s *Scheduler) persist(r *domain.Reminder) {
	if s.store == nil {
		return
	}
	if err := s.store.Save(context.Background(), r); err != nil {
		s.log.Warn("Failed to persist reminder", zap.Uint32("id", r.ID), zap.Error(err))
	}
}

func (s *Scheduler) unpersist(id uint32) {
	if s.store == nil {
		return
	}
	if err := s.store.Delete(context.Background(), id); err != nil {
		s.log.Warn("Failed to remove persisted reminder", zap.Uint32("id", id), zap.Error(err))
	}
}
