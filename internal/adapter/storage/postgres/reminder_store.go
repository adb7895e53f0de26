package postgres

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/seu-repo/sigec-casa/internal/domain"
	"github.com/seu-repo/sigec-casa/internal/ports"
)

type ReminderStore struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewReminderStore(db *gorm.DB, log *zap.Logger) ports.ReminderStore {
	return &ReminderStore{
		db:  db,
		log: log,
	}
}

func (r *ReminderStore) Save(ctx context.Context, reminder *domain.Reminder) error {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(reminder)
	if result.Error != nil {
		r.log.Error("Failed to save reminder", zap.Error(result.Error))
		return result.Error
	}
	return nil
}

func (r *ReminderStore) Delete(ctx context.Context, id uint32) error {
	result := r.db.WithContext(ctx).Delete(&domain.Reminder{}, "id = ?", id)
	if result.Error != nil {
		r.log.Error("Failed to delete reminder", zap.Uint32("id", id), zap.Error(result.Error))
		return result.Error
	}
	return nil
}

func (r *ReminderStore) DeleteAll(ctx context.Context) error {
	result := r.db.WithContext(ctx).Where("1 = 1").Delete(&domain.Reminder{})
	if result.Error != nil {
		r.log.Error("Failed to clear reminders", zap.Error(result.Error))
		return result.Error
	}
	return nil
}

func (r *ReminderStore) LoadPending(ctx context.Context) ([]domain.Reminder, error) {
	var reminders []domain.Reminder
	result := r.db.WithContext(ctx).Order("due_at asc").Find(&reminders)
	if result.Error != nil {
		return nil, result.Error
	}
	return reminders, nil
}
