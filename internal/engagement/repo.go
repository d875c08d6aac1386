package engagement

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yonasbekele/serenity-backend/pkg/db"
	"github.com/yonasbekele/serenity-backend/pkg/db/models"
)

const dedupIndexName = "idx_engagement_user_action_booking"

// Repository manages persistence for engagement log entries.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	// CreateIfAbsent inserts the entry unless an entry for the same
	// (user, action, booking) already exists. It reports whether a row was
	// written. The composite unique index enforces at-most-once even when
	// concurrent inserts race.
	CreateIfAbsent(ctx context.Context, entry *models.EngagementLog) (bool, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]models.EngagementLog, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an engagement repository bound to the provided database.
func NewRepository(gdb *gorm.DB) Repository {
	return &repository{db: gdb}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateIfAbsent(ctx context.Context, entry *models.EngagementLog) (bool, error) {
	err := r.db.WithContext(ctx).Create(entry).Error
	if err == nil {
		return true, nil
	}
	if db.IsUniqueViolation(err, dedupIndexName) {
		return false, nil
	}
	return false, err
}

func (r *repository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]models.EngagementLog, error) {
	var entries []models.EngagementLog
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
