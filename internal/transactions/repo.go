package transactions

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yonasbekele/serenity-backend/pkg/db/models"
)

// Repository manages persistence for transaction log entries.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *models.TransactionLog) error
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]models.TransactionLog, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a transaction log repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, entry *models.TransactionLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]models.TransactionLog, error) {
	var entries []models.TransactionLog
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
