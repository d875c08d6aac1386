package payments

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yonasbekele/serenity-backend/pkg/db/models"
)

// Repository manages persistence for payments.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, payment *models.Payment) error
	// FindByTxRef loads the payment together with its booking.
	FindByTxRef(ctx context.Context, txRef string) (*models.Payment, error)
	// FindByTxRefForUpdate loads the payment and, on Postgres, holds a
	// row-level lock until the surrounding transaction completes.
	FindByTxRefForUpdate(ctx context.Context, txRef string) (*models.Payment, error)
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*models.Payment, error)
	Update(ctx context.Context, payment *models.Payment) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a payments repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *repository) FindByTxRef(ctx context.Context, txRef string) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.WithContext(ctx).
		Preload("Booking").
		Where("tx_ref = ?", txRef).
		First(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *repository) FindByTxRefForUpdate(ctx context.Context, txRef string) (*models.Payment, error) {
	tx := r.db.WithContext(ctx)
	// sqlite serializes writers at the database level, so the locking
	// clause is only emitted where the dialect supports it.
	if r.db.Dialector.Name() == "postgres" {
		tx = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var payment models.Payment
	if err := tx.Where("tx_ref = ?", txRef).First(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *repository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		First(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *repository) Update(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(payment).Error
}
