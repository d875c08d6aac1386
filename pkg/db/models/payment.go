package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yonasbekele/serenity-backend/pkg/enums"
)

// Payment is the single payment attempt attached to a booking. The tx_ref is
// globally unique; PaidAt is set exactly when Status becomes SUCCESS.
type Payment struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	BookingID uuid.UUID `gorm:"column:booking_id;type:uuid;not null;uniqueIndex"`
	Booking   *Booking  `gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE"`

	Amount decimal.Decimal     `gorm:"column:amount;type:numeric(10,2);not null"`
	Method enums.PaymentMethod `gorm:"column:method;type:varchar(20);not null"`
	Status enums.PaymentStatus `gorm:"column:status;type:varchar(20);not null;default:'PENDING'"`
	PaidAt *time.Time          `gorm:"column:paid_at"`
	TxRef  string              `gorm:"column:tx_ref;not null;uniqueIndex"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
