package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yonasbekele/serenity-backend/pkg/enums"
)

// Booking is one requested service instance (room, spa, restaurant or event).
type Booking struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	UserID      uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index"`
	User        *User             `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	ServiceType enums.ServiceType `gorm:"column:service_type;type:varchar(20);not null"`
	ServiceID   *string           `gorm:"column:service_id"`

	Date   time.Time `gorm:"column:date;type:date;not null"`
	Time   string    `gorm:"column:time;type:varchar(8);not null"`
	Guests int       `gorm:"column:guests;not null;default:1"`

	PickupRequired bool    `gorm:"column:pickup_required;not null;default:false"`
	PickupLocation *string `gorm:"column:pickup_location"`
	Notes          string  `gorm:"column:notes;not null;default:''"`

	DiscountApplied bool            `gorm:"column:discount_applied;not null;default:false"`
	DiscountAmount  decimal.Decimal `gorm:"column:discount_amount;type:numeric(10,2);not null;default:0"`

	Status    enums.BookingStatus `gorm:"column:status;type:varchar(20);not null;default:'PENDING'"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
