package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// User represents a loyalty-program member.
type User struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Email        string    `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	FirstName    string    `gorm:"column:first_name;not null"`
	MiddleName   *string   `gorm:"column:middle_name"`
	LastName     string    `gorm:"column:last_name;not null"`
	Birthdate    *time.Time `gorm:"column:birthdate;type:date"`

	ReferralCode *string    `gorm:"column:referral_code;uniqueIndex"`
	ReferredByID *uuid.UUID `gorm:"column:referred_by_id;type:uuid"`

	Points     int             `gorm:"column:points;not null;default:0"`
	TotalSpent decimal.Decimal `gorm:"column:total_spent;type:numeric(10,2);not null;default:0"`
	TierID     *uuid.UUID      `gorm:"column:tier_id;type:uuid"`

	PreferredLocation *string `gorm:"column:preferred_location"`
	IsActive          bool    `gorm:"column:is_active;not null;default:true"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns an ID so inserts work the same on Postgres and the
// sqlite test database.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
