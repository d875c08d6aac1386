package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionLog records an immutable money lifecycle event for a user.
// Rows are append-only; nothing in the codebase updates or deletes them.
type TransactionLog struct {
	ID       uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	UserID   uuid.UUID       `gorm:"column:user_id;type:uuid;not null;index"`
	User     *User           `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Event    string          `gorm:"column:event;not null"`
	Amount   decimal.Decimal `gorm:"column:amount;type:numeric(10,2);not null"`
	Metadata json.RawMessage `gorm:"column:metadata;type:jsonb"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (t *TransactionLog) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
