package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yonasbekele/serenity-backend/pkg/enums"
)

// EngagementLog is a loyalty-credit event. BookingID is carried as a real
// column (in addition to the metadata blob) so the composite unique index can
// guarantee at most one entry per (user, action, booking) at the storage
// layer, regardless of how many webhook deliveries race.
type EngagementLog struct {
	ID        uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID              `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_engagement_user_action_booking"`
	User      *User                  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Action    enums.EngagementAction `gorm:"column:action;type:varchar(50);not null;uniqueIndex:idx_engagement_user_action_booking"`
	BookingID uuid.UUID              `gorm:"column:booking_id;type:uuid;not null;uniqueIndex:idx_engagement_user_action_booking"`
	Metadata  json.RawMessage        `gorm:"column:metadata;type:jsonb"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (e *EngagementLog) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
