package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tier is a loyalty tier granted once a member crosses its point floor.
type Tier struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name      string    `gorm:"column:name;not null;uniqueIndex"`
	MinPoints int       `gorm:"column:min_points;not null"`
	Perks     string    `gorm:"column:perks"`
}

func (t *Tier) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
