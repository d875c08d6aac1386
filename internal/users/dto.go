package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/yonasbekele/serenity-backend/pkg/db/models"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID                uuid.UUID  `json:"id"`
	Email             string     `json:"email"`
	FirstName         string     `json:"first_name"`
	MiddleName        *string    `json:"middle_name,omitempty"`
	LastName          string     `json:"last_name"`
	Points            int        `json:"points"`
	TierID            *uuid.UUID `json:"tier_id,omitempty"`
	PreferredLocation *string    `json:"preferred_location,omitempty"`
	IsActive          bool       `json:"is_active"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// TierDTO is the transport shape for a loyalty tier.
type TierDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	MinPoints int       `json:"min_points"`
	Perks     string    `json:"perks"`
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:                u.ID,
		Email:             u.Email,
		FirstName:         u.FirstName,
		MiddleName:        u.MiddleName,
		LastName:          u.LastName,
		Points:            u.Points,
		TierID:            u.TierID,
		PreferredLocation: u.PreferredLocation,
		IsActive:          u.IsActive,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}

func TierFromModel(t *models.Tier) *TierDTO {
	if t == nil {
		return nil
	}
	return &TierDTO{
		ID:        t.ID,
		Name:      t.Name,
		MinPoints: t.MinPoints,
		Perks:     t.Perks,
	}
}
