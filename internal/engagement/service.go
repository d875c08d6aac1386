package engagement

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yonasbekele/serenity-backend/internal/users"
	"github.com/yonasbekele/serenity-backend/pkg/db/models"
	"github.com/yonasbekele/serenity-backend/pkg/enums"
)

// Service records loyalty engagement events and credits the points they earn.
type Service interface {
	// WithTx returns a service whose writes run inside tx.
	WithTx(tx *gorm.DB) Service
	// RecordAction writes one engagement entry for (user, action, booking)
	// and credits the user's points balance. A repeated call for the same
	// triple is a no-op and reports recorded=false.
	RecordAction(ctx context.Context, input RecordActionInput) (recorded bool, err error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.EngagementLog, error)
}

// RecordActionInput identifies the engagement event to credit.
type RecordActionInput struct {
	UserID    uuid.UUID
	Action    enums.EngagementAction
	BookingID uuid.UUID
	Metadata  json.RawMessage
}

type service struct {
	repo  Repository
	users users.Repository
}

// NewService wires an engagement service with its collaborators.
func NewService(repo Repository, userRepo users.Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("engagement repository required")
	}
	if userRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	return &service{repo: repo, users: userRepo}, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	return &service{repo: s.repo.WithTx(tx), users: s.users.WithTx(tx)}
}

func (s *service) RecordAction(ctx context.Context, input RecordActionInput) (bool, error) {
	if input.UserID == uuid.Nil {
		return false, fmt.Errorf("user id is required")
	}
	if input.BookingID == uuid.Nil {
		return false, fmt.Errorf("booking id is required")
	}
	if !input.Action.IsValid() {
		return false, fmt.Errorf("invalid engagement action %q", input.Action)
	}

	entry := &models.EngagementLog{
		UserID:    input.UserID,
		Action:    input.Action,
		BookingID: input.BookingID,
		Metadata:  input.Metadata,
	}
	inserted, err := s.repo.CreateIfAbsent(ctx, entry)
	if err != nil {
		return false, err
	}
	if !inserted {
		return false, nil
	}

	if points := input.Action.Points(); points > 0 {
		if err := s.users.CreditPoints(ctx, input.UserID, points); err != nil {
			return false, err
		}
	}
	return true, nil
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.EngagementLog, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user id is required")
	}
	return s.repo.ListByUserID(ctx, userID)
}
