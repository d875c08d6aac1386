package transactions

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yonasbekele/serenity-backend/pkg/db/models"
)

// Service records and reads the append-only transaction audit trail.
// Entries are never updated or deleted.
type Service interface {
	// WithTx returns a service whose writes run inside tx.
	WithTx(tx *gorm.DB) Service
	Record(ctx context.Context, input RecordTransactionInput) (*models.TransactionLog, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.TransactionLog, error)
}

type service struct {
	repo Repository
}

// RecordTransactionInput captures the immutable data a log entry requires.
type RecordTransactionInput struct {
	UserID   uuid.UUID       `json:"user_id"`
	Event    string          `json:"event"`
	Amount   decimal.Decimal `json:"amount"`
	Metadata json.RawMessage `json:"metadata"`
}

// NewService wires a transaction log service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("transaction repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	return &service{repo: s.repo.WithTx(tx)}
}

func (s *service) Record(ctx context.Context, input RecordTransactionInput) (*models.TransactionLog, error) {
	if input.UserID == uuid.Nil {
		return nil, fmt.Errorf("user id is required")
	}
	if input.Event == "" {
		return nil, fmt.Errorf("event is required")
	}

	entry := &models.TransactionLog{
		UserID:   input.UserID,
		Event:    input.Event,
		Amount:   input.Amount,
		Metadata: input.Metadata,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.TransactionLog, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user id is required")
	}
	return s.repo.ListByUserID(ctx, userID)
}
