package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yonasbekele/serenity-backend/internal/engagement"
	"github.com/yonasbekele/serenity-backend/internal/transactions"
	"github.com/yonasbekele/serenity-backend/pkg/chapa"
	"github.com/yonasbekele/serenity-backend/pkg/config"
	"github.com/yonasbekele/serenity-backend/pkg/db/models"
	"github.com/yonasbekele/serenity-backend/pkg/enums"
	pkgerrors "github.com/yonasbekele/serenity-backend/pkg/errors"
	"github.com/yonasbekele/serenity-backend/pkg/logger"
	"github.com/yonasbekele/serenity-backend/pkg/metrics"
)

// TransactionEventPaymentSuccessful is the audit event written when a payment
// settles.
const TransactionEventPaymentSuccessful = "Payment Successful"

const (
	callbackPath = "/api/v1/payments/callback"
	returnPath   = "/payments/complete"
)

type bookingsRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
}

type gatewayClient interface {
	Initialize(ctx context.Context, req chapa.InitializeRequest) (string, error)
}

type amountDecrypter interface {
	Decrypt(encoded string) (decimal.Decimal, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes payment initialization and reconciliation.
type Service interface {
	// Initialize opens a gateway checkout session for the booking and
	// persists a pending payment keyed by a fresh transaction reference.
	Initialize(ctx context.Context, userID uuid.UUID, input InitializePaymentInput) (*InitializePaymentResult, error)
	// Reconcile applies a gateway verification result to the stored payment.
	// A settled verification flips the payment to SUCCESS, appends a
	// transaction log entry and credits the completed-booking engagement,
	// all inside one database transaction. Repeated deliveries are
	// idempotent for payment state and engagement.
	Reconcile(ctx context.Context, txRef string, verification *chapa.VerifyResult) (*models.Payment, error)
}

// InitializePaymentInput carries the client-submitted payment request. The
// amount arrives encrypted with the shared amount cipher key.
type InitializePaymentInput struct {
	BookingID       uuid.UUID `json:"booking_id" validate:"required"`
	EncryptedAmount string    `json:"amount" validate:"required"`
}

// InitializePaymentResult is returned to the client to start checkout.
type InitializePaymentResult struct {
	CheckoutURL string `json:"checkout_url"`
	TxRef       string `json:"tx_ref"`
}

type service struct {
	repo       Repository
	bookings   bookingsRepository
	gateway    gatewayClient
	decrypter  amountDecrypter
	txLog      transactions.Service
	engagement engagement.Service
	runner     txRunner
	cfg        config.PaymentsConfig
	chapaCfg   config.ChapaConfig
	metrics    *metrics.PaymentMetrics
	logger     *logger.Logger
	now        func() time.Time
}

// NewService wires a payment service with its collaborators.
func NewService(
	repo Repository,
	bookingsRepo bookingsRepository,
	gateway gatewayClient,
	decrypter amountDecrypter,
	txLog transactions.Service,
	engagementSvc engagement.Service,
	runner txRunner,
	cfg config.PaymentsConfig,
	chapaCfg config.ChapaConfig,
	paymentMetrics *metrics.PaymentMetrics,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	if bookingsRepo == nil {
		return nil, fmt.Errorf("bookings repository required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("gateway client required")
	}
	if decrypter == nil {
		return nil, fmt.Errorf("amount decrypter required")
	}
	if txLog == nil {
		return nil, fmt.Errorf("transaction log service required")
	}
	if engagementSvc == nil {
		return nil, fmt.Errorf("engagement service required")
	}
	if runner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:       repo,
		bookings:   bookingsRepo,
		gateway:    gateway,
		decrypter:  decrypter,
		txLog:      txLog,
		engagement: engagementSvc,
		runner:     runner,
		cfg:        cfg,
		chapaCfg:   chapaCfg,
		metrics:    paymentMetrics,
		logger:     logg,
		now:        time.Now,
	}, nil
}

func (s *service) Initialize(ctx context.Context, userID uuid.UUID, input InitializePaymentInput) (*InitializePaymentResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	if input.BookingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "booking id is required")
	}

	booking, err := s.bookings.FindByID(ctx, input.BookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking")
	}
	if booking.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
	}

	amount, err := s.decrypter.Decrypt(input.EncryptedAmount)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "amount decryption failed")
	}

	existing, err := s.repo.FindByBookingID(ctx, input.BookingID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment")
	}
	if existing != nil && existing.Status == enums.PaymentStatusSuccess {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "booking already paid")
	}

	txRef := chapa.NewTxRef()
	checkoutURL, err := s.gateway.Initialize(ctx, chapa.InitializeRequest{
		Amount:      amount.StringFixed(2),
		Currency:    s.cfg.Currency,
		TxRef:       txRef,
		CallbackURL: s.chapaCfg.BackendURL + callbackPath,
		ReturnURL:   s.chapaCfg.FrontendURL + returnPath,
		Meta: map[string]any{
			"booking_id": booking.ID.String(),
			"user_id":    booking.UserID.String(),
		},
	})
	if err != nil {
		return nil, err
	}

	if existing != nil {
		// One payment row per booking. A retry after a failed or
		// abandoned attempt reuses the row under a fresh reference.
		existing.Amount = amount
		existing.TxRef = txRef
		existing.Status = enums.PaymentStatusPending
		existing.PaidAt = nil
		if err := s.repo.Update(ctx, existing); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update payment")
		}
	} else {
		payment := &models.Payment{
			BookingID: booking.ID,
			Amount:    amount,
			Method:    enums.PaymentMethodChapa,
			Status:    enums.PaymentStatusPending,
			TxRef:     txRef,
		}
		if err := s.repo.Create(ctx, payment); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment")
		}
	}

	s.metrics.IncInitialized(enums.PaymentMethodChapa.String())
	if s.logger != nil {
		s.logger.Info(s.logger.WithField(ctx, "tx_ref", txRef), "payment initialized")
	}
	return &InitializePaymentResult{CheckoutURL: checkoutURL, TxRef: txRef}, nil
}

func (s *service) Reconcile(ctx context.Context, txRef string, verification *chapa.VerifyResult) (*models.Payment, error) {
	if txRef == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction reference is required")
	}
	if verification == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "verification result missing")
	}

	payment, err := s.repo.FindByTxRef(ctx, txRef)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.metrics.IncReconciled("unknown_reference")
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment")
	}

	if !verification.Settled() {
		// Stored status stays untouched until the gateway confirms.
		s.metrics.IncReconciled("verification_failed")
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment verification failed")
	}

	if payment.Booking == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payment has no booking")
	}
	memberID := payment.Booking.UserID

	engagementMetadata, err := json.Marshal(map[string]string{
		"booking_id":   payment.BookingID.String(),
		"service_type": payment.Booking.ServiceType.String(),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode engagement metadata")
	}

	var alreadySettled bool
	err = s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		txLog := s.txLog.WithTx(tx)
		engagementSvc := s.engagement.WithTx(tx)

		// Re-read under the row lock; the unlocked read above only
		// resolved 404s. Concurrent deliveries for the same reference
		// serialize here, so exactly one observes PENDING.
		locked, err := repo.FindByTxRefForUpdate(ctx, payment.TxRef)
		if err != nil {
			return fmt.Errorf("lock payment: %w", err)
		}
		alreadySettled = locked.Status == enums.PaymentStatusSuccess

		if !alreadySettled {
			paidAt := s.now()
			locked.Status = enums.PaymentStatusSuccess
			locked.PaidAt = &paidAt
			if err := repo.Update(ctx, locked); err != nil {
				return fmt.Errorf("update payment: %w", err)
			}
		}
		payment.Status = locked.Status
		payment.PaidAt = locked.PaidAt

		if !alreadySettled || s.cfg.LogDuplicateConfirmations {
			metadata, err := json.Marshal(map[string]string{
				"tx_ref": payment.TxRef,
				"status": verification.TransactionStatus,
			})
			if err != nil {
				return fmt.Errorf("encode transaction metadata: %w", err)
			}
			if _, err := txLog.Record(ctx, transactions.RecordTransactionInput{
				UserID:   memberID,
				Event:    TransactionEventPaymentSuccessful,
				Amount:   payment.Amount,
				Metadata: metadata,
			}); err != nil {
				return fmt.Errorf("record transaction log: %w", err)
			}
		}

		if _, err := engagementSvc.RecordAction(ctx, engagement.RecordActionInput{
			UserID:    memberID,
			Action:    enums.EngagementActionCompletedBooking,
			BookingID: payment.BookingID,
			Metadata:  engagementMetadata,
		}); err != nil {
			return fmt.Errorf("record engagement: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reconcile payment")
	}

	if alreadySettled {
		s.metrics.IncReconciled("duplicate")
	} else {
		s.metrics.IncReconciled("success")
	}
	if s.logger != nil {
		s.logger.Info(s.logger.WithField(ctx, "tx_ref", txRef), "payment reconciled")
	}
	return payment, nil
}
