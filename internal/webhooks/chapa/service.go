package chapawebhook

import (
	"context"

	"github.com/yonasbekele/serenity-backend/pkg/chapa"
	"github.com/yonasbekele/serenity-backend/pkg/db/models"
	pkgerrors "github.com/yonasbekele/serenity-backend/pkg/errors"
	"github.com/yonasbekele/serenity-backend/pkg/metrics"
)

// Event is the decoded webhook callback payload. Only the transaction
// reference is trusted; the asserted status is re-checked against the gateway.
type Event struct {
	Event  string `json:"event"`
	TxRef  string `json:"tx_ref"`
	Status string `json:"status"`
}

type gatewayVerifier interface {
	Verify(ctx context.Context, txRef string) (*chapa.VerifyResult, error)
}

type paymentReconciler interface {
	Reconcile(ctx context.Context, txRef string, verification *chapa.VerifyResult) (*models.Payment, error)
}

type ServiceParams struct {
	Gateway    gatewayVerifier
	Reconciler paymentReconciler
	Metrics    *metrics.PaymentMetrics
}

// Service turns verified webhook deliveries into payment reconciliations.
type Service struct {
	gateway    gatewayVerifier
	reconciler paymentReconciler
	metrics    *metrics.PaymentMetrics
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Gateway == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "gateway verifier required")
	}
	if params.Reconciler == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payment reconciler required")
	}
	return &Service{
		gateway:    params.Gateway,
		reconciler: params.Reconciler,
		metrics:    params.Metrics,
	}, nil
}

// HandleEvent re-verifies the transaction with the gateway and reconciles the
// stored payment.
func (s *Service) HandleEvent(ctx context.Context, event *Event) error {
	if event == nil || event.TxRef == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "transaction reference missing")
	}

	verification, err := s.gateway.Verify(ctx, event.TxRef)
	if err != nil {
		s.metrics.IncWebhook("verify_error")
		return err
	}

	if _, err := s.reconciler.Reconcile(ctx, event.TxRef, verification); err != nil {
		s.metrics.IncWebhook("reconcile_error")
		return err
	}
	s.metrics.IncWebhook("processed")
	return nil
}
