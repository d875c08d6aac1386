package controllers

import (
	"net/http"

	"github.com/yonasbekele/serenity-backend/api/responses"
	"github.com/yonasbekele/serenity-backend/api/validators"
	"github.com/yonasbekele/serenity-backend/internal/payments"
	"github.com/yonasbekele/serenity-backend/internal/transactions"
	pkgerrors "github.com/yonasbekele/serenity-backend/pkg/errors"
	"github.com/yonasbekele/serenity-backend/pkg/logger"
)

// PaymentInitialize opens a gateway checkout session for a booking.
func PaymentInitialize(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}
		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var body payments.InitializePaymentInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.Initialize(ctx, userID, body)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// PaymentTransactions returns the caller's transaction log history.
func PaymentTransactions(svc transactions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transactions service unavailable"))
			return
		}
		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		entries, err := svc.ListForUser(ctx, userID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, entries)
	}
}
