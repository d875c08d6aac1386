package controllers

import (
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/yonasbekele/serenity-backend/api/responses"
	"github.com/yonasbekele/serenity-backend/internal/users"
	pkgerrors "github.com/yonasbekele/serenity-backend/pkg/errors"
	"github.com/yonasbekele/serenity-backend/pkg/logger"
)

// LoyaltyTier returns the caller's current tier, if one is assigned.
func LoyaltyTier(repo users.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if repo == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users repository unavailable"))
			return
		}
		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		user, err := repo.FindByID(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "user not found"))
				return
			}
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user"))
			return
		}

		payload := map[string]any{
			"points": user.Points,
			"tier":   nil,
		}
		if user.TierID != nil {
			tier, err := repo.FindTierByID(ctx, *user.TierID)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load tier"))
				return
			}
			if tier != nil {
				payload["tier"] = users.TierFromModel(tier)
			}
		}
		responses.WriteSuccess(w, payload)
	}
}
