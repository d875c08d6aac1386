package webhooks

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/yonasbekele/serenity-backend/api/responses"
	chapawebhook "github.com/yonasbekele/serenity-backend/internal/webhooks/chapa"
	pkgerrors "github.com/yonasbekele/serenity-backend/pkg/errors"
	"github.com/yonasbekele/serenity-backend/pkg/logger"
)

// The gateway sends the HMAC under either header depending on integration age.
const (
	chapaSignatureHeader    = "Chapa-Signature"
	chapaAltSignatureHeader = "x-chapa-signature"
)

type ChapaWebhookService interface {
	HandleEvent(ctx context.Context, event *chapawebhook.Event) error
}

type chapaWebhookGuard interface {
	CheckAndMark(ctx context.Context, deliveryID string) (bool, error)
	Delete(ctx context.Context, deliveryID string) error
}

type chapaClient interface {
	WebhookSecret() string
}

// ChapaWebhook handles payment confirmation callbacks from the gateway. The
// body is read raw and parsed only after the signature checks pass.
func ChapaWebhook(svc ChapaWebhookService, client chapaClient, guard chapaWebhookGuard, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}
		if client == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "gateway client unavailable"))
			return
		}
		if guard == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "idempotency guard unavailable"))
			return
		}

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
			return
		}

		primary := r.Header.Get(chapaSignatureHeader)
		alternate := r.Header.Get(chapaAltSignatureHeader)
		if primary == "" && alternate == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing signature"))
			return
		}

		signature, ok := matchChapaSignature(payload, client.WebhookSecret(), primary, alternate)
		if !ok {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid signature"))
			return
		}

		var event chapawebhook.Event
		if err := json.Unmarshal(payload, &event); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode event"))
			return
		}

		// The signature doubles as the delivery ID: it is an HMAC over the
		// exact payload, so byte-identical replays collapse onto one key.
		alreadyProcessed, err := guard.CheckAndMark(ctx, signature)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency"))
			return
		}
		if alreadyProcessed {
			responses.WriteSuccess(w, nil)
			return
		}

		if err := svc.HandleEvent(ctx, &event); err != nil {
			_ = guard.Delete(ctx, signature)
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			logg.Info(ctx, fmt.Sprintf("chapa callback %s processed", event.TxRef))
		}
		responses.WriteSuccess(w, nil)
	}
}

// matchChapaSignature computes the expected HMAC-SHA256 hex digest and
// compares it in constant time against whichever headers are present.
func matchChapaSignature(payload []byte, secret string, candidates ...string) (string, bool) {
	if secret == "" {
		return "", false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		if hmac.Equal([]byte(expected), []byte(candidate)) {
			return candidate, true
		}
	}
	return "", false
}
