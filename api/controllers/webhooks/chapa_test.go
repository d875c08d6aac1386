package webhooks

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	chapawebhook "github.com/yonasbekele/serenity-backend/internal/webhooks/chapa"
)

func buildChapaEvent(t *testing.T, txRef string) []byte {
	payload, err := json.Marshal(&chapawebhook.Event{
		Event:  "charge.success",
		TxRef:  txRef,
		Status: "success",
	})
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return payload
}

func signPayload(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

type fakeChapaWebhookService struct {
	calls int
	last  *chapawebhook.Event
	err   error
}

func (f *fakeChapaWebhookService) HandleEvent(ctx context.Context, event *chapawebhook.Event) error {
	f.calls++
	f.last = event
	return f.err
}

type fakeSecretClient struct {
	secret string
}

func (c *fakeSecretClient) WebhookSecret() string {
	return c.secret
}

type inMemoryStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newInMemoryStore() *inMemoryStore {
	return &inMemoryStore{data: make(map[string]string)}
}

func (s *inMemoryStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data[key], nil
}

func (s *inMemoryStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.data[key]; exists {
		return false, nil
	}
	s.data[key] = fmt.Sprintf("%v", value)
	return true, nil
}

func (s *inMemoryStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("serenity:idempotency:%s:%s", scope, id)
}

func (s *inMemoryStore) Del(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.data, key)
	}
	return nil
}

func newChapaHandler(t *testing.T, svc ChapaWebhookService) http.HandlerFunc {
	t.Helper()

	guard, err := chapawebhook.NewIdempotencyGuard(newInMemoryStore(), time.Minute, "chapa-webhook")
	if err != nil {
		t.Fatalf("guard setup: %v", err)
	}
	return ChapaWebhook(svc, &fakeSecretClient{secret: "secret"}, guard, nil)
}

func TestChapaWebhook_SuccessAndIdempotent(t *testing.T) {
	payload := buildChapaEvent(t, "order_abc")
	signature := signPayload(payload, "secret")
	service := &fakeChapaWebhookService{}
	handler := newChapaHandler(t, service)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/callback", bytes.NewReader(payload))
	req.Header.Set("Chapa-Signature", signature)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if service.calls != 1 {
		t.Fatalf("expected service called once, got %d", service.calls)
	}
	if service.last == nil || service.last.TxRef != "order_abc" {
		t.Fatalf("unexpected event: %+v", service.last)
	}

	req2 := httptest.NewRequest(http.MethodPost, "/api/v1/payments/callback", bytes.NewReader(payload))
	req2.Header.Set("Chapa-Signature", signature)
	rec2 := httptest.NewRecorder()
	handler.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusOK {
		t.Fatalf("expected 200 on duplicate, got %d", rec2.Code)
	}
	if service.calls != 1 {
		t.Fatalf("duplicate delivery should not re-invoke the service, got %d", service.calls)
	}
}

func TestChapaWebhook_AcceptsAlternateHeader(t *testing.T) {
	payload := buildChapaEvent(t, "order_alt")
	signature := signPayload(payload, "secret")
	service := &fakeChapaWebhookService{}
	handler := newChapaHandler(t, service)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/callback", bytes.NewReader(payload))
	req.Header.Set("x-chapa-signature", signature)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if service.calls != 1 {
		t.Fatalf("expected service called once, got %d", service.calls)
	}
}

func TestChapaWebhook_MissingSignature(t *testing.T) {
	payload := buildChapaEvent(t, "order_abc")
	service := &fakeChapaWebhookService{}
	handler := newChapaHandler(t, service)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/callback", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for missing signature, got %d", rec.Code)
	}
	if service.calls != 0 {
		t.Fatalf("service should not run without a signature")
	}
}

func TestChapaWebhook_InvalidSignature(t *testing.T) {
	payload := buildChapaEvent(t, "order_abc")
	service := &fakeChapaWebhookService{}
	handler := newChapaHandler(t, service)

	tampered := signPayload(payload, "secret")
	// flip one hex digit
	if tampered[0] == 'a' {
		tampered = "b" + tampered[1:]
	} else {
		tampered = "a" + tampered[1:]
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/callback", bytes.NewReader(payload))
	req.Header.Set("Chapa-Signature", tampered)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for invalid signature, got %d", rec.Code)
	}
	if service.calls != 0 {
		t.Fatalf("service should not run on invalid signature")
	}
}

func TestChapaWebhook_HandlerErrorAllowsRetry(t *testing.T) {
	payload := buildChapaEvent(t, "order_abc")
	signature := signPayload(payload, "secret")
	service := &fakeChapaWebhookService{err: errors.New("transient")}
	handler := newChapaHandler(t, service)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/callback", bytes.NewReader(payload))
	req.Header.Set("Chapa-Signature", signature)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code == http.StatusOK {
		t.Fatalf("expected error status, got 200")
	}

	service.err = nil
	req2 := httptest.NewRequest(http.MethodPost, "/api/v1/payments/callback", bytes.NewReader(payload))
	req2.Header.Set("Chapa-Signature", signature)
	rec2 := httptest.NewRecorder()
	handler.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusOK {
		t.Fatalf("retry after failure should succeed, got %d", rec2.Code)
	}
	if service.calls != 2 {
		t.Fatalf("expected two handler invocations, got %d", service.calls)
	}
}
