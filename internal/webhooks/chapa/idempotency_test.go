package chapawebhook

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	data map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string]string)}
}

func (f *fakeStore) Get(ctx context.Context, key string) (string, error) {
	return f.data[key], nil
}

func (f *fakeStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if _, exists := f.data[key]; exists {
		return false, nil
	}
	f.data[key] = "1"
	return true, nil
}

func (f *fakeStore) IdempotencyKey(scope, id string) string {
	return "serenity:idempotency:" + scope + ":" + id
}

func (f *fakeStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

func TestCheckAndMark(t *testing.T) {
	guard, err := NewIdempotencyGuard(newFakeStore(), time.Hour, "chapa")
	require.NoError(t, err)

	seen, err := guard.CheckAndMark(context.Background(), "delivery-1")
	require.NoError(t, err)
	assert.False(t, seen)

	seen, err = guard.CheckAndMark(context.Background(), "delivery-1")
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestDeleteAllowsRetry(t *testing.T) {
	guard, err := NewIdempotencyGuard(newFakeStore(), time.Hour, "chapa")
	require.NoError(t, err)

	_, err = guard.CheckAndMark(context.Background(), "delivery-1")
	require.NoError(t, err)
	require.NoError(t, guard.Delete(context.Background(), "delivery-1"))

	seen, err := guard.CheckAndMark(context.Background(), "delivery-1")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestGuardValidation(t *testing.T) {
	_, err := NewIdempotencyGuard(nil, time.Hour, "chapa")
	require.Error(t, err)

	_, err = NewIdempotencyGuard(newFakeStore(), -time.Second, "chapa")
	require.Error(t, err)

	_, err = NewIdempotencyGuard(newFakeStore(), time.Hour, "")
	require.Error(t, err)

	guard, err := NewIdempotencyGuard(newFakeStore(), time.Hour, "chapa")
	require.NoError(t, err)
	_, err = guard.CheckAndMark(context.Background(), "")
	require.Error(t, err)
}
