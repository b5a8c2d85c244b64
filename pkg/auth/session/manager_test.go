package session

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
)

type memoryStore struct {
	values map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: map[string]string{}}
}

func (s *memoryStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	s.values[key] = value.(string)
	return nil
}

func (s *memoryStore) Get(_ context.Context, key string) (string, error) {
	v, ok := s.values[key]
	if !ok {
		return "", redislib.Nil
	}
	return v, nil
}

func (s *memoryStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(s.values, k)
	}
	return nil
}

type prefixKeyer struct{}

func (prefixKeyer) SessionKey(accessID string) string { return "latspos:session:" + accessID }

func newTestManager() (*Manager, *memoryStore) {
	store := newMemoryStore()
	return &Manager{store: store, keyer: prefixKeyer{}, ttl: time.Hour}, store
}

func TestOpenHasRevokeLifecycle(t *testing.T) {
	t.Parallel()

	mgr, _ := newTestManager()
	ctx := context.Background()
	accessID := NewAccessID()

	if err := mgr.Open(ctx, accessID, uuid.New()); err != nil {
		t.Fatalf("open: %v", err)
	}

	ok, err := mgr.HasSession(ctx, accessID)
	if err != nil {
		t.Fatalf("has session: %v", err)
	}
	if !ok {
		t.Fatalf("expected live session")
	}

	if err := mgr.Revoke(ctx, accessID); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	ok, err = mgr.HasSession(ctx, accessID)
	if err != nil {
		t.Fatalf("has session after revoke: %v", err)
	}
	if ok {
		t.Fatalf("expected revoked session")
	}
}

func TestHasSessionEmptyAccessID(t *testing.T) {
	t.Parallel()

	mgr, _ := newTestManager()
	ok, err := mgr.HasSession(context.Background(), "  ")
	if err != nil {
		t.Fatalf("has session: %v", err)
	}
	if ok {
		t.Fatalf("expected no session for blank id")
	}
}

func TestOpenValidatesInput(t *testing.T) {
	t.Parallel()

	mgr, _ := newTestManager()
	if err := mgr.Open(context.Background(), "", uuid.New()); err == nil {
		t.Fatalf("expected error for blank access id")
	}
	if err := mgr.Open(context.Background(), NewAccessID(), uuid.Nil); err == nil {
		t.Fatalf("expected error for nil operator id")
	}
}
