package proxy

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestRedisSessionStoreRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisSessionStore(client, time.Minute)
	ctx := context.Background()

	sess := Session{
		Slip:    "102.1748736000000X8-guests.2",
		ItemID:  "102",
		Guests:  2,
		Total:   "110.00",
		Summary: "Urban Combat — Pro",
	}
	if err := store.Put(ctx, "sess_abc", sess); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := store.Get(ctx, "sess_abc")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if *got != sess {
		t.Errorf("got %+v, want %+v", got, sess)
	}
}

func TestRedisSessionStoreMissingKey(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisSessionStore(client, time.Minute)

	got, ok, err := store.Get(context.Background(), "sess_nope")
	if err != nil {
		t.Fatalf("missing key is not an error: %v", err)
	}
	if ok || got != nil {
		t.Errorf("got %+v ok=%v, want miss", got, ok)
	}
}

func TestRedisSessionStoreTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisSessionStore(client, time.Minute)
	ctx := context.Background()

	if err := store.Put(ctx, "sess_abc", Session{Total: "35.00"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	_, ok, err := store.Get(ctx, "sess_abc")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Error("session should have expired")
	}
}

func TestMemorySessionStoreExpiry(t *testing.T) {
	store := NewMemorySessionStore(time.Minute)
	current := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }
	ctx := context.Background()

	if err := store.Put(ctx, "sess_abc", Session{Total: "35.00"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := store.Get(ctx, "sess_abc")
	if err != nil || !ok || got.Total != "35.00" {
		t.Fatalf("Get before expiry: got=%+v ok=%v err=%v", got, ok, err)
	}

	current = current.Add(2 * time.Minute)
	_, ok, err = store.Get(ctx, "sess_abc")
	if err != nil {
		t.Fatalf("Get after expiry: %v", err)
	}
	if ok {
		t.Error("entry should have expired")
	}
}

func TestMemorySessionStoreMiss(t *testing.T) {
	store := NewMemorySessionStore(time.Minute)
	got, ok, err := store.Get(context.Background(), "nope")
	if err != nil || ok || got != nil {
		t.Errorf("got=%+v ok=%v err=%v, want clean miss", got, ok, err)
	}
}
