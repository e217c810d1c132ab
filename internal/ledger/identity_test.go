package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestResolveUser(t *testing.T) {
	env := newTestEnv(t, Options{})
	ctx := context.Background()

	first, err := env.identity.ResolveUser(ctx, "phone-1", "Alice")
	if err != nil {
		t.Fatalf("ResolveUser failed: %v", err)
	}
	if first.ID == "" {
		t.Fatal("expected user ID to be generated")
	}
	if first.CurrentGroupID != "" {
		t.Errorf("new user should have no group, got %s", first.CurrentGroupID)
	}
	if first.DeviceHash == "phone-1" || first.DeviceHash != HashDevice("phone-1") {
		t.Errorf("device identifier should be stored hashed, got %s", first.DeviceHash)
	}

	t.Run("same device resolves to same user", func(t *testing.T) {
		again, err := env.identity.ResolveUser(ctx, "phone-1", "Alice")
		if err != nil {
			t.Fatalf("ResolveUser failed: %v", err)
		}
		if again.ID != first.ID {
			t.Errorf("ID changed: got %s, want %s", again.ID, first.ID)
		}
	})

	t.Run("new display name replaces the stored one", func(t *testing.T) {
		renamed, err := env.identity.ResolveUser(ctx, "phone-1", "Ali")
		if err != nil {
			t.Fatalf("ResolveUser failed: %v", err)
		}
		if renamed.DisplayName != "Ali" {
			t.Errorf("DisplayName: got %s, want Ali", renamed.DisplayName)
		}
		stored, _ := env.store.GetUser(ctx, first.ID)
		if stored.DisplayName != "Ali" {
			t.Errorf("stored DisplayName: got %s, want Ali", stored.DisplayName)
		}
	})

	t.Run("empty display name keeps the stored one", func(t *testing.T) {
		got, err := env.identity.ResolveUser(ctx, "phone-1", "  ")
		if err != nil {
			t.Fatalf("ResolveUser failed: %v", err)
		}
		if got.DisplayName != "Ali" {
			t.Errorf("DisplayName: got %s, want Ali", got.DisplayName)
		}
	})

	t.Run("missing device id", func(t *testing.T) {
		_, err := env.identity.ResolveUser(ctx, "", "Bob")
		if !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestResolveUserConcurrentFirstSight(t *testing.T) {
	env := newTestEnv(t, Options{})

	const callers = 8
	ids := make([]string, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u, err := env.identity.ResolveUser(context.Background(), "shared-device", "Sam")
			if err != nil {
				t.Errorf("ResolveUser failed: %v", err)
				return
			}
			ids[i] = u.ID
		}(i)
	}
	wg.Wait()

	for i, id := range ids {
		if id != ids[0] {
			t.Errorf("caller %d got user %s, want %s", i, id, ids[0])
		}
	}
}

func TestResolveUserTimesOut(t *testing.T) {
	identity := NewIdentity(blockingStore{}, Options{StoreTimeout: 20 * time.Millisecond})

	start := time.Now()
	_, err := identity.ResolveUser(context.Background(), "phone", "Slow")
	if !errors.Is(err, ErrStorageUnavailable) {
		t.Errorf("expected ErrStorageUnavailable, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("expected to fail fast, took %v", elapsed)
	}
}

func TestHashDevice(t *testing.T) {
	if HashDevice("a") == HashDevice("b") {
		t.Error("different devices should hash differently")
	}
	if HashDevice("a") != HashDevice("a") {
		t.Error("hashing should be deterministic")
	}
	if len(HashDevice("a")) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(HashDevice("a")))
	}
}
