package ledger

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mmynk/splitvote/internal/models"
	"github.com/mmynk/splitvote/internal/notify"
	"github.com/mmynk/splitvote/internal/storage"
	"github.com/mmynk/splitvote/internal/storage/sqlite"
)

// recorder is a Publisher that keeps every event it receives.
type recorder struct {
	mu     sync.Mutex
	events []recorded
}

type recorded struct {
	room string
	evt  notify.Event
}

func (r *recorder) Publish(room string, evt notify.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recorded{room: room, evt: evt})
	return nil
}

func (r *recorder) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, len(r.events))
	for i, e := range r.events {
		names[i] = e.evt.Name
	}
	return names
}

func (r *recorder) count(name string) int {
	n := 0
	for _, got := range r.names() {
		if got == name {
			n++
		}
	}
	return n
}

func (r *recorder) last() recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

func (r *recorder) reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}

type failingPublisher struct{}

func (failingPublisher) Publish(string, notify.Event) error {
	return errors.New("channel closed")
}

type panickingPublisher struct{}

func (panickingPublisher) Publish(string, notify.Event) error {
	panic("transport exploded")
}

type testEnv struct {
	store    *sqlite.SQLiteStore
	identity *Identity
	registry *Registry
	ledger   *Ledger
	events   *recorder
}

func newTestStore(t *testing.T) *sqlite.SQLiteStore {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "splitvote-ledger-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	var mu sync.Mutex
	clock := time.Unix(1700000000, 0)
	tick := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		clock = clock.Add(time.Second)
		return clock
	}

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"), sqlite.WithClock(tick))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func newTestEnv(t *testing.T, opts Options) *testEnv {
	t.Helper()

	store := newTestStore(t)
	events := &recorder{}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	}

	return &testEnv{
		store:    store,
		identity: NewIdentity(store, opts),
		registry: NewRegistry(store, events, opts),
		ledger:   NewLedger(store, events, opts),
		events:   events,
	}
}

func (e *testEnv) user(t *testing.T, name string) *models.User {
	t.Helper()
	u, err := e.identity.ResolveUser(context.Background(), "device-"+name, name)
	if err != nil {
		t.Fatalf("ResolveUser(%s) failed: %v", name, err)
	}
	return u
}

func (e *testEnv) group(t *testing.T, name string, owner *models.User) *models.Group {
	t.Helper()
	g, err := e.registry.CreateGroup(context.Background(), name, owner.ID)
	if err != nil {
		t.Fatalf("CreateGroup(%s) failed: %v", name, err)
	}
	return g
}

// join runs the full request/approve flow for user.
func (e *testEnv) join(t *testing.T, group *models.Group, user *models.User) {
	t.Helper()
	ctx := context.Background()
	if _, err := e.registry.RequestJoin(ctx, group.JoinCode, user.ID); err != nil {
		t.Fatalf("RequestJoin failed: %v", err)
	}
	if _, err := e.registry.ApproveJoin(ctx, group.CreatorID, group.ID, user.ID); err != nil {
		t.Fatalf("ApproveJoin failed: %v", err)
	}
}

func (e *testEnv) expense(t *testing.T, group *models.Group, submitter *models.User, amount float64) *models.Expense {
	t.Helper()
	exp, err := e.ledger.SubmitExpense(context.Background(), group.ID, submitter.ID, "Dinner", amount)
	if err != nil {
		t.Fatalf("SubmitExpense failed: %v", err)
	}
	return exp
}

func (e *testEnv) approve(t *testing.T, exp *models.Expense, user *models.User) *models.Expense {
	t.Helper()
	got, err := e.ledger.CastApproval(context.Background(), exp.ID, user.ID)
	if err != nil {
		t.Fatalf("CastApproval failed: %v", err)
	}
	return got
}

// blockingStore answers every user lookup only when the context expires.
type blockingStore struct {
	storage.Store
}

func (blockingStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (blockingStore) GetUserByDevice(ctx context.Context, hash string) (*models.User, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (blockingStore) GetExpense(ctx context.Context, id string) (*models.Expense, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

// flakyMarkStore fails the first MarkApproved call after the approval has
// already been recorded.
type flakyMarkStore struct {
	*sqlite.SQLiteStore
	mu       sync.Mutex
	failures int
}

func (s *flakyMarkStore) MarkApproved(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	fail := s.failures > 0
	if fail {
		s.failures--
	}
	s.mu.Unlock()
	if fail {
		return false, errors.New("database is locked")
	}
	return s.SQLiteStore.MarkApproved(ctx, id)
}
