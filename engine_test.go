package goAccounts

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, client
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Token.ActivationSecret = []byte("test-activation-secret")
	cfg.Token.AccessSecret = []byte("test-access-secret")
	cfg.Token.RefreshSecret = []byte("test-refresh-secret")
	// Low argon2 cost keeps the suite fast while staying above the
	// hasher's floor.
	cfg.Password.Memory = 8192
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1
	return cfg
}

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFixedClock() *fixedClock {
	return &fixedClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type mockAccountStore struct {
	mu      sync.Mutex
	nextID  int
	byID    map[string]*Account
	byEmail map[string]string

	failFinds  bool
	failSaves  bool
	failCreate bool
}

func newMockAccountStore() *mockAccountStore {
	return &mockAccountStore{
		byID:    make(map[string]*Account),
		byEmail: make(map[string]string),
	}
}

var errStoreDown = errors.New("store down")

func (m *mockAccountStore) FindByEmail(_ context.Context, email string) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFinds {
		return nil, errStoreDown
	}
	id, ok := m.byEmail[email]
	if !ok {
		return nil, ErrAccountNotFound
	}
	account := *m.byID[id]
	return &account, nil
}

func (m *mockAccountStore) FindByID(_ context.Context, id string) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFinds {
		return nil, errStoreDown
	}
	stored, ok := m.byID[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	account := *stored
	return &account, nil
}

func (m *mockAccountStore) FindByResetTokenHash(_ context.Context, hash string) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFinds {
		return nil, errStoreDown
	}
	for _, stored := range m.byID {
		if stored.ResetTokenHash != "" && stored.ResetTokenHash == hash {
			account := *stored
			return &account, nil
		}
	}
	return nil, ErrAccountNotFound
}

func (m *mockAccountStore) Create(_ context.Context, input CreateAccountInput) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreate {
		return nil, errStoreDown
	}
	if _, exists := m.byEmail[input.Email]; exists {
		return nil, ErrAccountExists
	}
	m.nextID++
	account := &Account{
		ID:           "acct-" + strconv.Itoa(m.nextID),
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: input.PasswordHash,
		Avatar:       input.Avatar,
		Role:         input.Role,
		IsVerified:   input.IsVerified,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	m.byID[account.ID] = account
	m.byEmail[account.Email] = account.ID
	out := *account
	return &out, nil
}

func (m *mockAccountStore) Save(_ context.Context, account *Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSaves {
		return errStoreDown
	}
	old, ok := m.byID[account.ID]
	if !ok {
		return ErrAccountNotFound
	}
	if old.Email != account.Email {
		delete(m.byEmail, old.Email)
		m.byEmail[account.Email] = account.ID
	}
	saved := *account
	m.byID[account.ID] = &saved
	return nil
}

func (m *mockAccountStore) get(id string) *Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	account := *m.byID[id]
	return &account
}

type captureNotifier struct {
	mu   sync.Mutex
	sent []Mail
	fail bool
}

func (n *captureNotifier) Send(_ context.Context, mail Mail) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return errStoreDown
	}
	n.sent = append(n.sent, mail)
	return nil
}

func (n *captureNotifier) last(t *testing.T) Mail {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.sent) == 0 {
		t.Fatal("no mail sent")
	}
	return n.sent[len(n.sent)-1]
}

func (n *captureNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

type testHarness struct {
	engine   *Engine
	redis    *miniredis.Miniredis
	store    *mockAccountStore
	notifier *captureNotifier
	clock    *fixedClock
}

func newTestEngine(t *testing.T, cfg Config) *testHarness {
	t.Helper()

	mr, rdb := newTestRedis(t)
	store := newMockAccountStore()
	notifier := &captureNotifier{}
	clock := newFixedClock()

	engine, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithAccountStore(store).
		WithNotifier(notifier).
		WithClock(clock).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	return &testHarness{
		engine:   engine,
		redis:    mr,
		store:    store,
		notifier: notifier,
		clock:    clock,
	}
}

// registerAndActivate walks a user through the full onboarding and returns
// the activated account.
func (h *testHarness) registerAndActivate(t *testing.T, name, email, passwd string) *Account {
	t.Helper()

	activationToken, err := h.engine.Register(context.Background(), RegistrationRequest{
		Name:            name,
		Email:           email,
		Password:        passwd,
		ConfirmPassword: passwd,
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	code, ok := h.notifier.last(t).Data["activationCode"].(string)
	if !ok {
		t.Fatal("activation mail carries no code")
	}

	account, err := h.engine.Activate(context.Background(), activationToken, code)
	if err != nil {
		t.Fatalf("Activate failed: %v", err)
	}
	return account
}
