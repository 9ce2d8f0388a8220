package session

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/medsure/claims-client/users"
)

// Session is the persisted triple. A session is either fully populated or
// not persisted at all; partial writes are never a steady state.
type Session struct {
	AccessToken  string
	RefreshToken string
	User         *users.Profile
}

// Manager is the sole writer of the session keys. All mutations go through
// its mutex, and every Clear bumps a monotonically increasing epoch so that
// flows which started before a logout can detect it and discard their
// writes. Logout is therefore a terminating state: a refresh response that
// lands after logout began can never re-populate the store.
type Manager struct {
	store  Store
	logger zerolog.Logger

	mu    sync.Mutex
	epoch uint64
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the manager's logger.
func WithLogger(logger zerolog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a Manager over the given store.
func NewManager(store Store, options ...ManagerOption) (*Manager, error) {
	if store == nil {
		return nil, errors.New("[NewManager] store is required")
	}
	m := &Manager{
		store:  store,
		logger: zerolog.Nop(),
	}
	for _, opt := range options {
		opt(m)
	}
	return m, nil
}

// Epoch returns the current session epoch. Flows that will write the session
// after a suspension point capture it first and persist via the *IfEpoch
// variants.
func (m *Manager) Epoch() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.epoch
}

// Save persists a full session. All three fields are written together.
func (m *Manager) Save(ctx context.Context, sess Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.save(ctx, sess)
}

// SaveIfEpoch persists a full session only if the epoch still matches the
// one captured when the writing flow began. Returns ErrStaleEpoch otherwise.
func (m *Manager) SaveIfEpoch(ctx context.Context, sess Session, epoch uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.epoch != epoch {
		return ErrStaleEpoch
	}
	return m.save(ctx, sess)
}

// SaveTokens replaces the token pair, leaving the cached user in place. Used
// by refresh responses that do not echo the user; the session stays fully
// populated because the user entry is untouched.
func (m *Manager) SaveTokens(ctx context.Context, accessToken, refreshToken string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveTokens(ctx, accessToken, refreshToken)
}

// SaveTokensIfEpoch is the epoch-guarded variant of SaveTokens.
func (m *Manager) SaveTokensIfEpoch(ctx context.Context, accessToken, refreshToken string, epoch uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.epoch != epoch {
		return ErrStaleEpoch
	}
	return m.saveTokens(ctx, accessToken, refreshToken)
}

// Clear removes all three session keys and bumps the epoch. The epoch moves
// first so in-flight refreshes are invalidated even if a removal fails. All
// removals are attempted regardless of individual failures.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.epoch++

	var firstErr error
	for _, key := range []string{KeyAccessToken, KeyRefreshToken, KeyUserData} {
		if err := m.store.Remove(ctx, key); err != nil && firstErr == nil {
			firstErr = errors.Wrapf(err, "[Manager.Clear] remove %s", key)
		}
	}
	return firstErr
}

// Token reads the access token. ErrNotFound means cleanly absent.
func (m *Manager) Token(ctx context.Context) (string, error) {
	return m.store.Get(ctx, KeyAccessToken)
}

// RefreshToken reads the refresh token. ErrNotFound means cleanly absent.
func (m *Manager) RefreshToken(ctx context.Context) (string, error) {
	return m.store.Get(ctx, KeyRefreshToken)
}

// User reads the cached profile. A corrupted entry is reported as absent:
// it cannot be trusted, and treating it as a hard error would brick the
// bootstrap path on a bad write.
func (m *Manager) User(ctx context.Context) (*users.Profile, error) {
	raw, err := m.store.Get(ctx, KeyUserData)
	if err != nil {
		return nil, err
	}
	var profile users.Profile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		m.logger.Warn().Err(err).Msg("session: cached user data is corrupted, treating as absent")
		return nil, ErrNotFound
	}
	return &profile, nil
}

// Snapshot returns the persisted session when both the access token and the
// user are present, and nil otherwise. Storage I/O failures propagate.
func (m *Manager) Snapshot(ctx context.Context) (*Session, error) {
	token, err := m.Token(ctx)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	user, err := m.User(ctx)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	refreshToken, err := m.RefreshToken(ctx)
	if err != nil && !IsNotFound(err) {
		return nil, err
	}
	return &Session{AccessToken: token, RefreshToken: refreshToken, User: user}, nil
}

func (m *Manager) save(ctx context.Context, sess Session) error {
	if sess.AccessToken == "" || sess.RefreshToken == "" || sess.User == nil {
		return errors.New("[Manager.save] session must be fully populated")
	}
	userJSON, err := json.Marshal(sess.User)
	if err != nil {
		return errors.Wrap(err, "[Manager.save] marshal user")
	}
	if err := m.store.Set(ctx, KeyAccessToken, sess.AccessToken); err != nil {
		return errors.Wrap(err, "[Manager.save] set access token")
	}
	if err := m.store.Set(ctx, KeyRefreshToken, sess.RefreshToken); err != nil {
		return errors.Wrap(err, "[Manager.save] set refresh token")
	}
	if err := m.store.Set(ctx, KeyUserData, string(userJSON)); err != nil {
		return errors.Wrap(err, "[Manager.save] set user data")
	}
	return nil
}

func (m *Manager) saveTokens(ctx context.Context, accessToken, refreshToken string) error {
	if accessToken == "" || refreshToken == "" {
		return errors.New("[Manager.saveTokens] both tokens are required")
	}
	if err := m.store.Set(ctx, KeyAccessToken, accessToken); err != nil {
		return errors.Wrap(err, "[Manager.saveTokens] set access token")
	}
	if err := m.store.Set(ctx, KeyRefreshToken, refreshToken); err != nil {
		return errors.Wrap(err, "[Manager.saveTokens] set refresh token")
	}
	return nil
}
