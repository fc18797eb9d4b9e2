package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/irtassedat/qrmenu-gateway/internal/backend"
)

// Manager is the single source of truth for who is logged in and until
// when. It owns the side effects of establishing or tearing down that
// state, plus the background sweep that destroys expired sessions and
// keeps user info warm on sessions close to expiry.
type Manager struct {
	store     Store
	api       *backend.Client
	log       zerolog.Logger
	interval  time.Duration
	threshold time.Duration
	now       func() time.Time

	cron *cron.Cron

	mu         sync.Mutex
	refreshing map[string]bool
}

// Options tune the sweep. Zero values fall back to the defaults the
// original ships with: a 60-second sweep refreshing sessions with less
// than 15 minutes left. Now is injectable for tests.
type Options struct {
	RefreshInterval  time.Duration
	RefreshThreshold time.Duration
	Now              func() time.Time
}

func NewManager(store Store, api *backend.Client, logger zerolog.Logger, opts Options) *Manager {
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = time.Minute
	}
	if opts.RefreshThreshold <= 0 {
		opts.RefreshThreshold = 15 * time.Minute
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Manager{
		store:      store,
		api:        api,
		log:        logger.With().Str("component", "session").Logger(),
		interval:   opts.RefreshInterval,
		threshold:  opts.RefreshThreshold,
		now:        opts.Now,
		refreshing: make(map[string]bool),
	}
}

// Init clears stale sessions out of the store. Runs before the server
// starts accepting traffic, so a session that expired while the gateway
// was down is gone before any protected route can see it.
func (m *Manager) Init(ctx context.Context) error {
	sessions, err := m.store.All(ctx)
	if err != nil {
		return fmt.Errorf("couldn't read session store: %w", err)
	}

	now := m.now()
	for _, sess := range sessions {
		if sess.Expired(now) {
			m.log.Info().Str("session_id", sess.ID).Str("username", sess.User.Username).Msg("clearing stale session")
			if err := m.store.Delete(ctx, sess.ID); err != nil {
				return fmt.Errorf("couldn't clear stale session %s: %w", sess.ID, err)
			}
		}
	}

	return nil
}

// Login authenticates against the backend and creates a session. The
// backend's expiresIn duration is converted to an absolute expiry at this
// point; nothing later ever extends it.
func (m *Manager) Login(ctx context.Context, username, password string) (*Session, error) {
	result, err := m.api.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}

	seconds, err := backend.ParseExpiresIn(result.ExpiresIn)
	if err != nil {
		return nil, fmt.Errorf("backend sent an unusable expiry: %w", err)
	}

	sess := &Session{
		ID:        uuid.NewString(),
		Token:     result.Token,
		User:      result.User,
		ExpiresAt: m.now().Unix() + seconds,
	}

	if err := m.store.Put(ctx, sess); err != nil {
		return nil, fmt.Errorf("couldn't persist session: %w", err)
	}

	m.log.Info().Str("username", sess.User.Username).Str("role", string(sess.User.Role)).Msg("user logged in")

	return sess, nil
}

// Get returns the session for id, treating an expired session as absent.
// Expiry detection here deletes the stored record, so the next lookup is a
// plain miss.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	sess, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if sess.Expired(m.now()) {
		m.Logout(ctx, id)
		return nil, ErrNotFound
	}

	return sess, nil
}

// Logout destroys the session. Idempotent: logging out a session that is
// already gone is fine and quiet.
func (m *Manager) Logout(ctx context.Context, id string) {
	if err := m.store.Delete(ctx, id); err != nil && !errors.Is(err, ErrNotFound) {
		m.log.Error().Err(err).Str("session_id", id).Msg("failed to delete session")
	}

	m.mu.Lock()
	delete(m.refreshing, id)
	m.mu.Unlock()
}

// RefreshUserInfo re-fetches the user's profile and stores it. This keeps
// cached user fields warm; it does not touch the expiry. A 401 means the
// token is dead server-side, so the session is torn down. Any other
// failure is logged and returned with no session side effects.
func (m *Manager) RefreshUserInfo(ctx context.Context, id string) error {
	sess, err := m.store.Get(ctx, id)
	if err != nil {
		return err
	}

	user, err := m.api.Me(ctx, sess.Token)
	if err != nil {
		if backend.IsUnauthorized(err) {
			m.log.Info().Str("username", sess.User.Username).Msg("session rejected by backend, logging out")
			m.Logout(ctx, id)
			return err
		}

		m.log.Warn().Err(err).Str("username", sess.User.Username).Msg("failed to refresh user info")
		return err
	}

	sess.User = *user
	if err := m.store.Put(ctx, sess); err != nil {
		return fmt.Errorf("couldn't persist refreshed session: %w", err)
	}

	return nil
}

// ChangePassword passes through to the backend. Session state is never
// mutated here, success or fail.
func (m *Manager) ChangePassword(ctx context.Context, id, currentPassword, newPassword string) error {
	sess, err := m.store.Get(ctx, id)
	if err != nil {
		return err
	}

	return m.api.ChangePassword(ctx, sess.Token, currentPassword, newPassword)
}

// StartSweep arms the recurring expiry check. Call Stop to tear it down;
// leaking the job past the manager's lifetime was a gap in the original.
func (m *Manager) StartSweep() error {
	if m.cron != nil {
		return nil
	}

	m.cron = cron.New()
	_, err := m.cron.AddFunc(fmt.Sprintf("@every %ds", int(m.interval.Seconds())), func() {
		m.Sweep(context.Background())
	})
	if err != nil {
		m.cron = nil
		return fmt.Errorf("couldn't schedule session sweep: %w", err)
	}

	m.cron.Start()
	m.log.Info().Dur("interval", m.interval).Dur("threshold", m.threshold).Msg("session sweep started")

	return nil
}

// Stop halts the sweep and waits for an in-progress tick to finish.
func (m *Manager) Stop() {
	if m.cron == nil {
		return
	}

	ctx := m.cron.Stop()
	<-ctx.Done()
	m.cron = nil
	m.log.Info().Msg("session sweep stopped")
}

// Sweep is one tick of the expiry check: dead sessions are destroyed, and
// sessions under the refresh threshold get their user info re-fetched. A
// per-session in-flight flag stops refreshes stacking up when the backend
// is slower than the sweep interval.
func (m *Manager) Sweep(ctx context.Context) {
	sessions, err := m.store.All(ctx)
	if err != nil {
		m.log.Error().Err(err).Msg("sweep couldn't read session store")
		return
	}

	now := m.now()
	for _, sess := range sessions {
		if sess.Expired(now) {
			m.log.Info().Str("username", sess.User.Username).Msg("session expired")
			m.Logout(ctx, sess.ID)
			continue
		}

		if sess.Remaining(now) >= m.threshold {
			continue
		}

		if !m.beginRefresh(sess.ID) {
			continue
		}

		// Errors are already logged (and 401s acted on) inside
		// RefreshUserInfo; the sweep has nobody to re-throw to.
		_ = m.RefreshUserInfo(ctx, sess.ID)
		m.endRefresh(sess.ID)
	}
}

func (m *Manager) beginRefresh(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.refreshing[id] {
		return false
	}

	m.refreshing[id] = true
	return true
}

func (m *Manager) endRefresh(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.refreshing, id)
}
