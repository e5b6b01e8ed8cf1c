// Package session ties the moment cache, the mutation coordinator and the
// streak tracker to one signed-in user.
package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/daybook/internal/calendar"
	"github.com/dmitrijs2005/daybook/internal/client/cache"
	"github.com/dmitrijs2005/daybook/internal/client/client"
	"github.com/dmitrijs2005/daybook/internal/client/keyqueue"
	"github.com/dmitrijs2005/daybook/internal/client/mutation"
	"github.com/dmitrijs2005/daybook/internal/client/streaks"
	"github.com/dmitrijs2005/daybook/internal/logging"
	"github.com/dmitrijs2005/daybook/internal/models"
)

var ErrNoSession = errors.New("no active session")

type Config struct {
	PageSize         int
	StreakRetryLimit int
	RemoteTimeout    time.Duration
}

// Session is the UI-facing view of one user. After Close, reads return
// empty values and writes fail with cache.ErrClosed.
type Session struct {
	userID  string
	cache   *cache.Manager
	coord   *mutation.Coordinator
	tracker *streaks.Tracker
	closed  atomic.Bool
}

func newSession(userID string, store client.Store, q *keyqueue.Executor, clock calendar.Clock, log logging.Logger, cfg Config) *Session {
	s := &Session{userID: userID}
	s.cache = cache.New(userID, store, q, cfg.PageSize, log)
	var opts []streaks.Option
	if cfg.StreakRetryLimit > 0 {
		opts = append(opts, streaks.WithRetryLimit(cfg.StreakRetryLimit))
	}
	s.tracker = streaks.New(userID, store, clock, log, opts...)
	s.coord = mutation.New(userID, s.cache, store, clock, log,
		mutation.WithRemoteTimeout(cfg.RemoteTimeout),
		mutation.WithCreatedTodayHook(s.tracker.TriggerRefresh),
	)
	return s
}

func (s *Session) UserID() string { return s.userID }

func (s *Session) Moments() []models.Moment { return s.cache.Flatten() }

func (s *Session) IsLoading() bool     { return s.cache.IsLoading() }
func (s *Session) IsLoadingMore() bool { return s.cache.IsLoadingMore() }
func (s *Session) HasNextPage() bool   { return s.cache.HasNextPage() }

func (s *Session) LoadMore(ctx context.Context) error {
	return s.cache.LoadNextPage(ctx)
}

// Refresh reloads the list from page one.
func (s *Session) Refresh(ctx context.Context) error {
	return s.cache.Reload(ctx)
}

func (s *Session) CreateMoment(ctx context.Context, in models.MomentInput) (*models.Moment, error) {
	if s.closed.Load() {
		return nil, cache.ErrClosed
	}
	return s.coord.Create(ctx, in)
}

func (s *Session) DeleteMoment(ctx context.Context, id string) error {
	if s.closed.Load() {
		return cache.ErrClosed
	}
	return s.coord.Delete(ctx, id)
}

func (s *Session) ToggleFeatured(ctx context.Context, id string, featured bool) (*models.Moment, error) {
	if s.closed.Load() {
		return nil, cache.ErrClosed
	}
	return s.coord.Toggle(ctx, id, featured)
}

// PendingMutations counts edits shown locally but not yet confirmed.
func (s *Session) PendingMutations() int { return s.coord.Pending() }

func (s *Session) Streak() streaks.Status {
	if s.closed.Load() {
		return streaks.Status{}
	}
	return s.tracker.Status()
}

// RefreshStreak recomputes the streak and waits for the result.
func (s *Session) RefreshStreak(ctx context.Context) error {
	if s.closed.Load() {
		return cache.ErrClosed
	}
	return s.tracker.Refresh(ctx)
}

func (s *Session) Rewards() <-chan models.StreakReward { return s.tracker.Rewards() }

func (s *Session) Close() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}
	s.cache.Close()
	s.tracker.Close()
}

// Manager owns the executor shared by every session and the current one.
type Manager struct {
	store client.Store
	queue *keyqueue.Executor
	clock calendar.Clock
	log   logging.Logger
	cfg   Config

	mu      sync.Mutex
	current *Session
}

func NewManager(store client.Store, queue *keyqueue.Executor, clock calendar.Clock, log logging.Logger, cfg Config) *Manager {
	if log == nil {
		log = logging.Nop{}
	}
	return &Manager{store: store, queue: queue, clock: clock, log: log.With("module", "session"), cfg: cfg}
}

// SwitchUser closes the current session, discarding its cache and streak,
// and opens one for userID. The first page and the stored streak are
// loaded before it returns; a full streak refresh continues in the
// background.
func (m *Manager) SwitchUser(ctx context.Context, userID string) (*Session, error) {
	m.mu.Lock()
	if m.current != nil {
		m.current.Close()
		m.current = nil
	}
	s := newSession(userID, m.store, m.queue, m.clock, m.log, m.cfg)
	m.current = s
	m.mu.Unlock()

	m.log.Info(ctx, "session started", "user_id", userID)
	if err := s.tracker.Load(ctx); err != nil {
		m.log.Warn(ctx, "streak load failed", "user_id", userID, "error", err)
	}
	s.tracker.TriggerRefresh()
	if err := s.LoadMore(ctx); err != nil {
		return s, err
	}
	return s, nil
}

func (m *Manager) Current() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil, ErrNoSession
	}
	return m.current, nil
}

// Logout closes the current session, if any.
func (m *Manager) Logout() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != nil {
		m.current.Close()
		m.current = nil
	}
}

func (m *Manager) Close() {
	m.Logout()
}
