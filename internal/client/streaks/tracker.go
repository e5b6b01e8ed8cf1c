// Package streaks keeps the signed-in user's streak current and mints the
// rewards it earns.
package streaks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dmitrijs2005/daybook/internal/calendar"
	"github.com/dmitrijs2005/daybook/internal/common"
	"github.com/dmitrijs2005/daybook/internal/logging"
	"github.com/dmitrijs2005/daybook/internal/models"
	"github.com/dmitrijs2005/daybook/internal/rewards"
	"github.com/dmitrijs2005/daybook/internal/streak"
)

// Store is the part of the record store the tracker reads and writes.
type Store interface {
	rewards.Store
	GetMomentDates(ctx context.Context, userID string) ([]calendar.Date, error)
	GetUserStreak(ctx context.Context, userID string) (*models.UserStreak, error)
	UpsertUserStreak(ctx context.Context, userID string, row models.UserStreak) (*models.UserStreak, error)
}

// Status is what the UI shows. Known is false until a refresh succeeds and
// again after one fails; the numbers then stay at their last known values.
type Status struct {
	CurrentStreak    int
	LongestStreak    int
	IsAtRisk         bool
	Known            bool
	LastActivityDate *calendar.Date
}

const (
	DefaultRetryLimit  = 5
	rewardsBufferSize  = 16
	refreshTimeout     = time.Minute
	defaultInitialWait = 200 * time.Millisecond
	defaultMaxWait     = 5 * time.Second
)

type Tracker struct {
	userID     string
	store      Store
	clock      calendar.Clock
	granter    *rewards.Granter
	thresholds []rewards.Threshold
	log        logging.Logger

	retryLimit  uint64
	initialWait time.Duration
	maxWait     time.Duration

	mu     sync.Mutex
	status Status

	rewards chan models.StreakReward
	trigger chan struct{}

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
}

type Option func(*Tracker)

func WithRetryLimit(n int) Option {
	return func(t *Tracker) {
		if n >= 0 {
			t.retryLimit = uint64(n)
		}
	}
}

// WithBackoff sets the first and the largest wait between retries.
func WithBackoff(initial, maxWait time.Duration) Option {
	return func(t *Tracker) {
		t.initialWait, t.maxWait = initial, maxWait
	}
}

func WithThresholds(th []rewards.Threshold) Option {
	return func(t *Tracker) { t.thresholds = th }
}

// New starts a tracker for userID. Close stops it.
func New(userID string, store Store, clock calendar.Clock, log logging.Logger, opts ...Option) *Tracker {
	if log == nil {
		log = logging.Nop{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	t := &Tracker{
		userID:      userID,
		store:       store,
		clock:       clock,
		thresholds:  rewards.DefaultThresholds,
		log:         log.With("module", "streaks", "user_id", userID),
		retryLimit:  DefaultRetryLimit,
		initialWait: defaultInitialWait,
		maxWait:     defaultMaxWait,
		rewards:     make(chan models.StreakReward, rewardsBufferSize),
		trigger:     make(chan struct{}, 1),
		ctx:         ctx,
		cancel:      cancel,
	}
	for _, o := range opts {
		o(t)
	}
	t.granter = rewards.NewGranter(store, log)

	t.wg.Add(1)
	go t.loop()
	return t
}

func (t *Tracker) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.status
	if s.LastActivityDate != nil {
		d := *s.LastActivityDate
		s.LastActivityDate = &d
	}
	return s
}

// Rewards delivers rewards created by this tracker. Rewards that arrive
// while the buffer is full are dropped from the channel; they are still
// stored.
func (t *Tracker) Rewards() <-chan models.StreakReward { return t.rewards }

// Load shows the stored row without recomputing it.
func (t *Tracker) Load(ctx context.Context) error {
	row, err := t.store.GetUserStreak(ctx, t.userID)
	if err != nil {
		return fmt.Errorf("load streak: %w", err)
	}
	if row != nil {
		t.publish(*row)
	}
	return nil
}

// TriggerRefresh asks for a refresh without waiting. Triggers that arrive
// while one is pending are merged into it.
func (t *Tracker) TriggerRefresh() {
	select {
	case t.trigger <- struct{}{}:
	default:
	}
}

func (t *Tracker) loop() {
	defer t.wg.Done()
	for {
		select {
		case <-t.ctx.Done():
			return
		case <-t.trigger:
			ctx, cancel := context.WithTimeout(t.ctx, refreshTimeout)
			if err := t.Refresh(ctx); err != nil && t.ctx.Err() == nil {
				t.log.Warn(ctx, "streak refresh failed", "error", err)
			}
			cancel()
		}
	}
}

// Refresh recomputes the streak from the moment history, stores it and
// grants any milestone it crossed. Transient failures are retried with
// exponential backoff.
func (t *Tracker) Refresh(ctx context.Context) error {
	var (
		saved  *models.UserStreak
		grants []rewards.Grant
		// prev is read once: after an upsert whose reply was lost, a
		// re-read would return our own write and hide the crossed milestone
		prev     *models.UserStreak
		havePrev bool
	)
	err := t.retry(ctx, func() error {
		if !havePrev {
			row, err := t.store.GetUserStreak(ctx, t.userID)
			if err != nil {
				return fmt.Errorf("stored streak: %w", err)
			}
			prev, havePrev = row, true
		}
		var err error
		saved, grants, err = t.recompute(ctx, prev)
		return err
	})
	if err != nil {
		t.markUnknown()
		return err
	}
	t.publish(*saved)

	if len(grants) == 0 {
		return nil
	}
	return t.retry(ctx, func() error {
		outcomes, err := t.granter.Grant(ctx, t.userID, grants)
		for _, o := range outcomes {
			if o.Created {
				t.notify(o.Reward)
			}
		}
		// grants that already exist are skipped on the next attempt
		return err
	})
}

func (t *Tracker) recompute(ctx context.Context, prev *models.UserStreak) (*models.UserStreak, []rewards.Grant, error) {
	dates, err := t.store.GetMomentDates(ctx, t.userID)
	if err != nil {
		return nil, nil, fmt.Errorf("moment dates: %w", err)
	}

	next := streak.Reconcile(prev, streak.Compute(dates, t.clock.Today()))
	saved, err := t.store.UpsertUserStreak(ctx, t.userID, next)
	if err != nil {
		return nil, nil, fmt.Errorf("save streak: %w", err)
	}

	previous := 0
	if prev != nil {
		previous = prev.CurrentStreak
	}
	return saved, rewards.Evaluate(previous, saved.CurrentStreak, t.thresholds), nil
}

func (t *Tracker) retry(ctx context.Context, op func() error) error {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = t.initialWait
	exp.MaxInterval = t.maxWait
	exp.MaxElapsedTime = 0
	exp.Reset()

	b := backoff.WithContext(backoff.WithMaxRetries(exp, t.retryLimit), ctx)
	return backoff.Retry(func() error {
		err := op()
		if err != nil && permanent(err) {
			return backoff.Permanent(err)
		}
		return err
	}, b)
}

func permanent(err error) bool {
	return errors.Is(err, common.ErrorUnauthorized) ||
		errors.Is(err, common.ErrTokenExpired) ||
		errors.Is(err, common.ErrValidation) ||
		errors.Is(err, context.Canceled)
}

func (t *Tracker) publish(row models.UserStreak) {
	today := t.clock.Today()
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = Status{
		CurrentStreak:    row.CurrentStreak,
		LongestStreak:    row.LongestStreak,
		IsAtRisk:         row.IsAtRisk(today),
		Known:            true,
		LastActivityDate: row.LastActivityDate,
	}
}

func (t *Tracker) markUnknown() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status.Known = false
}

func (t *Tracker) notify(r models.StreakReward) {
	select {
	case t.rewards <- r:
	default:
		t.log.Warn(t.ctx, "reward notification dropped", "type", r.RewardType, "days", r.StreakDays)
	}
}

// Close stops background refreshes and waits for a running one to end.
func (t *Tracker) Close() {
	t.closeOnce.Do(func() {
		t.cancel()
		t.wg.Wait()
	})
}
