package mutation

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/daybook/internal/calendar"
	"github.com/dmitrijs2005/daybook/internal/client/cache"
	"github.com/dmitrijs2005/daybook/internal/client/client"
	"github.com/dmitrijs2005/daybook/internal/common"
	"github.com/dmitrijs2005/daybook/internal/logging"
	"github.com/dmitrijs2005/daybook/internal/models"
)

const DefaultRemoteTimeout = 30 * time.Second

// Coordinator runs create, delete and toggle against one user's cache.
type Coordinator struct {
	userID        string
	cache         *cache.Manager
	store         client.Store
	clock         calendar.Clock
	log           logging.Logger
	remoteTimeout time.Duration
	now           func() time.Time

	// onCreatedToday fires, on its own goroutine, after a moment dated
	// today has been committed.
	onCreatedToday func()

	pending atomic.Int64
}

type Option func(*Coordinator)

func WithRemoteTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.remoteTimeout = d
		}
	}
}

func WithCreatedTodayHook(fn func()) Option {
	return func(c *Coordinator) { c.onCreatedToday = fn }
}

func New(userID string, cm *cache.Manager, store client.Store, clock calendar.Clock, log logging.Logger, opts ...Option) *Coordinator {
	if log == nil {
		log = logging.Nop{}
	}
	c := &Coordinator{
		userID:        userID,
		cache:         cm,
		store:         store,
		clock:         clock,
		log:           log.With("module", "mutation", "user_id", userID),
		remoteTimeout: DefaultRemoteTimeout,
		now:           time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Pending is the number of mutations applied locally and not yet resolved.
func (c *Coordinator) Pending() int { return int(c.pending.Load()) }

func (c *Coordinator) begin() {
	c.pending.Add(1)
	pendingGauge.Inc()
}

func (c *Coordinator) end() {
	c.pending.Add(-1)
	pendingGauge.Dec()
}

// Create shows a placeholder at the top of the list until the server
// answers, then swaps in the stored row.
func (c *Coordinator) Create(ctx context.Context, in models.MomentInput) (*models.Moment, error) {
	in, err := in.SanitizeAndValidate()
	if err != nil {
		return nil, newError("create", StateIdle, err)
	}
	placeholder := in.Placeholder(c.userID, c.now())

	m, err := Run(ctx, c, Transaction[*models.Moment]{
		Name:  "create",
		Apply: func() error { return c.cache.Unshift(placeholder) },
		Remote: func(ctx context.Context) (*models.Moment, error) {
			return c.store.InsertMoment(ctx, c.userID, in)
		},
		Commit: func(m *models.Moment) error {
			// runs even when the caller has already gone away
			if c.onCreatedToday != nil && c.clock != nil && m.Date == c.clock.Today() {
				go c.onCreatedToday()
			}
			if !c.cache.Replace(placeholder.ID, *m) {
				return fmt.Errorf("%w: placeholder %s missing", cache.ErrCorrupted, placeholder.ID)
			}
			return nil
		},
	})
	if err != nil {
		c.log.Warn(ctx, "create failed", "error", err)
		return nil, err
	}
	return m, nil
}

// Delete hides the row right away and puts it back if the server refuses.
// Placeholders cannot be deleted; they have no server row yet.
func (c *Coordinator) Delete(ctx context.Context, id string) error {
	if models.IsPlaceholderID(id) {
		return newError("delete", StateIdle, fmt.Errorf("%w: moment %s is not saved yet", common.ErrValidation, id))
	}
	removed := false
	_, err := Run(ctx, c, Transaction[struct{}]{
		Name:  "delete",
		Apply: func() error { removed = c.cache.Remove(id); return nil },
		Remote: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, c.store.DeleteMoment(ctx, c.userID, id)
		},
		Commit: func(struct{}) error {
			// the server list shrank under the loaded pages
			if removed {
				c.cache.ShiftOffset(-1)
			}
			return nil
		},
	})
	if err != nil {
		c.log.Warn(ctx, "delete failed", "moment_id", id, "error", err)
	}
	return err
}

// Toggle flips the featured flag. Featuring moves the row across pages, so
// after the server confirms, the list is reloaded from page one.
func (c *Coordinator) Toggle(ctx context.Context, id string, featured bool) (*models.Moment, error) {
	if models.IsPlaceholderID(id) {
		return nil, newError("toggle", StateIdle, fmt.Errorf("%w: moment %s is not saved yet", common.ErrValidation, id))
	}
	m, err := Run(ctx, c, Transaction[*models.Moment]{
		Name: "toggle",
		Apply: func() error {
			c.cache.Patch(id, func(m *models.Moment) { m.IsFeatured = featured })
			return nil
		},
		Remote: func(ctx context.Context) (*models.Moment, error) {
			return c.store.SetFeatured(ctx, c.userID, id, featured)
		},
		Commit: func(m *models.Moment) error {
			c.cache.Replace(id, *m)
			return nil
		},
	})
	if err != nil {
		c.log.Warn(ctx, "toggle failed", "moment_id", id, "error", err)
		return nil, err
	}

	if err := c.cache.Reload(ctx); err != nil {
		c.log.Warn(ctx, "reload after toggle failed", "error", err)
	}
	return m, nil
}
