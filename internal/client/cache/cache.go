// Package cache holds the paginated, ordered view of one user's moments.
//
// Pages are loaded with offset pagination and applied inside the user's
// keyqueue lane, so page loads and optimistic mutations never interleave.
// Every Invalidate starts a new generation; results of loads started in an
// older generation are discarded.
package cache

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"sync"

	"github.com/dmitrijs2005/daybook/internal/client/keyqueue"
	"github.com/dmitrijs2005/daybook/internal/logging"
	"github.com/dmitrijs2005/daybook/internal/models"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrCorrupted means the cache no longer reflects any consistent server
	// state and must be discarded.
	ErrCorrupted = errors.New("cache: corrupted")
	ErrClosed    = errors.New("cache: closed")
)

const DefaultPageSize = 20

// Loader fetches one page in list order.
type Loader interface {
	ListMoments(ctx context.Context, userID string, limit, offset int) ([]models.Moment, error)
}

type Manager struct {
	userID   string
	loader   Loader
	queue    *keyqueue.Executor
	pageSize int
	log      logging.Logger
	sf       singleflight.Group

	mu          sync.Mutex
	pages       [][]models.Moment
	fetched     int
	hasNext     bool
	loading     bool
	loadingMore bool
	gen         uint64
	genCtx      context.Context
	cancel      context.CancelFunc
	closed      bool
}

func New(userID string, loader Loader, queue *keyqueue.Executor, pageSize int, log logging.Logger) *Manager {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	pageSize = min(pageSize, models.MaxPageSize)
	if log == nil {
		log = logging.Nop{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		userID:   userID,
		loader:   loader,
		queue:    queue,
		pageSize: pageSize,
		log:      log.With("module", "cache", "user_id", userID),
		hasNext:  true,
		genCtx:   ctx,
		cancel:   cancel,
	}
}

// Key is the keyqueue lane shared by page loads and mutations.
func (m *Manager) Key() string { return m.userID }

func (m *Manager) Queue() *keyqueue.Executor { return m.queue }

func (m *Manager) PageSize() int { return m.pageSize }

func (m *Manager) IsLoading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}

func (m *Manager) IsLoadingMore() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadingMore
}

func (m *Manager) HasNextPage() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hasNext && !m.closed
}

// Fetched is the offset the next page load will use.
func (m *Manager) Fetched() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetched
}

// LoadNextPage appends the next page. Concurrent calls share one load. It
// returns nil without fetching once a short page has marked the end.
func (m *Manager) LoadNextPage(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	if !m.hasNext {
		m.mu.Unlock()
		return nil
	}
	gen, genCtx := m.gen, m.genCtx
	m.mu.Unlock()

	ch := m.sf.DoChan("page-"+strconv.FormatUint(gen, 10), func() (any, error) {
		return nil, m.loadNext(genCtx, gen)
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) loadNext(genCtx context.Context, gen uint64) error {
	err := m.queue.Do(genCtx, m.userID, func(jctx context.Context) error {
		m.mu.Lock()
		if gen != m.gen || !m.hasNext {
			m.mu.Unlock()
			return nil
		}
		offset := m.fetched
		if offset == 0 && len(m.pages) == 0 {
			m.loading = true
		} else {
			m.loadingMore = true
		}
		m.mu.Unlock()

		page, err := m.loader.ListMoments(jctx, m.userID, m.pageSize, offset)

		m.mu.Lock()
		defer m.mu.Unlock()
		if gen != m.gen {
			pageLoadsTotal.WithLabelValues("stale").Inc()
			return nil
		}
		m.loading, m.loadingMore = false, false
		if err != nil {
			pageLoadsTotal.WithLabelValues("error").Inc()
			return err
		}
		if len(page) > 0 {
			m.pages = append(m.pages, slices.Clone(page))
		}
		m.fetched += len(page)
		m.hasNext = len(page) == m.pageSize
		pageLoadsTotal.WithLabelValues("ok").Inc()
		return nil
	})
	if err != nil && genCtx.Err() != nil {
		// superseded by Invalidate or Close
		return nil
	}
	if err != nil {
		m.log.Warn(genCtx, "page load failed", "error", err)
	}
	return err
}

// Invalidate drops every page and cancels in-flight loads.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidateLocked()
}

func (m *Manager) invalidateLocked() {
	m.cancel()
	m.gen++
	m.genCtx, m.cancel = context.WithCancel(context.Background())
	m.pages = nil
	m.fetched = 0
	m.hasNext = !m.closed
	m.loading, m.loadingMore = false, false
	invalidationsTotal.Inc()
}

// Reload invalidates and loads the first page again.
func (m *Manager) Reload(ctx context.Context) error {
	m.Invalidate()
	return m.LoadNextPage(ctx)
}

// Close cancels loads and empties the cache for good.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	m.invalidateLocked()
	m.cancel()
}

// Flatten returns the pages concatenated in order, keeping the first
// occurrence of each id.
func (m *Manager) Flatten() []models.Moment {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return []models.Moment{}
	}
	return flatten(m.pages)
}

func flatten(pages [][]models.Moment) []models.Moment {
	n := 0
	for _, p := range pages {
		n += len(p)
	}
	out := make([]models.Moment, 0, n)
	seen := make(map[string]struct{}, n)
	for _, p := range pages {
		for _, mo := range p {
			if _, dup := seen[mo.ID]; dup {
				continue
			}
			seen[mo.ID] = struct{}{}
			out = append(out, mo)
		}
	}
	return out
}
