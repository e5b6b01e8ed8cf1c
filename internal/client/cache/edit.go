package cache

import (
	"fmt"
	"slices"

	"github.com/dmitrijs2005/daybook/internal/models"
)

// Snapshot is a deep copy of the cache contents and pagination state.
type Snapshot struct {
	gen     uint64
	pages   [][]models.Moment
	fetched int
	hasNext bool
}

func clonePages(pages [][]models.Moment) [][]models.Moment {
	if pages == nil {
		return nil
	}
	out := make([][]models.Moment, len(pages))
	for i, p := range pages {
		out[i] = slices.Clone(p)
	}
	return out
}

func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{gen: m.gen, pages: clonePages(m.pages), fetched: m.fetched, hasNext: m.hasNext}
}

// Restore puts a snapshot back verbatim. A snapshot from an earlier
// generation is ignored; the cache has been rebuilt since.
func (m *Manager) Restore(s Snapshot) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.gen != m.gen || m.closed {
		return false
	}
	m.pages = clonePages(s.pages)
	m.fetched = s.fetched
	m.hasNext = s.hasNext
	return true
}

func (m *Manager) indexLocked(id string) (int, int, bool) {
	for pi, p := range m.pages {
		for i, mo := range p {
			if mo.ID == id {
				return pi, i, true
			}
		}
	}
	return 0, 0, false
}

// Unshift puts mo at the very front. An id already present is ErrCorrupted.
func (m *Manager) Unshift(mo models.Moment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if _, _, ok := m.indexLocked(mo.ID); ok {
		return fmt.Errorf("%w: duplicate id %s", ErrCorrupted, mo.ID)
	}
	if len(m.pages) == 0 {
		m.pages = [][]models.Moment{{mo}}
		return nil
	}
	m.pages[0] = slices.Insert(m.pages[0], 0, mo)
	return nil
}

// Replace swaps the row with the given id for mo in place. If mo's id is
// already cached elsewhere, that copy is dropped.
func (m *Manager) Replace(id string, mo models.Moment) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	pi, i, ok := m.indexLocked(id)
	if !ok {
		return false
	}
	if mo.ID != id {
		if dpi, di, dup := m.indexLocked(mo.ID); dup {
			m.pages[dpi] = slices.Delete(m.pages[dpi], di, di+1)
			pi, i, _ = m.indexLocked(id)
		}
	}
	m.pages[pi][i] = mo
	return true
}

// Remove drops the row with the given id and reports whether it was cached.
func (m *Manager) Remove(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	pi, i, ok := m.indexLocked(id)
	if !ok {
		return false
	}
	m.pages[pi] = slices.Delete(m.pages[pi], i, i+1)
	return true
}

// Patch edits the cached row in place.
func (m *Manager) Patch(id string, fn func(*models.Moment)) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	pi, i, ok := m.indexLocked(id)
	if !ok {
		return false
	}
	fn(&m.pages[pi][i])
	return true
}

// Get returns the cached row with the given id.
func (m *Manager) Get(id string) (models.Moment, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pi, i, ok := m.indexLocked(id)
	if !ok {
		return models.Moment{}, false
	}
	return m.pages[pi][i], true
}

// ShiftOffset moves the next-page offset, e.g. by -1 after a committed
// delete of a loaded row.
func (m *Manager) ShiftOffset(delta int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetched = max(0, m.fetched+delta)
}
