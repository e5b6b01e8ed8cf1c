// Package clienttest provides an in-memory client.Store with failure
// injection for tests of the sync core.
package clienttest

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/daybook/internal/calendar"
	"github.com/dmitrijs2005/daybook/internal/client/client"
	"github.com/dmitrijs2005/daybook/internal/common"
	"github.com/dmitrijs2005/daybook/internal/models"
	"github.com/google/uuid"
)

// Method names accepted by Fail, FailNext, Block and Calls.
const (
	ListMoments          = "ListMoments"
	InsertMoment         = "InsertMoment"
	DeleteMoment         = "DeleteMoment"
	SetFeatured          = "SetFeatured"
	GetMomentDates       = "GetMomentDates"
	GetUserStreak        = "GetUserStreak"
	UpsertUserStreak     = "UpsertUserStreak"
	InsertRewardIfAbsent = "InsertRewardIfAbsent"
)

type MemStore struct {
	mu       sync.Mutex
	moments  []models.Moment
	streaks  map[string]models.UserStreak
	rewards  []models.StreakReward
	seq      int64
	fail     map[string]error
	failNext map[string][]error
	gates    map[string]*gate
	calls    map[string]int
	now      func() time.Time
}

var _ client.Store = (*MemStore)(nil)

func NewMemStore() *MemStore {
	return &MemStore{
		streaks:  map[string]models.UserStreak{},
		fail:     map[string]error{},
		failNext: map[string][]error{},
		gates:    map[string]*gate{},
		calls:    map[string]int{},
		now:      time.Now,
	}
}

// Fail makes every call to method return err until cleared with a nil err.
func (s *MemStore) Fail(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.fail, method)
		return
	}
	s.fail[method] = err
}

// FailNext makes the next call to method return err.
func (s *MemStore) FailNext(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext[method] = append(s.failNext[method], err)
}

type gate struct {
	entered chan struct{}
	release chan struct{}
}

// Block holds calls to method until release is called. Entered receives one
// value per call that reached the gate.
func (s *MemStore) Block(method string) (entered <-chan struct{}, release func()) {
	g := &gate{entered: make(chan struct{}, 64), release: make(chan struct{})}
	s.mu.Lock()
	s.gates[method] = g
	s.mu.Unlock()

	var once sync.Once
	return g.entered, func() {
		once.Do(func() {
			s.mu.Lock()
			if s.gates[method] == g {
				delete(s.gates, method)
			}
			s.mu.Unlock()
			close(g.release)
		})
	}
}

func (s *MemStore) Calls(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

// Seed inserts moments directly, assigning ids and sequence numbers.
func (s *MemStore) Seed(userID string, inputs ...models.MomentInput) []models.Moment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Moment, 0, len(inputs))
	for _, in := range inputs {
		out = append(out, s.insertLocked(userID, in))
	}
	return out
}

// Moments returns the user's stored moments in list order.
func (s *MemStore) Moments(userID string) []models.Moment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedLocked(userID)
}

func (s *MemStore) Rewards(userID string) []models.StreakReward {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.StreakReward
	for _, r := range s.rewards {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out
}

// enter counts the call, waits on a gate if one is set and returns any
// injected failure.
func (s *MemStore) enter(ctx context.Context, method string) error {
	s.mu.Lock()
	s.calls[method]++
	g := s.gates[method]
	s.mu.Unlock()

	if g != nil {
		select {
		case g.entered <- struct{}{}:
		default:
		}
		select {
		case <-g.release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if q := s.failNext[method]; len(q) > 0 {
		s.failNext[method] = q[1:]
		return q[0]
	}
	if err := s.fail[method]; err != nil {
		return err
	}
	return ctx.Err()
}

func (s *MemStore) insertLocked(userID string, in models.MomentInput) models.Moment {
	s.seq++
	now := s.now()
	m := models.Moment{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     in.Title,
		Note:      in.Note,
		Date:      in.Date,
		Photo:     in.Photo,
		Seq:       s.seq,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.moments = append(s.moments, m)
	return m
}

func (s *MemStore) sortedLocked(userID string) []models.Moment {
	var own []models.Moment
	for _, m := range s.moments {
		if m.UserID == userID {
			own = append(own, m)
		}
	}
	slices.SortStableFunc(own, func(a, b models.Moment) int {
		switch {
		case a.Less(b):
			return -1
		case b.Less(a):
			return 1
		}
		return 0
	})
	return own
}

func (s *MemStore) ListMoments(ctx context.Context, userID string, limit, offset int) ([]models.Moment, error) {
	if err := s.enter(ctx, ListMoments); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	own := s.sortedLocked(userID)
	if offset >= len(own) {
		return []models.Moment{}, nil
	}
	return slices.Clone(own[offset:min(offset+limit, len(own))]), nil
}

func (s *MemStore) InsertMoment(ctx context.Context, userID string, in models.MomentInput) (*models.Moment, error) {
	if err := s.enter(ctx, InsertMoment); err != nil {
		return nil, err
	}
	in, err := in.SanitizeAndValidate()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.insertLocked(userID, in)
	return &m, nil
}

func (s *MemStore) DeleteMoment(ctx context.Context, userID, id string) error {
	if err := s.enter(ctx, DeleteMoment); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, m := range s.moments {
		if m.UserID == userID && m.ID == id {
			s.moments = slices.Delete(s.moments, i, i+1)
			return nil
		}
	}
	return common.ErrorNotFound
}

func (s *MemStore) SetFeatured(ctx context.Context, userID, id string, featured bool) (*models.Moment, error) {
	if err := s.enter(ctx, SetFeatured); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, m := range s.moments {
		if m.UserID == userID && m.ID == id {
			s.moments[i].IsFeatured = featured
			s.moments[i].UpdatedAt = s.now()
			c := s.moments[i]
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (s *MemStore) GetMomentDates(ctx context.Context, userID string) ([]calendar.Date, error) {
	if err := s.enter(ctx, GetMomentDates); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []calendar.Date
	for _, m := range s.moments {
		if m.UserID == userID {
			out = append(out, m.Date)
		}
	}
	slices.SortFunc(out, func(a, b calendar.Date) int { return b.Compare(a) })
	return slices.CompactFunc(out, calendar.Date.Equal), nil
}

func (s *MemStore) GetUserStreak(ctx context.Context, userID string) (*models.UserStreak, error) {
	if err := s.enter(ctx, GetUserStreak); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.streaks[userID]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (s *MemStore) UpsertUserStreak(ctx context.Context, userID string, row models.UserStreak) (*models.UserStreak, error) {
	if err := s.enter(ctx, UpsertUserStreak); err != nil {
		return nil, err
	}
	if row.CurrentStreak < 0 || row.LongestStreak < row.CurrentStreak {
		return nil, &models.ValidationError{Field: "streak", Reason: fmt.Sprintf("invalid row %d/%d", row.CurrentStreak, row.LongestStreak)}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	row.UserID = userID
	if prev, ok := s.streaks[userID]; ok {
		row.LongestStreak = max(row.LongestStreak, prev.LongestStreak)
	}
	row.UpdatedAt = s.now()
	s.streaks[userID] = row
	return &row, nil
}

func (s *MemStore) InsertRewardIfAbsent(ctx context.Context, userID string, rewardType models.RewardType, streakDays int, payload json.RawMessage) (*models.StreakReward, bool, error) {
	if err := s.enter(ctx, InsertRewardIfAbsent); err != nil {
		return nil, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rewards {
		if r.UserID == userID && r.RewardType == rewardType && r.StreakDays == streakDays {
			return &r, false, nil
		}
	}
	r := models.StreakReward{
		ID:         uuid.NewString(),
		UserID:     userID,
		RewardType: rewardType,
		StreakDays: streakDays,
		RewardData: payload,
		CreatedAt:  s.now(),
	}
	s.rewards = append(s.rewards, r)
	return &r, true, nil
}
