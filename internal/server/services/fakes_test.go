package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/daybook/internal/calendar"
	"github.com/dmitrijs2005/daybook/internal/common"
	"github.com/dmitrijs2005/daybook/internal/dbx"
	"github.com/dmitrijs2005/daybook/internal/models"
	sm "github.com/dmitrijs2005/daybook/internal/server/models"
	"github.com/dmitrijs2005/daybook/internal/server/repositories/moments"
	"github.com/dmitrijs2005/daybook/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/daybook/internal/server/repositories/rewards"
	"github.com/dmitrijs2005/daybook/internal/server/repositories/shares"
	"github.com/dmitrijs2005/daybook/internal/server/repositories/streaks"
	"github.com/dmitrijs2005/daybook/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
)

// memRepos is an in-memory RepositoryManager. The DBTX argument is ignored,
// so transactions only exercise Begin/Commit/Rollback on the mock DB.
type memRepos struct {
	mu       sync.Mutex
	users    map[string]*sm.User
	profiles map[string]*models.Profile
	moments  []models.Moment
	legacy   map[string]bool
	streaks  map[string]*models.UserStreak
	rewards  []models.StreakReward
	shares   map[string]*sm.ShareGrant
	seq      int64

	failMoments error
}

func newMemRepos() *memRepos {
	return &memRepos{
		users:    map[string]*sm.User{},
		profiles: map[string]*models.Profile{},
		legacy:   map[string]bool{},
		streaks:  map[string]*models.UserStreak{},
		shares:   map[string]*sm.ShareGrant{},
	}
}

func (m *memRepos) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *memRepos) Users(dbx.DBTX) users.Repository              { return memUsers{m} }
func (m *memRepos) Profiles(dbx.DBTX) profiles.Repository        { return memProfiles{m} }
func (m *memRepos) Moments(dbx.DBTX) moments.Repository          { return memMoments{m} }
func (m *memRepos) Streaks(dbx.DBTX) streaks.Repository          { return memStreaks{m} }
func (m *memRepos) Rewards(dbx.DBTX) rewards.Repository          { return memRewards{m} }
func (m *memRepos) Shares(dbx.DBTX) shares.Repository            { return memShares{m} }

type memUsers struct{ m *memRepos }

func (r memUsers) Create(_ context.Context, u *sm.User) (*sm.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, e := range r.m.users {
		if e.Email == u.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	c := *u
	c.CreatedAt = time.Now()
	r.m.users[u.ID] = &c
	return &c, nil
}

func (r memUsers) GetUserByEmail(_ context.Context, email string) (*sm.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, e := range r.m.users {
		if e.Email == email {
			c := *e
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

type memProfiles struct{ m *memRepos }

func (r memProfiles) Ensure(_ context.Context, userID string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.profiles[userID]; !ok {
		r.m.profiles[userID] = &models.Profile{UserID: userID, UpdatedAt: time.Now()}
	}
	return nil
}

func (r memProfiles) Get(_ context.Context, userID string) (*models.Profile, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.profiles[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *p
	return &c, nil
}

func (r memProfiles) MarkMigrated(_ context.Context, userID string) (*models.Profile, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p := &models.Profile{UserID: userID, Migrated: true, UpdatedAt: time.Now()}
	r.m.profiles[userID] = p
	c := *p
	return &c, nil
}

type memMoments struct{ m *memRepos }

func (r memMoments) List(_ context.Context, userID string, limit, offset int) ([]models.Moment, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.failMoments != nil {
		return nil, r.m.failMoments
	}
	var own []models.Moment
	for _, x := range r.m.moments {
		if x.UserID == userID {
			own = append(own, x)
		}
	}
	slices.SortFunc(own, func(a, b models.Moment) int {
		switch {
		case a.Less(b):
			return -1
		case b.Less(a):
			return 1
		}
		return 0
	})
	if offset >= len(own) {
		return []models.Moment{}, nil
	}
	end := min(offset+limit, len(own))
	return own[offset:end], nil
}

func (r memMoments) Get(_ context.Context, userID, id string) (*models.Moment, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, x := range r.m.moments {
		if x.UserID == userID && x.ID == id {
			return &x, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memMoments) insert(userID, id string, in models.MomentInput) models.Moment {
	r.m.seq++
	now := time.Now()
	x := models.Moment{
		ID: id, UserID: userID, Title: in.Title, Note: in.Note, Date: in.Date,
		Photo: in.Photo, Seq: r.m.seq, CreatedAt: now, UpdatedAt: now,
	}
	r.m.moments = append(r.m.moments, x)
	return x
}

func (r memMoments) Insert(_ context.Context, userID, id string, in models.MomentInput) (*models.Moment, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.failMoments != nil {
		return nil, r.m.failMoments
	}
	x := r.insert(userID, id, in)
	return &x, nil
}

func (r memMoments) InsertLegacy(_ context.Context, userID, id string, in models.MomentInput) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.failMoments != nil {
		return false, r.m.failMoments
	}
	k := userID + "/" + in.LegacyID
	if r.m.legacy[k] {
		return false, nil
	}
	r.m.legacy[k] = true
	r.insert(userID, id, in)
	return true, nil
}

func (r memMoments) Delete(_ context.Context, userID, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for i, x := range r.m.moments {
		if x.UserID == userID && x.ID == id {
			r.m.moments = slices.Delete(r.m.moments, i, i+1)
			return nil
		}
	}
	return common.ErrorNotFound
}

func (r memMoments) SetFeatured(_ context.Context, userID, id string, featured bool) (*models.Moment, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for i, x := range r.m.moments {
		if x.UserID == userID && x.ID == id {
			r.m.moments[i].IsFeatured = featured
			c := r.m.moments[i]
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memMoments) Dates(_ context.Context, userID string) ([]calendar.Date, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []calendar.Date
	for _, x := range r.m.moments {
		if x.UserID == userID {
			out = append(out, x.Date)
		}
	}
	slices.SortFunc(out, func(a, b calendar.Date) int { return b.Compare(a) })
	return slices.CompactFunc(out, calendar.Date.Equal), nil
}

type memStreaks struct{ m *memRepos }

func (r memStreaks) Get(_ context.Context, userID string) (*models.UserStreak, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	s, ok := r.m.streaks[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *s
	return &c, nil
}

func (r memStreaks) Upsert(_ context.Context, s models.UserStreak) (*models.UserStreak, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if prev, ok := r.m.streaks[s.UserID]; ok {
		s.LongestStreak = max(s.LongestStreak, prev.LongestStreak)
	}
	s.UpdatedAt = time.Now()
	r.m.streaks[s.UserID] = &s
	c := s
	return &c, nil
}

type memRewards struct{ m *memRepos }

func (r memRewards) InsertIfAbsent(_ context.Context, id, userID string, rt models.RewardType, days int, payload json.RawMessage) (*models.StreakReward, bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, x := range r.m.rewards {
		if x.UserID == userID && x.RewardType == rt && x.StreakDays == days {
			return &x, false, nil
		}
	}
	x := models.StreakReward{ID: id, UserID: userID, RewardType: rt, StreakDays: days, RewardData: payload, CreatedAt: time.Now()}
	r.m.rewards = append(r.m.rewards, x)
	return &x, true, nil
}

func (r memRewards) List(_ context.Context, userID string) ([]models.StreakReward, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []models.StreakReward
	for _, x := range r.m.rewards {
		if x.UserID == userID {
			out = append(out, x)
		}
	}
	return out, nil
}

func (r memRewards) MarkArtifact(_ context.Context, userID, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for i, x := range r.m.rewards {
		if x.UserID == userID && x.ID == id {
			r.m.rewards[i].ArtifactGenerated = true
			return nil
		}
	}
	return common.ErrorNotFound
}

type memShares struct{ m *memRepos }

func (r memShares) Create(_ context.Context, g *sm.ShareGrant) (*sm.ShareGrant, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c := *g
	c.CreatedAt = time.Now()
	r.m.shares[g.TokenDigest] = &c
	out := c
	return &out, nil
}

func (r memShares) GetByDigest(_ context.Context, digest string) (*sm.ShareGrant, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	g, ok := r.m.shares[digest]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *g
	return &c, nil
}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}
