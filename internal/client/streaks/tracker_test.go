package streaks

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/daybook/internal/calendar"
	"github.com/dmitrijs2005/daybook/internal/client/clienttest"
	"github.com/dmitrijs2005/daybook/internal/common"
	"github.com/dmitrijs2005/daybook/internal/logging"
	"github.com/dmitrijs2005/daybook/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const user = "u1"

var today = calendar.MustParse("2026-05-20")

func newTracker(t *testing.T, store *clienttest.MemStore, offsets ...int) *Tracker {
	t.Helper()
	for _, off := range offsets {
		store.Seed(user, models.MomentInput{Title: "m", Date: today.AddDays(off)})
	}
	tr := New(user, store, calendar.NewFixed(today), logging.Nop{},
		WithRetryLimit(2),
		WithBackoff(time.Millisecond, 2*time.Millisecond),
	)
	t.Cleanup(tr.Close)
	return tr
}

func TestRefresh_LiteralCases(t *testing.T) {
	cases := []struct {
		name     string
		offsets  []int
		current  int
		atRisk   bool
		lastDays *int
	}{
		{name: "today only", offsets: []int{0}, current: 1, lastDays: ptr(0)},
		{name: "three days", offsets: []int{0, -1, -2}, current: 3, lastDays: ptr(0)},
		{name: "yesterday only", offsets: []int{-1}, current: 1, atRisk: true, lastDays: ptr(-1)},
		{name: "stale", offsets: []int{-3}, current: 0, lastDays: ptr(-3)},
		{name: "empty", current: 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tr := newTracker(t, clienttest.NewMemStore(), tc.offsets...)
			require.NoError(t, tr.Refresh(context.Background()))

			st := tr.Status()
			assert.True(t, st.Known)
			assert.Equal(t, tc.current, st.CurrentStreak)
			assert.Equal(t, tc.atRisk, st.IsAtRisk)
			if tc.lastDays == nil {
				assert.Nil(t, st.LastActivityDate)
			} else {
				require.NotNil(t, st.LastActivityDate)
				assert.Equal(t, today.AddDays(*tc.lastDays), *st.LastActivityDate)
			}
		})
	}
}

func ptr(n int) *int { return &n }

func TestRefresh_LongestNeverDecreases(t *testing.T) {
	store := clienttest.NewMemStore()
	_, err := store.UpsertUserStreak(context.Background(), user, models.UserStreak{CurrentStreak: 0, LongestStreak: 12})
	require.NoError(t, err)

	tr := newTracker(t, store, 0, -1)
	require.NoError(t, tr.Refresh(context.Background()))

	st := tr.Status()
	assert.Equal(t, 2, st.CurrentStreak)
	assert.Equal(t, 12, st.LongestStreak)
}

func TestRefresh_FailureMarksUnknownAndKeepsNumbers(t *testing.T) {
	store := clienttest.NewMemStore()
	tr := newTracker(t, store, 0, -1)
	require.NoError(t, tr.Refresh(context.Background()))

	store.Fail(clienttest.GetMomentDates, common.ErrUnavailable)
	calls := store.Calls(clienttest.GetMomentDates)
	err := tr.Refresh(context.Background())
	require.ErrorIs(t, err, common.ErrUnavailable)

	// one attempt plus two retries
	assert.Equal(t, calls+3, store.Calls(clienttest.GetMomentDates))
	st := tr.Status()
	assert.False(t, st.Known)
	assert.Equal(t, 2, st.CurrentStreak)
}

func TestRefresh_UnauthorizedIsNotRetried(t *testing.T) {
	store := clienttest.NewMemStore()
	tr := newTracker(t, store, 0)

	store.Fail(clienttest.GetMomentDates, common.ErrorUnauthorized)
	require.ErrorIs(t, tr.Refresh(context.Background()), common.ErrorUnauthorized)
	assert.Equal(t, 1, store.Calls(clienttest.GetMomentDates))
	assert.False(t, tr.Status().Known)
}

func TestRefresh_RetriesTransientFailure(t *testing.T) {
	store := clienttest.NewMemStore()
	tr := newTracker(t, store, 0)

	store.FailNext(clienttest.UpsertUserStreak, common.ErrUnavailable)
	upserts := store.Calls(clienttest.UpsertUserStreak)
	require.NoError(t, tr.Refresh(context.Background()))
	assert.True(t, tr.Status().Known)
	assert.Equal(t, upserts+2, store.Calls(clienttest.UpsertUserStreak))
}

func TestRefresh_GrantsWeeklyRewardOnce(t *testing.T) {
	store := clienttest.NewMemStore()
	tr := newTracker(t, store, 0, -1, -2, -3, -4, -5, -6)
	ctx := context.Background()

	require.NoError(t, tr.Refresh(ctx))
	select {
	case r := <-tr.Rewards():
		assert.Equal(t, models.RewardWeekly, r.RewardType)
		assert.Equal(t, 7, r.StreakDays)
	case <-time.After(time.Second):
		t.Fatal("no reward delivered")
	}

	require.NoError(t, tr.Refresh(ctx))
	select {
	case r := <-tr.Rewards():
		t.Fatalf("unexpected second reward %+v", r)
	default:
	}
	assert.Len(t, store.Rewards(user), 1)
}

// lostReplyStore saves the streak row but reports a transient failure
// for the first dropUpserts calls.
type lostReplyStore struct {
	*clienttest.MemStore
	dropUpserts atomic.Int32
}

func (s *lostReplyStore) UpsertUserStreak(ctx context.Context, userID string, row models.UserStreak) (*models.UserStreak, error) {
	saved, err := s.MemStore.UpsertUserStreak(ctx, userID, row)
	if err == nil && s.dropUpserts.Add(-1) >= 0 {
		return nil, common.ErrUnavailable
	}
	return saved, err
}

func TestRefresh_LostUpsertReplyStillGrants(t *testing.T) {
	store := &lostReplyStore{MemStore: clienttest.NewMemStore()}
	ctx := context.Background()
	for off := -6; off <= -1; off++ {
		store.Seed(user, models.MomentInput{Title: "m", Date: today.AddDays(off)})
	}
	last := today.AddDays(-1)
	_, err := store.MemStore.UpsertUserStreak(ctx, user, models.UserStreak{CurrentStreak: 6, LongestStreak: 6, LastActivityDate: &last})
	require.NoError(t, err)

	store.Seed(user, models.MomentInput{Title: "today", Date: today})
	store.dropUpserts.Store(1)
	upserts := store.Calls(clienttest.UpsertUserStreak)

	tr := New(user, store, calendar.NewFixed(today), logging.Nop{},
		WithRetryLimit(2),
		WithBackoff(time.Millisecond, 2*time.Millisecond),
	)
	t.Cleanup(tr.Close)

	require.NoError(t, tr.Refresh(ctx))
	assert.Equal(t, 7, tr.Status().CurrentStreak)
	assert.Equal(t, upserts+2, store.Calls(clienttest.UpsertUserStreak))

	rs := store.Rewards(user)
	require.Len(t, rs, 1)
	assert.Equal(t, models.RewardWeekly, rs[0].RewardType)
	assert.Equal(t, 7, rs[0].StreakDays)
}

func TestRefresh_RewardRetriedAfterFailure(t *testing.T) {
	store := clienttest.NewMemStore()
	tr := newTracker(t, store, 0, -1, -2, -3, -4, -5, -6)

	store.FailNext(clienttest.InsertRewardIfAbsent, common.ErrUnavailable)
	require.NoError(t, tr.Refresh(context.Background()))
	assert.Len(t, store.Rewards(user), 1)
	assert.Len(t, tr.Rewards(), 1)
}

func TestTriggerRefresh_RunsInBackground(t *testing.T) {
	store := clienttest.NewMemStore()
	tr := newTracker(t, store, 0)

	tr.TriggerRefresh()
	tr.TriggerRefresh()
	require.Eventually(t, func() bool { return tr.Status().Known }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, tr.Status().CurrentStreak)
}

func TestLoad_ShowsStoredRow(t *testing.T) {
	store := clienttest.NewMemStore()
	last := today.AddDays(-1)
	_, err := store.UpsertUserStreak(context.Background(), user, models.UserStreak{CurrentStreak: 4, LongestStreak: 9, LastActivityDate: &last})
	require.NoError(t, err)

	tr := newTracker(t, store)
	require.NoError(t, tr.Load(context.Background()))

	st := tr.Status()
	assert.True(t, st.Known)
	assert.Equal(t, 4, st.CurrentStreak)
	assert.Equal(t, 9, st.LongestStreak)
	assert.True(t, st.IsAtRisk)
	assert.Equal(t, 0, store.Calls(clienttest.GetMomentDates))
}

func TestClose_IsIdempotent(t *testing.T) {
	tr := newTracker(t, clienttest.NewMemStore())
	tr.Close()
	tr.Close()
	tr.TriggerRefresh()
}
