package rewards

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/daybook/internal/common"
	"github.com/dmitrijs2005/daybook/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cols = []string{"id", "user_id", "reward_type", "streak_days", "reward_data", "artifact_generated", "created_at"}

const (
	insertQ   = `(?s)^INSERT INTO streak_rewards .*ON CONFLICT \(user_id, reward_type, streak_days\) DO NOTHING\s+RETURNING id`
	existingQ = `(?s)^SELECT id, .* FROM streak_rewards\s+WHERE user_id = \$1 AND reward_type = \$2 AND streak_days = \$3$`
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewPostgresRepository(db), mock
}

func TestInsertIfAbsent_Created(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(insertQ).
		WithArgs("r1", "u1", "weekly", 7, `{"label":"7-day streak"}`).
		WillReturnRows(sqlmock.NewRows(cols).AddRow("r1", "u1", "weekly", 7, []byte(`{"label":"7-day streak"}`), false, time.Now()))

	got, created, err := repo.InsertIfAbsent(context.Background(), "r1", "u1", models.RewardWeekly, 7, []byte(`{"label":"7-day streak"}`))
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "r1", got.ID)
	assert.JSONEq(t, `{"label":"7-day streak"}`, string(got.RewardData))
}

func TestInsertIfAbsent_Existing(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(insertQ).WithArgs("r2", "u1", "weekly", 7, `{}`).WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(existingQ).WithArgs("u1", "weekly", 7).
		WillReturnRows(sqlmock.NewRows(cols).AddRow("r1", "u1", "weekly", 7, []byte(`{}`), true, time.Now()))

	got, created, err := repo.InsertIfAbsent(context.Background(), "r2", "u1", models.RewardWeekly, 7, nil)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "r1", got.ID)
	assert.True(t, got.ArtifactGenerated)
}

func TestInsertIfAbsent_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(insertQ).WillReturnError(errors.New("boom"))

	_, _, err := repo.InsertIfAbsent(context.Background(), "r1", "u1", models.RewardMonthly, 30, nil)
	assert.ErrorContains(t, err, "boom")
}

func TestList(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(`FROM streak_rewards WHERE user_id = \$1 ORDER BY created_at DESC, streak_days DESC`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("r2", "u1", "monthly", 30, []byte(`{}`), false, time.Now()).
			AddRow("r1", "u1", "weekly", 7, nil, false, time.Now()))

	got, err := repo.List(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, models.RewardMonthly, got[0].RewardType)
	assert.Nil(t, got[1].RewardData)
}

func TestMarkArtifact(t *testing.T) {
	const q = `^UPDATE streak_rewards SET artifact_generated = TRUE WHERE user_id = \$1 AND id = \$2$`

	repo, mock := newRepoWithMock(t)
	mock.ExpectExec(q).WithArgs("u1", "r1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WithArgs("u1", "missing").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.MarkArtifact(context.Background(), "u1", "r1"))
	assert.ErrorIs(t, repo.MarkArtifact(context.Background(), "u1", "missing"), common.ErrorNotFound)
}
