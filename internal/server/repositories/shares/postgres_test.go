package shares

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/daybook/internal/common"
	"github.com/dmitrijs2005/daybook/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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

func TestCreate(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	exp := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, 4, 24, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`(?s)^INSERT INTO shares \(id, moment_id, user_id, token_digest, recipients, expires_at\)`).
		WithArgs("s1", "m1", "u1", "digest", `["a@example.com","b@example.com"]`, exp).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))

	g, err := repo.Create(context.Background(), &models.ShareGrant{
		ID: "s1", MomentID: "m1", UserID: "u1", TokenDigest: "digest",
		Recipients: []string{"a@example.com", "b@example.com"}, ExpiresAt: exp,
	})
	require.NoError(t, err)
	assert.Equal(t, now, g.CreatedAt)
}

func TestGetByDigest(t *testing.T) {
	cols := []string{"id", "moment_id", "user_id", "token_digest", "recipients", "expires_at", "created_at"}

	t.Run("found", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(`FROM shares WHERE token_digest = \$1`).WithArgs("d").
			WillReturnRows(sqlmock.NewRows(cols).AddRow("s1", "m1", "u1", "d", []byte(`["x@example.com"]`), time.Now(), time.Now()))

		g, err := repo.GetByDigest(context.Background(), "d")
		require.NoError(t, err)
		assert.Equal(t, []string{"x@example.com"}, g.Recipients)
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(`FROM shares`).WillReturnError(sql.ErrNoRows)
		_, err := repo.GetByDigest(context.Background(), "d")
		assert.ErrorIs(t, err, common.ErrorNotFound)
	})
}
