package streaks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/daybook/internal/calendar"
	"github.com/dmitrijs2005/daybook/internal/common"
	"github.com/dmitrijs2005/daybook/internal/dbx"
	"github.com/dmitrijs2005/daybook/internal/models"
)

const columns = `user_id, current_streak, longest_streak, last_activity_date, streak_start_date, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanStreak(row *sql.Row) (*models.UserStreak, error) {
	s := &models.UserStreak{}
	var last, start calendar.Date
	if err := row.Scan(&s.UserID, &s.CurrentStreak, &s.LongestStreak, &last, &start, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.LastActivityDate = datePtr(last)
	s.StreakStartDate = datePtr(start)
	return s, nil
}

func datePtr(d calendar.Date) *calendar.Date {
	if d.IsZero() {
		return nil
	}
	return &d
}

func dateArg(d *calendar.Date) any {
	if d == nil {
		return nil
	}
	return *d
}

func (r *PostgresRepository) Get(ctx context.Context, userID string) (*models.UserStreak, error) {
	s, err := scanStreak(r.db.QueryRowContext(ctx,
		`SELECT `+columns+` FROM user_streaks WHERE user_id = $1`, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

// Upsert writes the row. The stored longest streak never decreases, even
// when two writers race.
func (r *PostgresRepository) Upsert(ctx context.Context, in models.UserStreak) (*models.UserStreak, error) {
	query := `INSERT INTO user_streaks (user_id, current_streak, longest_streak, last_activity_date, streak_start_date)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id) DO UPDATE SET
		   current_streak = EXCLUDED.current_streak,
		   longest_streak = GREATEST(user_streaks.longest_streak, EXCLUDED.longest_streak),
		   last_activity_date = EXCLUDED.last_activity_date,
		   streak_start_date = EXCLUDED.streak_start_date,
		   updated_at = now()
		 RETURNING ` + columns

	s, err := scanStreak(r.db.QueryRowContext(ctx, query,
		in.UserID, in.CurrentStreak, in.LongestStreak, dateArg(in.LastActivityDate), dateArg(in.StreakStartDate)))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}
