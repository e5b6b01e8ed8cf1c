package rewards

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/daybook/internal/dbx"
	"github.com/dmitrijs2005/daybook/internal/models"
)

const columns = `id, user_id, reward_type, streak_days, reward_data, artifact_generated, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReward(s scanner) (*models.StreakReward, error) {
	r := &models.StreakReward{}
	var data []byte
	if err := s.Scan(&r.ID, &r.UserID, &r.RewardType, &r.StreakDays, &data, &r.ArtifactGenerated, &r.CreatedAt); err != nil {
		return nil, err
	}
	if len(data) > 0 {
		r.RewardData = json.RawMessage(data)
	}
	return r, nil
}

func (r *PostgresRepository) InsertIfAbsent(ctx context.Context, id, userID string, rewardType models.RewardType, streakDays int, payload json.RawMessage) (*models.StreakReward, bool, error) {
	if len(payload) == 0 {
		payload = json.RawMessage(`{}`)
	}

	insert := `INSERT INTO streak_rewards (id, user_id, reward_type, streak_days, reward_data)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id, reward_type, streak_days) DO NOTHING
		 RETURNING ` + columns

	row, err := scanReward(r.db.QueryRowContext(ctx, insert, id, userID, string(rewardType), streakDays, string(payload)))
	if err == nil {
		return row, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("db error: %w", err)
	}

	existing := `SELECT ` + columns + ` FROM streak_rewards
		 WHERE user_id = $1 AND reward_type = $2 AND streak_days = $3`
	row, err = scanReward(r.db.QueryRowContext(ctx, existing, userID, string(rewardType), streakDays))
	if err != nil {
		return nil, false, fmt.Errorf("db error: %w", err)
	}
	return row, false, nil
}

func (r *PostgresRepository) List(ctx context.Context, userID string) ([]models.StreakReward, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+columns+` FROM streak_rewards WHERE user_id = $1 ORDER BY created_at DESC, streak_days DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := []models.StreakReward{}
	for rows.Next() {
		rw, err := scanReward(rows)
		if err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		out = append(out, *rw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}

// MarkArtifact flags the reward's artifact as generated. It is the only
// mutation a reward row ever sees.
func (r *PostgresRepository) MarkArtifact(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE streak_rewards SET artifact_generated = TRUE WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.ExpectOneRow(res)
}
