package profiles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/daybook/internal/common"
	"github.com/dmitrijs2005/daybook/internal/dbx"
	"github.com/dmitrijs2005/daybook/internal/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Ensure creates the profile row if it does not exist yet.
func (r *PostgresRepository) Ensure(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO profiles (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID string) (*models.Profile, error) {
	p := &models.Profile{}
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, migrated, updated_at FROM profiles WHERE user_id = $1`, userID).
		Scan(&p.UserID, &p.Migrated, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

// MarkMigrated sets the flag; repeated calls are no-ops.
func (r *PostgresRepository) MarkMigrated(ctx context.Context, userID string) (*models.Profile, error) {
	query := `INSERT INTO profiles (user_id, migrated) VALUES ($1, TRUE)
		 ON CONFLICT (user_id) DO UPDATE SET
		   migrated = TRUE,
		   updated_at = CASE WHEN profiles.migrated THEN profiles.updated_at ELSE now() END
		 RETURNING user_id, migrated, updated_at`

	p := &models.Profile{}
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&p.UserID, &p.Migrated, &p.UpdatedAt); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}
