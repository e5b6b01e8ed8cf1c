package shares

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/daybook/internal/common"
	"github.com/dmitrijs2005/daybook/internal/dbx"
	"github.com/dmitrijs2005/daybook/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, g *models.ShareGrant) (*models.ShareGrant, error) {
	recipients, err := json.Marshal(g.Recipients)
	if err != nil {
		return nil, fmt.Errorf("encode recipients: %w", err)
	}

	query := `INSERT INTO shares (id, moment_id, user_id, token_digest, recipients, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at`

	err = r.db.QueryRowContext(ctx, query,
		g.ID, g.MomentID, g.UserID, g.TokenDigest, string(recipients), g.ExpiresAt).Scan(&g.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return g, nil
}

func (r *PostgresRepository) GetByDigest(ctx context.Context, digest string) (*models.ShareGrant, error) {
	query := `SELECT id, moment_id, user_id, token_digest, recipients, expires_at, created_at
		 FROM shares WHERE token_digest = $1`

	g := &models.ShareGrant{}
	var recipients []byte
	err := r.db.QueryRowContext(ctx, query, digest).
		Scan(&g.ID, &g.MomentID, &g.UserID, &g.TokenDigest, &recipients, &g.ExpiresAt, &g.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if err := json.Unmarshal(recipients, &g.Recipients); err != nil {
		return nil, fmt.Errorf("decode recipients: %w", err)
	}
	return g, nil
}
