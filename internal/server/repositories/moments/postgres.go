package moments

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

const columns = `id, user_id, seq, title, note, moment_date, photo, is_featured, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMoment(s scanner) (*models.Moment, error) {
	m := &models.Moment{}
	err := s.Scan(&m.ID, &m.UserID, &m.Seq, &m.Title, &m.Note, &m.Date, &m.Photo, &m.IsFeatured, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// List returns one page in list order: featured first, newest date, newest insertion.
func (r *PostgresRepository) List(ctx context.Context, userID string, limit, offset int) ([]models.Moment, error) {
	query := `SELECT ` + columns + ` FROM moments
		 WHERE user_id = $1
		 ORDER BY is_featured DESC, moment_date DESC, seq DESC
		 LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := make([]models.Moment, 0, limit)
	for rows.Next() {
		m, err := scanMoment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID, id string) (*models.Moment, error) {
	query := `SELECT ` + columns + ` FROM moments WHERE user_id = $1 AND id = $2`

	m, err := scanMoment(r.db.QueryRowContext(ctx, query, userID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return m, nil
}

func (r *PostgresRepository) Insert(ctx context.Context, userID, id string, in models.MomentInput) (*models.Moment, error) {
	query := `INSERT INTO moments (id, user_id, title, note, moment_date, photo)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING ` + columns

	m, err := scanMoment(r.db.QueryRowContext(ctx, query, id, userID, in.Title, in.Note, in.Date, in.Photo))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return m, nil
}

func (r *PostgresRepository) InsertLegacy(ctx context.Context, userID, id string, in models.MomentInput) (bool, error) {
	query := `INSERT INTO moments (id, user_id, title, note, moment_date, photo, legacy_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (user_id, legacy_id) WHERE legacy_id IS NOT NULL DO NOTHING`

	res, err := r.db.ExecContext(ctx, query, id, userID, in.Title, in.Note, in.Date, in.Photo, in.LegacyID)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return n == 1, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM moments WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.ExpectOneRow(res)
}

func (r *PostgresRepository) SetFeatured(ctx context.Context, userID, id string, featured bool) (*models.Moment, error) {
	query := `UPDATE moments SET is_featured = $3, updated_at = now()
		 WHERE user_id = $1 AND id = $2
		 RETURNING ` + columns

	m, err := scanMoment(r.db.QueryRowContext(ctx, query, userID, id, featured))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return m, nil
}

// Dates returns the distinct days on which the user recorded a moment, newest first.
func (r *PostgresRepository) Dates(ctx context.Context, userID string) ([]calendar.Date, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT moment_date FROM moments WHERE user_id = $1 ORDER BY moment_date DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []calendar.Date
	for rows.Next() {
		var d calendar.Date
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}
