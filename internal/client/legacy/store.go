// Package legacy reads moments kept by the old offline-only app in a local
// SQLite file and imports them into the account once.
package legacy

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/daybook/internal/calendar"
	"github.com/dmitrijs2005/daybook/internal/client/legacy/migrations"
	"github.com/dmitrijs2005/daybook/internal/dbx"
	"github.com/dmitrijs2005/daybook/internal/filex"
	"github.com/dmitrijs2005/daybook/internal/models"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// Record is one row of the legacy store.
type Record struct {
	ID    string
	Title string
	Note  string
	Date  string
	Photo string
}

// Input converts r for import. A date that does not parse is left zero;
// the server skips such rows.
func (r Record) Input() models.MomentInput {
	d, _ := calendar.Parse(r.Date)
	return models.MomentInput{
		Title:    r.Title,
		Note:     r.Note,
		Date:     d,
		Photo:    r.Photo,
		LegacyID: r.ID,
	}
}

type Store struct {
	db *sql.DB
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	return goose.UpContext(ctx, db, ".")
}

// Open opens or creates the store at path and brings its schema up to date.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := filex.EnsureParentDir(path); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open legacy store: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate legacy store: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Put inserts or replaces a record.
func (s *Store) Put(ctx context.Context, r Record) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO moments (id, title, note, date, photo) VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET title = excluded.title, note = excluded.note,
				date = excluded.date, photo = excluded.photo`,
			r.ID, r.Title, r.Note, r.Date, r.Photo)
		if err != nil {
			return fmt.Errorf("put legacy moment: %w", err)
		}
		return nil
	})
}

// All returns every record, oldest first.
func (s *Store) All(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, title, note, date, photo FROM moments ORDER BY date, created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("select legacy moments: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.Title, &r.Note, &r.Date, &r.Photo); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
