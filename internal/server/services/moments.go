package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/daybook/internal/calendar"
	"github.com/dmitrijs2005/daybook/internal/common"
	"github.com/dmitrijs2005/daybook/internal/dbx"
	"github.com/dmitrijs2005/daybook/internal/logging"
	"github.com/dmitrijs2005/daybook/internal/models"
	"github.com/dmitrijs2005/daybook/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = models.MaxPageSize
)

// MomentService stores and lists moments.
type MomentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewMomentService(db *sql.DB, m repomanager.RepositoryManager, l logging.Logger) *MomentService {
	return &MomentService{db: db, repomanager: m, logger: l.With("module", "moments")}
}

func (s *MomentService) List(ctx context.Context, userID string, limit, offset int) ([]models.Moment, error) {
	if offset < 0 {
		return nil, &models.ValidationError{Field: "offset", Reason: "must not be negative"}
	}
	// a short page means end of data to the client, so never shorten it
	if limit > MaxPageSize {
		return nil, &models.ValidationError{Field: "limit", Reason: fmt.Sprintf("must not exceed %d", MaxPageSize)}
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	return s.repomanager.Moments(s.db).List(ctx, userID, limit, offset)
}

func (s *MomentService) Get(ctx context.Context, userID, id string) (*models.Moment, error) {
	return s.repomanager.Moments(s.db).Get(ctx, userID, id)
}

func (s *MomentService) Insert(ctx context.Context, userID string, in models.MomentInput) (*models.Moment, error) {
	in, err := s.checkInput(userID, in)
	if err != nil {
		return nil, err
	}
	m, err := s.repomanager.Moments(s.db).Insert(ctx, userID, uuid.NewString(), in)
	if err != nil {
		return nil, err
	}
	s.logger.Debug(ctx, "moment inserted", "user_id", userID, "moment_id", m.ID, "date", m.Date)
	return m, nil
}

func (s *MomentService) Delete(ctx context.Context, userID, id string) error {
	return s.repomanager.Moments(s.db).Delete(ctx, userID, id)
}

func (s *MomentService) SetFeatured(ctx context.Context, userID, id string, featured bool) (*models.Moment, error) {
	return s.repomanager.Moments(s.db).SetFeatured(ctx, userID, id, featured)
}

func (s *MomentService) Dates(ctx context.Context, userID string) ([]calendar.Date, error) {
	return s.repomanager.Moments(s.db).Dates(ctx, userID)
}

// ImportLegacy inserts moments from a legacy local store in one transaction.
// Rows already imported, rows without a legacy id and rows that fail
// validation are skipped.
func (s *MomentService) ImportLegacy(ctx context.Context, userID string, inputs []models.MomentInput) (imported, skipped int, err error) {
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Moments(tx)
		imported, skipped = 0, 0
		for _, raw := range inputs {
			in, err := s.checkInput(userID, raw)
			if err != nil || in.LegacyID == "" {
				s.logger.Warn(ctx, "legacy moment skipped", "user_id", userID, "legacy_id", raw.LegacyID, "error", err)
				skipped++
				continue
			}
			ok, err := repo.InsertLegacy(ctx, userID, uuid.NewString(), in)
			if err != nil {
				return err
			}
			if ok {
				imported++
			} else {
				skipped++
			}
		}
		return nil
	})
	if err != nil {
		return 0, 0, fmt.Errorf("import legacy moments: %w", err)
	}
	s.logger.Info(ctx, "legacy import done", "user_id", userID, "imported", imported, "skipped", skipped)
	return imported, skipped, nil
}

func (s *MomentService) checkInput(userID string, in models.MomentInput) (models.MomentInput, error) {
	in, err := in.SanitizeAndValidate()
	if err != nil {
		return in, err
	}
	if key, ok := models.PhotoKey(in.Photo); ok && !strings.HasPrefix(key, PhotoKeyPrefix(userID)) {
		return in, &models.ValidationError{Field: "photo", Reason: "refers to another user's storage"}
	}
	return in, nil
}

// IsNotFound reports repository misses.
func IsNotFound(err error) bool {
	return errors.Is(err, common.ErrorNotFound)
}
