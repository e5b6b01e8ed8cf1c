package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/daybook/internal/common"
	"github.com/dmitrijs2005/daybook/internal/models"
	"github.com/dmitrijs2005/daybook/internal/server/repositories/repomanager"
)

type ProfileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewProfileService(db *sql.DB, m repomanager.RepositoryManager) *ProfileService {
	return &ProfileService{db: db, repomanager: m}
}

// Get never fails for a missing row: a user without a profile has not migrated.
func (s *ProfileService) Get(ctx context.Context, userID string) (*models.Profile, error) {
	p, err := s.repomanager.Profiles(s.db).Get(ctx, userID)
	if errors.Is(err, common.ErrorNotFound) {
		return &models.Profile{UserID: userID}, nil
	}
	return p, err
}

func (s *ProfileService) MarkMigrated(ctx context.Context, userID string) (*models.Profile, error) {
	return s.repomanager.Profiles(s.db).MarkMigrated(ctx, userID)
}
