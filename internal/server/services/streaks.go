package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/dmitrijs2005/daybook/internal/common"
	"github.com/dmitrijs2005/daybook/internal/logging"
	"github.com/dmitrijs2005/daybook/internal/models"
	"github.com/dmitrijs2005/daybook/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/daybook/internal/server/streakcache"
	"github.com/google/uuid"
)

// StreakService persists streak rows and reward grants. Streak values are
// computed by the client; the server only enforces row invariants.
type StreakService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cache       streakcache.Cache
	logger      logging.Logger
}

func NewStreakService(db *sql.DB, m repomanager.RepositoryManager, cache streakcache.Cache, l logging.Logger) *StreakService {
	return &StreakService{db: db, repomanager: m, cache: cache, logger: l.With("module", "streaks")}
}

// Get returns the user's row, or nil when none has been written yet.
func (s *StreakService) Get(ctx context.Context, userID string) (*models.UserStreak, error) {
	if row, ok := s.cache.Get(ctx, userID); ok {
		return row, nil
	}
	row, err := s.repomanager.Streaks(s.db).Get(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		return nil, err
	}
	s.cache.Set(ctx, row)
	return row, nil
}

func (s *StreakService) Upsert(ctx context.Context, userID string, in models.UserStreak) (*models.UserStreak, error) {
	switch {
	case in.CurrentStreak < 0:
		return nil, &models.ValidationError{Field: "current_streak", Reason: "must not be negative"}
	case in.LongestStreak < in.CurrentStreak:
		return nil, &models.ValidationError{Field: "longest_streak", Reason: "must be at least current_streak"}
	case in.CurrentStreak == 0 && in.StreakStartDate != nil:
		return nil, &models.ValidationError{Field: "streak_start_date", Reason: "must be empty without a running streak"}
	}
	in.UserID = userID

	// racing upserts may return out of order; the next Get reads the winner
	// from Postgres instead of whichever reply was cached last
	row, err := s.repomanager.Streaks(s.db).Upsert(ctx, in)
	s.cache.Delete(ctx, userID)
	if err != nil {
		return nil, err
	}
	return row, nil
}

// InsertRewardIfAbsent mints a reward once per (user, type, days).
func (s *StreakService) InsertRewardIfAbsent(ctx context.Context, userID string, rewardType models.RewardType, streakDays int, payload json.RawMessage) (*models.StreakReward, bool, error) {
	if rewardType != models.RewardWeekly && rewardType != models.RewardMonthly {
		return nil, false, &models.ValidationError{Field: "reward_type", Reason: "is unknown"}
	}
	if streakDays <= 0 {
		return nil, false, &models.ValidationError{Field: "streak_days", Reason: "must be positive"}
	}
	if len(payload) > 0 && !json.Valid(payload) {
		return nil, false, &models.ValidationError{Field: "payload", Reason: "is not valid JSON"}
	}

	r, created, err := s.repomanager.Rewards(s.db).InsertIfAbsent(ctx, uuid.NewString(), userID, rewardType, streakDays, payload)
	if err != nil {
		return nil, false, err
	}
	if created {
		s.logger.Info(ctx, "reward minted", "user_id", userID, "type", rewardType, "days", streakDays)
	}
	return r, created, nil
}

func (s *StreakService) ListRewards(ctx context.Context, userID string) ([]models.StreakReward, error) {
	return s.repomanager.Rewards(s.db).List(ctx, userID)
}

func (s *StreakService) MarkRewardArtifact(ctx context.Context, userID, rewardID string) error {
	return s.repomanager.Rewards(s.db).MarkArtifact(ctx, userID, rewardID)
}
