package rewards

import (
	"context"
	"encoding/json"

	"github.com/dmitrijs2005/daybook/internal/models"
)

type Repository interface {
	// InsertIfAbsent returns the stored row and whether this call created it.
	InsertIfAbsent(ctx context.Context, id, userID string, rewardType models.RewardType, streakDays int, payload json.RawMessage) (*models.StreakReward, bool, error)
	List(ctx context.Context, userID string) ([]models.StreakReward, error)
	MarkArtifact(ctx context.Context, userID, id string) error
}
