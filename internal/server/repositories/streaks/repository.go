package streaks

import (
	"context"

	"github.com/dmitrijs2005/daybook/internal/models"
)

type Repository interface {
	Get(ctx context.Context, userID string) (*models.UserStreak, error)
	Upsert(ctx context.Context, s models.UserStreak) (*models.UserStreak, error)
}
