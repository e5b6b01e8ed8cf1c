package profiles

import (
	"context"

	"github.com/dmitrijs2005/daybook/internal/models"
)

type Repository interface {
	Ensure(ctx context.Context, userID string) error
	Get(ctx context.Context, userID string) (*models.Profile, error)
	MarkMigrated(ctx context.Context, userID string) (*models.Profile, error)
}
