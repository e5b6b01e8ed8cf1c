package moments

import (
	"context"

	"github.com/dmitrijs2005/daybook/internal/calendar"
	"github.com/dmitrijs2005/daybook/internal/models"
)

type Repository interface {
	List(ctx context.Context, userID string, limit, offset int) ([]models.Moment, error)
	Get(ctx context.Context, userID, id string) (*models.Moment, error)
	Insert(ctx context.Context, userID, id string, in models.MomentInput) (*models.Moment, error)
	// InsertLegacy is Insert keyed by in.LegacyID; an already imported row
	// is reported with inserted=false.
	InsertLegacy(ctx context.Context, userID, id string, in models.MomentInput) (bool, error)
	Delete(ctx context.Context, userID, id string) error
	SetFeatured(ctx context.Context, userID, id string, featured bool) (*models.Moment, error)
	Dates(ctx context.Context, userID string) ([]calendar.Date, error)
}
