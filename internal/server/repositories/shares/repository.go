package shares

import (
	"context"

	"github.com/dmitrijs2005/daybook/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, g *models.ShareGrant) (*models.ShareGrant, error)
	GetByDigest(ctx context.Context, digest string) (*models.ShareGrant, error)
}
