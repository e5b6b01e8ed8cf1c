package client

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dmitrijs2005/daybook/internal/calendar"
	"github.com/dmitrijs2005/daybook/internal/models"
)

// Store is the remote record store as seen by the sync core.
type Store interface {
	// ListMoments returns one page ordered by featured desc, date desc, seq desc.
	ListMoments(ctx context.Context, userID string, limit, offset int) ([]models.Moment, error)
	InsertMoment(ctx context.Context, userID string, in models.MomentInput) (*models.Moment, error)
	DeleteMoment(ctx context.Context, userID, id string) error
	SetFeatured(ctx context.Context, userID, id string, featured bool) (*models.Moment, error)
	GetMomentDates(ctx context.Context, userID string) ([]calendar.Date, error)

	// GetUserStreak returns nil, nil when the user has no row yet.
	GetUserStreak(ctx context.Context, userID string) (*models.UserStreak, error)
	UpsertUserStreak(ctx context.Context, userID string, s models.UserStreak) (*models.UserStreak, error)
	InsertRewardIfAbsent(ctx context.Context, userID string, rewardType models.RewardType, streakDays int, payload json.RawMessage) (*models.StreakReward, bool, error)
}

// Session is the authentication result.
type Session struct {
	UserID    string
	ExpiresAt time.Time
}

// Remote is everything the CLI needs from the server.
type Remote interface {
	Store

	Ping(ctx context.Context) error
	Register(ctx context.Context, email, password string) (string, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	Logout()

	ListRewards(ctx context.Context, userID string) ([]models.StreakReward, error)
	MarkRewardArtifact(ctx context.Context, userID, rewardID string) error
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	MarkMigrated(ctx context.Context, userID string) (*models.Profile, error)
	ImportMoments(ctx context.Context, userID string, inputs []models.MomentInput) (imported, skipped int, err error)
	ShareMoment(ctx context.Context, userID, momentID string, recipients []string) (*models.Share, error)
	OpenShare(ctx context.Context, token string) (*models.Moment, error)
	PhotoUploadURL(ctx context.Context, userID, contentType string) (ref, url string, err error)
	PhotoURL(ctx context.Context, userID, ref string) (string, error)

	Close() error
}
