package rpc

import (
	"encoding/json"
	"time"

	"github.com/dmitrijs2005/daybook/internal/calendar"
	"github.com/dmitrijs2005/daybook/internal/models"
)

// Scope names the user a request acts on. The server rejects requests whose
// scope differs from the authenticated user.
type Scope struct {
	UserID string `json:"user_id"`
}

func (s Scope) GetUserID() string { return s.UserID }

// Scoped is implemented by every request that carries a Scope.
type Scoped interface {
	GetUserID() string
}

type Empty struct{}

type PingResponse struct {
	Status string `json:"status"`
}

type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	UserID string `json:"user_id"`
}

type LoginResponse struct {
	UserID      string    `json:"user_id"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type ListMomentsRequest struct {
	Scope
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

type ListMomentsResponse struct {
	Moments []models.Moment `json:"moments"`
}

type InsertMomentRequest struct {
	Scope
	Input models.MomentInput `json:"input"`
}

type MomentResponse struct {
	Moment *models.Moment `json:"moment"`
}

type MomentRequest struct {
	Scope
	ID string `json:"id"`
}

type SetFeaturedRequest struct {
	Scope
	ID       string `json:"id"`
	Featured bool   `json:"featured"`
}

type MomentDatesResponse struct {
	Dates []calendar.Date `json:"dates"`
}

// UserRequest is used by methods that need nothing beyond the scope.
type UserRequest struct {
	Scope
}

type UserStreakResponse struct {
	Streak *models.UserStreak `json:"streak"`
}

type UpsertUserStreakRequest struct {
	Scope
	Streak models.UserStreak `json:"streak"`
}

type InsertRewardRequest struct {
	Scope
	RewardType models.RewardType `json:"reward_type"`
	StreakDays int               `json:"streak_days"`
	Payload    json.RawMessage   `json:"payload,omitempty"`
}

type InsertRewardResponse struct {
	Reward  *models.StreakReward `json:"reward"`
	Created bool                 `json:"created"`
}

type ListRewardsResponse struct {
	Rewards []models.StreakReward `json:"rewards"`
}

type MarkRewardArtifactRequest struct {
	Scope
	RewardID string `json:"reward_id"`
}

type ProfileResponse struct {
	Profile *models.Profile `json:"profile"`
}

type ImportMomentsRequest struct {
	Scope
	Inputs []models.MomentInput `json:"inputs"`
}

type ImportMomentsResponse struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

type ShareMomentRequest struct {
	Scope
	MomentID   string   `json:"moment_id"`
	Recipients []string `json:"recipients"`
}

type ShareMomentResponse struct {
	Share *models.Share `json:"share"`
}

type OpenShareRequest struct {
	Token string `json:"token"`
}

type PhotoUploadURLRequest struct {
	Scope
	ContentType string `json:"content_type"`
}

type PhotoUploadURLResponse struct {
	Ref       string `json:"ref"`
	UploadURL string `json:"upload_url"`
}

type PhotoURLRequest struct {
	Scope
	Ref string `json:"ref"`
}

type PhotoURLResponse struct {
	URL string `json:"url"`
}
