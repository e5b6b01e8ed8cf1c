package models

import (
	"encoding/json"
	"time"

	"github.com/dmitrijs2005/daybook/internal/calendar"
)

// UserStreak is the persisted streak row, one per user.
type UserStreak struct {
	UserID           string         `json:"user_id"`
	CurrentStreak    int            `json:"current_streak"`
	LongestStreak    int            `json:"longest_streak"`
	LastActivityDate *calendar.Date `json:"last_activity_date"`
	StreakStartDate  *calendar.Date `json:"streak_start_date"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// IsAtRisk is true when a running streak has no activity today yet.
func (s UserStreak) IsAtRisk(today calendar.Date) bool {
	return s.CurrentStreak > 0 && (s.LastActivityDate == nil || *s.LastActivityDate != today)
}

type RewardType string

const (
	RewardWeekly  RewardType = "weekly"
	RewardMonthly RewardType = "monthly"
)

// StreakReward is a milestone grant; unique per (user, type, days).
type StreakReward struct {
	ID                string          `json:"id"`
	UserID            string          `json:"user_id"`
	RewardType        RewardType      `json:"reward_type"`
	StreakDays        int             `json:"streak_days"`
	RewardData        json.RawMessage `json:"reward_data,omitempty"`
	ArtifactGenerated bool            `json:"artifact_generated"`
	CreatedAt         time.Time       `json:"created_at"`
}

// Profile is per-user server state.
type Profile struct {
	UserID    string    `json:"user_id"`
	Migrated  bool      `json:"migrated"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Share grants read access to one moment through a signed token.
type Share struct {
	ID         string    `json:"id"`
	MomentID   string    `json:"moment_id"`
	UserID     string    `json:"user_id"`
	Token      string    `json:"token"`
	URL        string    `json:"url"`
	Recipients []string  `json:"recipients"`
	ExpiresAt  time.Time `json:"expires_at"`
	CreatedAt  time.Time `json:"created_at"`
}
