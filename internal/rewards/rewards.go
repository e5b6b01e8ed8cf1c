// Package rewards decides which streak milestones are due and mints them.
package rewards

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/daybook/internal/logging"
	"github.com/dmitrijs2005/daybook/internal/models"
)

// Threshold grants Type every time the streak reaches a multiple of Days.
type Threshold struct {
	Days int
	Type models.RewardType
}

// DefaultThresholds are the weekly and monthly milestones.
var DefaultThresholds = []Threshold{
	{Days: 7, Type: models.RewardWeekly},
	{Days: 30, Type: models.RewardMonthly},
}

// Grant is a reward that should exist for the user.
type Grant struct {
	Type       models.RewardType
	StreakDays int
	Payload    json.RawMessage
}

// Evaluate returns the grants earned by moving from previous to current.
// Nothing is granted unless the streak grew.
func Evaluate(previous, current int, thresholds []Threshold) []Grant {
	if current <= previous || current <= 0 {
		return nil
	}
	var out []Grant
	for _, th := range thresholds {
		if th.Days <= 0 || current%th.Days != 0 {
			continue
		}
		out = append(out, Grant{Type: th.Type, StreakDays: current, Payload: payload(th, current)})
	}
	return out
}

func payload(th Threshold, days int) json.RawMessage {
	b, _ := json.Marshal(struct {
		Label      string `json:"label"`
		StreakDays int    `json:"streak_days"`
		Milestone  int    `json:"milestone"`
	}{
		Label:      fmt.Sprintf("%d-day streak", days),
		StreakDays: days,
		Milestone:  days / th.Days,
	})
	return b
}

// Store is the slice of the record store the granter needs.
type Store interface {
	InsertRewardIfAbsent(ctx context.Context, userID string, rewardType models.RewardType, streakDays int, payload json.RawMessage) (*models.StreakReward, bool, error)
}

// Outcome reports one minted or pre-existing reward.
type Outcome struct {
	Reward  models.StreakReward
	Created bool
}

type Granter struct {
	store Store
	log   logging.Logger
}

func NewGranter(store Store, log logging.Logger) *Granter {
	if log == nil {
		log = logging.Nop{}
	}
	return &Granter{store: store, log: log.With("module", "rewards")}
}

// Grant inserts every grant that does not exist yet. A grant that already
// exists is reported with Created=false. Failures are collected so one bad
// insert does not block the others.
func (g *Granter) Grant(ctx context.Context, userID string, grants []Grant) ([]Outcome, error) {
	var (
		out  []Outcome
		errs []error
	)
	for _, gr := range grants {
		r, created, err := g.store.InsertRewardIfAbsent(ctx, userID, gr.Type, gr.StreakDays, gr.Payload)
		if err != nil {
			g.log.Error(ctx, "reward insert failed", "user_id", userID, "type", gr.Type, "days", gr.StreakDays, "error", err)
			errs = append(errs, fmt.Errorf("grant %s/%d: %w", gr.Type, gr.StreakDays, err))
			continue
		}
		if created {
			g.log.Info(ctx, "reward granted", "user_id", userID, "type", gr.Type, "days", gr.StreakDays)
		}
		out = append(out, Outcome{Reward: *r, Created: created})
	}
	return out, errors.Join(errs...)
}
