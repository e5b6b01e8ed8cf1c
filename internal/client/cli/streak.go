package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/daybook/internal/models"
)

// Streak recomputes the streak and prints it.
func (a *App) Streak(ctx context.Context) error {
	s, err := a.current()
	if err != nil {
		return a.report("Streak", err)
	}
	if err := s.RefreshStreak(ctx); err != nil {
		fmt.Fprintf(a.out, "Could not refresh the streak: %s\n", describe(err))
	}

	st := s.Streak()
	if !st.Known {
		fmt.Fprintln(a.out, "Streak: unknown right now")
		return nil
	}
	fmt.Fprintf(a.out, "Current streak: %d %s (longest %d)\n", st.CurrentStreak, days(st.CurrentStreak), st.LongestStreak)
	if st.IsAtRisk {
		fmt.Fprintln(a.out, "Add a moment today to keep it going!")
	}
	return nil
}

// Rewards lists every reward of the user and marks them as seen.
func (a *App) Rewards(ctx context.Context) error {
	rs, err := a.remote.ListRewards(ctx, a.userID)
	if err != nil {
		return a.report("Rewards", err)
	}
	if len(rs) == 0 {
		fmt.Fprintln(a.out, "No rewards yet. Keep your streak going!")
		return nil
	}
	for _, r := range rs {
		mark := " "
		if !r.ArtifactGenerated {
			mark = "*"
		}
		fmt.Fprintf(a.out, "%s %s\n", mark, formatReward(r))
		if !r.ArtifactGenerated {
			if err := a.remote.MarkRewardArtifact(ctx, a.userID, r.ID); err != nil {
				a.log.Warn(ctx, "mark reward seen", "reward_id", r.ID, "error", err)
			}
		}
	}
	return nil
}

func (a *App) notifyRewards(ctx context.Context, ch <-chan models.StreakReward) {
	for {
		select {
		case <-ctx.Done():
			return
		case r := <-ch:
			fmt.Fprintf(a.out, "\nNew reward: %s\n", formatReward(r))
		}
	}
}
