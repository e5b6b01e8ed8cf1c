package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/daybook/internal/client/mutation"
	"github.com/dmitrijs2005/daybook/internal/common"
	"github.com/dmitrijs2005/daybook/internal/models"
)

const notePreview = 60

func formatMoment(m models.Moment) string {
	var b strings.Builder
	if m.IsFeatured {
		b.WriteString("[*] ")
	}
	fmt.Fprintf(&b, "%s  %s", m.Date, m.Title)
	if m.Photo != "" {
		b.WriteString(" (photo)")
	}
	if models.IsPlaceholderID(m.ID) {
		b.WriteString(" (saving...)")
	}
	if m.Note != "" {
		line, _, multiline := strings.Cut(m.Note, "\n")
		r := []rune(line)
		if len(r) > notePreview {
			r, multiline = r[:notePreview], true
		}
		fmt.Fprintf(&b, " - %s", string(r))
		if multiline {
			b.WriteString("...")
		}
	}
	return b.String()
}

func formatReward(r models.StreakReward) string {
	return fmt.Sprintf("%s reward for a %d-day streak (%s)", r.RewardType, r.StreakDays, r.CreatedAt.Local().Format("2006-01-02"))
}

func days(n int) string {
	if n == 1 {
		return "day"
	}
	return "days"
}

// describe turns an error into a short message for the user.
func describe(err error) string {
	var (
		msg string
		ve  *models.ValidationError
	)
	switch {
	case errors.Is(err, common.ErrTokenExpired):
		msg = "your session expired, please log in again"
	case errors.Is(err, common.ErrorUnauthorized):
		msg = "not authorized"
	case errors.Is(err, common.ErrorForbidden):
		msg = "not allowed"
	case errors.Is(err, common.ErrorNotFound):
		msg = "not found"
	case errors.Is(err, common.ErrorAlreadyExists):
		msg = "already exists"
	case errors.Is(err, common.ErrUnavailable):
		msg = "server unavailable, try again later"
	case errors.As(err, &ve):
		msg = ve.Error()
	default:
		msg = err.Error()
	}

	var me *mutation.Error
	if errors.As(err, &me) && me.State == mutation.StateRolledBack {
		msg += " (change undone)"
	}
	return msg
}
