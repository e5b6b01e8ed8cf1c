// Package streak derives consecutive-day streaks from a sparse set of
// activity dates. It is pure: callers supply the history and "today".
package streak

import (
	"slices"

	"github.com/dmitrijs2005/daybook/internal/calendar"
	"github.com/dmitrijs2005/daybook/internal/models"
)

// Result is the outcome of one computation.
type Result struct {
	CurrentStreak int
	// LongestCandidate is the longest run found anywhere in the history.
	LongestCandidate int
	LastActivityDate *calendar.Date
	StreakStartDate  *calendar.Date
}

// Compute returns the streak that is alive on today.
//
// A run is alive when its most recent day is today or yesterday; in the
// latter case the missing today is forgiven once, at the head of the walk.
// Dates after today are ignored.
func Compute(history []calendar.Date, today calendar.Date) Result {
	dates := normalize(history, today)
	if len(dates) == 0 {
		return Result{}
	}

	mostRecent := dates[0]
	res := Result{
		LastActivityDate: ptr(mostRecent),
		LongestCandidate: longestRun(dates),
	}

	if calendar.DaysBetween(mostRecent, today) > 1 {
		return res
	}

	cursor := today
	absorbed := false
	var start calendar.Date
walk:
	for _, d := range dates {
		switch {
		case d == cursor:
		case !absorbed && res.CurrentStreak == 0 && d == cursor.AddDays(-1):
			absorbed = true
		default:
			break walk
		}
		res.CurrentStreak++
		start = d
		cursor = d.AddDays(-1)
	}
	if res.CurrentStreak > 0 {
		res.StreakStartDate = ptr(start)
	}
	if res.LongestCandidate < res.CurrentStreak {
		res.LongestCandidate = res.CurrentStreak
	}
	return res
}

// Reconcile merges a fresh computation into the stored row. The longest
// streak never decreases; everything else takes the fresh values.
func Reconcile(previous *models.UserStreak, computed Result) models.UserStreak {
	out := models.UserStreak{
		CurrentStreak:    computed.CurrentStreak,
		LongestStreak:    max(computed.CurrentStreak, computed.LongestCandidate),
		LastActivityDate: copyDate(computed.LastActivityDate),
		StreakStartDate:  copyDate(computed.StreakStartDate),
	}
	if previous != nil {
		out.UserID = previous.UserID
		out.LongestStreak = max(out.LongestStreak, previous.LongestStreak)
	}
	return out
}

// normalize drops zero and future dates, de-duplicates and sorts newest first.
func normalize(history []calendar.Date, today calendar.Date) []calendar.Date {
	out := make([]calendar.Date, 0, len(history))
	for _, d := range history {
		if d.IsZero() || d.After(today) {
			continue
		}
		out = append(out, d)
	}
	slices.SortFunc(out, func(a, b calendar.Date) int { return b.Compare(a) })
	return slices.Compact(out)
}

// longestRun expects dates sorted descending without duplicates.
func longestRun(dates []calendar.Date) int {
	best, run := 0, 0
	for i, d := range dates {
		if i > 0 && calendar.DaysBetween(d, dates[i-1]) == 1 {
			run++
		} else {
			run = 1
		}
		best = max(best, run)
	}
	return best
}

func ptr(d calendar.Date) *calendar.Date { return &d }

func copyDate(d *calendar.Date) *calendar.Date {
	if d == nil {
		return nil
	}
	return ptr(*d)
}
