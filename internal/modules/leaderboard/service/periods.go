package service

import (
	"time"

	"naffles.com/pointsbackend/internal/model"
)

// allTimeSentinel is the far-future end date of the open-ended period.
var allTimeSentinel = time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC)

// PeriodBounds returns the [start, end) window of the period containing now.
// Daily runs local midnight to midnight, weekly is Sunday-aligned, monthly is
// the calendar month, and all_time spans epoch to a far-future sentinel.
func PeriodBounds(period string, now time.Time) (time.Time, time.Time) {
	switch period {
	case model.PeriodDaily:
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return start, start.AddDate(0, 0, 1)
	case model.PeriodWeekly:
		midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		start := midnight.AddDate(0, 0, -int(now.Weekday()))
		return start, start.AddDate(0, 0, 7)
	case model.PeriodMonthly:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return start, start.AddDate(0, 1, 0)
	default: // all_time
		return time.Unix(0, 0), allTimeSentinel
	}
}

// RankChange classifies the movement between two recompute passes.
func RankChange(previousRank, newRank int) string {
	switch {
	case previousRank == 0:
		return model.ChangeNew
	case newRank < previousRank:
		return model.ChangeUp
	case newRank > previousRank:
		return model.ChangeDown
	default:
		return model.ChangeSame
	}
}
