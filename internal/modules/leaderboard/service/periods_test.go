package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"naffles.com/pointsbackend/internal/model"
)

func TestPeriodBounds_Daily(t *testing.T) {
	now := time.Date(2025, 6, 15, 13, 45, 0, 0, time.UTC)
	start, end := PeriodBounds(model.PeriodDaily, now)

	assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC), end)
}

func TestPeriodBounds_WeeklySundayAligned(t *testing.T) {
	// June 18th 2025 is a Wednesday; the week started Sunday the 15th.
	now := time.Date(2025, 6, 18, 9, 0, 0, 0, time.UTC)
	start, end := PeriodBounds(model.PeriodWeekly, now)

	assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Weekday(0), start.Weekday())
	assert.Equal(t, time.Date(2025, 6, 22, 0, 0, 0, 0, time.UTC), end)

	// A Sunday starts its own week.
	sunday := time.Date(2025, 6, 15, 23, 59, 0, 0, time.UTC)
	start, _ = PeriodBounds(model.PeriodWeekly, sunday)
	assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), start)
}

func TestPeriodBounds_MonthlyCalendar(t *testing.T) {
	now := time.Date(2025, 1, 31, 12, 0, 0, 0, time.UTC)
	start, end := PeriodBounds(model.PeriodMonthly, now)

	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), end)
}

func TestPeriodBounds_AllTime(t *testing.T) {
	start, end := PeriodBounds(model.PeriodAllTime, time.Now())

	assert.Equal(t, time.Unix(0, 0), start)
	assert.True(t, end.After(time.Now().AddDate(50, 0, 0)))

	// The same bounds come back regardless of when they're asked for, so
	// the all_time upsert always hits the same row.
	start2, end2 := PeriodBounds(model.PeriodAllTime, time.Now().AddDate(1, 0, 0))
	assert.Equal(t, start, start2)
	assert.Equal(t, end, end2)
}

func TestRankChange(t *testing.T) {
	assert.Equal(t, model.ChangeNew, RankChange(0, 5))
	assert.Equal(t, model.ChangeUp, RankChange(5, 3))
	assert.Equal(t, model.ChangeDown, RankChange(3, 5))
	assert.Equal(t, model.ChangeSame, RankChange(4, 4))
}
