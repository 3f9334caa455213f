package aggregate

import (
	"cmp"
	"math"
	"slices"
	"time"

	"github.com/habitlog/internal/db"
)

// TopHabitsLimit caps the ranking length.
const TopHabitsLimit = 5

// HabitRate is a habit's completion rate over a date range.
type HabitRate struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	CompletionRate float64 `json:"completion_rate"`
	CompletedCount int     `json:"completed_count"`
	TotalDays      int     `json:"total_days"`
}

// TopHabits ranks habits by the share of days in [start, end] on which they
// were completed. Equal rates are ordered by habit id.
func TopHabits(habits []db.Habit, logs []db.HabitLog, start, end time.Time) []HabitRate {
	if len(habits) == 0 {
		return []HabitRate{}
	}

	days := DaysInclusive(start, end)
	from, to := FormatDate(DateOf(start)), FormatDate(DateOf(end))

	counts := make(map[string]int, len(habits))
	for _, log := range logs {
		if !log.Completed || log.LogDate < from || log.LogDate > to {
			continue
		}
		counts[log.HabitID]++
	}

	rates := make([]HabitRate, 0, len(habits))
	for _, habit := range habits {
		completed := counts[habit.ID]
		rates = append(rates, HabitRate{
			ID:             habit.ID,
			Title:          habit.Title,
			CompletionRate: percent(completed, days),
			CompletedCount: completed,
			TotalDays:      days,
		})
	}

	slices.SortStableFunc(rates, func(a, b HabitRate) int {
		if diff := cmp.Compare(b.CompletionRate, a.CompletionRate); diff != 0 {
			return diff
		}
		return cmp.Compare(a.ID, b.ID)
	})

	if len(rates) > TopHabitsLimit {
		rates = rates[:TopHabitsLimit]
	}
	return rates
}

// percent returns part/whole as a percentage rounded to one decimal, clamped
// to [0, 100]. A zero whole yields 0.
func percent(part, whole int) float64 {
	if whole <= 0 || part <= 0 {
		return 0
	}
	rate := math.Round(float64(part)/float64(whole)*1000) / 10
	return math.Min(rate, 100)
}
