package aggregate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/habitlog/internal/db"
)

const (
	// DefaultRange is used when the caller does not ask for a range.
	DefaultRange = "30d"
	// MaxRangeDays bounds the stats window.
	MaxRangeDays = 3650
)

var rangePattern = regexp.MustCompile(`^(\d+)d$`)

// Range is a stats window of Days days ending today.
type Range struct {
	Raw  string
	Days int
}

// ParseRange parses strings such as "30d". An empty string means DefaultRange.
func ParseRange(raw string) (Range, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = DefaultRange
	}

	match := rangePattern.FindStringSubmatch(raw)
	if match == nil {
		return Range{}, fmt.Errorf("%w: range %q must look like 30d", ErrInvalidInput, raw)
	}

	days, err := strconv.Atoi(match[1])
	if err != nil || days < 1 || days > MaxRangeDays {
		return Range{}, fmt.Errorf("%w: range must be between 1d and %dd", ErrInvalidInput, MaxRangeDays)
	}

	return Range{Raw: raw, Days: days}, nil
}

// Start is the first date of the window that ends at today.
func (r Range) Start(today time.Time) time.Time {
	return DateOf(today).AddDate(0, 0, -(r.Days - 1))
}

// LookbackStart is the earliest date whose logs Summarize needs: the range
// start or the streak horizon, whichever is older.
func (r Range) LookbackStart(today time.Time) time.Time {
	start := r.Start(today)
	horizon := DateOf(today).AddDate(0, 0, -(MaxStreakDays - 1))
	if horizon.Before(start) {
		return horizon
	}
	return start
}

// Completion is the overall completion of all habits over the window.
type Completion struct {
	Completed int     `json:"completed"`
	Total     int     `json:"total"`
	Rate      float64 `json:"rate"`
}

// Stats is the statistics view.
type Stats struct {
	Range          string         `json:"range"`
	StartDate      string         `json:"start_date"`
	EndDate        string         `json:"end_date"`
	CurrentStreak  int            `json:"current_streak"`
	Completion     Completion     `json:"completion"`
	WeeklyOverview []WeekdayCount `json:"weekly_overview"`
	TopHabits      []HabitRate    `json:"top_habits"`
}

// Summarize computes the statistics view for the window r ending at today.
// logs should cover r.LookbackStart(today) through today; logs outside the
// window only feed the streak and the weekly overview.
func Summarize(habits []db.Habit, logs []db.HabitLog, today time.Time, r Range) Stats {
	end := DateOf(today)
	start := r.Start(end)
	from, to := FormatDate(start), FormatDate(end)

	owned := habitIDs(habits)
	scoped := make([]db.HabitLog, 0, len(logs))
	completedInRange := 0
	for _, log := range logs {
		if !log.Completed {
			continue
		}
		if _, ok := owned[log.HabitID]; !ok {
			continue
		}
		scoped = append(scoped, log)
		if log.LogDate >= from && log.LogDate <= to {
			completedInRange++
		}
	}

	total := len(habits) * r.Days

	return Stats{
		Range:         r.Raw,
		StartDate:     from,
		EndDate:       to,
		CurrentStreak: CurrentStreak(habits, scoped, end),
		Completion: Completion{
			Completed: completedInRange,
			Total:     total,
			Rate:      percent(completedInRange, total),
		},
		WeeklyOverview: WeeklyOverview(scoped, len(habits), end),
		TopHabits:      TopHabits(habits, scoped, start, end),
	}
}
