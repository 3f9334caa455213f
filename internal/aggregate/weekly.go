package aggregate

import (
	"time"

	"github.com/habitlog/internal/db"
)

// WeekLength is the number of entries in the weekly overview.
const WeekLength = 7

// WeekdayCount is one day of the weekly overview.
type WeekdayCount struct {
	Day            string `json:"day"`
	Date           string `json:"date"`
	CompletedCount int    `json:"completed_count"`
	TotalHabits    int    `json:"total_habits"`
}

// WeeklyOverview returns the seven days ending at end, oldest first, with the
// number of completed logs on each.
func WeeklyOverview(logs []db.HabitLog, habitCount int, end time.Time) []WeekdayCount {
	perDate := make(map[string]int)
	for _, log := range logs {
		if log.Completed {
			perDate[log.LogDate]++
		}
	}

	last := DateOf(end)
	overview := make([]WeekdayCount, 0, WeekLength)
	for i := WeekLength - 1; i >= 0; i-- {
		date := last.AddDate(0, 0, -i)
		key := FormatDate(date)
		overview = append(overview, WeekdayCount{
			Day:            WeekdayAbbrev(date),
			Date:           key,
			CompletedCount: perDate[key],
			TotalHabits:    habitCount,
		})
	}
	return overview
}
