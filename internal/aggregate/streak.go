package aggregate

import (
	"time"

	"github.com/habitlog/internal/db"
)

// MaxStreakDays bounds how far back the streak walk goes.
const MaxStreakDays = 365

// CurrentStreak counts consecutive days, ending at end and walking backward,
// on which at least one habit was completed. The end date itself must have a
// completion to count.
func CurrentStreak(habits []db.Habit, logs []db.HabitLog, end time.Time) int {
	if len(habits) == 0 {
		return 0
	}

	active := completedDates(habits, logs)
	day := DateOf(end)
	streak := 0
	for streak < MaxStreakDays {
		if _, ok := active[FormatDate(day)]; !ok {
			break
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

func completedDates(habits []db.Habit, logs []db.HabitLog) map[string]struct{} {
	owned := habitIDs(habits)
	dates := make(map[string]struct{})
	for _, log := range logs {
		if !log.Completed {
			continue
		}
		if _, ok := owned[log.HabitID]; !ok {
			continue
		}
		dates[log.LogDate] = struct{}{}
	}
	return dates
}
