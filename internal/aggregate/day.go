package aggregate

import (
	"time"

	"github.com/habitlog/internal/db"
)

// DayHabit is a habit's state on a single date. LogID is nil when the habit
// has no log for that date, which simply means "not done".
type DayHabit struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Schedule    db.Schedule `json:"schedule"`
	Completed   bool        `json:"completed"`
	LogID       *string     `json:"log_id"`
}

// DayDetail lists every habit with its completion state on Date.
type DayDetail struct {
	Date           string     `json:"date"`
	TotalHabits    int        `json:"total_habits"`
	CompletedCount int        `json:"completed_count"`
	Habits         []DayHabit `json:"habits"`
}

// BuildDay reports, in habit order, whether each habit was completed on date.
// Logs for other dates or for habits outside the set are ignored.
func BuildDay(habits []db.Habit, logs []db.HabitLog, date time.Time) DayDetail {
	key := FormatDate(DateOf(date))
	owned := habitIDs(habits)

	byHabit := make(map[string]db.HabitLog, len(habits))
	completed := 0
	for _, log := range logs {
		if log.LogDate != key {
			continue
		}
		if _, ok := owned[log.HabitID]; !ok {
			continue
		}
		byHabit[log.HabitID] = log
		if log.Completed {
			completed++
		}
	}

	detail := DayDetail{
		Date:           key,
		TotalHabits:    len(habits),
		CompletedCount: completed,
		Habits:         make([]DayHabit, 0, len(habits)),
	}

	for _, habit := range habits {
		item := DayHabit{
			ID:          habit.ID,
			Title:       habit.Title,
			Description: habit.Description,
			Schedule:    habit.Schedule,
		}
		if log, ok := byHabit[habit.ID]; ok {
			logID := log.ID
			item.Completed = log.Completed
			item.LogID = &logID
		}
		detail.Habits = append(detail.Habits, item)
	}

	return detail
}
