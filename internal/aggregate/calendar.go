package aggregate

import (
	"github.com/habitlog/internal/db"
)

// HabitMark summarizes one log on a calendar day.
type HabitMark struct {
	HabitID   string `json:"habit_id"`
	Completed bool   `json:"completed"`
}

// CalendarDay is one cell of the month grid.
type CalendarDay struct {
	Date            string      `json:"date"`
	Day             int         `json:"day"`
	Weekday         string      `json:"weekday"`
	CompletedHabits int         `json:"completed_habits"`
	TotalHabits     int         `json:"total_habits"`
	Habits          []HabitMark `json:"habits"`
}

// MonthGrid is the calendar view of a month.
type MonthGrid struct {
	Month     string        `json:"month"`
	StartDate string        `json:"start_date"`
	EndDate   string        `json:"end_date"`
	Calendar  []CalendarDay `json:"calendar"`
}

// BuildMonth produces one entry per day of month, first to last. Only completed
// logs of habits in the set are counted.
func BuildMonth(habits []db.Habit, logs []db.HabitLog, month Month) MonthGrid {
	owned := habitIDs(habits)
	byDate := make(map[string][]db.HabitLog)
	for _, log := range logs {
		if !log.Completed {
			continue
		}
		if _, ok := owned[log.HabitID]; !ok {
			continue
		}
		byDate[log.LogDate] = append(byDate[log.LogDate], log)
	}

	first := month.First()
	days := month.Days()
	grid := MonthGrid{
		Month:     month.String(),
		StartDate: FormatDate(first),
		EndDate:   FormatDate(month.Last()),
		Calendar:  make([]CalendarDay, 0, days),
	}

	for i := 0; i < days; i++ {
		date := first.AddDate(0, 0, i)
		key := FormatDate(date)
		dayLogs := byDate[key]

		marks := make([]HabitMark, 0, len(dayLogs))
		distinct := make(map[string]struct{}, len(dayLogs))
		for _, log := range dayLogs {
			marks = append(marks, HabitMark{HabitID: log.HabitID, Completed: log.Completed})
			distinct[log.HabitID] = struct{}{}
		}

		grid.Calendar = append(grid.Calendar, CalendarDay{
			Date:            key,
			Day:             date.Day(),
			Weekday:         WeekdayAbbrev(date),
			CompletedHabits: len(distinct),
			TotalHabits:     len(habits),
			Habits:          marks,
		})
	}

	return grid
}

func habitIDs(habits []db.Habit) map[string]struct{} {
	ids := make(map[string]struct{}, len(habits))
	for _, habit := range habits {
		ids[habit.ID] = struct{}{}
	}
	return ids
}
