// Package seed fills a database with demo habits and check-ins.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/habitlog/internal/aggregate"
	"github.com/habitlog/internal/db"
	"github.com/habitlog/internal/service"
	"gorm.io/gorm"
)

// demoHabits 演示用的习惯，skip 表示每隔几天漏打一次卡
var demoHabits = []struct {
	title       string
	description string
	rrule       string
	time        string
	skip        int
}{
	{title: "Drink water", description: "8 glasses, **no excuses**.", rrule: "FREQ=DAILY", time: "08:00", skip: 0},
	{title: "Read", description: "20 pages before bed", rrule: "FREQ=DAILY", time: "22:00", skip: 4},
	{title: "Workout", description: "- push-ups\n- squats\n- plank", rrule: "FREQ=WEEKLY;BYDAY=MO,WE,FR", time: "07:00", skip: 2},
	{title: "Meditate", description: "Ten quiet minutes", rrule: "FREQ=DAILY", time: "21:30", skip: 3},
}

// Result 汇总一次填充写入的数量
type Result struct {
	Habits int
	Logs   int
}

// Run 为 user 创建演示习惯，并为 today 往前 days 天写入打卡记录。
// 用户已有习惯时直接跳过，返回零值。
func Run(ctx context.Context, gdb *gorm.DB, userID uint, today time.Time, days int) (Result, error) {
	if days <= 0 {
		return Result{}, fmt.Errorf("days must be positive, got %d", days)
	}

	habits := service.NewHabitService(gdb)
	logs := service.NewHabitLogService(gdb)

	existing, err := habits.List(ctx, userID)
	if err != nil {
		return Result{}, err
	}
	if len(existing) > 0 {
		return Result{}, nil
	}

	var result Result
	created := make([]*db.Habit, 0, len(demoHabits))
	for _, demo := range demoHabits {
		habit, err := habits.Create(ctx, userID, service.HabitInput{
			Title:       demo.title,
			Description: demo.description,
			Schedule:    &service.ScheduleInput{RRule: demo.rrule, Time: demo.time},
		})
		if err != nil {
			return result, fmt.Errorf("create habit %q: %w", demo.title, err)
		}
		created = append(created, habit)
		result.Habits++
	}

	for offset := 0; offset < days; offset++ {
		date := aggregate.FormatDate(today.AddDate(0, 0, -offset))
		for i, habit := range created {
			skip := demoHabits[i].skip
			completed := skip == 0 || offset%skip != skip-1
			if _, err := logs.Toggle(ctx, userID, service.ToggleInput{
				HabitID:   habit.ID,
				Date:      date,
				Completed: &completed,
			}); err != nil {
				return result, fmt.Errorf("toggle %s on %s: %w", habit.Title, date, err)
			}
			result.Logs++
		}
	}

	return result, nil
}
