package seed

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/habitlog/internal/db"
	"github.com/habitlog/internal/service"
	"gorm.io/gorm/logger"
)

func TestRunSeedsHabitsAndLogs(t *testing.T) {
	dsn := fmt.Sprintf("file:seed-test-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := db.Open(dsn, logger.Silent)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	user, _, err := db.EnsureUser(gdb, "demo@example.com", "Demo", "password123")
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	ctx := context.Background()
	today := time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC)

	result, err := Run(ctx, gdb, user.ID, today, 14)
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if result.Habits != len(demoHabits) {
		t.Fatalf("expected %d habits, got %d", len(demoHabits), result.Habits)
	}
	if result.Logs != 14*len(demoHabits) {
		t.Fatalf("expected %d logs, got %d", 14*len(demoHabits), result.Logs)
	}

	var stored int64
	if err := gdb.Model(&db.HabitLog{}).Count(&stored).Error; err != nil {
		t.Fatalf("count logs: %v", err)
	}
	if stored != int64(result.Logs) {
		t.Fatalf("expected %d stored logs, got %d", result.Logs, stored)
	}

	// 第一个演示习惯从不漏卡，连续天数至少覆盖整个填充区间
	tracker := service.NewTrackerService(service.NewHabitService(gdb), service.NewHabitLogService(gdb), service.FixedClock(today))
	stats, err := tracker.Stats(ctx, user.ID, "14d")
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.CurrentStreak != 14 {
		t.Fatalf("expected streak 14, got %d", stats.CurrentStreak)
	}
	if len(stats.TopHabits) == 0 || stats.TopHabits[0].Title != "Drink water" {
		t.Fatalf("expected Drink water on top, got %+v", stats.TopHabits)
	}

	again, err := Run(ctx, gdb, user.ID, today, 14)
	if err != nil {
		t.Fatalf("second seed failed: %v", err)
	}
	if again != (Result{}) {
		t.Fatalf("expected second run to skip, got %+v", again)
	}
}

func TestRunRejectsNonPositiveDays(t *testing.T) {
	if _, err := Run(context.Background(), nil, 1, time.Now(), 0); err == nil {
		t.Fatal("expected error for zero days")
	}
}
