package service

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestTrackerStatsFiveDayScenario(t *testing.T) {
	gdb := setupHabitTestDB(t)
	ctx := context.Background()
	owner := createTestUser(t, gdb, "owner@example.com")

	habitSvc := NewHabitService(gdb)
	logSvc := NewHabitLogService(gdb)
	habit := createTestHabit(t, habitSvc, owner.ID, "俯卧撑")

	clock := FixedClock(time.Date(2025, 8, 20, 21, 0, 0, 0, time.UTC))
	for i := 0; i < 5; i++ {
		date := time.Time(clock).AddDate(0, 0, -i).Format("2006-01-02")
		if _, err := logSvc.Toggle(ctx, owner.ID, ToggleInput{HabitID: habit.ID, Date: date}); err != nil {
			t.Fatalf("Toggle returned error: %v", err)
		}
	}

	tracker := NewTrackerService(habitSvc, logSvc, clock)
	stats, err := tracker.Stats(ctx, owner.ID, "10d")
	if err != nil {
		t.Fatalf("Stats returned error: %v", err)
	}

	if stats.Completion.Completed != 5 || stats.Completion.Total != 10 || stats.Completion.Rate != 50.0 {
		t.Fatalf("unexpected completion: %+v", stats.Completion)
	}
	if stats.CurrentStreak < 5 {
		t.Fatalf("expected streak >= 5, got %d", stats.CurrentStreak)
	}
	if len(stats.WeeklyOverview) != 7 {
		t.Fatalf("expected 7 weekly entries, got %d", len(stats.WeeklyOverview))
	}
	if stats.EndDate != "2025-08-20" || stats.StartDate != "2025-08-11" {
		t.Fatalf("unexpected window %s..%s", stats.StartDate, stats.EndDate)
	}
}

func TestTrackerStatsRejectsMalformedRange(t *testing.T) {
	gdb := setupHabitTestDB(t)
	owner := createTestUser(t, gdb, "owner@example.com")
	tracker := NewTrackerService(NewHabitService(gdb), NewHabitLogService(gdb), FixedClock(time.Now()))

	for _, raw := range []string{"30", "abc", "0d"} {
		if _, err := tracker.Stats(context.Background(), owner.ID, raw); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("range %q: expected ErrInvalidInput, got %v", raw, err)
		}
	}

	stats, err := tracker.Stats(context.Background(), owner.ID, "")
	if err != nil {
		t.Fatalf("default range returned error: %v", err)
	}
	if stats.Range != "30d" {
		t.Fatalf("expected default range 30d, got %s", stats.Range)
	}
}

func TestTrackerMonthWithoutLogs(t *testing.T) {
	gdb := setupHabitTestDB(t)
	ctx := context.Background()
	owner := createTestUser(t, gdb, "owner@example.com")
	habitSvc := NewHabitService(gdb)
	createTestHabit(t, habitSvc, owner.ID, "拉伸")

	tracker := NewTrackerService(habitSvc, NewHabitLogService(gdb), FixedClock(time.Now()))
	grid, err := tracker.Month(ctx, owner.ID, "2025-02")
	if err != nil {
		t.Fatalf("Month returned error: %v", err)
	}
	if len(grid.Calendar) != 28 {
		t.Fatalf("expected 28 entries, got %d", len(grid.Calendar))
	}
	for _, day := range grid.Calendar {
		if day.CompletedHabits != 0 || day.TotalHabits != 1 {
			t.Fatalf("unexpected counts on %s: %+v", day.Date, day)
		}
	}

	for _, raw := range []string{"", "invalid", "2025-13"} {
		if _, err := tracker.Month(ctx, owner.ID, raw); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("month %q: expected ErrInvalidInput, got %v", raw, err)
		}
	}
}

func TestTrackerTodayUsesClockZone(t *testing.T) {
	gdb := setupHabitTestDB(t)
	ctx := context.Background()
	owner := createTestUser(t, gdb, "owner@example.com")

	habitSvc := NewHabitService(gdb)
	logSvc := NewHabitLogService(gdb)
	done := createTestHabit(t, habitSvc, owner.ID, "早起")
	createTestHabit(t, habitSvc, owner.ID, "晚睡")

	shanghai := time.FixedZone("CST", 8*3600)
	// 2025-03-01 23:30 UTC 在东八区已是 3 月 2 日
	clock := FixedClock(time.Date(2025, 3, 1, 23, 30, 0, 0, time.UTC).In(shanghai))

	if _, err := logSvc.Toggle(ctx, owner.ID, ToggleInput{HabitID: done.ID, Date: "2025-03-02"}); err != nil {
		t.Fatalf("Toggle returned error: %v", err)
	}

	tracker := NewTrackerService(habitSvc, logSvc, clock)
	today, err := tracker.Today(ctx, owner.ID)
	if err != nil {
		t.Fatalf("Today returned error: %v", err)
	}
	if today.Date != "2025-03-02" {
		t.Fatalf("expected 2025-03-02, got %s", today.Date)
	}
	if today.TotalHabits != 2 || today.CompletedCount != 1 {
		t.Fatalf("unexpected counts: %+v", today)
	}

	for _, item := range today.Habits {
		if item.ID == done.ID {
			if !item.Completed || item.LogID == nil {
				t.Fatalf("expected completed habit with log id, got %+v", item)
			}
		} else if item.Completed || item.LogID != nil {
			t.Fatalf("expected untouched habit without log, got %+v", item)
		}
	}
}

func TestTrackerDayRejectsMalformedDate(t *testing.T) {
	gdb := setupHabitTestDB(t)
	owner := createTestUser(t, gdb, "owner@example.com")
	tracker := NewTrackerService(NewHabitService(gdb), NewHabitLogService(gdb), FixedClock(time.Now()))

	if _, err := tracker.Day(context.Background(), owner.ID, "invalid-date"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	detail, err := tracker.Day(context.Background(), owner.ID, "2025-06-01")
	if err != nil {
		t.Fatalf("Day returned error: %v", err)
	}
	if detail.TotalHabits != 0 || len(detail.Habits) != 0 {
		t.Fatalf("expected empty detail, got %+v", detail)
	}
}

func TestNewSystemClock(t *testing.T) {
	clock, err := NewSystemClock("")
	if err != nil {
		t.Fatalf("NewSystemClock returned error: %v", err)
	}
	if clock.Now().Location() != time.UTC {
		t.Fatalf("expected UTC fallback, got %v", clock.Now().Location())
	}

	if _, err := NewSystemClock("Not/AZone"); err == nil {
		t.Fatal("expected error for unknown zone")
	}
}
