package service

import (
	"context"
	"strings"
	"time"

	"github.com/habitlog/internal/aggregate"
	"github.com/habitlog/internal/db"
)

// TrackerService 读取习惯与打卡记录，交给 aggregate 生成日历、今日清单与统计视图
type TrackerService struct {
	habits *HabitService
	logs   *HabitLogService
	clock  Clock
}

// NewTrackerService 构造 TrackerService
func NewTrackerService(habits *HabitService, logs *HabitLogService, clock Clock) *TrackerService {
	return &TrackerService{habits: habits, logs: logs, clock: clock}
}

// Today 返回当前时区下今天的打卡清单
func (s *TrackerService) Today(ctx context.Context, userID uint) (aggregate.DayDetail, error) {
	return s.day(ctx, userID, Today(s.clock))
}

// Day 返回指定日期的打卡详情
func (s *TrackerService) Day(ctx context.Context, userID uint, rawDate string) (aggregate.DayDetail, error) {
	date, err := aggregate.ParseDate(rawDate)
	if err != nil {
		return aggregate.DayDetail{}, invalidField("date", "Invalid date format. Use YYYY-MM-DD")
	}
	return s.day(ctx, userID, date)
}

// Month 返回指定月份的日历网格，month 必填
func (s *TrackerService) Month(ctx context.Context, userID uint, rawMonth string) (aggregate.MonthGrid, error) {
	if strings.TrimSpace(rawMonth) == "" {
		return aggregate.MonthGrid{}, invalidField("month", "The month field is required.")
	}
	month, err := aggregate.ParseMonth(rawMonth)
	if err != nil {
		return aggregate.MonthGrid{}, invalidField("month", "The month field must match the format Y-m.")
	}

	habits, err := s.habits.List(ctx, userID)
	if err != nil {
		return aggregate.MonthGrid{}, err
	}

	logs, err := s.logs.ListBetween(ctx, ids(habits),
		aggregate.FormatDate(month.First()), aggregate.FormatDate(month.Last()), true)
	if err != nil {
		return aggregate.MonthGrid{}, err
	}

	return aggregate.BuildMonth(habits, logs, month), nil
}

// Stats 返回截至今天、长度为 range 的统计视图
func (s *TrackerService) Stats(ctx context.Context, userID uint, rawRange string) (aggregate.Stats, error) {
	r, err := aggregate.ParseRange(rawRange)
	if err != nil {
		return aggregate.Stats{}, invalidField("range", "The range field format is invalid.")
	}

	today := Today(s.clock)
	habits, err := s.habits.List(ctx, userID)
	if err != nil {
		return aggregate.Stats{}, err
	}

	logs, err := s.logs.ListBetween(ctx, ids(habits),
		aggregate.FormatDate(r.LookbackStart(today)), aggregate.FormatDate(today), true)
	if err != nil {
		return aggregate.Stats{}, err
	}

	return aggregate.Summarize(habits, logs, today, r), nil
}

func (s *TrackerService) day(ctx context.Context, userID uint, date time.Time) (aggregate.DayDetail, error) {
	key := aggregate.FormatDate(date)
	habits, err := s.habits.List(ctx, userID)
	if err != nil {
		return aggregate.DayDetail{}, err
	}

	logs, err := s.logs.ListBetween(ctx, ids(habits), key, key, false)
	if err != nil {
		return aggregate.DayDetail{}, err
	}

	return aggregate.BuildDay(habits, logs, date), nil
}

func ids(habits []db.Habit) []string {
	out := make([]string, 0, len(habits))
	for _, habit := range habits {
		out = append(out, habit.ID)
	}
	return out
}
