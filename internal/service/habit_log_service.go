package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/habitlog/internal/aggregate"
	"github.com/habitlog/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// HabitLogService 负责打卡记录的写入与区间查询
type HabitLogService struct {
	db *gorm.DB
}

// ToggleInput 定义一次打卡切换，Completed 为 nil 时视为完成
type ToggleInput struct {
	HabitID   string
	Date      string
	Completed *bool
}

// NewHabitLogService 构造 HabitLogService
func NewHabitLogService(gdb *gorm.DB) *HabitLogService {
	return &HabitLogService{db: gdb}
}

// Toggle 以幂等方式设置 (habit, date) 的完成状态：不存在则创建，存在则覆盖
// 校验与归属检查都在写入之前完成，失败时不产生任何修改
func (s *HabitLogService) Toggle(ctx context.Context, userID uint, input ToggleInput) (*db.HabitLog, error) {
	v := &ValidationError{}

	date, dateErr := aggregate.ParseDate(input.Date)
	if dateErr != nil {
		v.Add("date", "Invalid date format. Use YYYY-MM-DD")
	}

	habitID := strings.TrimSpace(input.HabitID)
	var habit db.Habit
	if habitID == "" {
		v.Add("habit_id", "The habit id field is required.")
	} else if err := s.db.WithContext(ctx).Where("id = ?", habitID).First(&habit).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("find habit: %w", err)
		}
		v.Add("habit_id", "The selected habit id is invalid.")
	}

	if err := v.orNil(); err != nil {
		return nil, err
	}
	if err := authorize(&habit, userID); err != nil {
		return nil, err
	}

	completed := true
	if input.Completed != nil {
		completed = *input.Completed
	}

	logDate := aggregate.FormatDate(date)
	record := db.HabitLog{
		HabitID:   habit.ID,
		LogDate:   logDate,
		Completed: completed,
	}

	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "habit_id"}, {Name: "log_date"}},
		DoUpdates: clause.AssignmentColumns([]string{"completed", "updated_at"}),
	}).Create(&record).Error; err != nil {
		return nil, fmt.Errorf("upsert habit log: %w", err)
	}

	var stored db.HabitLog
	if err := s.db.WithContext(ctx).Where("habit_id = ? AND log_date = ?", habit.ID, logDate).First(&stored).Error; err != nil {
		return nil, fmt.Errorf("reload habit log: %w", err)
	}

	return &stored, nil
}

// ListBetween 返回给定习惯在 [from, to] 区间内的打卡记录，按日期升序
// completedOnly 为 true 时只返回已完成的记录
func (s *HabitLogService) ListBetween(ctx context.Context, habitIDs []string, from, to string, completedOnly bool) ([]db.HabitLog, error) {
	logs := []db.HabitLog{}
	if len(habitIDs) == 0 {
		return logs, nil
	}

	query := s.db.WithContext(ctx).
		Where("habit_id IN ?", habitIDs).
		Where("log_date BETWEEN ? AND ?", from, to)
	if completedOnly {
		query = query.Where("completed = ?", true)
	}

	if err := query.Order("log_date ASC").Order("habit_id ASC").Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("list habit logs: %w", err)
	}
	return logs, nil
}
