package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/habitlog/internal/db"
	"gorm.io/gorm"
)

const maxTitleLength = 255

var scheduleTimePattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// HabitService 负责 Habit 数据的增删改查，所有操作都限定在调用者名下
type HabitService struct {
	db *gorm.DB
}

// ScheduleInput 描述请求中的 schedule 对象
type ScheduleInput struct {
	RRule string
	Time  string
}

// HabitInput 定义创建习惯时的字段，Schedule 为 nil 表示请求未提供
type HabitInput struct {
	Title       string
	Description string
	Schedule    *ScheduleInput
}

// HabitPatch 定义部分更新，nil 字段保持不变
type HabitPatch struct {
	Title       *string
	Description *string
	Schedule    *ScheduleInput
}

// NewHabitService 构造 HabitService
func NewHabitService(gdb *gorm.DB) *HabitService {
	return &HabitService{db: gdb}
}

// List 返回用户的全部习惯，最新创建的在前
func (s *HabitService) List(ctx context.Context, userID uint) ([]db.Habit, error) {
	habits := []db.Habit{}
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id ASC").
		Find(&habits).Error; err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}
	return habits, nil
}

// Get 根据 ID 获取习惯并校验归属
func (s *HabitService) Get(ctx context.Context, userID uint, id string) (*db.Habit, error) {
	habit, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(habit, userID); err != nil {
		return nil, err
	}
	return habit, nil
}

// Create 新建习惯
func (s *HabitService) Create(ctx context.Context, userID uint, input HabitInput) (*db.Habit, error) {
	if err := validateHabitInput(input); err != nil {
		return nil, err
	}

	habit := db.Habit{
		UserID:      userID,
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Schedule:    normalizeSchedule(*input.Schedule),
	}

	if err := s.db.WithContext(ctx).Create(&habit).Error; err != nil {
		return nil, fmt.Errorf("create habit: %w", err)
	}
	return &habit, nil
}

// Update 部分更新习惯，归属校验先于字段校验
func (s *HabitService) Update(ctx context.Context, userID uint, id string, patch HabitPatch) (*db.Habit, error) {
	existing, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if err := validateHabitPatch(patch); err != nil {
		return nil, err
	}

	if patch.Title != nil {
		existing.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		existing.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Schedule != nil {
		existing.Schedule = normalizeSchedule(*patch.Schedule)
	}

	if err := s.db.WithContext(ctx).Save(existing).Error; err != nil {
		return nil, fmt.Errorf("update habit: %w", err)
	}
	return existing, nil
}

// Delete 删除习惯及其全部打卡记录
func (s *HabitService) Delete(ctx context.Context, userID uint, id string) error {
	habit, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("habit_id = ?", habit.ID).Delete(&db.HabitLog{}).Error; err != nil {
			return err
		}
		return tx.Delete(habit).Error
	})
	if err != nil {
		return fmt.Errorf("delete habit: %w", err)
	}
	return nil
}

func (s *HabitService) find(ctx context.Context, id string) (*db.Habit, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrHabitNotFound
	}

	var habit db.Habit
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&habit).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHabitNotFound
		}
		return nil, fmt.Errorf("get habit: %w", err)
	}
	return &habit, nil
}

func validateHabitInput(input HabitInput) error {
	v := &ValidationError{}
	checkTitle(v, input.Title)
	checkDescription(v, input.Description)
	if input.Schedule == nil {
		v.Add("schedule", "The schedule field is required.")
	} else {
		checkSchedule(v, *input.Schedule)
	}
	return v.orNil()
}

func validateHabitPatch(patch HabitPatch) error {
	v := &ValidationError{}
	if patch.Title != nil {
		checkTitle(v, *patch.Title)
	}
	if patch.Description != nil {
		checkDescription(v, *patch.Description)
	}
	if patch.Schedule != nil {
		checkSchedule(v, *patch.Schedule)
	}
	return v.orNil()
}

func checkTitle(v *ValidationError, title string) {
	title = strings.TrimSpace(title)
	switch {
	case title == "":
		v.Add("title", "The title field is required.")
	case utf8.RuneCountInString(title) > maxTitleLength:
		v.Add("title", fmt.Sprintf("The title field must not be greater than %d characters.", maxTitleLength))
	}
}

func checkDescription(v *ValidationError, description string) {
	if strings.TrimSpace(description) == "" {
		v.Add("description", "The description field is required.")
	}
}

func checkSchedule(v *ValidationError, schedule ScheduleInput) {
	if strings.TrimSpace(schedule.RRule) == "" {
		v.Add("schedule.rrule", "The schedule.rrule field is required.")
	}
	clock := strings.TrimSpace(schedule.Time)
	switch {
	case clock == "":
		v.Add("schedule.time", "The schedule.time field is required.")
	case !scheduleTimePattern.MatchString(clock):
		v.Add("schedule.time", "The schedule.time field must match the format H:i.")
	}
}

func normalizeSchedule(input ScheduleInput) db.Schedule {
	return db.Schedule{
		RRule: strings.TrimSpace(input.RRule),
		Time:  strings.TrimSpace(input.Time),
	}
}
