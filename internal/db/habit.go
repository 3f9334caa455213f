package db

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Schedule 描述习惯的提醒规则，RRule 原样保存，不参与任何统计计算
type Schedule struct {
	RRule string `json:"rrule"`
	Time  string `json:"time"`
}

// Habit 定义了习惯模型，归属于唯一的用户
type Habit struct {
	ID          string     `gorm:"primaryKey;size:36"`
	UserID      uint       `gorm:"index;not null"`
	Title       string     `gorm:"size:255;not null"`
	Description string     `gorm:"type:text"`
	Schedule    Schedule   `gorm:"serializer:json;type:text"`
	Logs        []HabitLog `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// BeforeCreate assigns a UUID when the caller did not.
func (h *Habit) BeforeCreate(*gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	return nil
}

// OwnedBy reports whether userID owns the habit. Every habit-scoped operation
// goes through this check.
func (h Habit) OwnedBy(userID uint) bool {
	return userID != 0 && h.UserID == userID
}

// HabitLog 记录习惯打卡日志
// Habit + LogDate 采用唯一索引，保证同一天只有一条记录；LogDate 以 YYYY-MM-DD 文本存储
type HabitLog struct {
	ID        string `gorm:"primaryKey;size:36"`
	HabitID   string `gorm:"size:36;not null;index;uniqueIndex:idx_habit_log_unique"`
	LogDate   string `gorm:"size:10;not null;index;uniqueIndex:idx_habit_log_unique"`
	Completed bool   `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName 重写确保唯一索引作用到 habit_id + log_date
func (HabitLog) TableName() string {
	return "habit_logs"
}

// BeforeCreate assigns a UUID when the caller did not.
func (l *HabitLog) BeforeCreate(*gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}
