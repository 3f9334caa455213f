package service

import (
	"errors"
	"sort"
	"strings"

	"github.com/habitlog/internal/aggregate"
	"github.com/habitlog/internal/db"
)

var (
	// ErrHabitNotFound 在指定习惯不存在时返回
	ErrHabitNotFound = errors.New("habit not found")
	// ErrForbidden 表示资源存在但不属于当前用户
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidInput 标记格式错误的输入，与 aggregate 共用同一个哨兵值
	ErrInvalidInput = aggregate.ErrInvalidInput
	// ErrInvalidCredentials 登录邮箱或密码错误
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailTaken 注册时邮箱已被占用
	ErrEmailTaken = errors.New("email already taken")
	// ErrUnauthenticated 令牌缺失、无效、过期或已吊销
	ErrUnauthenticated = errors.New("unauthenticated")
)

// ValidationError 收集字段级校验失败信息，errors.Is(err, ErrInvalidInput) 成立
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for key := range e.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+": "+e.Fields[key])
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// Add records the first message for field.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = message
	}
}

func (e *ValidationError) orNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func invalidField(field, message string) error {
	v := &ValidationError{}
	v.Add(field, message)
	return v
}

// authorize 是所有习惯级操作共用的归属校验
func authorize(habit *db.Habit, userID uint) error {
	if habit == nil || !habit.OwnedBy(userID) {
		return ErrForbidden
	}
	return nil
}
