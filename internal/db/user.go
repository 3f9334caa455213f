package db

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// User 定义了用户模型
type User struct {
	gorm.Model
	Name     string `gorm:"size:255;not null"`
	Email    string `gorm:"size:255;uniqueIndex;not null"`
	Password string `gorm:"not null"`
}

// AccessToken 记录已签发的访问令牌，删除即吊销
type AccessToken struct {
	ID         string    `gorm:"primaryKey;size:36"`
	UserID     uint      `gorm:"index;not null"`
	Name       string    `gorm:"size:100"`
	ExpiresAt  time.Time `gorm:"index"`
	LastUsedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName 指定自定义表名。
func (AccessToken) TableName() string {
	return "access_tokens"
}

// ErrMissingCredentials 表示邮箱或密码为空
var ErrMissingCredentials = errors.New("email and password are required")

// EnsureUser 存在性检查：若邮箱与密码均非空且不存在对应账号，则创建一个 bcrypt 哈希的用户。
// 密码按原样哈希，不做裁剪，与登录时的比对保持一致。返回值 created 表示本次是否新建。
func EnsureUser(gdb *gorm.DB, email, name, password string) (user *User, created bool, err error) {
	trimmedEmail := strings.ToLower(strings.TrimSpace(email))
	if trimmedEmail == "" || password == "" {
		return nil, false, ErrMissingCredentials
	}

	if gdb == nil {
		return nil, false, errors.New("database not initialized")
	}

	var existing User
	if err := gdb.Where("email = ?", trimmedEmail).First(&existing).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, err
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, false, err
		}

		name = strings.TrimSpace(name)
		if name == "" {
			name = trimmedEmail
		}

		fresh := User{Name: name, Email: trimmedEmail, Password: string(hashed)}
		if err := gdb.Create(&fresh).Error; err != nil {
			return nil, false, err
		}
		return &fresh, true, nil
	}

	return &existing, false, nil
}
