package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/habitlog/internal/db"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	minPasswordLength = 8
	defaultTokenName  = "auth_token"
)

// AuthService 负责账号注册、登录与访问令牌的签发和校验
// 令牌是 HS256 JWT，jti 对应 access_tokens 表中的一行，删除该行即吊销
type AuthService struct {
	db     *gorm.DB
	secret []byte
	ttl    time.Duration
	clock  Clock
}

// RegisterInput 定义注册请求
type RegisterInput struct {
	Name                 string
	Email                string
	Password             string
	PasswordConfirmation string
}

type tokenClaims struct {
	jwt.RegisteredClaims
}

// NewAuthService 构造 AuthService
func NewAuthService(gdb *gorm.DB, secret string, ttl time.Duration, clock Clock) *AuthService {
	return &AuthService{db: gdb, secret: []byte(secret), ttl: ttl, clock: clock}
}

// Register 创建新账号
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*db.User, error) {
	v := &ValidationError{}
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))

	switch {
	case name == "":
		v.Add("name", "The name field is required.")
	case utf8.RuneCountInString(name) > maxTitleLength:
		v.Add("name", fmt.Sprintf("The name field must not be greater than %d characters.", maxTitleLength))
	}
	checkEmail(v, email)
	switch {
	case strings.TrimSpace(input.Password) == "":
		v.Add("password", "The password field is required.")
	case len(input.Password) < minPasswordLength:
		v.Add("password", fmt.Sprintf("The password field must be at least %d characters.", minPasswordLength))
	case input.Password != input.PasswordConfirmation:
		v.Add("password", "The password field confirmation does not match.")
	}
	if err := v.orNil(); err != nil {
		return nil, err
	}

	user, created, err := db.EnsureUser(s.db.WithContext(ctx), email, name, input.Password)
	if err != nil {
		// 并发注册同一邮箱时，后到的请求会撞上唯一索引
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("register user: %w", err)
	}
	if !created {
		return nil, ErrEmailTaken
	}
	return user, nil
}

// Login 校验邮箱与密码
func (s *AuthService) Login(ctx context.Context, email, password string) (*db.User, error) {
	v := &ValidationError{}
	email = strings.ToLower(strings.TrimSpace(email))
	checkEmail(v, email)
	if password == "" {
		v.Add("password", "The password field is required.")
	}
	if err := v.orNil(); err != nil {
		return nil, err
	}

	var user db.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// User 根据 ID 读取账号
func (s *AuthService) User(ctx context.Context, id uint) (*db.User, error) {
	var user db.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

// Issue 为用户签发一个新的访问令牌
func (s *AuthService) Issue(ctx context.Context, user *db.User, name string) (string, *db.AccessToken, error) {
	if strings.TrimSpace(name) == "" {
		name = defaultTokenName
	}

	// 统一以 UTC 存储，sqlite 中按文本比较过期时间
	now := s.clock.Now().UTC()
	record := db.AccessToken{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Name:      name,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return "", nil, fmt.Errorf("create access token: %w", err)
	}

	claims := tokenClaims{RegisteredClaims: jwt.RegisteredClaims{
		ID:        record.ID,
		Subject:   strconv.FormatUint(uint64(user.ID), 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(record.ExpiresAt),
	}}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign access token: %w", err)
	}
	return signed, &record, nil
}

// Authenticate 校验令牌签名、有效期以及对应的 access_tokens 记录
func (s *AuthService) Authenticate(ctx context.Context, raw string) (*db.User, *db.AccessToken, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil, ErrUnauthenticated
	}

	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.clock.Now))
	if err != nil || !token.Valid {
		return nil, nil, ErrUnauthenticated
	}

	var record db.AccessToken
	if err := s.db.WithContext(ctx).Where("id = ?", claims.ID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrUnauthenticated
		}
		return nil, nil, fmt.Errorf("find access token: %w", err)
	}

	now := s.clock.Now()
	if strconv.FormatUint(uint64(record.UserID), 10) != claims.Subject || !record.ExpiresAt.After(now) {
		return nil, nil, ErrUnauthenticated
	}

	user, err := s.User(ctx, record.UserID)
	if err != nil {
		return nil, nil, err
	}

	if err := s.db.WithContext(ctx).Model(&record).Update("last_used_at", now).Error; err != nil {
		return nil, nil, fmt.Errorf("touch access token: %w", err)
	}
	return user, &record, nil
}

// Revoke 删除令牌记录，之后该令牌无法再通过校验
func (s *AuthService) Revoke(ctx context.Context, tokenID string) error {
	if tokenID == "" {
		return nil
	}
	if err := s.db.WithContext(ctx).Where("id = ?", tokenID).Delete(&db.AccessToken{}).Error; err != nil {
		return fmt.Errorf("revoke access token: %w", err)
	}
	return nil
}

// PruneExpired 清理所有已过期的令牌，返回删除条数
func (s *AuthService) PruneExpired(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).Where("expires_at <= ?", s.clock.Now().UTC()).Delete(&db.AccessToken{})
	if result.Error != nil {
		return 0, fmt.Errorf("prune access tokens: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func checkEmail(v *ValidationError, email string) {
	if email == "" {
		v.Add("email", "The email field is required.")
		return
	}
	if _, err := mail.ParseAddress(email); err != nil {
		v.Add("email", "The email field must be a valid email address.")
	}
}
