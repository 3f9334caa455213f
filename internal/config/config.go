package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultTokenTTL          = 30 * 24 * time.Hour
	defaultAuthRatePerMinute = 10
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr        string
	Port              string
	DatabasePath      string
	SessionSecret     string
	TokenSecret       string
	TokenTTL          time.Duration
	GinMode           string
	LogLevel          string
	LogFile           string
	Timezone          string
	StaticDir         string
	AuthRatePerMinute int
	BootstrapEmail    string
	BootstrapPassword string
}

// Load 读取可选的 .env 文件后从环境变量读取应用配置，并为缺失项提供安全的默认值。
// 已存在的环境变量优先于 .env 中的值。
func Load() AppConfig {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv 只读取当前进程的环境变量。
func FromEnv() AppConfig {
	port := env("PORT", "8080")

	sessionSecret := env("SESSION_SECRET", "habitlog-dev-secret")

	return AppConfig{
		ListenAddr:        env("LISTEN_ADDR", fmt.Sprintf(":%s", port)),
		Port:              port,
		DatabasePath:      env("DATABASE_PATH", "habitlog.db"),
		SessionSecret:     sessionSecret,
		TokenSecret:       env("TOKEN_SECRET", sessionSecret),
		TokenTTL:          durationEnv("TOKEN_TTL", defaultTokenTTL),
		GinMode:           env("GIN_MODE", "release"),
		LogLevel:          env("LOG_LEVEL", "info"),
		LogFile:           env("LOG_FILE", ""),
		Timezone:          env("APP_TIMEZONE", "UTC"),
		StaticDir:         env("STATIC_DIR", ""),
		AuthRatePerMinute: intEnv("AUTH_RATE_PER_MINUTE", defaultAuthRatePerMinute),
		BootstrapEmail:    env("BOOTSTRAP_USER_EMAIL", ""),
		BootstrapPassword: env("BOOTSTRAP_USER_PASSWORD", ""),
	}
}

func env(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	parsed, err := time.ParseDuration(env(key, ""))
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func intEnv(key string, fallback int) int {
	parsed, err := strconv.Atoi(env(key, ""))
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
