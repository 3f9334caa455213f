package handler

import (
	"context"
	"time"

	"github.com/habitlog/internal/service"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// pinger is the part of *sql.DB the health check needs.
type pinger interface {
	PingContext(ctx context.Context) error
}

// Options 描述构造 API 所需的外部依赖
type Options struct {
	TokenSecret string
	TokenTTL    time.Duration
	Clock       service.Clock
	Logger      logrus.FieldLogger
}

// API bundles shared dependencies for HTTP handlers.
type API struct {
	pinger  pinger
	habits  *service.HabitService
	logs    *service.HabitLogService
	tracker *service.TrackerService
	auth    *service.AuthService
	log     logrus.FieldLogger
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, opts Options) *API {
	clock := opts.Clock
	if clock == nil {
		clock = service.SystemClock{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	habits := service.NewHabitService(gdb)
	logs := service.NewHabitLogService(gdb)

	api := &API{
		habits:  habits,
		logs:    logs,
		tracker: service.NewTrackerService(habits, logs, clock),
		auth:    service.NewAuthService(gdb, opts.TokenSecret, opts.TokenTTL, clock),
		log:     logger,
	}
	if sqlDB, err := gdb.DB(); err == nil {
		api.pinger = sqlDB
	}
	return api
}

// Auth exposes the token service for housekeeping jobs.
func (a *API) Auth() *service.AuthService {
	return a.auth
}
