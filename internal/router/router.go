package router

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/habitlog/internal/handler"
	"github.com/habitlog/internal/metrics"
	"github.com/habitlog/internal/middleware"
	"github.com/sirupsen/logrus"
)

const sessionName = "habitlog_session"

// Options 汇总路由层需要的配置
type Options struct {
	SessionSecret     string
	StaticDir         string
	AuthRatePerMinute int
	Logger            logrus.FieldLogger
}

// SetupRouter 配置 Gin 引擎和路由，返回的限流器交给后台任务定期清理
func SetupRouter(api *handler.API, opts Options) (*gin.Engine, *middleware.RateLimiter) {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logger), middleware.Instrument())

	// 配置会话中间件
	store := cookie.NewStore([]byte(opts.SessionSecret))
	store.Options(sessions.Options{Path: "/", MaxAge: 30 * 24 * 60 * 60, HttpOnly: true, SameSite: http.SameSiteLaxMode})
	r.Use(sessions.Sessions(sessionName, store))

	r.GET("/healthz", api.HealthCheck)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	limiter := middleware.NewRateLimiter(opts.AuthRatePerMinute)
	r.POST("/register", limiter.Handler(), api.Register)
	r.POST("/login", limiter.Handler(), api.Login)
	r.POST("/logout", api.AuthRequired(), api.Logout)

	v1 := r.Group("/v1")
	v1.Use(api.AuthRequired())
	{
		v1.GET("/user", api.CurrentUser)

		// today 必须与 :id 区分
		v1.GET("/habits/today", api.TodayHabits)
		v1.GET("/habits", api.ListHabits)
		v1.POST("/habits", api.CreateHabit)
		v1.GET("/habits/:id", api.GetHabit)
		v1.PUT("/habits/:id", api.UpdateHabit)
		v1.DELETE("/habits/:id", api.DeleteHabit)

		v1.PUT("/logs/:date", api.ToggleLog)

		v1.GET("/calendar", api.CalendarMonth)
		v1.GET("/calendar/:date", api.CalendarDay)

		v1.GET("/stats", api.Stats)
	}

	r.NoRoute(spaFallback(opts.StaticDir))
	if dir := strings.TrimSpace(opts.StaticDir); dir != "" {
		r.Static("/assets", filepath.Join(dir, "assets"))
	}

	return r, limiter
}

// spaFallback 在配置了前端构建目录时，把未知的页面请求交给 index.html
func spaFallback(staticDir string) gin.HandlerFunc {
	index := ""
	if dir := strings.TrimSpace(staticDir); dir != "" {
		index = filepath.Join(dir, "index.html")
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		isAPI := strings.HasPrefix(path, "/v1/") || path == "/v1"
		if index == "" || isAPI || c.Request.Method != http.MethodGet {
			c.JSON(http.StatusNotFound, gin.H{"message": "Not Found."})
			return
		}
		c.File(index)
	}
}
