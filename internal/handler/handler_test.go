package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/habitlog/internal/db"
	"github.com/habitlog/internal/service"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testNow = time.Date(2025, 8, 20, 10, 0, 0, 0, time.UTC)

type testEnv struct {
	api    *API
	engine *gin.Engine
	gdb    *gorm.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:handler-test-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := db.Open(dsn, logger.Silent)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	log, _ := test.NewNullLogger()
	api := NewAPI(gdb, Options{
		TokenSecret: "handler-test-secret",
		TokenTTL:    time.Hour,
		Clock:       service.FixedClock(testNow),
		Logger:      log,
	})

	engine := gin.New()
	engine.Use(sessions.Sessions("habitlog_session", cookie.NewStore([]byte("handler-test-session"))))
	engine.GET("/healthz", api.HealthCheck)
	engine.POST("/register", api.Register)
	engine.POST("/login", api.Login)
	engine.POST("/logout", api.AuthRequired(), api.Logout)

	v1 := engine.Group("/v1", api.AuthRequired())
	v1.GET("/user", api.CurrentUser)
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

	return &testEnv{api: api, engine: engine, gdb: gdb}
}

// login creates the account and returns a bearer token for it.
func (e *testEnv) login(t *testing.T, email string) string {
	t.Helper()
	ctx := context.Background()
	user, _, err := db.EnsureUser(e.gdb, email, "", "password123")
	require.NoError(t, err)
	token, _, err := e.api.auth.Issue(ctx, user, "test")
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader(nil)
	} else {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.engine.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) createHabit(t *testing.T, token, title string) habitResource {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/v1/habits", token, gin.H{
		"title":       title,
		"description": "Some **markdown**",
		"schedule":    gin.H{"rrule": "FREQ=DAILY", "time": "08:00"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Data habitResource `json:"data"`
	}
	decode(t, rec, &resp)
	return resp.Data
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

type errorBody struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}
