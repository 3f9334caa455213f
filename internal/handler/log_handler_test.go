package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/habitlog/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type toggleBody struct {
	Message string      `json:"message"`
	Log     logResource `json:"log"`
}

func TestToggleLogDoneThenUndone(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "owner@example.com")
	habit := env.createHabit(t, token, "Water")

	rec := env.do(t, http.MethodPut, "/v1/logs/2025-01-15", token, gin.H{"habit_id": habit.ID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var first toggleBody
	decode(t, rec, &first)
	assert.Equal(t, "Habit marked as done", first.Message)
	assert.Equal(t, "2025-01-15", first.Log.Date)
	assert.Equal(t, habit.ID, first.Log.HabitID)
	assert.True(t, first.Log.Completed)

	rec = env.do(t, http.MethodPut, "/v1/logs/2025-01-15", token, gin.H{"habit_id": habit.ID, "completed": false})
	require.Equal(t, http.StatusOK, rec.Code)
	var second toggleBody
	decode(t, rec, &second)
	assert.Equal(t, "Habit marked as undone", second.Message)
	assert.False(t, second.Log.Completed)
	assert.Equal(t, first.Log.ID, second.Log.ID)

	var count int64
	require.NoError(t, env.gdb.Model(&db.HabitLog{}).Where("habit_id = ?", habit.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestToggleLogForbiddenLeavesStoreUnchanged(t *testing.T) {
	env := newTestEnv(t)
	owner := env.login(t, "owner@example.com")
	intruder := env.login(t, "intruder@example.com")
	habit := env.createHabit(t, owner, "Water")

	rec := env.do(t, http.MethodPut, "/v1/logs/2025-01-15", intruder, gin.H{"habit_id": habit.ID})
	require.Equal(t, http.StatusForbidden, rec.Code)

	var body errorBody
	decode(t, rec, &body)
	assert.Equal(t, "This action is unauthorized.", body.Message)

	var count int64
	require.NoError(t, env.gdb.Model(&db.HabitLog{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestToggleLogValidation(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "owner@example.com")
	habit := env.createHabit(t, token, "Water")

	tests := []struct {
		name  string
		path  string
		body  interface{}
		field string
	}{
		{name: "bad date", path: "/v1/logs/invalid-date", body: gin.H{"habit_id": habit.ID}, field: "date"},
		{name: "missing habit", path: "/v1/logs/2025-01-15", body: gin.H{}, field: "habit_id"},
		{name: "empty body", path: "/v1/logs/2025-01-15", body: nil, field: "habit_id"},
		{name: "unknown habit", path: "/v1/logs/2025-01-15", body: gin.H{"habit_id": "does-not-exist"}, field: "habit_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPut, tt.path, token, tt.body)
			require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())

			var body errorBody
			decode(t, rec, &body)
			assert.Contains(t, body.Errors, tt.field)
		})
	}

	rec := env.do(t, http.MethodPut, "/v1/logs/2025-01-15", token, gin.H{"habit_id": habit.ID, "completed": "maybe"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
