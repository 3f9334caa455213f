package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/habitlog/internal/metrics"
	"github.com/habitlog/internal/service"
)

type toggleRequest struct {
	HabitID   string `json:"habit_id"`
	Completed *bool  `json:"completed"`
}

type logResource struct {
	ID        string `json:"id"`
	HabitID   string `json:"habit_id"`
	Date      string `json:"date"`
	Completed bool   `json:"completed"`
}

// ToggleLog 设置某习惯在 {date} 的完成状态，completed 缺省为 true
func (a *API) ToggleLog(c *gin.Context) {
	var payload toggleRequest
	if !bindJSON(c, &payload) {
		return
	}

	log, err := a.logs.Toggle(c.Request.Context(), currentUserID(c), service.ToggleInput{
		HabitID:   payload.HabitID,
		Date:      c.Param("date"),
		Completed: payload.Completed,
	})
	if err != nil {
		a.handleServiceError(c, err)
		return
	}

	metrics.RecordToggle(log.Completed)

	message := "Habit marked as undone"
	if log.Completed {
		message = "Habit marked as done"
	}

	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"log": logResource{
			ID:        log.ID,
			HabitID:   log.HabitID,
			Date:      log.LogDate,
			Completed: log.Completed,
		},
	})
}
