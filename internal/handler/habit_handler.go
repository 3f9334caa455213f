package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/habitlog/internal/db"
	"github.com/habitlog/internal/service"
)

type schedulePayload struct {
	RRule string `json:"rrule"`
	Time  string `json:"time"`
}

type habitCreateRequest struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Schedule    *schedulePayload `json:"schedule"`
}

type habitUpdateRequest struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Schedule    *schedulePayload `json:"schedule"`
}

// habitResource 是习惯的 JSON 表示，name 与 title 相同以兼容前端
type habitResource struct {
	ID              string      `json:"id"`
	Title           string      `json:"title"`
	Name            string      `json:"name"`
	Description     string      `json:"description"`
	DescriptionHTML string      `json:"description_html"`
	Schedule        db.Schedule `json:"schedule"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

func (p *schedulePayload) toInput() *service.ScheduleInput {
	if p == nil {
		return nil
	}
	return &service.ScheduleInput{RRule: p.RRule, Time: p.Time}
}

func (a *API) habitToResource(habit db.Habit) habitResource {
	html, err := service.RenderMarkdown(habit.Description)
	if err != nil {
		a.log.WithError(err).WithField("habit_id", habit.ID).Warn("render habit description failed")
	}
	return habitResource{
		ID:              habit.ID,
		Title:           habit.Title,
		Name:            habit.Title,
		Description:     habit.Description,
		DescriptionHTML: html,
		Schedule:        habit.Schedule,
		CreatedAt:       habit.CreatedAt,
		UpdatedAt:       habit.UpdatedAt,
	}
}

// ListHabits 返回当前用户的习惯列表
func (a *API) ListHabits(c *gin.Context) {
	habits, err := a.habits.List(c.Request.Context(), currentUserID(c))
	if err != nil {
		a.handleServiceError(c, err)
		return
	}

	items := make([]habitResource, 0, len(habits))
	for _, habit := range habits {
		items = append(items, a.habitToResource(habit))
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

// GetHabit 返回单个习惯
func (a *API) GetHabit(c *gin.Context) {
	habit, err := a.habits.Get(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		a.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": a.habitToResource(*habit)})
}

// CreateHabit 新建习惯
func (a *API) CreateHabit(c *gin.Context) {
	var payload habitCreateRequest
	if !bindJSON(c, &payload) {
		return
	}

	habit, err := a.habits.Create(c.Request.Context(), currentUserID(c), service.HabitInput{
		Title:       payload.Title,
		Description: payload.Description,
		Schedule:    payload.Schedule.toInput(),
	})
	if err != nil {
		a.handleServiceError(c, err)
		return
	}

	a.log.WithField("habit_id", habit.ID).WithField("user_id", habit.UserID).Info("habit created")
	c.JSON(http.StatusCreated, gin.H{"data": a.habitToResource(*habit)})
}

// UpdateHabit 部分更新习惯
func (a *API) UpdateHabit(c *gin.Context) {
	var payload habitUpdateRequest
	if !bindJSON(c, &payload) {
		return
	}

	habit, err := a.habits.Update(c.Request.Context(), currentUserID(c), c.Param("id"), service.HabitPatch{
		Title:       payload.Title,
		Description: payload.Description,
		Schedule:    payload.Schedule.toInput(),
	})
	if err != nil {
		a.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": a.habitToResource(*habit)})
}

// DeleteHabit 删除习惯及其打卡记录
func (a *API) DeleteHabit(c *gin.Context) {
	if err := a.habits.Delete(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
		a.handleServiceError(c, err)
		return
	}

	a.log.WithField("habit_id", c.Param("id")).Info("habit deleted")
	c.Status(http.StatusNoContent)
}

// TodayHabits 返回今日打卡清单
func (a *API) TodayHabits(c *gin.Context) {
	detail, err := a.tracker.Today(c.Request.Context(), currentUserID(c))
	if err != nil {
		a.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}
