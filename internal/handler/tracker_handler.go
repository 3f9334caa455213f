package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CalendarMonth 返回 ?month=YYYY-MM 的月历
func (a *API) CalendarMonth(c *gin.Context) {
	grid, err := a.tracker.Month(c.Request.Context(), currentUserID(c), c.Query("month"))
	if err != nil {
		a.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, grid)
}

// CalendarDay 返回某一天每个习惯的完成情况
func (a *API) CalendarDay(c *gin.Context) {
	detail, err := a.tracker.Day(c.Request.Context(), currentUserID(c), c.Param("date"))
	if err != nil {
		a.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// Stats 返回 ?range={N}d 的统计视图，默认 30d
func (a *API) Stats(c *gin.Context) {
	stats, err := a.tracker.Stats(c.Request.Context(), currentUserID(c), c.Query("range"))
	if err != nil {
		a.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
