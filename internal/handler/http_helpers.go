package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/habitlog/internal/service"
)

const (
	contextUserIDKey  = "auth.user_id"
	contextTokenIDKey = "auth.token_id"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"message": message})
}

// respondValidation 以 422 返回字段错误，message 取第一条
func respondValidation(c *gin.Context, fields map[string]string) {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	errs := make(gin.H, len(fields))
	for _, key := range keys {
		errs[key] = []string{fields[key]}
	}

	message := "The given data was invalid."
	if len(keys) > 0 {
		message = fields[keys[0]]
		if extra := len(keys) - 1; extra == 1 {
			message += " (and 1 more error)"
		} else if extra > 1 {
			message += fmt.Sprintf(" (and %d more errors)", extra)
		}
	}

	c.JSON(http.StatusUnprocessableEntity, gin.H{"message": message, "errors": errs})
}

// bindJSON 解析请求体，空请求体按 {} 处理
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, http.StatusBadRequest, "Malformed JSON body.")
		return false
	}
	return true
}

// handleServiceError 把 service 层错误映射为 HTTP 响应
func (a *API) handleServiceError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		respondValidation(c, verr.Fields)
	case errors.Is(err, service.ErrInvalidCredentials):
		respondValidation(c, map[string]string{"email": "These credentials do not match our records."})
	case errors.Is(err, service.ErrEmailTaken):
		respondValidation(c, map[string]string{"email": "The email has already been taken."})
	case errors.Is(err, service.ErrInvalidInput):
		respondError(c, http.StatusUnprocessableEntity, "The given data was invalid.")
	case errors.Is(err, service.ErrUnauthenticated):
		respondError(c, http.StatusUnauthorized, "Unauthenticated.")
	case errors.Is(err, service.ErrForbidden):
		respondError(c, http.StatusForbidden, "This action is unauthorized.")
	case errors.Is(err, service.ErrHabitNotFound):
		respondError(c, http.StatusNotFound, "Habit not found.")
	default:
		_ = c.Error(err)
		a.log.WithError(err).WithFields(map[string]interface{}{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).Error("request failed")
		respondError(c, http.StatusInternalServerError, "Server Error")
	}
}

func currentUserID(c *gin.Context) uint {
	if value, ok := c.Get(contextUserIDKey); ok {
		if id, ok := value.(uint); ok {
			return id
		}
	}
	return 0
}

func currentTokenID(c *gin.Context) string {
	return c.GetString(contextTokenIDKey)
}
