package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/habitlog/internal/db"
	"github.com/habitlog/internal/service"
)

const sessionUserIDKey = "user_id"

type registerRequest struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

type loginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	DeviceName string `json:"device_name"`
}

type userResource struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newUserResource(user *db.User) userResource {
	return userResource{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// Register 创建账号并直接登录
func (a *API) Register(c *gin.Context) {
	var payload registerRequest
	if !bindJSON(c, &payload) {
		return
	}

	user, err := a.auth.Register(c.Request.Context(), service.RegisterInput{
		Name:                 payload.Name,
		Email:                payload.Email,
		Password:             payload.Password,
		PasswordConfirmation: payload.PasswordConfirmation,
	})
	if err != nil {
		a.handleServiceError(c, err)
		return
	}

	a.startSession(c, http.StatusCreated, user, "")
}

// Login 校验账号密码，签发令牌并写入会话
func (a *API) Login(c *gin.Context) {
	var payload loginRequest
	if !bindJSON(c, &payload) {
		return
	}

	user, err := a.auth.Login(c.Request.Context(), payload.Email, payload.Password)
	if err != nil {
		a.handleServiceError(c, err)
		return
	}

	a.startSession(c, http.StatusOK, user, payload.DeviceName)
}

func (a *API) startSession(c *gin.Context, status int, user *db.User, tokenName string) {
	token, _, err := a.auth.Issue(c.Request.Context(), user, tokenName)
	if err != nil {
		a.handleServiceError(c, err)
		return
	}

	session := sessions.Default(c)
	session.Set(sessionUserIDKey, user.ID)
	if err := session.Save(); err != nil {
		a.log.WithError(err).Warn("save session failed")
	}

	c.JSON(status, gin.H{
		"token": token,
		"user":  newUserResource(user),
	})
}

// Logout 吊销当前令牌并清理会话
func (a *API) Logout(c *gin.Context) {
	if err := a.auth.Revoke(c.Request.Context(), currentTokenID(c)); err != nil {
		a.handleServiceError(c, err)
		return
	}

	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		a.log.WithError(err).Warn("clear session failed")
	}

	c.Status(http.StatusNoContent)
}

// CurrentUser 返回当前登录用户
func (a *API) CurrentUser(c *gin.Context) {
	user, err := a.auth.User(c.Request.Context(), currentUserID(c))
	if err != nil {
		a.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResource(user))
}

// AuthRequired 接受 Bearer 令牌，缺省时回退到登录会话
func (a *API) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if raw, ok := bearerToken(c.GetHeader("Authorization")); ok {
			user, token, err := a.auth.Authenticate(ctx, raw)
			if err != nil {
				a.handleServiceError(c, err)
				c.Abort()
				return
			}
			c.Set(contextUserIDKey, user.ID)
			c.Set(contextTokenIDKey, token.ID)
			c.Next()
			return
		}

		session := sessions.Default(c)
		userID := sessionUserID(session.Get(sessionUserIDKey))
		if userID == 0 {
			respondError(c, http.StatusUnauthorized, "Unauthenticated.")
			c.Abort()
			return
		}
		if _, err := a.auth.User(ctx, userID); err != nil {
			a.handleServiceError(c, err)
			c.Abort()
			return
		}

		c.Set(contextUserIDKey, userID)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func sessionUserID(value interface{}) uint {
	switch v := value.(type) {
	case uint:
		return v
	case int:
		if v > 0 {
			return uint(v)
		}
	case int64:
		if v > 0 {
			return uint(v)
		}
	case float64:
		if v > 0 {
			return uint(v)
		}
	}
	return 0
}
