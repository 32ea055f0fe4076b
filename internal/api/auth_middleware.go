package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"studenthub/internal/entity"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	currentUserContextKey = "current-user"
)

// RequestUser 存储请求上下文中的认证用户信息
type RequestUser struct {
	ID       uint
	Email    string
	Username string
	Roles    []string
}

// AuthMiddleware JWT 认证中间件
//
// Every token failure answers with the same code and message so callers
// cannot tell a forged token from an expired one. The account is re-loaded
// on each request; disabling or deleting a user invalidates outstanding
// tokens immediately.
func (h *HTTPHandler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{
				Code:    ErrCodeUnauthorized,
				Message: "missing authorization header",
			})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{
				Code:    ErrCodeUnauthorized,
				Message: "invalid authorization header format",
			})
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{
				Code:    ErrCodeUnauthorized,
				Message: "missing bearer token",
			})
			return
		}

		userID, err := h.authManager.Validate(tokenString)
		if err != nil {
			logrus.WithError(err).Warn("failed to validate jwt token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{
				Code:    ErrCodeTokenInvalid,
				Message: "invalid or expired token",
			})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		user, err := h.repo.GetUserByID(ctx, userID)
		if err != nil {
			if errors.Is(err, entity.ErrNotFound) {
				// Indistinguishable from a bad token on purpose.
				c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{
					Code:    ErrCodeTokenInvalid,
					Message: "invalid or expired token",
				})
				return
			}
			logrus.WithError(err).WithField("user_id", userID).Error("failed to load user")
			c.AbortWithStatusJSON(http.StatusInternalServerError, APIError{
				Code:    ErrCodeInternalError,
				Message: "failed to verify user",
			})
			return
		}

		if !user.IsActive {
			c.AbortWithStatusJSON(http.StatusForbidden, APIError{
				Code:    ErrCodeInactiveAccount,
				Message: "account is disabled",
			})
			return
		}

		roles, err := h.repo.RoleNamesForUser(ctx, user.ID)
		if err != nil {
			logrus.WithError(err).WithField("user_id", user.ID).Error("failed to load roles")
			c.AbortWithStatusJSON(http.StatusInternalServerError, APIError{
				Code:    ErrCodeInternalError,
				Message: "failed to verify user",
			})
			return
		}

		requestUser := &RequestUser{
			ID:       user.ID,
			Email:    user.Email,
			Username: user.Username,
			Roles:    roles,
		}

		c.Set(currentUserContextKey, requestUser)
		c.Next()
	}
}

// RequireAdmin 管理员权限守卫中间件
func (h *HTTPHandler) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{
				Code:    ErrCodeUnauthorized,
				Message: "authentication required",
			})
			return
		}

		decision, err := h.authorizer.RequireAdmin(c.Request.Context(), user.ID)
		if err != nil {
			logrus.WithError(err).WithField("user_id", user.ID).Error("authorization check failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, APIError{
				Code:    ErrCodeInternalError,
				Message: "authorization check failed",
			})
			return
		}
		if !decision.Allowed {
			c.AbortWithStatusJSON(http.StatusForbidden, APIError{
				Code:    reasonErrorCode(decision.Reason),
				Message: "admin role required",
			})
			return
		}
		c.Next()
	}
}

// CurrentUser 从上下文获取当前认证用户
func CurrentUser(c *gin.Context) *RequestUser {
	value, exists := c.Get(currentUserContextKey)
	if !exists {
		return nil
	}
	user, ok := value.(*RequestUser)
	if !ok {
		return nil
	}
	return user
}
