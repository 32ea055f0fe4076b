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

// Register creates an account and opens a session. New accounts get the
// "user" role; privileged roles are only ever assigned by an admin.
func (h *HTTPHandler) Register(c *gin.Context) {
	if h.repo == nil {
		ServiceUnavailable(c, "user repository not available")
		return
	}

	var req entity.AuthRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)
	password := strings.TrimSpace(req.Password)
	if email == "" || username == "" || password == "" {
		BadRequest(c, ErrCodeInvalidRequest, "email, username and password are required")
		return
	}

	hash, err := h.hasher.Hash(password)
	if err != nil {
		logrus.WithError(err).Error("failed to hash password")
		InternalError(c, "failed to register user")
		return
	}

	user := &entity.DbUser{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		IsActive:     true,
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.repo.CreateUser(ctx, user, []string{"user"}); err != nil {
		if errors.Is(err, entity.ErrConflict) {
			Conflict(c, ErrCodeEmailExists, "email or username already registered")
			return
		}
		logrus.WithError(err).Error("failed to create user")
		InternalError(c, "failed to register user")
		return
	}

	token, expiresAt, err := h.authManager.Issue(user.ID)
	if err != nil {
		logrus.WithError(err).Error("failed to create token for user")
		InternalError(c, "failed to create session")
		return
	}

	c.JSON(http.StatusCreated, entity.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      makeUserSummary(user, []string{"user"}),
	})
}

// Login verifies a username/password pair. Unknown usernames and wrong
// passwords answer identically so the endpoint cannot be used to probe for
// accounts.
func (h *HTTPHandler) Login(c *gin.Context) {
	if h.repo == nil {
		ServiceUnavailable(c, "user repository not available")
		return
	}

	var req entity.AuthLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	username := strings.TrimSpace(req.Username)
	password := strings.TrimSpace(req.Password)
	if username == "" || password == "" {
		BadRequest(c, ErrCodeInvalidRequest, "username and password are required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, err := h.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, entity.ErrNotFound) {
			logrus.WithError(err).Error("failed to load user for login")
			InternalError(c, "failed to process login")
			return
		}
		logrus.WithField("username", username).Warn("login attempt for unknown user")
		Unauthorized(c, ErrCodeInvalidCredentials, "invalid username or password")
		return
	}

	if err := h.hasher.Verify(user.PasswordHash, password); err != nil {
		logrus.WithField("username", username).Warn("password verification failed")
		Unauthorized(c, ErrCodeInvalidCredentials, "invalid username or password")
		return
	}

	if !user.IsActive {
		Forbidden(c, ErrCodeInactiveAccount, "account is disabled")
		return
	}

	token, expiresAt, err := h.authManager.Issue(user.ID)
	if err != nil {
		logrus.WithError(err).Error("failed to generate token")
		InternalError(c, "failed to create session")
		return
	}

	roles, err := h.authorizer.RolesFor(ctx, user.ID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("failed to load roles")
		InternalError(c, "failed to create session")
		return
	}

	c.JSON(http.StatusOK, entity.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      makeUserSummary(user, roles),
	})
}

// Me returns the authenticated user's profile.
func (h *HTTPHandler) Me(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, ErrCodeUnauthorized, "authentication required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	dbUser, err := h.repo.GetUserByID(ctx, user.ID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("failed to load user profile")
		InternalError(c, "failed to load profile")
		return
	}

	roles, err := h.authorizer.RolesFor(ctx, user.ID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("failed to load roles")
		InternalError(c, "failed to load profile")
		return
	}

	c.JSON(http.StatusOK, makeUserSummary(dbUser, roles))
}

// makeUserSummary renders a user with its display role set. Callers pass the
// already-resolved roles; an empty set is rendered as ["guest"].
func makeUserSummary(user *entity.DbUser, roles []string) entity.UserSummary {
	if user == nil {
		return entity.UserSummary{}
	}
	if len(roles) == 0 {
		roles = []string{entity.DefaultRoleName}
	}
	return entity.UserSummary{
		ID:        user.ID,
		Email:     user.Email,
		Username:  user.Username,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
		Roles:     roles,
	}
}
