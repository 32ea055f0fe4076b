package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"studenthub/internal/entity"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	value := strings.TrimSpace(c.Param(name))
	id, err := strconv.ParseUint(value, 10, 64)
	if err != nil || id == 0 {
		BadRequest(c, ErrCodeInvalidRequest, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// ListUsers 管理端用户列表
func (h *HTTPHandler) ListUsers(c *gin.Context) {
	if h.repo == nil {
		ServiceUnavailable(c, "user repository not available")
		return
	}

	var query entity.UserQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		BadRequest(c, ErrCodeInvalidRequest, "invalid query parameters")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	users, meta, err := h.repo.ListUsers(ctx, &query)
	if err != nil {
		logrus.WithError(err).Error("failed to list users")
		InternalError(c, "failed to load users")
		return
	}

	response := entity.UserListResponse{
		Users: make([]entity.UserSummary, 0, len(users)),
		Meta:  meta,
	}
	for idx := range users {
		roles, err := h.repo.RoleNamesForUser(ctx, users[idx].ID)
		if err != nil {
			logrus.WithError(err).WithField("user_id", users[idx].ID).Error("failed to load roles")
			InternalError(c, "failed to load users")
			return
		}
		response.Users = append(response.Users, makeUserSummary(&users[idx], roles))
	}

	c.JSON(http.StatusOK, response)
}

// CreateUser 管理端创建用户
func (h *HTTPHandler) CreateUser(c *gin.Context) {
	var req entity.UserCreateRequest
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
		logrus.WithError(err).Error("failed to hash password for new user")
		InternalError(c, "failed to create user")
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	user := &entity.DbUser{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		IsActive:     isActive,
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.repo.CreateUser(ctx, user, req.Roles); err != nil {
		if errors.Is(err, entity.ErrConflict) {
			Conflict(c, ErrCodeEmailExists, "email or username already registered")
			return
		}
		if errors.Is(err, entity.ErrNotFound) {
			BadRequest(c, ErrCodeRoleNotFound, "unknown role name")
			return
		}
		logrus.WithError(err).Error("failed to create user")
		InternalError(c, "failed to create user")
		return
	}

	c.JSON(http.StatusCreated, makeUserSummary(user, req.Roles))
}

// UpdateUser 管理端修改用户
func (h *HTTPHandler) UpdateUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req entity.UserUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	dbUser, err := h.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			NotFound(c, ErrCodeUserNotFound, "user not found")
			return
		}
		logrus.WithError(err).Error("failed to load user for update")
		InternalError(c, "failed to update user")
		return
	}

	updates := make(map[string]interface{})

	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email == "" {
			BadRequest(c, ErrCodeInvalidRequest, "email must not be empty")
			return
		}
		updates["email"] = email
	}

	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if username == "" {
			BadRequest(c, ErrCodeInvalidRequest, "username must not be empty")
			return
		}
		updates["username"] = username
	}

	if req.Password != nil {
		password := strings.TrimSpace(*req.Password)
		if password == "" {
			BadRequest(c, ErrCodeInvalidRequest, "password must not be empty")
			return
		}
		hash, err := h.hasher.Hash(password)
		if err != nil {
			logrus.WithError(err).Error("failed to hash password for update")
			InternalError(c, "failed to update user")
			return
		}
		updates["password_hash"] = hash
	}

	if req.IsActive != nil {
		// Admins cannot flip their own active flag; the last admin could
		// otherwise lock everyone out.
		if actor := CurrentUser(c); actor != nil && actor.ID == dbUser.ID {
			Forbidden(c, ErrCodeSelfTargetForbidden, "cannot change own active status")
			return
		}
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := h.repo.UpdateUser(ctx, dbUser.ID, updates); err != nil {
			if errors.Is(err, entity.ErrConflict) {
				Conflict(c, ErrCodeEmailExists, "email or username already registered")
				return
			}
			logrus.WithError(err).Error("failed to update user")
			InternalError(c, "failed to update user")
			return
		}
	}

	if req.Roles != nil {
		if err := h.repo.ReplaceUserRoles(ctx, dbUser.ID, *req.Roles); err != nil {
			if errors.Is(err, entity.ErrNotFound) {
				BadRequest(c, ErrCodeRoleNotFound, "unknown role name")
				return
			}
			logrus.WithError(err).Error("failed to replace roles")
			InternalError(c, "failed to update user")
			return
		}
	}

	updated, err := h.repo.GetUserByID(ctx, dbUser.ID)
	if err != nil {
		logrus.WithError(err).Error("failed to reload user after update")
		InternalError(c, "failed to load updated user")
		return
	}
	roles, err := h.repo.RoleNamesForUser(ctx, updated.ID)
	if err != nil {
		logrus.WithError(err).Error("failed to load roles after update")
		InternalError(c, "failed to load updated user")
		return
	}

	c.JSON(http.StatusOK, makeUserSummary(updated, roles))
}

// DeleteUser 管理端删除用户。管理员不能删除自己。
func (h *HTTPHandler) DeleteUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	actor := CurrentUser(c)
	if actor == nil {
		Unauthorized(c, ErrCodeUnauthorized, "authentication required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	decision, err := h.authorizer.AuthorizeTarget(ctx, actor.ID, id, h.authorizer.AdminRole())
	if err != nil {
		logrus.WithError(err).Error("authorization check failed")
		InternalError(c, "failed to delete user")
		return
	}
	if !decision.Allowed {
		Forbidden(c, reasonErrorCode(decision.Reason), "cannot delete this user")
		return
	}

	if err := h.repo.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			NotFound(c, ErrCodeUserNotFound, "user not found")
			return
		}
		logrus.WithError(err).Error("failed to delete user")
		InternalError(c, "failed to delete user")
		return
	}

	c.Status(http.StatusNoContent)
}

// SetUserStatus 管理端启用/禁用用户。管理员不能禁用自己。
func (h *HTTPHandler) SetUserStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req entity.UserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IsActive == nil {
		InvalidPayload(c)
		return
	}

	actor := CurrentUser(c)
	if actor == nil {
		Unauthorized(c, ErrCodeUnauthorized, "authentication required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	decision, err := h.authorizer.AuthorizeTarget(ctx, actor.ID, id, h.authorizer.AdminRole())
	if err != nil {
		logrus.WithError(err).Error("authorization check failed")
		InternalError(c, "failed to change user status")
		return
	}
	if !decision.Allowed {
		Forbidden(c, reasonErrorCode(decision.Reason), "cannot change this user's status")
		return
	}

	if err := h.repo.SetUserActive(ctx, id, *req.IsActive); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			NotFound(c, ErrCodeUserNotFound, "user not found")
			return
		}
		logrus.WithError(err).Error("failed to change user status")
		InternalError(c, "failed to change user status")
		return
	}

	c.Status(http.StatusNoContent)
}

// AssignRole 管理端为用户授予角色；重复授予是幂等的。
func (h *HTTPHandler) AssignRole(c *gin.Context) {
	h.changeRoleAssignment(c, true)
}

// RevokeRole 管理端撤销用户角色。
func (h *HTTPHandler) RevokeRole(c *gin.Context) {
	h.changeRoleAssignment(c, false)
}

func (h *HTTPHandler) changeRoleAssignment(c *gin.Context, assign bool) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req entity.RoleAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if _, err := h.repo.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			NotFound(c, ErrCodeUserNotFound, "user not found")
			return
		}
		logrus.WithError(err).Error("failed to load user for role change")
		InternalError(c, "failed to change role assignment")
		return
	}

	role, err := h.repo.GetRoleByName(ctx, req.Role)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			NotFound(c, ErrCodeRoleNotFound, "role not found")
			return
		}
		logrus.WithError(err).Error("failed to load role")
		InternalError(c, "failed to change role assignment")
		return
	}

	if assign {
		err = h.repo.AssignRole(ctx, userID, role.ID)
	} else {
		err = h.repo.RevokeRole(ctx, userID, role.ID)
	}
	if err != nil {
		logrus.WithError(err).Error("failed to change role assignment")
		InternalError(c, "failed to change role assignment")
		return
	}

	roles, err := h.repo.RoleNamesForUser(ctx, userID)
	if err != nil {
		logrus.WithError(err).Error("failed to load roles")
		InternalError(c, "failed to change role assignment")
		return
	}
	if len(roles) == 0 {
		roles = []string{entity.DefaultRoleName}
	}

	c.JSON(http.StatusOK, gin.H{"user_id": userID, "roles": roles})
}
