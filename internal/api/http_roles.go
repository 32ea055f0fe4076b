package api

import (
	"context"
	"net/http"
	"time"

	"studenthub/internal/entity"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ListRoles 角色参照数据列表
func (h *HTTPHandler) ListRoles(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	roles, err := h.repo.ListRoles(ctx)
	if err != nil {
		logrus.WithError(err).Error("failed to list roles")
		InternalError(c, "failed to load roles")
		return
	}

	c.JSON(http.StatusOK, entity.RoleListResponse{Roles: roles})
}

// AdminStats 管理端概览
func (h *HTTPHandler) AdminStats(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	userCount, err := h.repo.CountUsers(ctx)
	if err != nil {
		logrus.WithError(err).Error("failed to count users")
		InternalError(c, "failed to load stats")
		return
	}
	roles, err := h.repo.ListRoles(ctx)
	if err != nil {
		logrus.WithError(err).Error("failed to list roles")
		InternalError(c, "failed to load stats")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": userCount,
		"roles": len(roles),
	})
}
