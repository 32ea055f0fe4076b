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

// CreateDiscussion 创建讨论串
func (h *HTTPHandler) CreateDiscussion(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, ErrCodeUnauthorized, "authentication required")
		return
	}

	var req entity.DiscussionCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	discussion := &entity.DbDiscussion{
		Title:     strings.TrimSpace(req.Title),
		CreatedBy: user.ID,
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.repo.CreateDiscussion(ctx, discussion); err != nil {
		logrus.WithError(err).Error("failed to create discussion")
		InternalError(c, "failed to create discussion")
		return
	}

	c.JSON(http.StatusCreated, discussion)
}

// ListDiscussions 讨论串列表
func (h *HTTPHandler) ListDiscussions(c *gin.Context) {
	var params entity.BaseParams
	if err := c.ShouldBindQuery(&params); err != nil {
		BadRequest(c, ErrCodeInvalidRequest, "invalid query parameters")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	discussions, meta, err := h.repo.ListDiscussions(ctx, params)
	if err != nil {
		logrus.WithError(err).Error("failed to list discussions")
		InternalError(c, "failed to load discussions")
		return
	}

	c.JSON(http.StatusOK, entity.DiscussionListResponse{Discussions: discussions, Meta: meta})
}

// CreateMessage 在讨论串中发言；讨论串不存在时返回 404。
func (h *HTTPHandler) CreateMessage(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, ErrCodeUnauthorized, "authentication required")
		return
	}

	var req entity.MessageCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	message := &entity.DbMessage{
		DiscussionID: req.DiscussionID,
		AuthorID:     user.ID,
		Body:         req.Body,
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.repo.CreateMessage(ctx, message); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			NotFound(c, ErrCodeDiscussionNotFound, "discussion not found")
			return
		}
		logrus.WithError(err).Error("failed to create message")
		InternalError(c, "failed to create message")
		return
	}

	c.JSON(http.StatusCreated, message)
}

// CreateStatus 发布状态
func (h *HTTPHandler) CreateStatus(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, ErrCodeUnauthorized, "authentication required")
		return
	}

	var req entity.StatusCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	status := &entity.DbStatus{
		UserID: user.ID,
		Text:   strings.TrimSpace(req.Text),
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.repo.CreateStatus(ctx, status); err != nil {
		logrus.WithError(err).Error("failed to create status")
		InternalError(c, "failed to create status")
		return
	}

	c.JSON(http.StatusCreated, status)
}

// ListMyStatuses 当前用户的状态历史
func (h *HTTPHandler) ListMyStatuses(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, ErrCodeUnauthorized, "authentication required")
		return
	}

	var params entity.BaseParams
	if err := c.ShouldBindQuery(&params); err != nil {
		BadRequest(c, ErrCodeInvalidRequest, "invalid query parameters")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	statuses, meta, err := h.repo.ListStatusesForUser(ctx, user.ID, params)
	if err != nil {
		logrus.WithError(err).Error("failed to list statuses")
		InternalError(c, "failed to load statuses")
		return
	}

	c.JSON(http.StatusOK, entity.StatusListResponse{Statuses: statuses, Meta: meta})
}
