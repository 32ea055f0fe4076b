package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"studenthub/internal/entity"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// CreatePost 发布博文
func (h *HTTPHandler) CreatePost(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, ErrCodeUnauthorized, "authentication required")
		return
	}

	var req entity.PostCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	post := &entity.DbPost{
		AuthorID: user.ID,
		Title:    strings.TrimSpace(req.Title),
		Content:  req.Content,
		IsPublic: isPublic,
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.repo.CreatePost(ctx, post); err != nil {
		logrus.WithError(err).Error("failed to create post")
		InternalError(c, "failed to create post")
		return
	}

	c.JSON(http.StatusCreated, post)
}

// ListPublicPosts 公开博文列表，无需认证。
func (h *HTTPHandler) ListPublicPosts(c *gin.Context) {
	var params entity.BaseParams
	if err := c.ShouldBindQuery(&params); err != nil {
		BadRequest(c, ErrCodeInvalidRequest, "invalid query parameters")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	posts, meta, err := h.repo.ListPublicPosts(ctx, params)
	if err != nil {
		logrus.WithError(err).Error("failed to list posts")
		InternalError(c, "failed to load posts")
		return
	}

	c.JSON(http.StatusOK, entity.PostListResponse{Posts: posts, Meta: meta})
}
