package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"studenthub/internal/entity"
	"studenthub/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// maxUploadBytes caps a single upload. Large media belongs elsewhere.
const maxUploadBytes = 20 << 20

func (h *HTTPHandler) publicURL(objectName string) string {
	trimmed := strings.TrimSpace(objectName)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return trimmed
	}
	base := h.storagePublicBase
	if base == "" {
		base = "/files"
	}
	return fmt.Sprintf("%s/%s", strings.TrimRight(base, "/"), strings.TrimLeft(trimmed, "/"))
}

// UploadFile stores a multipart upload under the caller's own namespace and
// records its metadata.
func (h *HTTPHandler) UploadFile(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, ErrCodeUnauthorized, "authentication required")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, ErrCodeInvalidRequest, "file field is required")
		return
	}
	if fileHeader.Size <= 0 {
		BadRequest(c, ErrCodeInvalidRequest, "empty file")
		return
	}
	if fileHeader.Size > maxUploadBytes {
		BadRequest(c, ErrCodeInvalidRequest, "file too large")
		return
	}

	opened, err := fileHeader.Open()
	if err != nil {
		logrus.WithError(err).Error("failed to open uploaded file")
		InternalError(c, "failed to store file")
		return
	}
	defer opened.Close()

	data, err := io.ReadAll(io.LimitReader(opened, maxUploadBytes+1))
	if err != nil {
		logrus.WithError(err).Error("failed to read uploaded file")
		InternalError(c, "failed to store file")
		return
	}
	if int64(len(data)) > maxUploadBytes {
		BadRequest(c, ErrCodeInvalidRequest, "file too large")
		return
	}

	filename := path.Base(strings.TrimSpace(fileHeader.Filename))
	ext := strings.TrimPrefix(path.Ext(filename), ".")
	base := strings.TrimSuffix(filename, path.Ext(filename))

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	objectName, err := h.storage.Save(ctx, data, storage.SaveOptions{
		Category:    fmt.Sprintf("u%d", user.ID),
		Extension:   ext,
		BaseName:    base,
		ContentType: fileHeader.Header.Get("Content-Type"),
	})
	if err != nil {
		logrus.WithError(err).Error("failed to store file")
		InternalError(c, "failed to store file")
		return
	}

	record := &entity.DbFile{
		OwnerID:     user.ID,
		ObjectName:  objectName,
		Filename:    filename,
		Size:        int64(len(data)),
		ContentType: fileHeader.Header.Get("Content-Type"),
	}
	if err := h.repo.CreateFile(ctx, record); err != nil {
		logrus.WithError(err).Error("failed to record file")
		// Orphaned blob; remove it so storage stays in sync with the table.
		if delErr := h.storage.Delete(ctx, objectName); delErr != nil {
			logrus.WithError(delErr).WithField("object", objectName).Warn("failed to clean up stored object")
		}
		InternalError(c, "failed to store file")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"file": record,
		"url":  h.publicURL(record.ObjectName),
	})
}

// ListMyFiles 当前用户的文件列表
func (h *HTTPHandler) ListMyFiles(c *gin.Context) {
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

	files, meta, err := h.repo.ListFilesByOwner(ctx, user.ID, params)
	if err != nil {
		logrus.WithError(err).Error("failed to list files")
		InternalError(c, "failed to load files")
		return
	}

	items := make([]gin.H, 0, len(files))
	for idx := range files {
		items = append(items, gin.H{
			"file": files[idx],
			"url":  h.publicURL(files[idx].ObjectName),
		})
	}
	c.JSON(http.StatusOK, gin.H{"files": items, "meta": meta})
}

// AdminListFiles 管理端文件列表，关键字同时匹配文件名与所有者邮箱。
func (h *HTTPHandler) AdminListFiles(c *gin.Context) {
	var query entity.FileQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		BadRequest(c, ErrCodeInvalidRequest, "invalid query parameters")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	files, meta, err := h.repo.ListFiles(ctx, &query)
	if err != nil {
		logrus.WithError(err).Error("failed to list files")
		InternalError(c, "failed to load files")
		return
	}

	c.JSON(http.StatusOK, entity.FileListResponse{Files: files, Meta: meta})
}

// AdminDeleteFile removes the metadata row first, then the blob. A failed
// blob delete is logged, not surfaced; the record is already gone.
func (h *HTTPHandler) AdminDeleteFile(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	file, err := h.repo.GetFileByID(ctx, id)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			NotFound(c, ErrCodeFileNotFound, "file not found")
			return
		}
		logrus.WithError(err).Error("failed to load file for deletion")
		InternalError(c, "failed to delete file")
		return
	}

	if err := h.repo.DeleteFile(ctx, id); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			NotFound(c, ErrCodeFileNotFound, "file not found")
			return
		}
		logrus.WithError(err).Error("failed to delete file record")
		InternalError(c, "failed to delete file")
		return
	}

	if err := h.storage.Delete(ctx, file.ObjectName); err != nil {
		logrus.WithError(err).WithField("object", file.ObjectName).Warn("failed to delete stored object")
	}

	c.Status(http.StatusNoContent)
}
