package sql

import (
	"context"
	"fmt"

	"studenthub/internal/entity"

	"gorm.io/gorm"
)

var postListSpec = listSpec{
	defaultSort: "created_at",
	sortable: map[string]string{
		"created_at": "created_at",
		"title":      "title",
	},
	search:   []string{"title", "content"},
	tieBreak: "id",
}

var discussionListSpec = listSpec{
	defaultSort: "created_at",
	sortable: map[string]string{
		"created_at": "created_at",
		"title":      "title",
	},
	tieBreak: "id",
}

var statusListSpec = listSpec{
	defaultSort: "created_at",
	sortable: map[string]string{
		"created_at": "created_at",
	},
	tieBreak: "id",
}

// CreatePost persists a blog entry.
func (r *GormRepository) CreatePost(ctx context.Context, post *entity.DbPost) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if post == nil {
		return fmt.Errorf("post is nil")
	}
	return translateError(r.db.WithContext(ctx).Create(post).Error)
}

// ListPublicPosts pages over public posts only.
func (r *GormRepository) ListPublicPosts(ctx context.Context, params entity.BaseParams) ([]entity.DbPost, *entity.Meta, error) {
	if r == nil || r.db == nil {
		return nil, nil, fmt.Errorf("repository not initialised")
	}

	query := r.db.WithContext(ctx).Model(&entity.DbPost{}).Where("is_public = ?", true)

	var posts []entity.DbPost
	meta, err := r.runList(query, postListSpec, params, "", &posts)
	if err != nil {
		return nil, nil, err
	}
	return posts, meta, nil
}

// CreateDiscussion persists a discussion thread.
func (r *GormRepository) CreateDiscussion(ctx context.Context, discussion *entity.DbDiscussion) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if discussion == nil {
		return fmt.Errorf("discussion is nil")
	}
	return translateError(r.db.WithContext(ctx).Create(discussion).Error)
}

// ListDiscussions pages over discussion threads.
func (r *GormRepository) ListDiscussions(ctx context.Context, params entity.BaseParams) ([]entity.DbDiscussion, *entity.Meta, error) {
	if r == nil || r.db == nil {
		return nil, nil, fmt.Errorf("repository not initialised")
	}

	query := r.db.WithContext(ctx).Model(&entity.DbDiscussion{})

	var discussions []entity.DbDiscussion
	meta, err := r.runList(query, discussionListSpec, params, "", &discussions)
	if err != nil {
		return nil, nil, err
	}
	return discussions, meta, nil
}

// CreateMessage persists a message after confirming its discussion exists.
func (r *GormRepository) CreateMessage(ctx context.Context, message *entity.DbMessage) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if message == nil {
		return fmt.Errorf("message is nil")
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var discussion entity.DbDiscussion
		if err := tx.First(&discussion, message.DiscussionID).Error; err != nil {
			return err
		}
		return tx.Create(message).Error
	})
	return translateError(err)
}

// CreateStatus persists a status line.
func (r *GormRepository) CreateStatus(ctx context.Context, status *entity.DbStatus) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if status == nil {
		return fmt.Errorf("status is nil")
	}
	return translateError(r.db.WithContext(ctx).Create(status).Error)
}

// ListStatusesForUser pages over one user's status history, latest first.
func (r *GormRepository) ListStatusesForUser(ctx context.Context, userID uint, params entity.BaseParams) ([]entity.DbStatus, *entity.Meta, error) {
	if r == nil || r.db == nil {
		return nil, nil, fmt.Errorf("repository not initialised")
	}
	if userID == 0 {
		return nil, nil, entity.ErrNotFound
	}

	query := r.db.WithContext(ctx).Model(&entity.DbStatus{}).Where("user_id = ?", userID)

	var statuses []entity.DbStatus
	meta, err := r.runList(query, statusListSpec, params, "", &statuses)
	if err != nil {
		return nil, nil, err
	}
	return statuses, meta, nil
}
