package model

import (
	"context"

	"studenthub/internal/entity"
)

// Repository 定义数据库操作接口
//
// Implementations translate driver errors into entity.ErrNotFound and
// entity.ErrConflict; callers never see gorm sentinels. Mutating operations
// that touch more than one table run inside a single transaction.
type Repository interface {
	// 用户管理
	CreateUser(ctx context.Context, user *entity.DbUser, roleNames []string) error
	UpdateUser(ctx context.Context, id uint, updates map[string]interface{}) error
	GetUserByID(ctx context.Context, id uint) (*entity.DbUser, error)
	GetUserByUsername(ctx context.Context, username string) (*entity.DbUser, error)
	GetUserByEmail(ctx context.Context, email string) (*entity.DbUser, error)
	ListUsers(ctx context.Context, params *entity.UserQuery) ([]entity.DbUser, *entity.Meta, error)
	DeleteUser(ctx context.Context, id uint) error
	CountUsers(ctx context.Context) (int64, error)
	SetUserActive(ctx context.Context, id uint, active bool) error

	// 角色
	ListRoles(ctx context.Context) ([]entity.DbRole, error)
	GetRoleByName(ctx context.Context, name string) (*entity.DbRole, error)
	EnsureRole(ctx context.Context, name string) error
	AssignRole(ctx context.Context, userID, roleID uint) error
	RevokeRole(ctx context.Context, userID, roleID uint) error
	ReplaceUserRoles(ctx context.Context, userID uint, roleNames []string) error
	RoleNamesForUser(ctx context.Context, userID uint) ([]string, error)

	// 文件
	CreateFile(ctx context.Context, file *entity.DbFile) error
	GetFileByID(ctx context.Context, id uint) (*entity.DbFile, error)
	ListFiles(ctx context.Context, params *entity.FileQuery) ([]entity.FileWithOwner, *entity.Meta, error)
	ListFilesByOwner(ctx context.Context, ownerID uint, params entity.BaseParams) ([]entity.DbFile, *entity.Meta, error)
	DeleteFile(ctx context.Context, id uint) error

	// 内容
	CreatePost(ctx context.Context, post *entity.DbPost) error
	ListPublicPosts(ctx context.Context, params entity.BaseParams) ([]entity.DbPost, *entity.Meta, error)
	CreateDiscussion(ctx context.Context, discussion *entity.DbDiscussion) error
	ListDiscussions(ctx context.Context, params entity.BaseParams) ([]entity.DbDiscussion, *entity.Meta, error)
	CreateMessage(ctx context.Context, message *entity.DbMessage) error
	CreateStatus(ctx context.Context, status *entity.DbStatus) error
	ListStatusesForUser(ctx context.Context, userID uint, params entity.BaseParams) ([]entity.DbStatus, *entity.Meta, error)
}
