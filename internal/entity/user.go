package entity

import "time"

// DefaultRoleName is the display-only role reported for accounts that have
// no assignments. It never grants a capability.
const DefaultRoleName = "guest"

// SeedRoleNames are the roles ensured at startup.
var SeedRoleNames = []string{"guest", "user", "admin"}

// DbUser represents a persisted user account.
type DbUser struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Email        string    `gorm:"column:email;type:varchar(255);uniqueIndex;not null" json:"email"`
	Username     string    `gorm:"column:username;type:varchar(50);uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"column:password_hash;type:varchar(255);not null" json:"-"`
	IsActive     bool      `gorm:"column:is_active;not null;default:true" json:"is_active"`
}

// TableName overrides default pluralised name.
func (DbUser) TableName() string {
	return "users"
}

// DbRole is static reference data seeded at startup.
type DbRole struct {
	ID   uint   `gorm:"primarykey" json:"id"`
	Name string `gorm:"column:name;type:varchar(50);uniqueIndex;not null" json:"name"`
}

func (DbRole) TableName() string {
	return "roles"
}

// DbUserRole is the user/role many-to-many join. It carries no attributes of
// its own.
type DbUserRole struct {
	UserID uint `gorm:"column:user_id;primaryKey" json:"user_id"`
	RoleID uint `gorm:"column:role_id;primaryKey" json:"role_id"`
}

func (DbUserRole) TableName() string {
	return "user_roles"
}

// UserSummary is a lightweight user description returned to clients. Roles is
// the display set: accounts without assignments report ["guest"].
type UserSummary struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	Roles     []string  `json:"roles"`
}

// UserQuery supports the admin user listing.
type UserQuery struct {
	BaseParams
	Keyword  string `json:"q" form:"q" query:"q"`
	Role     string `json:"role" form:"role" query:"role"`
	IsActive *bool  `json:"is_active" form:"is_active" query:"is_active"`
}

type AuthRegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

type AuthLoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      UserSummary `json:"user"`
}

type UserCreateRequest struct {
	Email    string   `json:"email" binding:"required,email"`
	Username string   `json:"username" binding:"required,min=3,max=50"`
	Password string   `json:"password" binding:"required,min=6,max=128"`
	Roles    []string `json:"roles"`
	IsActive *bool    `json:"is_active"`
}

type UserUpdateRequest struct {
	Email    *string   `json:"email,omitempty"`
	Username *string   `json:"username,omitempty"`
	Password *string   `json:"password,omitempty"`
	IsActive *bool     `json:"is_active,omitempty"`
	Roles    *[]string `json:"roles,omitempty"`
}

type UserStatusRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

type RoleAssignRequest struct {
	Role string `json:"role" binding:"required"`
}

type UserListResponse struct {
	Users []UserSummary `json:"users"`
	Meta  *Meta         `json:"meta"`
}

type RoleListResponse struct {
	Roles []DbRole `json:"roles"`
}
