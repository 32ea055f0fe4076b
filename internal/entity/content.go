package entity

import "time"

// DbPost is a blog entry authored by a user.
type DbPost struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	AuthorID  uint      `gorm:"column:author_id;index;not null" json:"author_id"`
	Title     string    `gorm:"column:title;type:varchar(200);not null" json:"title"`
	Content   string    `gorm:"column:content;type:text;not null" json:"content"`
	IsPublic  bool      `gorm:"column:is_public;not null;default:true" json:"is_public"`
}

func (DbPost) TableName() string {
	return "posts"
}

// DbFile records an uploaded object. The bytes live in the blob store under
// ObjectName; this row only carries metadata.
type DbFile struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	OwnerID     uint      `gorm:"column:owner_id;index;not null" json:"owner_id"`
	ObjectName  string    `gorm:"column:object_name;type:varchar(512);not null" json:"object_name"`
	Filename    string    `gorm:"column:filename;type:varchar(255);not null" json:"filename"`
	Size        int64     `gorm:"column:size;not null;default:0" json:"size"`
	ContentType string    `gorm:"column:content_type;type:varchar(255)" json:"content_type"`
}

func (DbFile) TableName() string {
	return "files"
}

type DbDiscussion struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Title     string    `gorm:"column:title;type:varchar(200);not null" json:"title"`
	CreatedBy uint      `gorm:"column:created_by;index;not null" json:"created_by"`
}

func (DbDiscussion) TableName() string {
	return "discussions"
}

type DbMessage struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	DiscussionID uint      `gorm:"column:discussion_id;index;not null" json:"discussion_id"`
	AuthorID     uint      `gorm:"column:author_id;index;not null" json:"author_id"`
	Body         string    `gorm:"column:body;type:text;not null" json:"body"`
}

func (DbMessage) TableName() string {
	return "messages"
}

type DbStatus struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UserID    uint      `gorm:"column:user_id;index;not null" json:"user_id"`
	Text      string    `gorm:"column:text;type:varchar(280);not null" json:"text"`
}

func (DbStatus) TableName() string {
	return "statuses"
}

// FileWithOwner joins a file row with its owner's email for the admin listing.
type FileWithOwner struct {
	DbFile
	OwnerEmail string `gorm:"column:owner_email" json:"owner_email"`
}

// FileQuery supports the admin file listing. Keyword matches the filename and
// the owning user's email.
type FileQuery struct {
	BaseParams
	Keyword string `json:"q" form:"q" query:"q"`
	OwnerID uint   `json:"owner_id" form:"owner_id" query:"owner_id"`
}

type FileListResponse struct {
	Files []FileWithOwner `json:"files"`
	Meta  *Meta           `json:"meta"`
}

type FileUploadResponse struct {
	File DbFile `json:"file"`
}

type PostCreateRequest struct {
	Title    string `json:"title" binding:"required,max=200"`
	Content  string `json:"content" binding:"required"`
	IsPublic *bool  `json:"is_public"`
}

type PostListResponse struct {
	Posts []DbPost `json:"posts"`
	Meta  *Meta    `json:"meta"`
}

type DiscussionCreateRequest struct {
	Title string `json:"title" binding:"required,max=200"`
}

type DiscussionListResponse struct {
	Discussions []DbDiscussion `json:"discussions"`
	Meta        *Meta          `json:"meta"`
}

type MessageCreateRequest struct {
	DiscussionID uint   `json:"discussion_id" binding:"required"`
	Body         string `json:"body" binding:"required"`
}

type StatusCreateRequest struct {
	Text string `json:"text" binding:"required,max=280"`
}

type StatusListResponse struct {
	Statuses []DbStatus `json:"statuses"`
	Meta     *Meta      `json:"meta"`
}
