package models

import (
	"time"

	"gorm.io/datatypes"
)

// Post 文章
type Post struct {
	ID        string    `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	UserID    string    `gorm:"column:user_id;type:varchar(36);not null;index:idx_posts_user" json:"user_id"`
	Title     string    `gorm:"column:title;type:varchar(200);not null" json:"title"`
	Content   string    `gorm:"column:content;type:text;not null" json:"content"`
	Category  string    `gorm:"column:category;type:varchar(64);not null;default:''" json:"category"`
	ImageURL  string    `gorm:"column:image_url;type:varchar(512);not null;default:''" json:"image_url"`
	CreatedAt time.Time `gorm:"column:created_at;not null;index:idx_posts_created_at" json:"created_at"`
}

func (Post) TableName() string {
	return "posts"
}

// Build 项目展示
type Build struct {
	ID          string                      `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	UserID      string                      `gorm:"column:user_id;type:varchar(36);not null;index:idx_builds_user" json:"user_id"`
	Title       string                      `gorm:"column:title;type:varchar(200);not null" json:"title"`
	Description string                      `gorm:"column:description;type:text;not null" json:"description"`
	Category    string                      `gorm:"column:category;type:varchar(64);not null;default:''" json:"category"`
	LiveURL     string                      `gorm:"column:live_url;type:varchar(512);not null;default:''" json:"live_url"`
	GithubURL   string                      `gorm:"column:github_url;type:varchar(512);not null;default:''" json:"github_url"`
	ImageURL    string                      `gorm:"column:image_url;type:varchar(512);not null;default:''" json:"image_url"`
	Status      string                      `gorm:"column:status;type:varchar(32);not null;default:'In Progress'" json:"status"` // In Progress / Completed
	Stars       int64                       `gorm:"column:stars;not null;default:0" json:"stars"`
	Tags        datatypes.JSONSlice[string] `gorm:"column:tags" json:"tags"`
	CreatedAt   time.Time                   `gorm:"column:created_at;not null;index:idx_builds_created_at" json:"created_at"`
}

func (Build) TableName() string {
	return "builds"
}

// Share 个人经历分享
type Share struct {
	ID        string                      `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	UserID    string                      `gorm:"column:user_id;type:varchar(36);not null;index:idx_shares_user" json:"user_id"`
	Title     string                      `gorm:"column:title;type:varchar(200);not null" json:"title"`
	Content   string                      `gorm:"column:content;type:text;not null" json:"content"`
	Tags      datatypes.JSONSlice[string] `gorm:"column:tags" json:"tags"`
	CreatedAt time.Time                   `gorm:"column:created_at;not null;index:idx_shares_created_at" json:"created_at"`
}

func (Share) TableName() string {
	return "shares"
}

type AINews struct {
	ID        string    `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	UserID    string    `gorm:"column:user_id;type:varchar(36);not null;index:idx_ai_news_user" json:"user_id"`
	Title     string    `gorm:"column:title;type:varchar(200);not null" json:"title"`
	Content   string    `gorm:"column:content;type:text;not null" json:"content"`
	Source    string    `gorm:"column:source;type:varchar(512);not null;default:''" json:"source"`
	Category  string    `gorm:"column:category;type:varchar(64);not null;default:''" json:"category"`
	ImageURL  string    `gorm:"column:image_url;type:varchar(512);not null;default:''" json:"image_url"`
	CreatedAt time.Time `gorm:"column:created_at;not null;index:idx_ai_news_created_at" json:"created_at"`
}

func (AINews) TableName() string {
	return "ai_news"
}
