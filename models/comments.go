package models

import (
	"time"
)

// 评论按父内容分四张表，列结构一致，只有父 ID 列不同

type Comment struct {
	ID        string    `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	PostID    string    `gorm:"column:post_id;type:varchar(36);not null;index:idx_comments_post_created,priority:1" json:"post_id"`
	UserID    string    `gorm:"column:user_id;type:varchar(36);not null;index:idx_comments_user" json:"user_id"`
	Content   string    `gorm:"column:content;type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"column:created_at;not null;index:idx_comments_post_created,priority:2" json:"created_at"`
}

func (Comment) TableName() string {
	return "comments"
}

type BuildComment struct {
	ID        string    `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	BuildID   string    `gorm:"column:build_id;type:varchar(36);not null;index:idx_build_comments_build_created,priority:1" json:"build_id"`
	UserID    string    `gorm:"column:user_id;type:varchar(36);not null;index:idx_build_comments_user" json:"user_id"`
	Content   string    `gorm:"column:content;type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"column:created_at;not null;index:idx_build_comments_build_created,priority:2" json:"created_at"`
}

func (BuildComment) TableName() string {
	return "build_comments"
}

type ShareComment struct {
	ID        string    `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	ShareID   string    `gorm:"column:share_id;type:varchar(36);not null;index:idx_share_comments_share_created,priority:1" json:"share_id"`
	UserID    string    `gorm:"column:user_id;type:varchar(36);not null;index:idx_share_comments_user" json:"user_id"`
	Content   string    `gorm:"column:content;type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"column:created_at;not null;index:idx_share_comments_share_created,priority:2" json:"created_at"`
}

func (ShareComment) TableName() string {
	return "share_comments"
}

type AINewsComment struct {
	ID        string    `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	AINewsID  string    `gorm:"column:ai_news_id;type:varchar(36);not null;index:idx_ai_news_comments_news_created,priority:1" json:"ai_news_id"`
	UserID    string    `gorm:"column:user_id;type:varchar(36);not null;index:idx_ai_news_comments_user" json:"user_id"`
	Content   string    `gorm:"column:content;type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"column:created_at;not null;index:idx_ai_news_comments_news_created,priority:2" json:"created_at"`
}

func (AINewsComment) TableName() string {
	return "ai_news_comments"
}
