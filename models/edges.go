package models

import (
	"time"
)

// Like 点赞，post_type 区分内容类型
type Like struct {
	ID        string    `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	PostID    string    `gorm:"column:post_id;type:varchar(36);not null;uniqueIndex:uk_likes,priority:1" json:"post_id"`
	UserID    string    `gorm:"column:user_id;type:varchar(36);not null;uniqueIndex:uk_likes,priority:2" json:"user_id"`
	PostType  string    `gorm:"column:post_type;type:varchar(16);not null;uniqueIndex:uk_likes,priority:3" json:"post_type"`
	CreatedAt time.Time `gorm:"column:created_at;not null" json:"created_at"`
}

func (Like) TableName() string {
	return "likes"
}

// SavedItem 收藏
type SavedItem struct {
	ID        string    `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	PostID    string    `gorm:"column:post_id;type:varchar(36);not null;uniqueIndex:uk_saved_items,priority:1" json:"post_id"`
	UserID    string    `gorm:"column:user_id;type:varchar(36);not null;uniqueIndex:uk_saved_items,priority:2" json:"user_id"`
	PostType  string    `gorm:"column:post_type;type:varchar(16);not null;uniqueIndex:uk_saved_items,priority:3" json:"post_type"`
	CreatedAt time.Time `gorm:"column:created_at;not null" json:"created_at"`
}

func (SavedItem) TableName() string {
	return "saved_items"
}

// Engagement learned / inspired
type Engagement struct {
	ID             string    `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	PostID         string    `gorm:"column:post_id;type:varchar(36);not null;uniqueIndex:uk_engagement,priority:1" json:"post_id"`
	UserID         string    `gorm:"column:user_id;type:varchar(36);not null;uniqueIndex:uk_engagement,priority:2" json:"user_id"`
	EngagementType string    `gorm:"column:engagement_type;type:varchar(16);not null;uniqueIndex:uk_engagement,priority:3" json:"engagement_type"`
	CreatedAt      time.Time `gorm:"column:created_at;not null" json:"created_at"`
}

func (Engagement) TableName() string {
	return "engagement"
}

type Follower struct {
	ID          string    `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	FollowerID  string    `gorm:"column:follower_id;type:varchar(36);not null;uniqueIndex:uk_followers,priority:1" json:"follower_id"` // 关注人
	FollowingID string    `gorm:"column:following_id;type:varchar(36);not null;uniqueIndex:uk_followers,priority:2;index:idx_followers_following" json:"following_id"` // 被关注人
	CreatedAt   time.Time `gorm:"column:created_at;not null" json:"created_at"`
}

func (Follower) TableName() string {
	return "followers"
}
