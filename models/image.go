package models

import "time"

type Image struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement:false" json:"id"`
	UserID      string    `gorm:"column:user_id;type:varchar(36);not null;index:idx_images_user" json:"user_id"`
	Bucket      string    `gorm:"column:bucket;type:varchar(64);not null" json:"bucket"`
	ObjectKey   string    `gorm:"column:object_key;type:varchar(255);not null;uniqueIndex:uk_images_key" json:"object_key"`
	ContentType string    `gorm:"column:content_type;type:varchar(64);not null" json:"content_type"`
	Size        int64     `gorm:"column:size;not null" json:"size"`
	URL         string    `gorm:"column:url;type:varchar(512);not null" json:"url"`
	CreatedAt   time.Time `gorm:"column:created_at;not null;index:idx_images_created_at" json:"created_at"`
}

// TableName 显式指定表名
func (Image) TableName() string {
	return "images"
}
