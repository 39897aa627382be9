package models

import "time"

type Profile struct {
	ID        string    `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	Username  string    `gorm:"column:username;type:varchar(30);uniqueIndex:uk_profiles_username" json:"username"`
	FullName  string    `gorm:"column:full_name;type:varchar(100);not null;default:''" json:"full_name"`
	Bio       string    `gorm:"column:bio;type:varchar(500);not null;default:''" json:"bio"`
	AvatarURL string    `gorm:"column:avatar_url;type:varchar(512);not null;default:''" json:"avatar_url"`
	CreatedAt time.Time `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null" json:"updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}
