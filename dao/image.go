package dao

import (
	"Forge/models"
	"context"

	"gorm.io/gorm"
)

type Image struct {
	Repo[models.Image]
}

func NewImage(db *gorm.DB) *Image {
	return &Image{
		Repo: NewRepo[models.Image](db),
	}
}

func (u *Image) CreateImage(ctx context.Context, image *models.Image) error {
	return u.Repo.Create(ctx, image)
}

// ListByUser 最近上传的图片，新的在前
func (u *Image) ListByUser(ctx context.Context, userID string, limit int) ([]*models.Image, error) {
	items := make([]*models.Image, 0)
	err := u.Repo.Model(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&items).Error
	return items, err
}
