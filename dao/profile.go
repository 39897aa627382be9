package dao

import (
	"Forge/models"
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

type Profile struct {
	Repo[models.Profile]
}

func NewProfile(db *gorm.DB) *Profile {
	return &Profile{
		Repo: NewRepo[models.Profile](db),
	}
}

// FindByID 不存在时返回 nil, nil
func (p *Profile) FindByID(ctx context.Context, id string) (*models.Profile, error) {
	profile, err := p.Repo.FindByWhere(ctx, "id = ?", id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return profile, err
}

// IsUsernameTaken 排除自己后用户名是否已被占用
func (p *Profile) IsUsernameTaken(ctx context.Context, username, exceptID string) (bool, error) {
	return p.Repo.IsExist(ctx, "LOWER(username) = LOWER(?) AND id <> ?", username, exceptID)
}

// Upsert 资料不存在时创建
func (p *Profile) Upsert(ctx context.Context, id string, values map[string]any) (*models.Profile, error) {
	now := time.Now().UTC()
	values["updated_at"] = now

	err := p.Repo.Db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Profile{}).Where("id = ?", id).Updates(values)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}
		profile := models.Profile{ID: id, Username: defaultUsername(id), CreatedAt: now, UpdatedAt: now}
		if v, ok := values["username"].(string); ok {
			profile.Username = v
		}
		if v, ok := values["full_name"].(string); ok {
			profile.FullName = v
		}
		if v, ok := values["bio"].(string); ok {
			profile.Bio = v
		}
		if v, ok := values["avatar_url"].(string); ok {
			profile.AvatarURL = v
		}
		return tx.Create(&profile).Error
	})
	if err != nil {
		return nil, err
	}
	return p.FindByID(ctx, id)
}

// defaultUsername 新建资料未指定用户名时按 id 生成，避免唯一索引上出现多个空值
func defaultUsername(id string) string {
	compact := strings.ReplaceAll(id, "-", "")
	if len(compact) > 12 {
		compact = compact[:12]
	}
	return "user_" + compact
}
