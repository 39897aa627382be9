package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"Forge/config"
	"Forge/dao"
	"Forge/gateway"
	"Forge/gateway/gatewaytest"
	"Forge/models"
	"Forge/pkg/response"
	"Forge/schema"
	"Forge/types"
)

func newProfileService(t *testing.T) (*ProfileService, *gatewaytest.Fake) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.All()...))

	f := gatewaytest.New()
	return &ProfileService{Gateway: f, ProfileRepo: dao.NewProfile(db), Conf: &config.Gateway{}}, f
}

func ptr(s string) *string { return &s }

func TestProfileGetWithStats(t *testing.T) {
	s, f := newProfileService(t)
	ctx := context.Background()

	_, err := s.ProfileRepo.Upsert(ctx, "ada", map[string]any{"username": "ada", "full_name": "Ada L"})
	require.NoError(t, err)

	f.Seed("posts", gateway.Row{"user_id": "ada"}, gateway.Row{"user_id": "ada"}, gateway.Row{"user_id": "bob"})
	f.Seed("builds", gateway.Row{"user_id": "ada"})
	f.Seed("followers",
		gateway.Row{"follower_id": "bob", "following_id": "ada"},
		gateway.Row{"follower_id": "cy", "following_id": "ada"},
		gateway.Row{"follower_id": "ada", "following_id": "bob"},
	)
	f.Seed("engagement",
		gateway.Row{"post_id": "p9", "user_id": "ada", "engagement_type": "learned"},
		gateway.Row{"post_id": "p8", "user_id": "ada", "engagement_type": "inspired"},
		gateway.Row{"post_id": "p7", "user_id": "ada", "engagement_type": "inspired"},
	)

	resp, err := s.Get(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, "Ada L", resp.FullName)
	assert.Equal(t, types.ProfileStats{
		Posts:     2,
		Builds:    1,
		Followers: 2,
		Following: 1,
		Learned:   1,
		Inspired:  2,
	}, resp.Stats)
}

func TestProfileGetMissing(t *testing.T) {
	s, f := newProfileService(t)

	_, err := s.Get(context.Background(), "ghost")
	assert.ErrorIs(t, err, response.ErrNotFound)
	assert.Equal(t, 0, f.CallCount())
}

func TestProfileGetStatsFailure(t *testing.T) {
	s, f := newProfileService(t)
	ctx := context.Background()
	_, err := s.ProfileRepo.Upsert(ctx, "ada", map[string]any{})
	require.NoError(t, err)

	f.FailNext(gatewaytest.OpCount, assert.AnError)
	_, err = s.Get(ctx, "ada")
	assert.ErrorIs(t, err, response.ErrOperationFailed)
}

func TestProfileUpdate(t *testing.T) {
	s, _ := newProfileService(t)
	ctx := context.Background()

	resp, err := s.Update(ctx, "ada", &types.UpdateProfileReq{Username: ptr(" ada_l "), Bio: ptr("builds agents")})
	require.NoError(t, err)
	assert.Equal(t, "ada_l", resp.Username)
	assert.Equal(t, "builds agents", resp.Bio)

	_, err = s.Update(ctx, "bob", &types.UpdateProfileReq{Username: ptr("ADA_L")})
	assert.ErrorIs(t, err, response.ErrValidation)
	assert.EqualError(t, err, "username taken")

	resp, err = s.Update(ctx, "ada", &types.UpdateProfileReq{Username: ptr("ada_l"), FullName: ptr("Ada")})
	require.NoError(t, err)
	assert.Equal(t, "Ada", resp.FullName)
}

func TestProfileUpdateValidation(t *testing.T) {
	s, _ := newProfileService(t)
	ctx := context.Background()

	for _, name := range []string{"ab", "has space", "way_too_long_for_a_username_here"} {
		_, err := s.Update(ctx, "ada", &types.UpdateProfileReq{Username: ptr(name)})
		assert.ErrorIs(t, err, response.ErrValidation, name)
	}

	_, err := s.Update(ctx, "ada", &types.UpdateProfileReq{AvatarURL: ptr("not a url")})
	assert.ErrorIs(t, err, response.ErrValidation)

	_, err = s.Update(ctx, "", &types.UpdateProfileReq{})
	assert.ErrorIs(t, err, response.ErrAuthRequired)
}

func TestProfileSavedAcrossKinds(t *testing.T) {
	s, f := newProfileService(t)
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// 帖子和作品共用 id "x1"，只能靠 post_type 区分
	f.Seed("posts", gateway.Row{"id": "x1", "user_id": "bob", "title": "a post", "content": "c"})
	f.Seed("builds", gateway.Row{"id": "x1", "user_id": "cy", "title": "a build", "description": "d"})
	f.Seed("shares", gateway.Row{"id": "s1", "user_id": "bob", "title": "a share", "content": "c"})
	f.Seed("ai_news", gateway.Row{"id": "n1", "user_id": "bob", "title": "news", "content": "c"})
	f.Seed("saved_items",
		gateway.Row{"post_id": "x1", "user_id": "ada", "post_type": "post", "created_at": at.Add(1 * time.Minute)},
		gateway.Row{"post_id": "s1", "user_id": "ada", "post_type": "share", "created_at": at.Add(3 * time.Minute)},
		gateway.Row{"post_id": "x1", "user_id": "ada", "post_type": "build", "created_at": at.Add(2 * time.Minute)},
		// 内容已删除
		gateway.Row{"post_id": "gone", "user_id": "ada", "post_type": "post", "created_at": at.Add(4 * time.Minute)},
		// 别人的收藏
		gateway.Row{"post_id": "n1", "user_id": "bob", "post_type": "ai_news", "created_at": at.Add(5 * time.Minute)},
		// 类型写错的收藏不会串到别的表
		gateway.Row{"post_id": "s1", "user_id": "ada", "post_type": "build", "created_at": at.Add(6 * time.Minute)},
	)

	items, err := s.Saved(ctx, "ada")
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, "s1", items[0].ID)
	assert.Equal(t, schema.KindShare, items[0].Kind)
	assert.Equal(t, at.Add(3*time.Minute), items[0].SavedAt)

	assert.Equal(t, "x1", items[1].ID)
	assert.Equal(t, schema.KindBuild, items[1].Kind)
	assert.Equal(t, "a build", items[1].Title)
	assert.Equal(t, "d", items[1].Body)

	assert.Equal(t, "x1", items[2].ID)
	assert.Equal(t, schema.KindPost, items[2].Kind)
	assert.Equal(t, "a post", items[2].Title)

	items, err = s.Saved(ctx, "cy")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestProfileSavedErrors(t *testing.T) {
	s, f := newProfileService(t)

	_, err := s.Saved(context.Background(), "")
	assert.ErrorIs(t, err, response.ErrAuthRequired)
	assert.Equal(t, 0, f.CallCount())

	f.FailNext(gatewaytest.OpQuery, assert.AnError)
	_, err = s.Saved(context.Background(), "ada")
	assert.ErrorIs(t, err, response.ErrOperationFailed)
}
