package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"Forge/config"
	"Forge/dao"
	"Forge/gateway"
	"Forge/pkg/log"
	"Forge/pkg/response"
	"Forge/pkg/validate"
	"Forge/schema"
	"Forge/types"
	"Forge/view"
)

// 每种内容最多取的收藏数
const maxSavedPerKind = 50

var errUsernameTaken = response.Validation("username taken")

type ProfileService struct {
	Gateway     gateway.Gateway
	ProfileRepo *dao.Profile
	Conf        *config.Gateway
}

var _ IProfileService = (*ProfileService)(nil)

type IProfileService interface {
	// Get 资料及统计，不存在返回 ErrNotFound
	Get(ctx context.Context, id string) (*types.ProfileResp, error)
	// Update 更新当前用户资料，资料不存在时创建
	Update(ctx context.Context, userID string, req *types.UpdateProfileReq) (*types.ProfileResp, error)
	// Saved 当前用户收藏的各类内容，按收藏时间倒序；内容已删除的收藏不返回
	Saved(ctx context.Context, userID string) ([]view.SavedItem, error)
}

func (s *ProfileService) Get(ctx context.Context, id string) (*types.ProfileResp, error) {
	if id == "" {
		return nil, response.Validation("id is required")
	}
	profile, err := s.ProfileRepo.FindByID(ctx, id)
	if err != nil {
		return nil, response.OperationFailed("load profile failed", err)
	}
	if profile == nil {
		return nil, response.NotFound("profile not found")
	}

	stats, err := s.stats(ctx, id)
	if err != nil {
		log.L.Warn("load profile stats failed", zap.String("profile", id), zap.Error(err))
		return nil, response.OperationFailed("load profile failed", err)
	}

	return &types.ProfileResp{
		ID:        profile.ID,
		Username:  profile.Username,
		FullName:  profile.FullName,
		Bio:       profile.Bio,
		AvatarURL: profile.AvatarURL,
		CreatedAt: profile.CreatedAt,
		Stats:     *stats,
	}, nil
}

// stats 七项计数并发读取，任何一项失败整体失败
func (s *ProfileService) stats(ctx context.Context, id string) (*types.ProfileStats, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Conf.Timeout())
	defer cancel()

	var stats types.ProfileStats
	g, ctx := errgroup.WithContext(ctx)
	count := func(dst *int64, table string, filters ...gateway.Filter) {
		g.Go(func() error {
			n, err := s.Gateway.Count(ctx, table, filters...)
			*dst = n
			return err
		})
	}

	for kind, dst := range map[schema.ParentKind]*int64{
		schema.KindPost:  &stats.Posts,
		schema.KindBuild: &stats.Builds,
		schema.KindShare: &stats.Shares,
	} {
		route, _ := schema.ContentRouteFor(kind)
		count(dst, route.Table, gateway.Eq(route.OwnerCol, id))
	}

	follow := schema.FollowRoute()
	count(&stats.Followers, follow.Table, follow.Scope(id)...)
	count(&stats.Following, follow.Table, follow.ByActor(id)...)

	for edge, dst := range map[schema.EdgeKind]*int64{
		schema.EdgeLearned:  &stats.Learned,
		schema.EdgeInspired: &stats.Inspired,
	} {
		route, _ := schema.EdgeRouteFor(edge, schema.KindPost)
		count(dst, route.Table, route.ByActor(id)...)
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *ProfileService) Update(ctx context.Context, userID string, req *types.UpdateProfileReq) (*types.ProfileResp, error) {
	if userID == "" {
		return nil, response.ErrAuthRequired
	}
	trim(req.Username)
	trim(req.FullName)
	trim(req.Bio)
	trim(req.AvatarURL)
	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	values := make(map[string]any)
	if req.Username != nil {
		taken, err := s.ProfileRepo.IsUsernameTaken(ctx, *req.Username, userID)
		if err != nil {
			return nil, response.OperationFailed("check username failed", err)
		}
		if taken {
			return nil, errUsernameTaken
		}
		values["username"] = *req.Username
	}
	if req.FullName != nil {
		values["full_name"] = *req.FullName
	}
	if req.Bio != nil {
		values["bio"] = *req.Bio
	}
	if req.AvatarURL != nil {
		values["avatar_url"] = *req.AvatarURL
	}

	if _, err := s.ProfileRepo.Upsert(ctx, userID, values); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errUsernameTaken
		}
		return nil, response.OperationFailed("update profile failed", err)
	}
	return s.Get(ctx, userID)
}

func (s *ProfileService) Saved(ctx context.Context, userID string) ([]view.SavedItem, error) {
	if userID == "" {
		return nil, response.ErrAuthRequired
	}
	ctx, cancel := context.WithTimeout(ctx, s.Conf.Timeout())
	defer cancel()

	kinds := schema.ParentKinds()
	perKind := make([][]view.SavedItem, len(kinds))
	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range kinds {
		g.Go(func() error {
			items, err := s.savedOf(gctx, kind, userID)
			perKind[i] = items
			return err
		})
	}
	if err := g.Wait(); err != nil {
		log.L.Warn("load saved items failed", zap.String("user", userID), zap.Error(err))
		return nil, response.OperationFailed("load saved items failed", err)
	}

	items := make([]view.SavedItem, 0)
	for _, part := range perKind {
		items = append(items, part...)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].SavedAt.After(items[j].SavedAt)
	})
	return items, nil
}

// savedOf 先按 post_type 取收藏记录，再去对应内容表批量取内容
func (s *ProfileService) savedOf(ctx context.Context, kind schema.ParentKind, userID string) ([]view.SavedItem, error) {
	save, err := schema.EdgeRouteFor(schema.EdgeSave, kind)
	if err != nil {
		return nil, err
	}
	content, err := schema.ContentRouteFor(kind)
	if err != nil {
		return nil, err
	}

	saves, err := s.Gateway.Query(ctx, gateway.Query{
		Table:   save.Table,
		Filters: save.ByActor(userID),
		Order:   &gateway.Order{Column: schema.ColCreatedAt, Desc: true, Tiebreak: schema.ColID},
		Limit:   maxSavedPerKind,
	})
	if err != nil || len(saves) == 0 {
		return nil, err
	}

	ids := make([]gateway.Filter, 0, len(saves))
	for _, r := range saves {
		ids = append(ids, gateway.Eq(schema.ColID, r.String(save.SubjectCol)))
	}
	rows, err := s.Gateway.Query(ctx, gateway.Query{Table: content.Table, Any: ids})
	if err != nil {
		return nil, err
	}
	byID := make(map[string]gateway.Row, len(rows))
	for _, r := range rows {
		byID[r.String(schema.ColID)] = r
	}

	decode := view.FeedDecoder(kind, content)
	items := make([]view.SavedItem, 0, len(saves))
	for _, r := range saves {
		row, ok := byID[r.String(save.SubjectCol)]
		if !ok {
			continue
		}
		// 同一内容只出现一次
		delete(byID, r.String(save.SubjectCol))
		items = append(items, view.SavedItem{FeedItem: decode(row), SavedAt: r.Time(schema.ColCreatedAt)})
	}
	return items, nil
}

func trim(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}
