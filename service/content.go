package service

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"Forge/config"
	"Forge/gateway"
	"Forge/pkg/log"
	"Forge/pkg/response"
	"Forge/pkg/validate"
	"Forge/schema"
	"Forge/types"
	"Forge/view"
)

const (
	buildStatusInProgress = "In Progress"
	maxTags               = 5
)

type ContentService struct {
	Gateway gateway.Gateway
	Conf    *config.Gateway
}

var _ IContentService = (*ContentService)(nil)

type IContentService interface {
	// Create 发布内容，userID 为作者
	Create(ctx context.Context, userID string, kind schema.ParentKind, req *types.CreateContentReq) (*view.FeedItem, error)
	// Delete 只删除作者本人的内容，不匹配时删除 0 行
	Delete(ctx context.Context, userID string, kind schema.ParentKind, id string) (int64, error)
	Feed(ctx context.Context, kind schema.ParentKind, req *types.FeedReq) ([]view.FeedItem, error)
	Comments(ctx context.Context, kind schema.ParentKind, parentID string) ([]view.Comment, error)
}

func (s *ContentService) Create(ctx context.Context, userID string, kind schema.ParentKind, req *types.CreateContentReq) (*view.FeedItem, error) {
	if userID == "" {
		return nil, response.ErrAuthRequired
	}
	route, err := schema.ContentRouteFor(kind)
	if err != nil {
		return nil, response.Validation(err.Error())
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Tags = normalizeTags(req.Tags)
	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	record, err := contentRecord(kind, req)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(record.String(route.BodyCol)) == "" {
		return nil, response.Validation(route.BodyCol + " is required")
	}
	record[route.OwnerCol] = userID

	ctx, cancel := context.WithTimeout(ctx, s.Conf.Timeout())
	defer cancel()
	row, err := s.Gateway.Insert(ctx, route.Table, record)
	if err != nil {
		log.L.Warn("create content failed", zap.String("kind", kind.String()), zap.Error(err))
		return nil, response.OperationFailed("create "+kind.String()+" failed", err)
	}

	item := view.FeedDecoder(kind, route)(row)
	return &item, nil
}

func (s *ContentService) Delete(ctx context.Context, userID string, kind schema.ParentKind, id string) (int64, error) {
	if userID == "" {
		return 0, response.ErrAuthRequired
	}
	route, err := schema.ContentRouteFor(kind)
	if err != nil {
		return 0, response.Validation(err.Error())
	}
	if id == "" {
		return 0, response.Validation("id is required")
	}

	ctx, cancel := context.WithTimeout(ctx, s.Conf.Timeout())
	defer cancel()
	n, err := s.Gateway.Delete(ctx, route.Table, route.Owned(id, userID)...)
	if err != nil {
		return 0, response.OperationFailed("delete "+kind.String()+" failed", err)
	}
	return n, nil
}

// Feed 一次性读取，不挂载订阅；查询失败时返回空列表
func (s *ContentService) Feed(ctx context.Context, kind schema.ParentKind, req *types.FeedReq) ([]view.FeedItem, error) {
	feed, err := view.NewFeed(s.Gateway, kind, req.OwnerID, req.Limit, view.WithTimeout(s.Conf.Timeout()))
	if err != nil {
		return nil, err
	}
	defer feed.Unmount()
	return feed.Load(ctx), nil
}

func (s *ContentService) Comments(ctx context.Context, kind schema.ParentKind, parentID string) ([]view.Comment, error) {
	thread, err := view.NewThread(s.Gateway, kind, parentID, view.WithTimeout(s.Conf.Timeout()))
	if err != nil {
		return nil, err
	}
	defer thread.Unmount()
	return thread.Load(ctx), nil
}

// contentRecord 按内容类型挑选表单字段
func contentRecord(kind schema.ParentKind, req *types.CreateContentReq) (gateway.Row, error) {
	switch kind {
	case schema.KindPost:
		return gateway.Row{
			"title":     req.Title,
			"content":   req.Content,
			"category":  req.Category,
			"image_url": req.ImageURL,
		}, nil
	case schema.KindBuild:
		status := req.Status
		if status == "" {
			status = buildStatusInProgress
		}
		tags, err := encodeTags(req.Tags)
		if err != nil {
			return nil, err
		}
		return gateway.Row{
			"title":       req.Title,
			"description": req.Description,
			"category":    req.Category,
			"live_url":    req.LiveURL,
			"github_url":  req.GithubURL,
			"image_url":   req.ImageURL,
			"status":      status,
			"stars":       0,
			"tags":        tags,
		}, nil
	case schema.KindShare:
		tags, err := encodeTags(req.Tags)
		if err != nil {
			return nil, err
		}
		return gateway.Row{
			"title":   req.Title,
			"content": req.Content,
			"tags":    tags,
		}, nil
	case schema.KindAINews:
		return gateway.Row{
			"title":     req.Title,
			"content":   req.Content,
			"source":    req.Source,
			"category":  req.Category,
			"image_url": req.ImageURL,
		}, nil
	}
	return nil, response.Validation(schema.ErrUnknownParentKind.Error())
}

// normalizeTags 去空白、去空、去重，保持首次出现的顺序
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func encodeTags(tags []string) (string, error) {
	if len(tags) > maxTags {
		return "", response.Validation("at most 5 tags")
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", response.Validation("invalid tags")
	}
	return string(b), nil
}
