package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"Forge/config"
	"Forge/gateway"
	"Forge/pkg/log"
	"Forge/pkg/response"
	"Forge/schema"
	"Forge/types"
)

const (
	minSearchRunes = 2
	searchLimit    = 3
	snippetRunes   = 160
)

type SearchService struct {
	Gateway gateway.Gateway
	Conf    *config.Gateway
}

var _ ISearchService = (*SearchService)(nil)

type ISearchService interface {
	Search(ctx context.Context, req *types.SearchReq) (*types.SearchResp, error)
}

// Search 四类并发查询，每类最多 3 条；关键字不足两个字符时直接返回空结果
func (s *SearchService) Search(ctx context.Context, req *types.SearchReq) (*types.SearchResp, error) {
	resp := &types.SearchResp{
		Posts:    []types.SearchItem{},
		Builds:   []types.SearchItem{},
		Shares:   []types.SearchItem{},
		Profiles: []types.SearchProfileItem{},
	}
	q := strings.TrimSpace(req.Query)
	if utf8.RuneCountInString(q) < minSearchRunes {
		return resp, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.Conf.Timeout())
	defer cancel()

	p := pool.New().WithContext(ctx)
	p.Go(func(ctx context.Context) error {
		items, err := s.searchContent(ctx, schema.KindPost, q)
		resp.Posts = items
		return err
	})
	p.Go(func(ctx context.Context) error {
		items, err := s.searchContent(ctx, schema.KindBuild, q)
		resp.Builds = items
		return err
	})
	p.Go(func(ctx context.Context) error {
		items, err := s.searchContent(ctx, schema.KindShare, q)
		resp.Shares = items
		return err
	})
	p.Go(func(ctx context.Context) error {
		items, err := s.searchProfiles(ctx, q)
		resp.Profiles = items
		return err
	})
	if err := p.Wait(); err != nil {
		log.L.Warn("search failed", zap.String("q", q), zap.Error(err))
		return nil, response.OperationFailed("search failed", err)
	}
	return resp, nil
}

func (s *SearchService) searchContent(ctx context.Context, kind schema.ParentKind, q string) ([]types.SearchItem, error) {
	route, err := schema.ContentRouteFor(kind)
	if err != nil {
		return nil, err
	}
	rows, err := s.Gateway.Query(ctx, gateway.Query{
		Table: route.Table,
		Any:   anyLike(route.SearchCols, q),
		Order: &gateway.Order{Column: schema.ColCreatedAt, Desc: true},
		Limit: searchLimit,
	})
	if err != nil {
		return []types.SearchItem{}, err
	}

	items := make([]types.SearchItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, types.SearchItem{
			ID:      r.String(schema.ColID),
			Kind:    kind.String(),
			Title:   r.String(route.TitleCol),
			Snippet: snippet(r.String(route.BodyCol)),
		})
	}
	return items, nil
}

func (s *SearchService) searchProfiles(ctx context.Context, q string) ([]types.SearchProfileItem, error) {
	rows, err := s.Gateway.Query(ctx, gateway.Query{
		Table: schema.ProfilesTable,
		Any:   anyLike([]string{"username", "full_name"}, q),
		Order: &gateway.Order{Column: "username"},
		Limit: searchLimit,
	})
	if err != nil {
		return []types.SearchProfileItem{}, err
	}

	items := make([]types.SearchProfileItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, types.SearchProfileItem{
			ID:        r.String(schema.ColID),
			Username:  r.String("username"),
			FullName:  r.String("full_name"),
			AvatarURL: r.String("avatar_url"),
		})
	}
	return items, nil
}

func anyLike(cols []string, q string) []gateway.Filter {
	filters := make([]gateway.Filter, 0, len(cols))
	for _, c := range cols {
		filters = append(filters, gateway.ILike(c, q))
	}
	return filters
}

func snippet(body string) string {
	body = strings.TrimSpace(body)
	if utf8.RuneCountInString(body) <= snippetRunes {
		return body
	}
	return string([]rune(body)[:snippetRunes]) + "…"
}
