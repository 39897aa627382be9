package view

import (
	"time"

	"Forge/gateway"
	"Forge/pkg/response"
	"Forge/schema"
)

const (
	DefaultFeedLimit = 20
	MaxFeedLimit     = 50
)

// FeedItem 内容流中的一张卡片，四种内容共用
type FeedItem struct {
	ID        string            `json:"id"`
	Kind      schema.ParentKind `json:"kind"`
	OwnerID   string            `json:"owner_id"`
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	ImageURL  string            `json:"image_url,omitempty"`
	Category  string            `json:"category,omitempty"`
	Tags      []string          `json:"tags,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// SavedItem 收藏列表的一项，SavedAt 为收藏时间
type SavedItem struct {
	FeedItem
	SavedAt time.Time `json:"saved_at"`
}

func FeedDecoder(kind schema.ParentKind, route schema.ContentRoute) func(gateway.Row) FeedItem {
	return func(r gateway.Row) FeedItem {
		return FeedItem{
			ID:        r.String(schema.ColID),
			Kind:      kind,
			OwnerID:   r.String(route.OwnerCol),
			Title:     r.String(route.TitleCol),
			Body:      r.String(route.BodyCol),
			ImageURL:  r.String("image_url"),
			Category:  r.String("category"),
			Tags:      r.Strings("tags"),
			CreatedAt: r.Time(schema.ColCreatedAt),
		}
	}
}

// NewFeed 按时间倒序的内容流，ownerID 非空时只看该用户发布的内容
func NewFeed(gw gateway.Gateway, kind schema.ParentKind, ownerID string, limit int, opts ...Option) (*List[FeedItem], error) {
	route, err := schema.ContentRouteFor(kind)
	if err != nil {
		return nil, response.Validation(err.Error())
	}
	if limit <= 0 {
		limit = DefaultFeedLimit
	}
	if limit > MaxFeedLimit {
		limit = MaxFeedLimit
	}

	var scope []gateway.Filter
	if ownerID != "" {
		scope = append(scope, gateway.Eq(route.OwnerCol, ownerID))
	}
	return NewList(gw, ListSpec{
		Table: route.Table,
		Scope: scope,
		Order: gateway.Order{Column: schema.ColCreatedAt, Desc: true, Tiebreak: schema.ColID},
		Limit: limit,
	}, FeedDecoder(kind, route), opts...), nil
}
