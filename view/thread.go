package view

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"Forge/gateway"
	"Forge/pkg/response"
	"Forge/schema"
)

const MaxCommentRunes = 1000

type Comment struct {
	ID         string            `json:"id"`
	ParentKind schema.ParentKind `json:"parent_kind"`
	ParentID   string            `json:"parent_id"`
	AuthorID   string            `json:"author_id"`
	Body       string            `json:"body"`
	CreatedAt  time.Time         `json:"created_at"`
}

// CommentDecoder 按路由把评论表的一行转成 Comment
func CommentDecoder(kind schema.ParentKind, route schema.CommentRoute) func(gateway.Row) Comment {
	return func(r gateway.Row) Comment {
		return Comment{
			ID:         r.String(schema.ColID),
			ParentKind: kind,
			ParentID:   r.String(route.ParentCol),
			AuthorID:   r.String(schema.ColUserID),
			Body:       r.String(schema.ColContent),
			CreatedAt:  r.Time(schema.ColCreatedAt),
		}
	}
}

// Thread 某条内容下的评论串，按时间正序；持有未提交的草稿
type Thread struct {
	*List[Comment]

	gw       gateway.Gateway
	kind     schema.ParentKind
	parentID string
	route    schema.CommentRoute
	content  schema.ContentRoute

	draftMu sync.Mutex
	draft   string
}

func NewThread(gw gateway.Gateway, kind schema.ParentKind, parentID string, opts ...Option) (*Thread, error) {
	route, err := schema.CommentRouteFor(kind)
	if err != nil {
		return nil, response.Validation(err.Error())
	}
	content, err := schema.ContentRouteFor(kind)
	if err != nil {
		return nil, response.Validation(err.Error())
	}
	if parentID == "" {
		return nil, response.Validation("parent id is required")
	}

	list := NewList(gw, ListSpec{
		Table: route.Table,
		Scope: route.Scope(parentID),
		Order: gateway.Order{Column: schema.ColCreatedAt, Tiebreak: schema.ColID},
	}, CommentDecoder(kind, route), opts...)

	return &Thread{
		List:     list,
		gw:       gw,
		kind:     kind,
		parentID: parentID,
		route:    route,
		content:  content,
	}, nil
}

func (t *Thread) Kind() schema.ParentKind {
	return t.kind
}

func (t *Thread) ParentID() string {
	return t.parentID
}

func (t *Thread) SetDraft(body string) {
	t.draftMu.Lock()
	defer t.draftMu.Unlock()
	t.draft = body
}

func (t *Thread) Draft() string {
	t.draftMu.Lock()
	defer t.draftMu.Unlock()
	return t.draft
}

// Submit 提交当前草稿。
//
// 作者为空返回 ErrAuthRequired，正文为空或过长返回 ErrValidation，父内容不存在返回 ErrNotFound；
// 成功后清空草稿（提交期间草稿被改动则保留）并重新加载，失败时草稿保留。
func (t *Thread) Submit(ctx context.Context, authorID string) (Comment, error) {
	submitted := t.Draft()
	c, err := t.SubmitBody(ctx, authorID, submitted)
	if err != nil {
		return c, err
	}
	t.draftMu.Lock()
	if t.draft == submitted {
		t.draft = ""
	}
	t.draftMu.Unlock()
	return c, nil
}

// SubmitBody 直接提交 body，不读写草稿；同一线程上的并发提交互不影响
func (t *Thread) SubmitBody(ctx context.Context, authorID, body string) (Comment, error) {
	if authorID == "" {
		return Comment{}, response.ErrAuthRequired
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return Comment{}, response.Validation("comment cannot be empty")
	}
	if utf8.RuneCountInString(body) > MaxCommentRunes {
		return Comment{}, response.Validation("comment is too long")
	}

	exists, err := t.call(ctx, func(ctx context.Context) (int64, error) {
		return t.gw.Count(ctx, t.content.Table, t.content.ByID(t.parentID)...)
	})
	if err != nil {
		return Comment{}, response.OperationFailed("post comment failed", err)
	}
	if exists == 0 {
		return Comment{}, response.NotFound(t.kind.String() + " no longer exists")
	}

	var row gateway.Row
	_, err = t.call(ctx, func(ctx context.Context) (int64, error) {
		var err error
		row, err = t.gw.Insert(ctx, t.route.Table, t.route.Record(t.parentID, authorID, body))
		return 1, err
	})
	if err != nil {
		t.log.Warn("insert comment failed", zap.String("author", authorID), zap.Error(err))
		return Comment{}, response.OperationFailed("post comment failed", err)
	}

	t.Load(ctx)
	return CommentDecoder(t.kind, t.route)(row), nil
}

// Remove 只删除 authorID 自己的评论；不匹配时静默删除 0 行，之后总会重新加载
func (t *Thread) Remove(ctx context.Context, commentID, authorID string) (int64, error) {
	if authorID == "" {
		return 0, response.ErrAuthRequired
	}
	if commentID == "" {
		return 0, response.Validation("comment id is required")
	}

	n, err := t.call(ctx, func(ctx context.Context) (int64, error) {
		return t.gw.Delete(ctx, t.route.Table, t.route.Owned(commentID, authorID)...)
	})
	t.Load(ctx)
	if err != nil {
		t.log.Warn("delete comment failed", zap.String("comment", commentID), zap.Error(err))
		return 0, response.OperationFailed("delete comment failed", err)
	}
	return n, nil
}

func (t *Thread) call(ctx context.Context, fn func(context.Context) (int64, error)) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, t.opts.timeout)
	defer cancel()
	return fn(ctx)
}
