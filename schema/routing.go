package schema

import (
	"errors"
	"fmt"

	"Forge/gateway"
)

var (
	ErrUnknownParentKind = errors.New("schema: unknown parent kind")
	ErrUnknownEdgeKind   = errors.New("schema: unknown edge kind")
)

const (
	ProfilesTable = "profiles"
	ImagesTable   = "images"

	ColID        = "id"
	ColUserID    = "user_id"
	ColContent   = "content"
	ColCreatedAt = "created_at"
)

// CommentRoute 评论按父内容类型分表存放
type CommentRoute struct {
	Table     string
	ParentCol string
}

// Scope 某条父内容下的全部评论
func (r CommentRoute) Scope(parentID string) []gateway.Filter {
	return []gateway.Filter{gateway.Eq(r.ParentCol, parentID)}
}

func (r CommentRoute) Record(parentID, authorID, body string) gateway.Row {
	return gateway.Row{
		r.ParentCol: parentID,
		ColUserID:   authorID,
		ColContent:  body,
	}
}

// Owned 删除评论时 id 与作者同时匹配，不匹配即删除 0 行
func (r CommentRoute) Owned(commentID, authorID string) []gateway.Filter {
	return []gateway.Filter{gateway.Eq(ColID, commentID), gateway.Eq(ColUserID, authorID)}
}

var commentRoutes = [parentKindCount]CommentRoute{
	KindPost:   {Table: "comments", ParentCol: "post_id"},
	KindBuild:  {Table: "build_comments", ParentCol: "build_id"},
	KindShare:  {Table: "share_comments", ParentCol: "share_id"},
	KindAINews: {Table: "ai_news_comments", ParentCol: "ai_news_id"},
}

func CommentRouteFor(kind ParentKind) (CommentRoute, error) {
	if !kind.Valid() {
		return CommentRoute{}, fmt.Errorf("%w: %d", ErrUnknownParentKind, uint8(kind))
	}
	return commentRoutes[kind], nil
}

// ContentRoute 内容主表；SearchCols 为全文检索时参与匹配的列
type ContentRoute struct {
	Table      string
	OwnerCol   string
	TitleCol   string
	BodyCol    string
	SearchCols []string
}

// Owned 作者删除自己的内容
func (r ContentRoute) Owned(id, ownerID string) []gateway.Filter {
	return []gateway.Filter{gateway.Eq(ColID, id), gateway.Eq(r.OwnerCol, ownerID)}
}

func (r ContentRoute) ByID(id string) []gateway.Filter {
	return []gateway.Filter{gateway.Eq(ColID, id)}
}

var contentRoutes = [parentKindCount]ContentRoute{
	KindPost:   {Table: "posts", OwnerCol: ColUserID, TitleCol: "title", BodyCol: "content", SearchCols: []string{"title", "content"}},
	KindBuild:  {Table: "builds", OwnerCol: ColUserID, TitleCol: "title", BodyCol: "description", SearchCols: []string{"title", "description"}},
	KindShare:  {Table: "shares", OwnerCol: ColUserID, TitleCol: "title", BodyCol: "content", SearchCols: []string{"title", "content"}},
	KindAINews: {Table: "ai_news", OwnerCol: ColUserID, TitleCol: "title", BodyCol: "content", SearchCols: []string{"title", "content"}},
}

func ContentRouteFor(kind ParentKind) (ContentRoute, error) {
	if !kind.Valid() {
		return ContentRoute{}, fmt.Errorf("%w: %d", ErrUnknownParentKind, uint8(kind))
	}
	return contentRoutes[kind], nil
}

// EdgeRoute 互动边所在的表及列。
//
// TagCol 非空时表内混存多种边，TagValue 用于区分；ForbidSelf 表示主体与发起人不能相同；
// Outgoing 表示主体本身也会作为发起人出现（关注），视图需要同时跟踪主体发出的边。
type EdgeRoute struct {
	Table      string
	SubjectCol string
	ActorCol   string
	TagCol     string
	TagValue   string
	ForbidSelf bool
	Outgoing   bool
}

// Watch 订阅条件。Outgoing 的边需要同时监听两列，订阅只能按 AND 过滤，所以退化为整表订阅，
// 再由 Touches 在本地筛掉无关事件
func (r EdgeRoute) Watch(subjectID string) []gateway.Filter {
	if r.Outgoing {
		return nil
	}
	return r.Scope(subjectID)
}

// Touches 变更行是否影响该主体的计数
func (r EdgeRoute) Touches(row gateway.Row, subjectID string) bool {
	if row.String(r.SubjectCol) == subjectID {
		return true
	}
	return r.Outgoing && row.String(r.ActorCol) == subjectID
}

// Scope 订阅范围，只按主体过滤，与计数条件无关的事件同样触发刷新
func (r EdgeRoute) Scope(subjectID string) []gateway.Filter {
	return []gateway.Filter{gateway.Eq(r.SubjectCol, subjectID)}
}

func (r EdgeRoute) Count(subjectID string) []gateway.Filter {
	fs := r.Scope(subjectID)
	if r.TagCol != "" {
		fs = append(fs, gateway.Eq(r.TagCol, r.TagValue))
	}
	return fs
}

// Exact 某个发起人对某个主体的那一条边
func (r EdgeRoute) Exact(subjectID, actorID string) []gateway.Filter {
	fs := []gateway.Filter{gateway.Eq(r.SubjectCol, subjectID), gateway.Eq(r.ActorCol, actorID)}
	if r.TagCol != "" {
		fs = append(fs, gateway.Eq(r.TagCol, r.TagValue))
	}
	return fs
}

// ByActor 发起人发出的全部该类边，用于统计关注数等
func (r EdgeRoute) ByActor(actorID string) []gateway.Filter {
	fs := []gateway.Filter{gateway.Eq(r.ActorCol, actorID)}
	if r.TagCol != "" {
		fs = append(fs, gateway.Eq(r.TagCol, r.TagValue))
	}
	return fs
}

func (r EdgeRoute) Record(subjectID, actorID string) gateway.Row {
	row := gateway.Row{r.SubjectCol: subjectID, r.ActorCol: actorID}
	if r.TagCol != "" {
		row[r.TagCol] = r.TagValue
	}
	return row
}

var followRoute = EdgeRoute{
	Table:      "followers",
	SubjectCol: "following_id",
	ActorCol:   "follower_id",
	ForbidSelf: true,
	Outgoing:   true,
}

// edgeTables 点赞、收藏以内容类型区分，learned / inspired 以互动类型区分
var edgeTables = [edgeKindCount]struct {
	table  string
	tagCol string
	byKind bool
}{
	EdgeLike:     {table: "likes", tagCol: "post_type", byKind: true},
	EdgeSave:     {table: "saved_items", tagCol: "post_type", byKind: true},
	EdgeFollow:   {table: "followers"},
	EdgeLearned:  {table: "engagement", tagCol: "engagement_type"},
	EdgeInspired: {table: "engagement", tagCol: "engagement_type"},
}

// FollowRoute 关注的主体是用户，与内容类型无关
func FollowRoute() EdgeRoute {
	return followRoute
}

// EdgeRouteFor kind 对 follow 无意义，仍须合法
func EdgeRouteFor(edge EdgeKind, kind ParentKind) (EdgeRoute, error) {
	if !edge.Valid() {
		return EdgeRoute{}, fmt.Errorf("%w: %d", ErrUnknownEdgeKind, uint8(edge))
	}
	if !kind.Valid() {
		return EdgeRoute{}, fmt.Errorf("%w: %d", ErrUnknownParentKind, uint8(kind))
	}
	if edge == EdgeFollow {
		return followRoute, nil
	}
	spec := edgeTables[edge]
	r := EdgeRoute{
		Table:      spec.table,
		SubjectCol: "post_id",
		ActorCol:   ColUserID,
		TagCol:     spec.tagCol,
		TagValue:   edge.String(),
	}
	if spec.byKind {
		r.TagValue = kind.String()
	}
	return r, nil
}

// Tables 全部受路由管理的表，供迁移与订阅校验使用
func Tables() []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(t string) {
		if _, ok := seen[t]; !ok {
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	for _, k := range ParentKinds() {
		add(contentRoutes[k].Table)
		add(commentRoutes[k].Table)
	}
	for _, e := range edgeTables {
		add(e.table)
	}
	add(ProfilesTable)
	add(ImagesTable)
	return out
}
