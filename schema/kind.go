// Package schema 把业务上的内容类型与互动类型映射到后端表与列。
//
// 表名只在这里出现，其余包通过查表函数拿到路由，不自行拼接。
package schema

import (
	"fmt"
)

// ParentKind 可被评论、点赞、收藏的内容类型
type ParentKind uint8

const (
	KindPost ParentKind = iota
	KindBuild
	KindShare
	KindAINews

	parentKindCount
)

var parentKindNames = [parentKindCount]string{
	KindPost:   "post",
	KindBuild:  "build",
	KindShare:  "share",
	KindAINews: "ai_news",
}

func ParentKinds() []ParentKind {
	return []ParentKind{KindPost, KindBuild, KindShare, KindAINews}
}

func (k ParentKind) Valid() bool {
	return k < parentKindCount
}

func (k ParentKind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("ParentKind(%d)", uint8(k))
	}
	return parentKindNames[k]
}

func (k ParentKind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownParentKind, uint8(k))
	}
	return []byte(parentKindNames[k]), nil
}

func (k *ParentKind) UnmarshalText(b []byte) error {
	v, err := ParseParentKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// ParseParentKind 兼容路由里常见的复数写法 posts / builds / shares / news
func ParseParentKind(s string) (ParentKind, error) {
	switch s {
	case "post", "posts":
		return KindPost, nil
	case "build", "builds":
		return KindBuild, nil
	case "share", "shares":
		return KindShare, nil
	case "ai_news", "news", "ai-news":
		return KindAINews, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownParentKind, s)
}

// EdgeKind 用户对内容或用户发起的互动
type EdgeKind uint8

const (
	EdgeLike EdgeKind = iota
	EdgeSave
	EdgeFollow
	EdgeLearned
	EdgeInspired

	edgeKindCount
)

var edgeKindNames = [edgeKindCount]string{
	EdgeLike:     "like",
	EdgeSave:     "save",
	EdgeFollow:   "follow",
	EdgeLearned:  "learned",
	EdgeInspired: "inspired",
}

func EdgeKinds() []EdgeKind {
	return []EdgeKind{EdgeLike, EdgeSave, EdgeFollow, EdgeLearned, EdgeInspired}
}

func (e EdgeKind) Valid() bool {
	return e < edgeKindCount
}

func (e EdgeKind) String() string {
	if !e.Valid() {
		return fmt.Sprintf("EdgeKind(%d)", uint8(e))
	}
	return edgeKindNames[e]
}

func (e EdgeKind) MarshalText() ([]byte, error) {
	if !e.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownEdgeKind, uint8(e))
	}
	return []byte(edgeKindNames[e]), nil
}

func (e *EdgeKind) UnmarshalText(b []byte) error {
	v, err := ParseEdgeKind(string(b))
	if err != nil {
		return err
	}
	*e = v
	return nil
}

func ParseEdgeKind(s string) (EdgeKind, error) {
	for i, name := range edgeKindNames {
		if name == s {
			return EdgeKind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownEdgeKind, s)
}
