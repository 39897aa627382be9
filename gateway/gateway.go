// Package gateway 定义远端数据网关的调用形态：查询、计数、写入、更新、删除与变更订阅。
//
// 网关本身视为黑盒，只承诺单连接上的读写一致；任何读取结果在返回时都可能已经过期。
package gateway

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrUnfiltered 拒绝不带条件的 Update / Delete
	ErrUnfiltered = errors.New("gateway: update or delete without filters")
	// ErrBadIdentifier 表名或列名不合法
	ErrBadIdentifier = errors.New("gateway: bad identifier")
	// ErrConflict 违反唯一约束
	ErrConflict = errors.New("gateway: duplicate row")
)

type Op string

const (
	OpEq    Op = "eq"
	OpNeq   Op = "neq"
	OpILike Op = "ilike"
	OpLt    Op = "lt"
	OpGt    Op = "gt"
)

type Filter struct {
	Column string `json:"column"`
	Op     Op     `json:"op"`
	Value  any    `json:"value"`
}

func Eq(column string, value any) Filter {
	return Filter{Column: column, Op: OpEq, Value: value}
}

func Neq(column string, value any) Filter {
	return Filter{Column: column, Op: OpNeq, Value: value}
}

// ILike 大小写不敏感的包含匹配，pattern 不需要自带 %
func ILike(column string, pattern string) Filter {
	return Filter{Column: column, Op: OpILike, Value: pattern}
}

// Order 排序列；Tiebreak 非空时作为同方向的第二排序列，保证同一时刻写入的行顺序稳定
type Order struct {
	Column   string
	Desc     bool
	Tiebreak string
}

// Query 行查询。Filters 之间为 AND，Any 内部为 OR，两组再 AND。
type Query struct {
	Table   string
	Filters []Filter
	Any     []Filter
	Order   *Order
	Limit   int
}

type ChangeOp string

const (
	ChangeInsert ChangeOp = "insert"
	ChangeUpdate ChangeOp = "update"
	ChangeDelete ChangeOp = "delete"
)

// ChangeEvent 变更通知。delete 事件的 Row 为删除前的行。
type ChangeEvent struct {
	Table string    `json:"table"`
	Op    ChangeOp  `json:"op"`
	Row   Row       `json:"row"`
	At    time.Time `json:"at"`
}

// Subscription 订阅必须由订阅方显式关闭
type Subscription interface {
	Events() <-chan ChangeEvent
	Close() error
}

type Gateway interface {
	Query(ctx context.Context, q Query) ([]Row, error)
	Count(ctx context.Context, table string, filters ...Filter) (int64, error)
	// Insert 写入一行，id 与 created_at 由网关生成，返回写入后的完整行
	Insert(ctx context.Context, table string, record Row) (Row, error)
	Update(ctx context.Context, table string, values Row, filters ...Filter) (int64, error)
	// Delete 返回受影响行数，条件不匹配时为 0 而不是错误
	Delete(ctx context.Context, table string, filters ...Filter) (int64, error)
	Subscribe(ctx context.Context, table string, filters ...Filter) (Subscription, error)
}
