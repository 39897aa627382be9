package dao

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"Forge/gateway"
	"Forge/pkg/log"
)

// Gateway 基于 gorm 的远端数据网关，写操作提交后经 ChangeFeed 广播变更
type Gateway struct {
	db   *gorm.DB
	feed *ChangeFeed
}

var _ gateway.Gateway = (*Gateway)(nil)

func NewGateway(db *gorm.DB, feed *ChangeFeed) *Gateway {
	return &Gateway{db: db, feed: feed}
}

func (g *Gateway) Query(ctx context.Context, q gateway.Query) ([]gateway.Row, error) {
	if err := checkTable(q.Table); err != nil {
		return nil, err
	}
	where, args, err := buildWhere(q.Filters, q.Any)
	if err != nil {
		return nil, err
	}

	tx := g.db.WithContext(ctx).Table(q.Table)
	if where != "" {
		tx = tx.Where(where, args...)
	}
	if q.Order != nil {
		if !gateway.ValidIdent(q.Order.Column) {
			return nil, fmt.Errorf("%w: %q", gateway.ErrBadIdentifier, q.Order.Column)
		}
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: q.Order.Column}, Desc: q.Order.Desc})
		if tb := q.Order.Tiebreak; tb != "" {
			if !gateway.ValidIdent(tb) {
				return nil, fmt.Errorf("%w: %q", gateway.ErrBadIdentifier, tb)
			}
			tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: tb}, Desc: q.Order.Desc})
		}
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	var items []map[string]any
	if err := tx.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("query %s: %w", q.Table, err)
	}
	rows := make([]gateway.Row, 0, len(items))
	for _, item := range items {
		rows = append(rows, gateway.Row(item))
	}
	return rows, nil
}

func (g *Gateway) Count(ctx context.Context, table string, filters ...gateway.Filter) (int64, error) {
	if err := checkTable(table); err != nil {
		return 0, err
	}
	where, args, err := buildWhere(filters, nil)
	if err != nil {
		return 0, err
	}

	tx := g.db.WithContext(ctx).Table(table)
	if where != "" {
		tx = tx.Where(where, args...)
	}
	var n int64
	if err := tx.Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

func (g *Gateway) Insert(ctx context.Context, table string, record gateway.Row) (gateway.Row, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	row := record.Clone()
	for col := range row {
		if !gateway.ValidIdent(col) {
			return nil, fmt.Errorf("%w: %q", gateway.ErrBadIdentifier, col)
		}
	}
	if row.String("id") == "" {
		row["id"] = uuid.NewString()
	}
	row["created_at"] = time.Now().UTC()

	if err := g.db.WithContext(ctx).Table(table).Create(map[string]any(row)).Error; err != nil {
		if isDuplicate(err) {
			return nil, fmt.Errorf("insert %s: %w", table, gateway.ErrConflict)
		}
		return nil, fmt.Errorf("insert %s: %w", table, err)
	}

	g.publish(ctx, table, gateway.ChangeInsert, row)
	return row.Clone(), nil
}

func (g *Gateway) Update(ctx context.Context, table string, values gateway.Row, filters ...gateway.Filter) (int64, error) {
	if err := checkTable(table); err != nil {
		return 0, err
	}
	if len(filters) == 0 {
		return 0, gateway.ErrUnfiltered
	}
	for col := range values {
		if !gateway.ValidIdent(col) || col == "id" {
			return 0, fmt.Errorf("%w: %q", gateway.ErrBadIdentifier, col)
		}
	}
	where, args, err := buildWhere(filters, nil)
	if err != nil {
		return 0, err
	}

	var (
		affected int64
		changed  []map[string]any
	)
	err = g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []string
		if err := tx.Table(table).Where(where, args...).Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		res := tx.Table(table).Where("id IN ?", ids).Updates(map[string]any(values))
		if res.Error != nil {
			return res.Error
		}
		affected = res.RowsAffected
		return tx.Table(table).Where("id IN ?", ids).Find(&changed).Error
	})
	if err != nil {
		return 0, fmt.Errorf("update %s: %w", table, err)
	}

	for _, r := range changed {
		g.publish(ctx, table, gateway.ChangeUpdate, r)
	}
	return affected, nil
}

// Delete 先读出待删行再删除，提交后为每行发送 delete 事件
func (g *Gateway) Delete(ctx context.Context, table string, filters ...gateway.Filter) (int64, error) {
	if err := checkTable(table); err != nil {
		return 0, err
	}
	if len(filters) == 0 {
		return 0, gateway.ErrUnfiltered
	}
	where, args, err := buildWhere(filters, nil)
	if err != nil {
		return 0, err
	}

	var (
		affected int64
		removed  []map[string]any
	)
	err = g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Table(table).Where(where, args...).Find(&removed).Error; err != nil {
			return err
		}
		if len(removed) == 0 {
			return nil
		}
		res := tx.Exec("DELETE FROM "+table+" WHERE "+where, args...)
		if res.Error != nil {
			return res.Error
		}
		affected = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", table, err)
	}

	for _, r := range removed {
		g.publish(ctx, table, gateway.ChangeDelete, r)
	}
	return affected, nil
}

func (g *Gateway) Subscribe(ctx context.Context, table string, filters ...gateway.Filter) (gateway.Subscription, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	if err := gateway.CheckFilters(filters); err != nil {
		return nil, err
	}
	return g.feed.Subscribe(ctx, table, filters...)
}

func (g *Gateway) publish(ctx context.Context, table string, op gateway.ChangeOp, row gateway.Row) {
	if g.feed == nil {
		return
	}
	ev := gateway.ChangeEvent{Table: table, Op: op, Row: row, At: time.Now().UTC()}
	if err := g.feed.Publish(context.WithoutCancel(ctx), ev); err != nil {
		log.L.Warn("publish change event failed", zap.String("table", table), zap.String("op", string(op)), zap.Error(err))
	}
}

func checkTable(table string) error {
	if !gateway.ValidIdent(table) {
		return fmt.Errorf("%w: table %q", gateway.ErrBadIdentifier, table)
	}
	return nil
}

// buildWhere 列名均经过校验，值一律走占位符
func buildWhere(all, or []gateway.Filter) (string, []any, error) {
	if err := gateway.CheckFilters(all); err != nil {
		return "", nil, err
	}
	if err := gateway.CheckFilters(or); err != nil {
		return "", nil, err
	}

	var (
		parts []string
		args  []any
	)
	for _, f := range all {
		cond, arg := condition(f)
		parts = append(parts, cond)
		args = append(args, arg)
	}
	if len(or) > 0 {
		ors := make([]string, 0, len(or))
		for _, f := range or {
			cond, arg := condition(f)
			ors = append(ors, cond)
			args = append(args, arg)
		}
		parts = append(parts, "("+strings.Join(ors, " OR ")+")")
	}
	return strings.Join(parts, " AND "), args, nil
}

// likeEscaper 用 ! 作转义符，MySQL 与 SQLite 写法一致
var likeEscaper = strings.NewReplacer(`!`, `!!`, `%`, `!%`, `_`, `!_`)

func condition(f gateway.Filter) (string, any) {
	switch f.Op {
	case gateway.OpNeq:
		return f.Column + " <> ?", f.Value
	case gateway.OpILike:
		pattern := "%" + likeEscaper.Replace(fmt.Sprint(f.Value)) + "%"
		return "LOWER(" + f.Column + ") LIKE LOWER(?) ESCAPE '!'", pattern
	case gateway.OpLt:
		return f.Column + " < ?", f.Value
	case gateway.OpGt:
		return f.Column + " > ?", f.Value
	default:
		return f.Column + " = ?", f.Value
	}
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "UNIQUE constraint failed")
}
