package gateway

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var identRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// ValidIdent 表名与列名只允许小写蛇形，拼接 SQL 前必须校验
func ValidIdent(name string) bool {
	return identRe.MatchString(name)
}

func CheckFilters(filters []Filter) error {
	for _, f := range filters {
		if !ValidIdent(f.Column) {
			return fmt.Errorf("%w: %q", ErrBadIdentifier, f.Column)
		}
		switch f.Op {
		case OpEq, OpNeq, OpILike, OpLt, OpGt:
		default:
			return fmt.Errorf("gateway: unsupported op %q", f.Op)
		}
	}
	return nil
}

// Match 在内存中判断一行是否满足全部条件，变更订阅按它过滤事件
func Match(row Row, filters []Filter) bool {
	for _, f := range filters {
		if !matchOne(row, f) {
			return false
		}
	}
	return true
}

// MatchAny Any 组为空时视为满足
func MatchAny(row Row, filters []Filter) bool {
	if len(filters) == 0 {
		return true
	}
	for _, f := range filters {
		if matchOne(row, f) {
			return true
		}
	}
	return false
}

func matchOne(row Row, f Filter) bool {
	v, ok := row[f.Column]
	switch f.Op {
	case OpEq:
		return ok && text(v) == text(f.Value)
	case OpNeq:
		return !ok || text(v) != text(f.Value)
	case OpILike:
		return ok && strings.Contains(strings.ToLower(text(v)), strings.ToLower(text(f.Value)))
	case OpLt:
		return ok && compare(v, f.Value) < 0
	case OpGt:
		return ok && compare(v, f.Value) > 0
	}
	return false
}

func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(t)
	}
}

func compare(a, b any) int {
	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Compare(tb)
		}
	}
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			}
			return 0
		}
	}
	return strings.Compare(text(a), text(b))
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
