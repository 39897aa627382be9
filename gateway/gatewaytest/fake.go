// Package gatewaytest 提供内存版网关，支持注入失败、挂起调用与模拟其他客户端写入。
package gatewaytest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"Forge/gateway"
)

const (
	OpQuery     = "query"
	OpCount     = "count"
	OpInsert    = "insert"
	OpUpdate    = "update"
	OpDelete    = "delete"
	OpSubscribe = "subscribe"
)

type Call struct {
	Op      string
	Table   string
	Filters []gateway.Filter
	Record  gateway.Row
}

type hold struct {
	entered chan struct{}
	release chan struct{}
}

type Fake struct {
	mu       sync.Mutex
	tables   map[string][]gateway.Row
	unique   map[string][]string
	calls    []Call
	failures map[string][]error
	holds    map[string]*hold
	subs     map[*subscription]struct{}
	seq      int
	base     time.Time
}

var _ gateway.Gateway = (*Fake)(nil)

func New() *Fake {
	return &Fake{
		tables:   make(map[string][]gateway.Row),
		unique:   make(map[string][]string),
		failures: make(map[string][]error),
		holds:    make(map[string]*hold),
		subs:     make(map[*subscription]struct{}),
		base:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Unique 声明唯一键，Insert 冲突时返回 gateway.ErrConflict
func (f *Fake) Unique(table string, cols ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unique[table] = cols
}

// Seed 直接写入初始数据，不计调用也不发通知
func (f *Fake) Seed(table string, rows ...gateway.Row) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range rows {
		f.tables[table] = append(f.tables[table], f.fill(r))
	}
}

// FailNext 让下一次 op 调用返回 err，可多次排队
func (f *Fake) FailNext(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[op] = append(f.failures[op], err)
}

// Hold 挂起下一次 op 调用；entered 在调用进入后关闭，release 放行
func (f *Fake) Hold(op string) (entered <-chan struct{}, release func()) {
	h := &hold{entered: make(chan struct{}), release: make(chan struct{})}
	f.mu.Lock()
	f.holds[op] = h
	f.mu.Unlock()
	var once sync.Once
	return h.entered, func() { once.Do(func() { close(h.release) }) }
}

func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallCount 不传 op 时返回全部调用数
func (f *Fake) CallCount(ops ...string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(ops) == 0 {
		return len(f.calls)
	}
	n := 0
	for _, c := range f.calls {
		for _, op := range ops {
			if c.Op == op {
				n++
			}
		}
	}
	return n
}

func (f *Fake) ResetCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

func (f *Fake) Rows(table string) []gateway.Row {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]gateway.Row, 0, len(f.tables[table]))
	for _, r := range f.tables[table] {
		out = append(out, r.Clone())
	}
	return out
}

func (f *Fake) ActiveSubscriptions() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

// RemoteInsert 模拟其他客户端写入：落表并通知，不计入调用
func (f *Fake) RemoteInsert(table string, row gateway.Row) gateway.Row {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := f.fill(row)
	f.tables[table] = append(f.tables[table], r)
	f.emit(gateway.ChangeEvent{Table: table, Op: gateway.ChangeInsert, Row: r.Clone(), At: time.Now()})
	return r.Clone()
}

// Emit 只发通知，不改数据
func (f *Fake) Emit(ev gateway.ChangeEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emit(ev)
}

func (f *Fake) Query(ctx context.Context, q gateway.Query) ([]gateway.Row, error) {
	if err := f.enter(ctx, Call{Op: OpQuery, Table: q.Table, Filters: q.Filters}); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]gateway.Row, 0)
	for _, r := range f.tables[q.Table] {
		if gateway.Match(r, q.Filters) && gateway.MatchAny(r, q.Any) {
			out = append(out, r.Clone())
		}
	}
	if q.Order != nil {
		o := *q.Order
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i], out[j]
			if o.Desc {
				a, b = b, a
			}
			if lessValue(a[o.Column], b[o.Column]) {
				return true
			}
			if lessValue(b[o.Column], a[o.Column]) || o.Tiebreak == "" {
				return false
			}
			return lessValue(a[o.Tiebreak], b[o.Tiebreak])
		})
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (f *Fake) Count(ctx context.Context, table string, filters ...gateway.Filter) (int64, error) {
	if err := f.enter(ctx, Call{Op: OpCount, Table: table, Filters: filters}); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	var n int64
	for _, r := range f.tables[table] {
		if gateway.Match(r, filters) {
			n++
		}
	}
	return n, nil
}

func (f *Fake) Insert(ctx context.Context, table string, record gateway.Row) (gateway.Row, error) {
	if err := f.enter(ctx, Call{Op: OpInsert, Table: table, Record: record.Clone()}); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if cols, ok := f.unique[table]; ok {
		for _, r := range f.tables[table] {
			same := true
			for _, c := range cols {
				if r.String(c) != record.String(c) {
					same = false
					break
				}
			}
			if same {
				return nil, gateway.ErrConflict
			}
		}
	}
	r := f.fill(record)
	f.tables[table] = append(f.tables[table], r)
	f.emit(gateway.ChangeEvent{Table: table, Op: gateway.ChangeInsert, Row: r.Clone(), At: time.Now()})
	return r.Clone(), nil
}

func (f *Fake) Update(ctx context.Context, table string, values gateway.Row, filters ...gateway.Filter) (int64, error) {
	if err := f.enter(ctx, Call{Op: OpUpdate, Table: table, Filters: filters, Record: values.Clone()}); err != nil {
		return 0, err
	}
	if len(filters) == 0 {
		return 0, gateway.ErrUnfiltered
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	var n int64
	for _, r := range f.tables[table] {
		if !gateway.Match(r, filters) {
			continue
		}
		for k, v := range values {
			r[k] = v
		}
		n++
		f.emit(gateway.ChangeEvent{Table: table, Op: gateway.ChangeUpdate, Row: r.Clone(), At: time.Now()})
	}
	return n, nil
}

func (f *Fake) Delete(ctx context.Context, table string, filters ...gateway.Filter) (int64, error) {
	if err := f.enter(ctx, Call{Op: OpDelete, Table: table, Filters: filters}); err != nil {
		return 0, err
	}
	if len(filters) == 0 {
		return 0, gateway.ErrUnfiltered
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	kept := f.tables[table][:0]
	var removed []gateway.Row
	for _, r := range f.tables[table] {
		if gateway.Match(r, filters) {
			removed = append(removed, r)
			continue
		}
		kept = append(kept, r)
	}
	f.tables[table] = kept
	for _, r := range removed {
		f.emit(gateway.ChangeEvent{Table: table, Op: gateway.ChangeDelete, Row: r.Clone(), At: time.Now()})
	}
	return int64(len(removed)), nil
}

func (f *Fake) Subscribe(ctx context.Context, table string, filters ...gateway.Filter) (gateway.Subscription, error) {
	if err := f.enter(ctx, Call{Op: OpSubscribe, Table: table, Filters: filters}); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	s := &subscription{fake: f, table: table, filters: filters, ch: make(chan gateway.ChangeEvent, 64)}
	f.subs[s] = struct{}{}
	return s, nil
}

func (f *Fake) enter(ctx context.Context, c Call) error {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	h := f.holds[c.Op]
	delete(f.holds, c.Op)
	var failure error
	if q := f.failures[c.Op]; len(q) > 0 {
		failure = q[0]
		f.failures[c.Op] = q[1:]
	}
	f.mu.Unlock()

	if h != nil {
		close(h.entered)
		select {
		case <-h.release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if failure != nil {
		return failure
	}
	return ctx.Err()
}

// fill 补全网关生成字段，调用方需持锁
func (f *Fake) fill(r gateway.Row) gateway.Row {
	f.seq++
	out := r.Clone()
	if out.String("id") == "" {
		out["id"] = fmt.Sprintf("row-%d", f.seq)
	}
	if _, ok := out["created_at"]; !ok {
		out["created_at"] = f.base.Add(time.Duration(f.seq) * time.Second)
	}
	return out
}

// emit 非阻塞投递，订阅方积压时丢弃多余通知，调用方需持锁
func (f *Fake) emit(ev gateway.ChangeEvent) {
	for s := range f.subs {
		if s.table != ev.Table || !gateway.Match(ev.Row, s.filters) {
			continue
		}
		select {
		case s.ch <- ev:
		default:
		}
	}
}

type subscription struct {
	fake    *Fake
	table   string
	filters []gateway.Filter
	ch      chan gateway.ChangeEvent
	once    sync.Once
}

func (s *subscription) Events() <-chan gateway.ChangeEvent {
	return s.ch
}

func (s *subscription) Close() error {
	s.once.Do(func() {
		s.fake.mu.Lock()
		delete(s.fake.subs, s)
		close(s.ch)
		s.fake.mu.Unlock()
	})
	return nil
}

func lessValue(a, b any) bool {
	ta, aok := a.(time.Time)
	tb, bok := b.(time.Time)
	if aok && bok {
		return ta.Before(tb)
	}
	return fmt.Sprint(a) < fmt.Sprint(b)
}
