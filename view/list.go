package view

import (
	"context"
	"sync"

	"github.com/sourcegraph/conc"
	"go.uber.org/zap"

	"Forge/gateway"
	"Forge/pkg/response"
)

// ListSpec 列表的查询范围；Scope 同时用作订阅条件
type ListSpec struct {
	Table string
	Scope []gateway.Filter
	Order gateway.Order
	Limit int
}

// List 按范围加载的有序集合，任何变更通知都触发一次全量重新加载
type List[T any] struct {
	gw     gateway.Gateway
	spec   ListSpec
	decode func(gateway.Row) T
	opts   options
	log    *zap.Logger

	mu       sync.Mutex
	items    []T
	started  uint64
	applied  uint64
	mounted  bool
	closed   bool
	sub      gateway.Subscription
	onChange func([]T)
	onCount  func(int)

	ctx    context.Context
	cancel context.CancelFunc
	wg     conc.WaitGroup
}

func NewList[T any](gw gateway.Gateway, spec ListSpec, decode func(gateway.Row) T, opts ...Option) *List[T] {
	o := newOptions(opts)
	return &List[T]{
		gw:     gw,
		spec:   spec,
		decode: decode,
		opts:   o,
		log:    o.logger.With(zap.String("table", spec.Table)),
		items:  make([]T, 0),
	}
}

func (l *List[T]) OnChange(fn func([]T)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onChange = fn
}

// OnCount 每次加载完成后回调集合大小，数量未变也会回调
func (l *List[T]) OnCount(fn func(int)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onCount = fn
}

func (l *List[T]) Items() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]T, len(l.items))
	copy(out, l.items)
	return out
}

// Load 查询失败时集合置空并记录日志；并发加载时只保留最后发起的那次结果
func (l *List[T]) Load(ctx context.Context) []T {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.started++
	seq := l.started
	l.mu.Unlock()

	q := gateway.Query{Table: l.spec.Table, Filters: l.spec.Scope, Limit: l.spec.Limit}
	if l.spec.Order.Column != "" {
		order := l.spec.Order
		q.Order = &order
	}
	qctx, cancel := context.WithTimeout(ctx, l.opts.timeout)
	rows, err := l.gw.Query(qctx, q)
	cancel()

	items := make([]T, 0, len(rows))
	if err != nil {
		l.log.Warn("load list failed", zap.Error(err))
	} else {
		for _, r := range rows {
			items = append(items, l.decode(r))
		}
	}

	l.mu.Lock()
	if l.closed || seq < l.applied {
		l.mu.Unlock()
		return nil
	}
	l.applied = seq
	l.items = items
	onChange, onCount := l.onChange, l.onCount
	l.mu.Unlock()

	out := make([]T, len(items))
	copy(out, items)
	notify(onChange, out)
	notify(onCount, len(items))
	return items
}

// Mount 先订阅再加载，避免两步之间的变更丢失
func (l *List[T]) Mount(ctx context.Context) error {
	l.mu.Lock()
	if l.mounted || l.closed {
		l.mu.Unlock()
		return nil
	}
	l.mounted = true
	l.ctx, l.cancel = context.WithCancel(context.WithoutCancel(ctx))
	l.mu.Unlock()

	subCtx, cancel := context.WithTimeout(l.ctx, l.opts.timeout)
	sub, err := l.gw.Subscribe(subCtx, l.spec.Table, l.spec.Scope...)
	cancel()

	if err == nil && !l.attach(sub) {
		_ = sub.Close()
		return nil
	}

	l.Load(l.ctx)

	if err != nil {
		l.log.Warn("subscribe changes failed", zap.Error(err))
		return response.OperationFailed("subscribe failed", err)
	}
	return nil
}

func (l *List[T]) attach(sub gateway.Subscription) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return false
	}
	l.sub = sub
	l.wg.Go(func() {
		for range sub.Events() {
			l.Load(l.ctx)
		}
	})
	return true
}

func (l *List[T]) Unmount() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	sub := l.sub
	cancel := l.cancel
	l.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if sub != nil {
		if err := sub.Close(); err != nil {
			l.log.Warn("close subscription failed", zap.Error(err))
		}
	}
	l.wg.Wait()
}
