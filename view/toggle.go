// Package view 挂载在一次实时会话上的视图：互动开关、评论串与内容流。
//
// 每个视图在挂载期间持有恰好一个变更订阅，卸载时释放；卸载之后返回的远端结果一律丢弃。
package view

import (
	"context"
	"errors"
	"sync"

	"github.com/sourcegraph/conc"
	"go.uber.org/zap"

	"Forge/gateway"
	"Forge/pkg/response"
	"Forge/schema"
)

var errUnmounted = errors.New("view unmounted")

// ToggleSpec 一个开关控件对应的 (主体, 发起人, 边类型)；ActorID 为空表示匿名
type ToggleSpec struct {
	Edge      schema.EdgeKind
	Kind      schema.ParentKind
	SubjectID string
	ActorID   string
}

// Toggle 通用的乐观更新开关：点赞、收藏、关注、learned / inspired 共用
type Toggle struct {
	gw    gateway.Gateway
	spec  ToggleSpec
	route schema.EdgeRoute
	opts  options
	log   *zap.Logger

	mu       sync.Mutex
	state    EdgeState
	gen      uint64
	mounted  bool
	closed   bool
	sub      gateway.Subscription
	onChange func(EdgeState)

	ctx    context.Context
	cancel context.CancelFunc
	wg     conc.WaitGroup
}

func NewToggle(gw gateway.Gateway, spec ToggleSpec, opts ...Option) (*Toggle, error) {
	route, err := schema.EdgeRouteFor(spec.Edge, spec.Kind)
	if err != nil {
		return nil, response.Validation(err.Error())
	}
	if spec.SubjectID == "" {
		return nil, response.Validation("subject id is required")
	}
	o := newOptions(opts)
	return &Toggle{
		gw:    gw,
		spec:  spec,
		route: route,
		opts:  o,
		log: o.logger.With(
			zap.String("edge", spec.Edge.String()),
			zap.String("subject", spec.SubjectID),
		),
	}, nil
}

// OnChange 状态每次变化后回调，回调在锁外执行
func (t *Toggle) OnChange(fn func(EdgeState)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onChange = fn
}

func (t *Toggle) State() EdgeState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *Toggle) Spec() ToggleSpec {
	return t.spec
}

// Mount 订阅主体范围内的变更并读取初始状态。
//
// 读取失败不会返回错误；只有订阅失败时返回 OperationFailed，此时视图仍可用但不再自动刷新。
func (t *Toggle) Mount(ctx context.Context) error {
	t.mu.Lock()
	if t.mounted || t.closed {
		t.mu.Unlock()
		return nil
	}
	t.mounted = true
	t.ctx, t.cancel = context.WithCancel(context.WithoutCancel(ctx))
	t.mu.Unlock()

	subCtx, cancel := context.WithTimeout(t.ctx, t.opts.timeout)
	sub, err := t.gw.Subscribe(subCtx, t.route.Table, t.route.Watch(t.spec.SubjectID)...)
	cancel()

	if err == nil && !t.attach(sub) {
		_ = sub.Close()
		return nil
	}

	t.Refresh(t.ctx)

	if err != nil {
		t.log.Warn("subscribe changes failed", zap.Error(err))
		return response.OperationFailed("subscribe failed", err)
	}
	return nil
}

func (t *Toggle) attach(sub gateway.Subscription) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return false
	}
	t.sub = sub
	t.wg.Go(func() {
		for ev := range sub.Events() {
			if t.route.Touches(ev.Row, t.spec.SubjectID) {
				t.Refresh(t.ctx)
			}
		}
	})
	return true
}

// Refresh 重新读取是否存在边与总数，关注开关另外读取主体的关注数。
//
// 读取是否存在失败视为 Absent，读取计数失败保留当前值；期间若本地状态已被写操作改动，结果作废。
func (t *Toggle) Refresh(ctx context.Context) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	gen := t.gen
	t.mu.Unlock()

	presence := PresenceAbsent
	if t.spec.ActorID != "" {
		n, err := t.count(ctx, t.route.Exact(t.spec.SubjectID, t.spec.ActorID))
		if err != nil {
			t.log.Warn("read edge status failed", zap.String("actor", t.spec.ActorID), zap.Error(err))
		} else if n > 0 {
			presence = PresencePresent
		}
	}
	total, countErr := t.count(ctx, t.route.Count(t.spec.SubjectID))
	if countErr != nil {
		t.log.Warn("read edge count failed", zap.Error(countErr))
	}
	var (
		following    int64
		followingErr error
	)
	if t.route.Outgoing {
		following, followingErr = t.count(ctx, t.route.ByActor(t.spec.SubjectID))
		if followingErr != nil {
			t.log.Warn("read following count failed", zap.Error(followingErr))
		}
	}

	t.mu.Lock()
	if t.closed || t.gen != gen || t.state.Pending {
		t.mu.Unlock()
		return
	}
	next := EdgeState{Presence: presence, Count: t.state.Count, Following: t.state.Following}
	if countErr == nil {
		next.Count = total
	}
	if t.route.Outgoing && followingErr == nil {
		next.Following = following
	}
	t.state = next
	t.gen++
	cb := t.onChange
	t.mu.Unlock()

	notify(cb, next)
}

// Toggle 翻转当前用户的边。
//
// 匿名返回 ErrAuthRequired，关注自己返回 ErrValidation，两者都不发起任何网关调用；
// 上一次翻转尚未返回时返回 ErrTooFrequent；远端写入失败时恢复到调用前的状态。
func (t *Toggle) Toggle(ctx context.Context) (EdgeState, error) {
	if t.spec.ActorID == "" {
		return t.State(), response.ErrAuthRequired
	}
	if t.route.ForbidSelf && t.spec.ActorID == t.spec.SubjectID {
		return t.State(), response.Validation("cannot follow yourself")
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return EdgeState{}, response.OperationFailed("view unmounted", errUnmounted)
	}
	if t.state.Pending {
		st := t.state
		t.mu.Unlock()
		return st, response.ErrTooFrequent
	}
	rollback := t.state
	wasPresent := rollback.Active()
	next := rollback
	next.Pending = true
	if wasPresent {
		next.Presence = PresenceAbsent
		next.Count--
	} else {
		next.Presence = PresencePresent
		next.Count++
	}
	t.state = next
	t.gen++
	cb := t.onChange
	t.mu.Unlock()

	notify(cb, next)

	err := t.mutate(ctx, wasPresent)

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return EdgeState{}, response.OperationFailed("view unmounted", errUnmounted)
	}
	if err != nil {
		t.state = rollback
		t.gen++
		cb = t.onChange
		t.mu.Unlock()

		t.log.Warn("toggle failed, rolled back", zap.String("actor", t.spec.ActorID), zap.Error(err))
		notify(cb, rollback)
		return rollback, response.OperationFailed("toggle "+t.spec.Edge.String()+" failed", err)
	}
	t.state.Pending = false
	t.gen++
	done := t.state
	cb = t.onChange
	t.mu.Unlock()

	notify(cb, done)

	if t.opts.reconcile {
		t.Refresh(ctx)
	}
	return t.State(), nil
}

// mutate 边已存在时插入冲突说明目标状态已达成，不算失败
func (t *Toggle) mutate(ctx context.Context, wasPresent bool) error {
	ctx, cancel := context.WithTimeout(ctx, t.opts.timeout)
	defer cancel()

	if wasPresent {
		_, err := t.gw.Delete(ctx, t.route.Table, t.route.Exact(t.spec.SubjectID, t.spec.ActorID)...)
		return err
	}
	_, err := t.gw.Insert(ctx, t.route.Table, t.route.Record(t.spec.SubjectID, t.spec.ActorID))
	if errors.Is(err, gateway.ErrConflict) {
		return nil
	}
	return err
}

func (t *Toggle) count(ctx context.Context, filters []gateway.Filter) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, t.opts.timeout)
	defer cancel()
	return t.gw.Count(ctx, t.route.Table, filters...)
}

// Unmount 释放订阅并等待监听协程退出，可重复调用
func (t *Toggle) Unmount() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	sub := t.sub
	cancel := t.cancel
	t.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if sub != nil {
		if err := sub.Close(); err != nil {
			t.log.Warn("close subscription failed", zap.Error(err))
		}
	}
	t.wg.Wait()
}

func notify[S any](cb func(S), s S) {
	if cb != nil {
		cb(s)
	}
}
