package dao

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"Forge/config"
	"Forge/gateway"
	"Forge/pkg/log"
)

// subscriptionBuffer 订阅方积压超过该值后新通知被丢弃，任何一条通知都会触发全量刷新
const subscriptionBuffer = 16

// ChangeFeed 以 Redis pub/sub 广播表级变更，频道为 <prefix><table>
type ChangeFeed struct {
	redis  *redis.Client
	prefix string
}

func NewChangeFeed(rdb *redis.Client, conf *config.Config) *ChangeFeed {
	return &ChangeFeed{redis: rdb, prefix: conf.Gateway.Prefix()}
}

func (f *ChangeFeed) channel(table string) string {
	return f.prefix + table
}

func (f *ChangeFeed) Publish(ctx context.Context, ev gateway.ChangeEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return f.redis.Publish(ctx, f.channel(ev.Table), payload).Err()
}

// Subscribe 等待订阅确认后返回，之后发布的变更保证能收到
func (f *ChangeFeed) Subscribe(ctx context.Context, table string, filters ...gateway.Filter) (gateway.Subscription, error) {
	ps := f.redis.Subscribe(ctx, f.channel(table))
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, err
	}

	s := &feedSubscription{
		ps:      ps,
		filters: filters,
		events:  make(chan gateway.ChangeEvent, subscriptionBuffer),
		done:    make(chan struct{}),
	}
	go s.run(ps.Channel())
	return s, nil
}

type feedSubscription struct {
	ps      *redis.PubSub
	filters []gateway.Filter
	events  chan gateway.ChangeEvent
	done    chan struct{}
	once    sync.Once
}

func (s *feedSubscription) run(ch <-chan *redis.Message) {
	defer close(s.done)
	defer close(s.events)

	for msg := range ch {
		var ev gateway.ChangeEvent
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			log.L.Warn("decode change event failed", zap.String("channel", msg.Channel), zap.Error(err))
			continue
		}
		if !gateway.Match(ev.Row, s.filters) {
			continue
		}
		select {
		case s.events <- ev:
		default:
		}
	}
}

func (s *feedSubscription) Events() <-chan gateway.ChangeEvent {
	return s.events
}

// Close 关闭 pub/sub 连接并等待转发协程退出
func (s *feedSubscription) Close() error {
	var err error
	s.once.Do(func() {
		err = s.ps.Close()
		<-s.done
	})
	return err
}
