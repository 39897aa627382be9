package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"Forge/config"
	"Forge/pkg/log"
	"Forge/pkg/rocketmq"
	"Forge/types"
)

const publishTimeout = 3 * time.Second

// ActivityPublisher 尽力投递用户动态，失败只记日志
type ActivityPublisher interface {
	Publish(ctx context.Context, a types.Activity)
}

var (
	_ ActivityPublisher = (*MQActivityPublisher)(nil)
	_ ActivityPublisher = (*LogActivityPublisher)(nil)
)

type MQActivityPublisher struct {
	Producer *rocketmq.Producer
}

func (p *MQActivityPublisher) Publish(ctx context.Context, a types.Activity) {
	if a.At.IsZero() {
		a.At = time.Now().UTC()
	}
	body, err := json.Marshal(a)
	if err != nil {
		log.L.Warn("marshal activity failed", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := p.Producer.Send(ctx, a.Type, a.SubjectID, body); err != nil {
		log.L.Warn("publish activity failed",
			zap.String("type", a.Type),
			zap.String("subject", a.SubjectID),
			zap.Error(err))
	}
}

// LogActivityPublisher 未配置 MQ 时使用，同时保留最近的动态便于测试断言
type LogActivityPublisher struct {
	mu     sync.Mutex
	recent []types.Activity
}

func (p *LogActivityPublisher) Publish(_ context.Context, a types.Activity) {
	log.L.Info("activity",
		zap.String("type", a.Type),
		zap.String("actor", a.ActorID),
		zap.String("subject", a.SubjectID),
		zap.String("edge", a.Edge),
		zap.Bool("active", a.Active))

	p.mu.Lock()
	defer p.mu.Unlock()
	p.recent = append(p.recent, a)
	if len(p.recent) > 100 {
		p.recent = p.recent[len(p.recent)-100:]
	}
}

func (p *LogActivityPublisher) Recent() []types.Activity {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]types.Activity(nil), p.recent...)
}

// NewActivityPublisher 配置了 endpoint 时走 RocketMQ，否则退化为日志
func NewActivityPublisher(cfg *config.RocketMQConfig) (ActivityPublisher, func(), error) {
	if !cfg.Enabled() {
		return &LogActivityPublisher{}, func() {}, nil
	}
	producer, cleanup, err := rocketmq.NewProducer(cfg)
	if err != nil {
		return nil, nil, err
	}
	return &MQActivityPublisher{Producer: producer}, cleanup, nil
}
