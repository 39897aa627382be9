package rocketmq

import (
	"context"
	"fmt"

	rmq_client "github.com/apache/rocketmq-clients/golang/v5"
	"github.com/apache/rocketmq-clients/golang/v5/credentials"
	"go.uber.org/zap"

	"Forge/config"
	"Forge/pkg/log"
)

// Producer 对 v5 客户端的薄封装，只发往配置的 topic
type Producer struct {
	client rmq_client.Producer
	topic  string
}

// NewProducer 创建并启动生产者，返回的 cleanup 负责优雅关闭
func NewProducer(cfg *config.RocketMQConfig) (*Producer, func(), error) {
	p, err := rmq_client.NewProducer(&rmq_client.Config{
		Endpoint: cfg.Endpoint,
		Credentials: &credentials.SessionCredentials{
			AccessKey:    cfg.AccessKey,
			AccessSecret: cfg.SecretKey,
		},
	}, rmq_client.WithTopics(cfg.Producer.Topic))
	if err != nil {
		return nil, nil, fmt.Errorf("new rocketmq producer: %w", err)
	}
	if err = p.Start(); err != nil {
		return nil, nil, fmt.Errorf("start rocketmq producer: %w", err)
	}
	log.L.Info("init producer success", zap.String("topic", cfg.Producer.Topic))

	cleanup := func() {
		if err := p.GracefulStop(); err != nil {
			log.L.Warn("stop rocketmq producer failed", zap.Error(err))
		}
	}
	return &Producer{client: p, topic: cfg.Producer.Topic}, cleanup, nil
}

func (p *Producer) Topic() string {
	return p.topic
}

// Send 同步发送，tag 用于消费端过滤，key 便于按业务 id 检索
func (p *Producer) Send(ctx context.Context, tag, key string, body []byte) error {
	msg := &rmq_client.Message{
		Topic: p.topic,
		Body:  body,
	}
	if tag != "" {
		msg.SetTag(tag)
	}
	if key != "" {
		msg.SetKeys(key)
	}

	receipts, err := p.client.Send(ctx, msg)
	if err != nil {
		return err
	}
	if len(receipts) > 0 {
		log.L.Debug("send message success", zap.String("msg_id", receipts[0].MessageID))
	}
	return nil
}
