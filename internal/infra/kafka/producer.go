package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"discuss-go/internal/config"
	"discuss-go/internal/model"
	"discuss-go/pkg/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// TopicThreadEvents 评论区事件 topic 的配置名
const TopicThreadEvents = "thread_events"

// Publisher 把评论区事件写入 Kafka，同一文章的事件用同一个 key 保证有序
type Publisher struct {
	writer *kafka.Writer
	topic  string
}

// NewPublisher 初始化 Kafka 生产者
func NewPublisher(cfg *config.KafkaConfig) *Publisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}

	topic := cfg.Topic(TopicThreadEvents)
	logger.Info("Kafka producer initialized",
		zap.Strings("brokers", cfg.Brokers),
		zap.String("topic", topic),
	)

	return &Publisher{writer: writer, topic: topic}
}

// Publish 发送一条评论区事件
func (p *Publisher) Publish(ctx context.Context, evt model.ThreadEvent) error {
	msg, err := encodeEvent(p.topic, evt)
	if err != nil {
		return err
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to send thread event: %w", err)
	}

	logger.Debug("Thread event sent",
		zap.String("type", evt.Type),
		zap.Int64("article_id", evt.ArticleID),
	)
	return nil
}

// encodeEvent 以文章为 key，同一文章的事件落在同一分区
func encodeEvent(topic string, evt model.ThreadEvent) (kafka.Message, error) {
	payload, err := json.Marshal(evt)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal thread event: %w", err)
	}
	return kafka.Message{
		Topic: topic,
		Key:   []byte(fmt.Sprintf("article-%d", evt.ArticleID)),
		Value: payload,
	}, nil
}

// Close 关闭生产者
func (p *Publisher) Close() error {
	logger.Info("Kafka producer closed")
	return p.writer.Close()
}
