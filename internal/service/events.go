package service

import (
	"context"
	"time"

	"discuss-go/internal/identity"
	"discuss-go/internal/model"
	"discuss-go/pkg/logger"

	"go.uber.org/zap"
)

const publishTimeout = 2 * time.Second

// NopPublisher Kafka 未启用时使用
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, model.ThreadEvent) error { return nil }

// publish 尽力而为：失败只记日志，不影响请求结果，也不受请求取消影响
func publish(ctx context.Context, events EventPublisher, evt model.ThreadEvent) {
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now()
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := events.Publish(pctx, evt); err != nil {
		logger.FromContext(ctx).Warn("Publish thread event failed",
			zap.String("type", evt.Type),
			zap.Int64("article_id", evt.ArticleID),
			zap.Error(err),
		)
	}
}

func actorOf(ident *identity.Identity) string {
	if ident == nil {
		return ""
	}
	key, err := identity.Account(ident.ID)
	if err != nil {
		return ""
	}
	return key.String()
}
