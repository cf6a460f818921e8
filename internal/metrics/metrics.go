// Package metrics 集中注册 Prometheus 指标。指标在包初始化时注册一次，
// 多次构建路由（例如测试）不会重复注册。
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests 按路由模板统计请求数
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewSummaryVec(
		prometheus.SummaryOpts{
			Name: "http_request_duration_seconds",
			Help: "HTTP request duration in seconds",
			Objectives: map[float64]float64{
				0.5:  0.05,
				0.9:  0.01,
				0.99: 0.001,
			},
		},
		[]string{"method", "route"},
	)

	// Engagement 点赞/取消点赞结果，outcome 取 ok、conflict、error
	Engagement = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thread_engagement_total",
			Help: "Like and unlike attempts by outcome",
		},
		[]string{"action", "outcome"},
	)

	FlattenTruncated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "thread_flatten_truncated_total",
		Help: "Reply subtrees cut off by the depth limit or a cycle",
	})

	FlattenReplies = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "thread_flatten_replies",
		Help:    "Number of replies produced per flattened thread",
		Buckets: prometheus.ExponentialBuckets(1, 4, 7),
	})
)
