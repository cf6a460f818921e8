package elasticsearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"discuss-go/internal/config"
	"discuss-go/pkg/logger"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"
)

// ErrNotInitialized ES 未启用或启动时没连上
var ErrNotInitialized = errors.New("elasticsearch client not initialized")

var client *elasticsearch.Client

// normalizeHosts 去掉空项，缺协议的补 http://
func normalizeHosts(raw []string) []string {
	hosts := make([]string, 0, len(raw))
	for _, h := range raw {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		if !strings.HasPrefix(h, "http://") && !strings.HasPrefix(h, "https://") {
			h = "http://" + h
		}
		hosts = append(hosts, h)
	}
	return hosts
}

// Init 连接 ES 并 ping 一次，成功后才替换全局客户端
func Init(cfg *config.ElasticsearchConfig) error {
	hosts := normalizeHosts(cfg.Hosts)
	if len(hosts) == 0 {
		return errors.New("elasticsearch hosts is empty")
	}

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:     hosts,
		RetryOnStatus: []int{502, 503, 504},
		MaxRetries:    3,
		RetryBackoff:  func(i int) time.Duration { return time.Duration(i) * time.Second },
	})
	if err != nil {
		return fmt.Errorf("create elasticsearch client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	resp, err := es.Ping(es.Ping.WithContext(ctx))
	if err := readResponse("ping", resp, err, nil); err != nil {
		return err
	}

	client = es
	logger.Info("Elasticsearch connected", zap.Strings("hosts", hosts))
	return nil
}

// Ping 健康检查用，未启用时视为正常
func Ping(ctx context.Context) error {
	if client == nil {
		return nil
	}
	resp, err := client.Ping(client.Ping.WithContext(ctx))
	return readResponse("ping", resp, err, nil)
}

// Close 丢弃全局客户端，底层 HTTP 连接随进程退出
func Close() error {
	if client == nil {
		return nil
	}
	client = nil
	logger.Info("Elasticsearch client closed")
	return nil
}

func current() (*elasticsearch.Client, error) {
	if client == nil {
		return nil, ErrNotInitialized
	}
	return client, nil
}

// readResponse 传输错误和非 2xx 都转成 error；out 非 nil 时把 body 解到 out
func readResponse(op string, resp *esapi.Response, err error, out any) error {
	if err != nil {
		return fmt.Errorf("elasticsearch %s: %w", op, err)
	}
	defer resp.Body.Close()
	if resp.IsError() {
		return fmt.Errorf("elasticsearch %s: %s", op, resp.String())
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("elasticsearch %s: decode response: %w", op, err)
	}
	return nil
}

func search(ctx context.Context, index string, body io.Reader, out any) error {
	c, err := current()
	if err != nil {
		return err
	}
	resp, err := c.Search(
		c.Search.WithContext(ctx),
		c.Search.WithIndex(index),
		c.Search.WithBody(body),
	)
	return readResponse("search "+index, resp, err, out)
}

func indexDocument(ctx context.Context, index, id string, body io.Reader) error {
	c, err := current()
	if err != nil {
		return err
	}
	resp, err := c.Index(index, body,
		c.Index.WithContext(ctx),
		c.Index.WithDocumentID(id),
	)
	return readResponse("index "+index+"/"+id, resp, err, nil)
}

func bulk(ctx context.Context, body io.Reader, out any) error {
	c, err := current()
	if err != nil {
		return err
	}
	resp, err := c.Bulk(body, c.Bulk.WithContext(ctx))
	return readResponse("bulk", resp, err, out)
}

func createIndex(ctx context.Context, index string, body io.Reader) error {
	c, err := current()
	if err != nil {
		return err
	}
	resp, err := c.Indices.Create(index,
		c.Indices.Create.WithContext(ctx),
		c.Indices.Create.WithBody(body),
	)
	return readResponse("create index "+index, resp, err, nil)
}

// indexExists 只有 404 算不存在，其它状态一律返回错误
func indexExists(ctx context.Context, index string) (bool, error) {
	c, err := current()
	if err != nil {
		return false, err
	}
	resp, err := c.Indices.Exists([]string{index}, c.Indices.Exists.WithContext(ctx))
	if err != nil {
		return false, fmt.Errorf("elasticsearch check index %s: %w", index, err)
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("elasticsearch check index %s: %s", index, resp.Status())
	}
}
