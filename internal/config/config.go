package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 全局配置结构体
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Kafka         KafkaConfig         `mapstructure:"kafka"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	JWT           JWTConfig           `mapstructure:"jwt"`
	Log           LogConfig           `mapstructure:"log"`
	Thread        ThreadConfig        `mapstructure:"thread"`
	Engagement    EngagementConfig    `mapstructure:"engagement"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name        string   `mapstructure:"name"`
	Version     string   `mapstructure:"version"`
	Mode        string   `mapstructure:"mode"`
	Port        int      `mapstructure:"port"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	// Driver 取值 postgres 或 memory，memory 仅用于本地开发
	Driver          string `mapstructure:"driver"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"dbname"`
	SSLMode         string `mapstructure:"sslmode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // 秒
}

// DSN 返回PostgreSQL连接字符串
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// IsMemory 是否使用内存存储
func (d *DatabaseConfig) IsMemory() bool {
	return d.Driver == "memory"
}

// RedisConfig Redis配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// Addr 返回Redis地址
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// KafkaConfig Kafka配置
type KafkaConfig struct {
	Enabled bool              `mapstructure:"enabled"`
	Brokers []string          `mapstructure:"brokers"`
	Topics  map[string]string `mapstructure:"topics"`
	GroupID string            `mapstructure:"group_id"`
}

// Topic 按名称取 topic，未配置时回退为名称本身
func (k *KafkaConfig) Topic(name string) string {
	if t, ok := k.Topics[name]; ok && t != "" {
		return t
	}
	return name
}

// ElasticsearchConfig Elasticsearch配置
type ElasticsearchConfig struct {
	Enabled bool              `mapstructure:"enabled"`
	Hosts   []string          `mapstructure:"hosts"`
	Index   map[string]string `mapstructure:"index"`
}

// IndexName 按名称取索引名，未配置时回退为名称本身
func (e *ElasticsearchConfig) IndexName(name string) string {
	if idx, ok := e.Index[name]; ok && idx != "" {
		return idx
	}
	return name
}

// JWTConfig JWT配置
type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

// ExpireDuration 返回过期时间
func (j *JWTConfig) ExpireDuration() time.Duration {
	return time.Duration(j.ExpireHours) * time.Hour
}

// LogConfig 日志配置
type LogConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	FilePath string `mapstructure:"file_path"`
}

// ThreadConfig 评论树相关配置
type ThreadConfig struct {
	MaxDepth        int `mapstructure:"max_depth"`
	FlattenWorkers  int `mapstructure:"flatten_workers"`
	PageCacheTTL    int `mapstructure:"page_cache_ttl"` // 秒，0 表示不缓存
	DefaultPageSize int `mapstructure:"default_page_size"`
	MaxPageSize     int `mapstructure:"max_page_size"`
}

// CacheTTL 返回分页缓存有效期
func (t *ThreadConfig) CacheTTL() time.Duration {
	return time.Duration(t.PageCacheTTL) * time.Second
}

// EngagementConfig 互动计数配置
type EngagementConfig struct {
	ViewDedupeTTL     int `mapstructure:"view_dedupe_ttl"`     // 秒
	ReconcileInterval int `mapstructure:"reconcile_interval"` // 秒，worker 全量对账间隔
}

// ViewDedupeDuration 同一访客重复浏览不计数的窗口
func (e *EngagementConfig) ViewDedupeDuration() time.Duration {
	return time.Duration(e.ViewDedupeTTL) * time.Second
}

// ReconcileEvery 返回全量对账间隔
func (e *EngagementConfig) ReconcileEvery() time.Duration {
	return time.Duration(e.ReconcileInterval) * time.Second
}

// Default 返回带默认值的配置，供测试和内存模式使用
func Default() *Config {
	return &Config{
		App:      AppConfig{Name: "discuss-go", Version: "dev", Mode: "debug", Port: 8000},
		Database: DatabaseConfig{Driver: "memory"},
		JWT:      JWTConfig{Secret: "dev-secret", ExpireHours: 72},
		Log:      LogConfig{Level: "info", Format: "console", Output: "stdout"},
		Thread: ThreadConfig{
			MaxDepth:        50,
			FlattenWorkers:  4,
			DefaultPageSize: 10,
			MaxPageSize:     100,
		},
		Engagement: EngagementConfig{ViewDedupeTTL: 600, ReconcileInterval: 3600},
	}
}

// 全局配置实例
var globalConfig *Config

// Load 加载配置文件
func Load(configPath string) (*Config, error) {
	// .env 只是本地开发的便利，不存在时忽略
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// DATABASE_HOST 覆盖 database.host
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	globalConfig = &cfg
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("thread.max_depth", d.Thread.MaxDepth)
	v.SetDefault("thread.flatten_workers", d.Thread.FlattenWorkers)
	v.SetDefault("thread.default_page_size", d.Thread.DefaultPageSize)
	v.SetDefault("thread.max_page_size", d.Thread.MaxPageSize)
	v.SetDefault("engagement.view_dedupe_ttl", d.Engagement.ViewDedupeTTL)
	v.SetDefault("engagement.reconcile_interval", d.Engagement.ReconcileInterval)
	v.SetDefault("kafka.group_id", "discuss-go-worker")
}

// Validate 校验关键配置
func (c *Config) Validate() error {
	if c.Thread.MaxDepth <= 0 {
		return errors.New("thread.max_depth must be positive")
	}
	if c.Thread.DefaultPageSize <= 0 || c.Thread.MaxPageSize < c.Thread.DefaultPageSize {
		return errors.New("thread page sizes are invalid")
	}
	if c.Engagement.ReconcileInterval <= 0 {
		return errors.New("engagement.reconcile_interval must be positive")
	}
	if c.JWT.Secret == "" {
		return errors.New("jwt.secret is required")
	}
	return nil
}

// Set 替换全局配置（测试用）
func Set(cfg *Config) {
	globalConfig = cfg
}

// Get 获取全局配置
func Get() *Config {
	if globalConfig == nil {
		panic("config not loaded, please call Load() first")
	}
	return globalConfig
}

// GetApp 获取应用配置
func GetApp() *AppConfig {
	return &Get().App
}

// GetJWT 获取JWT配置
func GetJWT() *JWTConfig {
	return &Get().JWT
}

// GetThread 获取评论树配置
func GetThread() *ThreadConfig {
	return &Get().Thread
}
