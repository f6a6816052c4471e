package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"db"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Log       LogConfig       `mapstructure:"log"`
	Calendar  CalendarConfig  `mapstructure:"calendar"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Jobs      JobsConfig      `mapstructure:"jobs"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port           int        `mapstructure:"port"`
	BaseURL        string     `mapstructure:"base_url"`
	BodyLimitBytes int64      `mapstructure:"body_limit_bytes"`
	CORS           CORSConfig `mapstructure:"cors"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig PostgreSQL 数据库配置
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // 分钟
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // 分钟
}

// DSN 生成 PostgreSQL 连接字符串
// 会话时区固定为 UTC：所有时刻以绝对时间存储，墙上时间换算只在 TimeAnchor 中进行
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig JWT 认证配置（Token 由外部认证服务签发，本服务只做校验）
type AuthConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret"`
	Issuer         string        `mapstructure:"issuer"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CalendarConfig 日历网格与排课配置
type CalendarConfig struct {
	GridStartHour        int     `mapstructure:"grid_start_hour"`
	GridEndHour          int     `mapstructure:"grid_end_hour"`
	HourHeight           float64 `mapstructure:"hour_height"`      // 每小时像素高度
	SnapMinutes          int     `mapstructure:"snap_minutes"`     // 拖拽/缩放吸附粒度
	MinEventHeight       float64 `mapstructure:"min_event_height"` // 课程块最小高度
	DefaultTimezone      string  `mapstructure:"default_timezone"` // 空字符串 = 服务器本地时区
	MaxSeriesOccurrences int     `mapstructure:"max_series_occurrences"`
	WeekStartsOn         int     `mapstructure:"week_starts_on"` // 0=周日 1=周一
}

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// JobsConfig 定时任务配置，cron 表达式为标准五段格式，按 UTC 解释
type JobsConfig struct {
	CompletionCron    string        `mapstructure:"completion_cron"`    // 空字符串 = 关闭
	CompletionTimeout time.Duration `mapstructure:"completion_timeout"` // 单次执行超时
}

// Load 从配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	v := viper.New()

	// ── 默认值 ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.body_limit_bytes", 5<<20)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:3000"})

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "tutoros")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)
	v.SetDefault("db.conn_max_idle_time", 30)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.issuer", "tutoros")
	v.SetDefault("auth.access_token_ttl", "15m")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("calendar.grid_start_hour", 7)
	v.SetDefault("calendar.grid_end_hour", 22)
	v.SetDefault("calendar.hour_height", 60.0)
	v.SetDefault("calendar.snap_minutes", 15)
	v.SetDefault("calendar.min_event_height", 20.0)
	v.SetDefault("calendar.default_timezone", "")
	v.SetDefault("calendar.max_series_occurrences", 520)
	v.SetDefault("calendar.week_starts_on", 0)

	v.SetDefault("rate_limit.requests", 120)
	v.SetDefault("rate_limit.window", "1m")

	v.SetDefault("jobs.completion_cron", "*/10 * * * *")
	v.SetDefault("jobs.completion_timeout", "30s")

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("TUTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 不能为空")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 长度不能少于 16 字符")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	if err := c.Calendar.Validate(); err != nil {
		return err
	}
	return c.Jobs.Validate()
}

// Validate 校验定时任务配置
func (c *JobsConfig) Validate() error {
	if c.CompletionCron == "" {
		return nil
	}
	if _, err := cron.ParseStandard(c.CompletionCron); err != nil {
		return fmt.Errorf("配置校验失败: jobs.completion_cron 无法解析: %w", err)
	}
	return nil
}

// Validate 校验日历网格配置
func (c *CalendarConfig) Validate() error {
	if c.GridStartHour < 0 || c.GridEndHour > 24 || c.GridStartHour >= c.GridEndHour {
		return fmt.Errorf("配置校验失败: calendar 网格起止小时无效 (%d-%d)", c.GridStartHour, c.GridEndHour)
	}
	if c.HourHeight <= 0 {
		return fmt.Errorf("配置校验失败: calendar.hour_height 必须大于 0")
	}
	if c.SnapMinutes <= 0 || 60%c.SnapMinutes != 0 {
		return fmt.Errorf("配置校验失败: calendar.snap_minutes 必须能整除 60")
	}
	if c.MinEventHeight < 0 {
		return fmt.Errorf("配置校验失败: calendar.min_event_height 不能为负")
	}
	if c.MaxSeriesOccurrences <= 0 {
		return fmt.Errorf("配置校验失败: calendar.max_series_occurrences 必须大于 0")
	}
	if c.WeekStartsOn != 0 && c.WeekStartsOn != 1 {
		return fmt.Errorf("配置校验失败: calendar.week_starts_on 只能为 0 或 1")
	}
	if c.DefaultTimezone != "" {
		if _, err := time.LoadLocation(c.DefaultTimezone); err != nil {
			return fmt.Errorf("配置校验失败: calendar.default_timezone 无法解析: %w", err)
		}
	}
	return nil
}
