package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	Env        string           `mapstructure:"env"`
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	Bcrypt     BcryptConfig     `mapstructure:"bcrypt"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Pagination PaginationConfig `mapstructure:"pagination"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Sentry     SentryConfig     `mapstructure:"sentry"`
	Tracing    TracingConfig    `mapstructure:"tracing"`
	Swagger    SwaggerConfig    `mapstructure:"swagger"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // debug, release, test
	CORSOrigins     []string      `mapstructure:"cors_origins"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxUploadBytes  int64         `mapstructure:"max_upload_bytes"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // postgres, mysql, sqlite
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	LogLevel        string        `mapstructure:"log_level"` // silent, error, warn, info
}

// RedisConfig 缓存配置，Enabled=false 时所有读取直接走数据库
type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	TTL    time.Duration `mapstructure:"ttl"`
	Issuer string        `mapstructure:"issuer"`
}

type BcryptConfig struct {
	Cost int `mapstructure:"cost"`
}

// RateLimitConfig 令牌桶限流配置（按客户端 IP）
type RateLimitConfig struct {
	Enabled bool         `mapstructure:"enabled"`
	API     BucketConfig `mapstructure:"api"`
	Auth    BucketConfig `mapstructure:"auth"`
	Create  BucketConfig `mapstructure:"create"`
}

type BucketConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

type PaginationConfig struct {
	DefaultLimit int `mapstructure:"default_limit"`
	MaxLimit     int `mapstructure:"max_limit"`
}

// StorageConfig 头像存储，local 写磁盘并由 /uploads 提供静态访问，minio 写对象存储
type StorageConfig struct {
	Driver    string      `mapstructure:"driver"` // local, minio
	UploadDir string      `mapstructure:"upload_dir"`
	URLPrefix string      `mapstructure:"url_prefix"`
	Minio     MinioConfig `mapstructure:"minio"`
}

type MinioConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	PublicURL string `mapstructure:"public_url"`
}

type SentryConfig struct {
	DSN              string  `mapstructure:"dsn"`
	TracesSampleRate float64 `mapstructure:"traces_sample_rate"`
}

type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	Endpoint    string  `mapstructure:"endpoint"`
	Insecure    bool    `mapstructure:"insecure"`
	ServiceName string  `mapstructure:"service_name"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

type SwaggerConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// IsProduction 生产模式下不向客户端暴露内部错误
func (c *Config) IsProduction() bool {
	return c.Server.Mode == "release" || c.Env == "prod" || c.Env == "production"
}

// Load 加载配置：.env 文件 -> config.yaml -> FORUM_ 前缀环境变量（优先级递增）
func Load() (*Config, error) {
	loadDotEnvs()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if p := os.Getenv("FORUM_CONFIG_PATH"); p != "" {
		v.AddConfigPath(p)
	}
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.SetEnvPrefix("FORUM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	switch c.Storage.Driver {
	case "local", "minio":
	default:
		return fmt.Errorf("unsupported storage driver %q", c.Storage.Driver)
	}
	if c.IsProduction() && c.JWT.Secret == defaultJWTSecret {
		return fmt.Errorf("jwt secret must be set in production")
	}
	if c.Pagination.DefaultLimit <= 0 || c.Pagination.MaxLimit < c.Pagination.DefaultLimit {
		return fmt.Errorf("invalid pagination limits %d/%d", c.Pagination.DefaultLimit, c.Pagination.MaxLimit)
	}
	return nil
}

const defaultJWTSecret = "dev-secret-change-in-production"

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.max_upload_bytes", 2<<20)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "forum.db")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)
	v.SetDefault("database.log_level", "warn")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 10*time.Minute)

	v.SetDefault("jwt.secret", defaultJWTSecret)
	v.SetDefault("jwt.ttl", 7*24*time.Hour)
	v.SetDefault("jwt.issuer", "forum")

	v.SetDefault("bcrypt.cost", 12)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.api.rps", 100.0/60.0)
	v.SetDefault("rate_limit.api.burst", 100)
	v.SetDefault("rate_limit.auth.rps", 5.0/(15*60))
	v.SetDefault("rate_limit.auth.burst", 5)
	v.SetDefault("rate_limit.create.rps", 10.0/60.0)
	v.SetDefault("rate_limit.create.burst", 10)

	v.SetDefault("pagination.default_limit", 20)
	v.SetDefault("pagination.max_limit", 100)

	v.SetDefault("storage.driver", "local")
	v.SetDefault("storage.upload_dir", "./uploads")
	v.SetDefault("storage.url_prefix", "/uploads")
	v.SetDefault("storage.minio.endpoint", "")
	v.SetDefault("storage.minio.access_key", "")
	v.SetDefault("storage.minio.secret_key", "")
	v.SetDefault("storage.minio.bucket", "avatars")
	v.SetDefault("storage.minio.use_ssl", false)
	v.SetDefault("storage.minio.public_url", "")

	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.traces_sample_rate", 0.0)

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.endpoint", "localhost:4318")
	v.SetDefault("tracing.insecure", true)
	v.SetDefault("tracing.service_name", "forum-api")
	v.SetDefault("tracing.sample_ratio", 1.0)

	v.SetDefault("swagger.enabled", true)
}

// loadDotEnvs 按优先级加载 .env 文件，已存在的环境变量不会被覆盖
func loadDotEnvs() {
	env := os.Getenv("FORUM_ENV")
	if env == "" {
		env = "dev"
	}
	_ = godotenv.Load(".env." + env + ".local")
	if env != "test" {
		_ = godotenv.Load(".env.local")
	}
	_ = godotenv.Load(".env." + env)
	_ = godotenv.Load(".env")
}
