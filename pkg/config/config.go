package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

// Config 应用配置结构
type Config struct {
	// 环境配置
	Environment string `env:"ENVIRONMENT" yaml:"environment"`
	Port        string `env:"PORT" yaml:"port"`

	// 数据库配置
	DatabaseDriver string `env:"DB_DRIVER" yaml:"db_driver"` // "postgres" or "sqlite"
	PostgresDSN    string `env:"POSTGRES_DSN" yaml:"postgres_dsn"`
	SQLitePath     string `env:"SQLITE_PATH" yaml:"sqlite_path"`

	// JWT配置
	JWTSecret string `env:"JWT_SECRET" yaml:"jwt_secret"`

	// CORS配置
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," yaml:"allowed_origins"`

	// Base64 images travel inside JSON bodies, so the limit is generous.
	MaxBodyBytes int64 `env:"MAX_BODY_BYTES" yaml:"max_body_bytes"`

	// 日志配置
	LogLevel  string `env:"LOG_LEVEL" yaml:"log_level"`
	LogFormat string `env:"LOG_FORMAT" yaml:"log_format"` // "text", "json" or "logfmt"

	MetricsEnabled bool `env:"METRICS_ENABLED" yaml:"metrics_enabled"`

	// 调试配置
	Debug bool `env:"DEBUG" yaml:"debug"`
}

// DefaultConfig returns the configuration used when nothing overrides it.
func DefaultConfig() *Config {
	return &Config{
		Environment:    "development",
		Port:           "3000",
		DatabaseDriver: "sqlite",
		SQLitePath:     "data/buildsync.db",
		JWTSecret:      defaultJWTSecret,
		AllowedOrigins: []string{"*"},
		MaxBodyBytes:   25 << 20,
		LogLevel:       "info",
		LogFormat:      "text",
	}
}

// LoadConfig 加载配置
// Precedence, lowest first: defaults, CONFIG_FILE (YAML), .env file, process environment.
func LoadConfig() (*Config, error) {
	// 根据环境加载对应的 .env 文件
	switch os.Getenv("ENVIRONMENT") {
	case "production":
		loadEnvFile(".env.production")
	default:
		loadEnvFile(".env.local")
	}

	cfg := DefaultConfig()

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := cfg.parseFile(path); err != nil {
			return nil, err
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	// Trim whitespace to avoid trailing spaces/newlines from env sources
	cfg.PostgresDSN = strings.TrimSpace(cfg.PostgresDSN)
	cfg.DatabaseDriver = strings.ToLower(strings.TrimSpace(cfg.DatabaseDriver))
	for i, o := range cfg.AllowedOrigins {
		cfg.AllowedOrigins[i] = strings.TrimSpace(o)
	}

	// 生产环境关闭调试
	if cfg.IsProduction() {
		cfg.Debug = false
	}

	return cfg, nil
}

func (c *Config) parseFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// Cached config (initialized once per cold start)
var (
	cachedConfig *Config
	cachedErr    error
	configOnce   sync.Once
)

// GetCached returns the process-wide cached Config.
// On serverless platforms it initializes once per cold start and
// reuses it across warm invocations, avoiding per-request parsing.
func GetCached() (*Config, error) {
	configOnce.Do(func() {
		cachedConfig, cachedErr = LoadConfig()
	})
	return cachedConfig, cachedErr
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.JWTSecret == "" || c.JWTSecret == defaultJWTSecret {
		if c.IsProduction() {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
	}

	switch c.DatabaseDriver {
	case "postgres":
		if c.PostgresDSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required when DB_DRIVER=postgres")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required when DB_DRIVER=sqlite")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (want postgres or sqlite)", c.DatabaseDriver)
	}

	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("MAX_BODY_BYTES must be positive")
	}

	return nil
}

// IsProduction 检查是否为生产环境
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsDevelopment 检查是否为开发环境
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// DataSource returns the DSN handed to the configured driver.
func (c *Config) DataSource() string {
	if c.DatabaseDriver == "postgres" {
		return c.PostgresDSN
	}
	return c.SQLitePath
}

// loadEnvFile 加载 .env 文件到环境变量
func loadEnvFile(filename string) {
	file, err := os.Open(filename)
	if err != nil {
		return // 文件不存在或无法打开，静默返回
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// 跳过空行和注释行
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// 解析 KEY=VALUE 格式
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// 移除值两端的引号（如果有）
		if len(value) >= 2 {
			if (strings.HasPrefix(value, "\"") && strings.HasSuffix(value, "\"")) ||
				(strings.HasPrefix(value, "'") && strings.HasSuffix(value, "'")) {
				value = value[1 : len(value)-1]
			}
		}

		// 只有当环境变量不存在时才设置
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
