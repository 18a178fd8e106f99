package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string           `yaml:"environment" default:"development"`
	Server      ServerConfig     `yaml:"server"`
	Log         LogConfig        `yaml:"log"`
	Metrics     MetricsConfig    `yaml:"metrics"`
	Store       StoreConfig      `yaml:"store"`
	ClickHouse  ClickHouseConfig `yaml:"clickhouse"`
	Session     SessionConfig    `yaml:"session"`
	Redis       RedisConfig      `yaml:"redis"`
	Chart       ChartConfig      `yaml:"chart"`
	Projection  ProjectionConfig `yaml:"projection"`
	Kafka       KafkaConfig      `yaml:"kafka"`
}

type ServerConfig struct {
	Host            string        `yaml:"host" default:"0.0.0.0"`
	Port            int           `yaml:"port" default:"5000"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	// API requests per second and burst per client IP. Zero RPS disables limiting.
	RateLimitRPS   float64 `yaml:"rate_limit_rps" default:"10"`
	RateLimitBurst float64 `yaml:"rate_limit_burst" default:"20"`
}

// Addr returns host:port for the listener.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

type LogConfig struct {
	Level     string `yaml:"level" default:"info"`
	Format    string `yaml:"format" default:"json"`
	Output    string `yaml:"output" default:"stdout"`
	Collector struct {
		Enabled   bool          `yaml:"enabled"`
		Interval  time.Duration `yaml:"interval" default:"30s"`
		Threshold int           `yaml:"threshold" default:"100"`
		Levels    []string      `yaml:"levels" default:"[\"error\"]"`
	} `yaml:"collector"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" default:"true"`
	Path    string `yaml:"path" default:"/metrics"`
}

const (
	DriverSQLite     = "sqlite"
	DriverClickHouse = "clickhouse"
)

type StoreConfig struct {
	Driver      string `yaml:"driver" default:"sqlite"`
	SQLitePath  string `yaml:"sqlite_path" default:"data/stocks.db"`
	CSVPath     string `yaml:"csv_path" default:"data/indexData.csv"`
	Table       string `yaml:"table" default:"stock_data"`
	LoadOnStart bool   `yaml:"load_on_start" default:"true"`
	// ReloadCron uses the six-field (seconds first) cron syntax. Empty disables reloads.
	ReloadCron string `yaml:"reload_cron"`
}

type ClickHouseConfig struct {
	Host         string        `yaml:"host" default:"localhost"`
	Port         int           `yaml:"port" default:"9000"`
	Database     string        `yaml:"database" default:"default"`
	User         string        `yaml:"user" default:"default"`
	Password     string        `yaml:"password"`
	UseHTTP      bool          `yaml:"use_http"`
	DialTimeout  time.Duration `yaml:"dial_timeout" default:"5s"`
	ReadTimeout  time.Duration `yaml:"read_timeout" default:"30s"`
	MaxExecTime  time.Duration `yaml:"max_execution_time" default:"60s"`
	MaxOpenConns int           `yaml:"max_open_conns" default:"10"`
}

const (
	SessionMemory  = "memory"
	SessionRedis   = "redis"
	SessionLayered = "layered"
)

type SessionConfig struct {
	Backend    string        `yaml:"backend" default:"memory"`
	TTL        time.Duration `yaml:"ttl" default:"24h"`
	CookieName string        `yaml:"cookie_name" default:"indexscope_session"`
	Secure     bool          `yaml:"secure"`
	MaxEntries int           `yaml:"max_entries" default:"10000"`
}

type RedisConfig struct {
	Host     string `yaml:"host" default:"localhost"`
	Port     int    `yaml:"port" default:"6379"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size" default:"10"`
	Prefix   string `yaml:"prefix" default:"indexscope"`
}

type ChartConfig struct {
	Width  int `yaml:"width" default:"1024"`
	Height int `yaml:"height" default:"576"`
}

type ProjectionConfig struct {
	Degree int     `yaml:"degree" default:"3"`
	Alpha  float64 `yaml:"alpha" default:"1.0"`
	// MaxDays caps how far past the last observation a projection may reach. 0 disables the cap.
	MaxDays int `yaml:"max_days" default:"36500"`
}

type KafkaConfig struct {
	Enabled      bool     `yaml:"enabled"`
	Brokers      []string `yaml:"brokers" default:"[\"localhost:9092\"]"`
	Topic        string   `yaml:"topic" default:"indexscope.projections"`
	LogTopic     string   `yaml:"log_topic" default:"indexscope.logs"`
	RequiredAcks int      `yaml:"required_acks" default:"1"`
	Compression  string   `yaml:"compression" default:"snappy"`
	Producer     struct {
		MaxAttempts  int           `yaml:"max_attempts" default:"3"`
		BatchTimeout time.Duration `yaml:"batch_timeout" default:"50ms"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
		Async        bool          `yaml:"async"`
	} `yaml:"producer"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var c Config
	if err := defaults.Set(&c); err != nil {
		panic(fmt.Sprintf("config defaults: %v", err))
	}
	return &c
}

// Load reads a YAML file on top of the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	c := Default()

	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads the file and then applies environment overrides.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := c.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := getenv("STORE_DRIVER"); v != "" {
		c.Store.Driver = v
	}
	if v := getenv("SQLITE_PATH"); v != "" {
		c.Store.SQLitePath = v
	}
	if v := getenv("CSV_PATH"); v != "" {
		c.Store.CSVPath = v
	}
	if v := getenv("SESSION_BACKEND"); v != "" {
		c.Session.Backend = v
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		host, port, err := net.SplitHostPort(v)
		if err != nil {
			return fmt.Errorf("REDIS_ADDR: %w", err)
		}
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("REDIS_ADDR port: %w", err)
		}
		c.Redis.Host, c.Redis.Port = host, p
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
		c.Kafka.Enabled = true
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Server.RateLimitRPS < 0 || c.Server.RateLimitBurst < 0 {
		return fmt.Errorf("server rate limit must not be negative")
	}
	switch c.Store.Driver {
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("store.sqlite_path is required for the sqlite driver")
		}
	case DriverClickHouse:
		if c.ClickHouse.Host == "" {
			return fmt.Errorf("clickhouse.host is required for the clickhouse driver")
		}
	default:
		return fmt.Errorf("store.driver must be '%s' or '%s', got '%s'", DriverSQLite, DriverClickHouse, c.Store.Driver)
	}
	if c.Store.Table == "" {
		return fmt.Errorf("store.table is required")
	}
	switch c.Session.Backend {
	case SessionMemory, SessionRedis, SessionLayered:
	default:
		return fmt.Errorf("session.backend must be memory, redis or layered, got '%s'", c.Session.Backend)
	}
	if c.Session.CookieName == "" {
		return fmt.Errorf("session.cookie_name is required")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session.ttl must be positive")
	}
	if c.Projection.Degree < 1 {
		return fmt.Errorf("projection.degree must be at least 1, got %d", c.Projection.Degree)
	}
	if c.Projection.Alpha < 0 {
		return fmt.Errorf("projection.alpha must not be negative, got %v", c.Projection.Alpha)
	}
	if c.Projection.MaxDays < 0 {
		return fmt.Errorf("projection.max_days must not be negative, got %d", c.Projection.MaxDays)
	}
	if c.Chart.Width <= 0 || c.Chart.Height <= 0 {
		return fmt.Errorf("chart size must be positive, got %dx%d", c.Chart.Width, c.Chart.Height)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	return nil
}
