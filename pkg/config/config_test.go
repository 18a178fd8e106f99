package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Server.Port != 5000 || c.Store.Driver != DriverSQLite || !c.Store.LoadOnStart {
		t.Fatalf("defaults not applied: %+v", c.Server)
	}
	if c.Session.TTL != 24*time.Hour || c.Projection.Degree != 3 || c.Projection.Alpha != 1.0 {
		t.Fatalf("unexpected defaults: session=%+v projection=%+v", c.Session, c.Projection)
	}
	if len(c.Kafka.Brokers) != 1 || c.Kafka.Brokers[0] != "localhost:9092" {
		t.Fatalf("unexpected kafka brokers %v", c.Kafka.Brokers)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeFile(t, `
server:
  port: 8081
store:
  driver: clickhouse
  load_on_start: false
  reload_cron: "0 0 3 * * *"
session:
  backend: redis
  ttl: 2h
`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Server.Port != 8081 || c.Store.Driver != DriverClickHouse || c.Store.LoadOnStart {
		t.Fatalf("file values not applied: server=%+v store=%+v", c.Server, c.Store)
	}
	if c.Session.Backend != SessionRedis || c.Session.TTL != 2*time.Hour {
		t.Fatalf("session values not applied: %+v", c.Session)
	}
	if c.Session.CookieName != "indexscope_session" {
		t.Fatalf("untouched default lost: %q", c.Session.CookieName)
	}
}

func TestLoad_InvalidDriver(t *testing.T) {
	if _, err := Load(writeFile(t, "store:\n  driver: mysql\n")); err == nil {
		t.Fatal("expected a validation error")
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"PORT":            "9090",
		"STORE_DRIVER":    "clickhouse",
		"CSV_PATH":        "/tmp/prices.csv",
		"SESSION_BACKEND": "layered",
		"REDIS_ADDR":      "cache:6380",
		"KAFKA_BROKERS":   "k1:9092,k2:9092",
		"LOG_LEVEL":       "debug",
	}
	c := Default()
	if err := c.applyEnv(func(k string) string { return env[k] }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Server.Port != 9090 || c.Store.Driver != DriverClickHouse || c.Store.CSVPath != "/tmp/prices.csv" {
		t.Fatalf("env not applied: %+v %+v", c.Server, c.Store)
	}
	if c.Redis.Host != "cache" || c.Redis.Port != 6380 {
		t.Fatalf("redis addr not applied: %+v", c.Redis)
	}
	if !c.Kafka.Enabled || len(c.Kafka.Brokers) != 2 || c.Log.Level != "debug" || c.Session.Backend != SessionLayered {
		t.Fatalf("unexpected config: kafka=%+v log=%+v", c.Kafka, c.Log)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("config should validate: %v", err)
	}
}

func TestApplyEnv_BadPort(t *testing.T) {
	c := Default()
	if err := c.applyEnv(func(k string) string {
		if k == "PORT" {
			return "eighty"
		}
		return ""
	}); err == nil {
		t.Fatal("expected an error for a non-numeric PORT")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port", func(c *Config) { c.Server.Port = 0 }},
		{"rate limit", func(c *Config) { c.Server.RateLimitBurst = -1 }},
		{"session backend", func(c *Config) { c.Session.Backend = "file" }},
		{"degree", func(c *Config) { c.Projection.Degree = 0 }},
		{"alpha", func(c *Config) { c.Projection.Alpha = -0.5 }},
		{"max days", func(c *Config) { c.Projection.MaxDays = -1 }},
		{"chart", func(c *Config) { c.Chart.Width = 0 }},
		{"kafka", func(c *Config) { c.Kafka.Enabled = true; c.Kafka.Brokers = nil }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := Default()
			tc.mutate(c)
			if err := c.Validate(); err == nil {
				t.Fatal("expected a validation error")
			}
		})
	}
}

func TestServerAddr(t *testing.T) {
	s := ServerConfig{Host: "127.0.0.1", Port: 5000}
	if s.Addr() != "127.0.0.1:5000" {
		t.Fatalf("unexpected addr %q", s.Addr())
	}
}
