package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestNewClient_CreatesFileAndDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "prices.db")
	c, err := NewClient(WithPath(path))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer c.Close()

	if err := c.Health(context.Background()); err != nil {
		t.Fatalf("health: %v", err)
	}
	var mode string
	if err := c.DB().QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("read journal mode: %v", err)
	}
	if mode != "wal" {
		t.Fatalf("expected wal journal mode, got %q", mode)
	}
}

func TestNewClient_Memory(t *testing.T) {
	c, err := NewClient(WithPath(":memory:"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer c.Close()
	if _, err := c.DB().Exec("CREATE TABLE t (v INTEGER)"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := c.DB().Exec("INSERT INTO t VALUES (1)"); err != nil {
		t.Fatalf("insert on the same database: %v", err)
	}
}

func TestNewClient_RequiresPath(t *testing.T) {
	if _, err := NewClient(); err == nil {
		t.Fatal("expected an error without a path")
	}
}

func TestBuildDSN(t *testing.T) {
	got := buildDSN(ClientConfig{Path: "a.db", BusyTimeout: 2 * time.Second})
	if got != "a.db?_pragma=busy_timeout(2000)" {
		t.Fatalf("unexpected dsn %q", got)
	}
	if got := buildDSN(ClientConfig{Path: "a.db"}); got != "a.db" {
		t.Fatalf("unexpected dsn %q", got)
	}
}
