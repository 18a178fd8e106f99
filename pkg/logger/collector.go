package logger

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"
)

// Publisher ships log digests somewhere (a Kafka topic in production).
type Publisher interface {
	PublishMessage(ctx context.Context, topic string, payload interface{}) error
}

type CollectionConfig struct {
	TimeInterval   time.Duration // flush interval
	CountThreshold int           // distinct entries that force an early flush
	Levels         []string      // levels to aggregate; empty means error only
	Topic          string
	Publisher      Publisher
}

// AggregatedLogEntry counts repeats of one (level, message, fields, caller) tuple.
type AggregatedLogEntry struct {
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields"`
	Caller    string                 `json:"caller"`
	Count     int                    `json:"count"`
	FirstSeen time.Time              `json:"first_seen"`
	LastSeen  time.Time              `json:"last_seen"`
}

// LogDigest is the payload published on every flush.
type LogDigest struct {
	Entries   []AggregatedLogEntry `json:"entries"`
	FlushedAt time.Time            `json:"flushed_at"`
}

type LogCollector struct {
	config  *CollectionConfig
	levels  map[string]bool
	entries map[string]*AggregatedLogEntry
	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewLogCollector(config *CollectionConfig) *LogCollector {
	if config.TimeInterval <= 0 {
		config.TimeInterval = 30 * time.Second
	}
	if config.CountThreshold <= 0 {
		config.CountThreshold = 100
	}
	levels := map[string]bool{}
	for _, lv := range config.Levels {
		levels[lv] = true
	}
	if len(levels) == 0 {
		levels["error"] = true
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &LogCollector{
		config:  config,
		levels:  levels,
		entries: make(map[string]*AggregatedLogEntry),
		ctx:     ctx,
		cancel:  cancel,
	}
	c.wg.Add(1)
	go c.periodicFlush()
	return c
}

// Accepts reports whether logs at level are aggregated.
func (c *LogCollector) Accepts(level string) bool { return c.levels[level] }

func (c *LogCollector) AddLog(level, message string, fields map[string]interface{}, caller string) {
	now := time.Now()
	key := digestKey(level, message, fields, caller)

	c.mu.Lock()
	if entry, ok := c.entries[key]; ok {
		entry.Count++
		entry.LastSeen = now
	} else {
		c.entries[key] = &AggregatedLogEntry{
			Level:     level,
			Message:   message,
			Fields:    fields,
			Caller:    caller,
			Count:     1,
			FirstSeen: now,
			LastSeen:  now,
		}
	}
	var digest *LogDigest
	if len(c.entries) >= c.config.CountThreshold {
		digest = c.drainLocked()
	}
	c.mu.Unlock()

	if digest != nil {
		go c.publish(digest)
	}
}

// Flush publishes pending entries synchronously.
func (c *LogCollector) Flush(ctx context.Context) error {
	c.mu.Lock()
	digest := c.drainLocked()
	c.mu.Unlock()
	if digest == nil || c.config.Publisher == nil {
		return nil
	}
	return c.config.Publisher.PublishMessage(ctx, c.config.Topic, digest)
}

func digestKey(level, message string, fields map[string]interface{}, caller string) string {
	data := struct {
		Level   string                 `json:"level"`
		Message string                 `json:"message"`
		Fields  map[string]interface{} `json:"fields"`
		Caller  string                 `json:"caller"`
	}{level, message, fields, caller}

	raw, _ := json.Marshal(data)
	return fmt.Sprintf("%x", sha256.Sum256(raw))
}

func (c *LogCollector) periodicFlush() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.TimeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.flushAsync()
		case <-c.ctx.Done():
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := c.Flush(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "final log digest flush failed: %v\n", err)
			}
			cancel()
			return
		}
	}
}

func (c *LogCollector) flushAsync() {
	c.mu.Lock()
	digest := c.drainLocked()
	c.mu.Unlock()
	if digest != nil {
		go c.publish(digest)
	}
}

// drainLocked must be called with c.mu held.
func (c *LogCollector) drainLocked() *LogDigest {
	if len(c.entries) == 0 {
		return nil
	}
	d := &LogDigest{Entries: make([]AggregatedLogEntry, 0, len(c.entries)), FlushedAt: time.Now().UTC()}
	for _, e := range c.entries {
		d.Entries = append(d.Entries, *e)
	}
	sort.Slice(d.Entries, func(i, j int) bool { return d.Entries[i].FirstSeen.Before(d.Entries[j].FirstSeen) })
	c.entries = make(map[string]*AggregatedLogEntry)
	return d
}

func (c *LogCollector) publish(d *LogDigest) {
	if c.config.Publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := c.config.Publisher.PublishMessage(ctx, c.config.Topic, d); err != nil {
		// logging through the logger here would feed the collector again
		fmt.Fprintf(os.Stderr, "failed to send log digest: %v\n", err)
	}
}

// Close stops the flush loop after a last synchronous flush.
func (c *LogCollector) Close() {
	c.cancel()
	c.wg.Wait()
}
