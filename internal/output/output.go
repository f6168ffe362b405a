package output

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"sync"
	"time"

	"github.com/chrisdamba/menuboard/internal/models"
	"github.com/chrisdamba/menuboard/internal/storage"
	"github.com/lucsky/cuid"
)

// Destination receives serialized order and rating events.
type Destination interface {
	WriteMessage(topic string, msg []byte) error
	Close() error
}

// New builds the destination named by cfg.Output.Destination. It returns nil for "none".
func New(ctx context.Context, cfg *models.Config, store storage.Store) (Destination, error) {
	switch cfg.Output.Destination {
	case "", "none":
		return nil, nil
	case "console":
		return NewConsoleOutput(os.Stdout), nil
	case "json":
		return NewJSONOutput(store, cfg.Output.Folder), nil
	case "csv":
		return NewCSVOutput(store, cfg.Output.Folder), nil
	case "parquet":
		return NewParquetOutput(store, cfg.Output.Folder), nil
	case "kafka":
		return NewKafkaOutput(cfg.Output.KafkaBrokers)
	case "postgres":
		return NewPostgresOutput(ctx, cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unsupported output destination: %s", cfg.Output.Destination)
	}
}

type ConsoleOutput struct {
	mu  sync.Mutex
	out io.Writer
}

func NewConsoleOutput(out io.Writer) *ConsoleOutput {
	return &ConsoleOutput{out: out}
}

func (c *ConsoleOutput) WriteMessage(topic string, msg []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := fmt.Fprintf(c.out, "[%s] %s\n", topic, msg); err != nil {
		return fmt.Errorf("failed to write to console: %w", err)
	}
	return nil
}

func (c *ConsoleOutput) Close() error { return nil }

// MultiOutput fans every event out to all of its destinations.
type MultiOutput []Destination

func (m MultiOutput) WriteMessage(topic string, msg []byte) error {
	var firstErr error
	for _, d := range m {
		if err := d.WriteMessage(topic, msg); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m MultiOutput) Close() error {
	var firstErr error
	for _, d := range m {
		if err := d.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// eventTime reads the unix timestamp every event carries.
func eventTime(msg []byte) (map[string]interface{}, time.Time, error) {
	var event map[string]interface{}
	if err := json.Unmarshal(msg, &event); err != nil {
		return nil, time.Time{}, fmt.Errorf("invalid event: %w", err)
	}
	timestamp, ok := event["timestamp"].(float64)
	if !ok {
		return nil, time.Time{}, fmt.Errorf("invalid timestamp")
	}
	return event, time.Unix(int64(timestamp), 0).UTC(), nil
}

// partitionPath lays event files out by topic and hour, Hive style.
func partitionPath(folder, topic string, t time.Time) string {
	year, month, day := t.Date()
	return path.Join(folder, topic, fmt.Sprintf("year=%d/month=%02d/day=%02d/hour=%02d", year, month, day, t.Hour()))
}

// dataFile names the file one destination writes inside a partition. Each destination
// gets its own id, so a restart within the same hour starts new files next to the old ones.
func dataFile(id, ext string) string {
	return "data-" + id + "." + ext
}

func newFileID() string {
	return cuid.New()
}
