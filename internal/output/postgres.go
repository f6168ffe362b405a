package output

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/chrisdamba/menuboard/internal/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// PostgresOutput archives every event as one row of the table that matches its topic.
type PostgresOutput struct {
	db    execer
	close func()
}

const eventSchema = `
CREATE TABLE IF NOT EXISTS fact_order (
    event_time    TIMESTAMPTZ NOT NULL,
    event_type    TEXT NOT NULL,
    order_id      TEXT NOT NULL,
    customer_name TEXT,
    items         JSONB,
    item_count    INTEGER,
    total_amount  NUMERIC(12, 2),
    notes         TEXT
);
CREATE TABLE IF NOT EXISTS fact_rating (
    event_time   TIMESTAMPTZ NOT NULL,
    event_type   TEXT NOT NULL,
    order_id     TEXT NOT NULL,
    item_name    TEXT,
    category     TEXT,
    score        INTEGER,
    rating       DOUBLE PRECISION,
    review_count INTEGER
);`

func NewPostgresOutput(ctx context.Context, databaseURL string) (*PostgresOutput, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error pinging database: %w", err)
	}
	if _, err := pool.Exec(ctx, eventSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error creating event tables: %w", err)
	}
	return &PostgresOutput{db: pool, close: pool.Close}, nil
}

func (p *PostgresOutput) WriteMessage(topic string, msg []byte) error {
	event, ts, err := eventTime(msg)
	if err != nil {
		return err
	}
	table, err := topicToTable(topic)
	if err != nil {
		return err
	}

	delete(event, "timestamp")
	event["eventTime"] = ts

	cols, vals, placeholders := buildInsertComponents(event)
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, cols, placeholders)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := p.db.Exec(ctx, query, vals...); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	return nil
}

func (p *PostgresOutput) Close() error {
	if p.close != nil {
		p.close()
	}
	return nil
}

func topicToTable(topic string) (string, error) {
	switch topic {
	case models.TopicOrders:
		return "fact_order", nil
	case models.TopicRatings:
		return "fact_rating", nil
	default:
		return "", fmt.Errorf("no table for topic %s", topic)
	}
}

func buildInsertComponents(event map[string]interface{}) (string, []interface{}, string) {
	keys := make([]string, 0, len(event))
	for k := range event {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	columns := make([]string, 0, len(keys))
	values := make([]interface{}, 0, len(keys))
	placeholders := make([]string, 0, len(keys))
	for i, key := range keys {
		columns = append(columns, snakeCaseKey(key))
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+1))
		values = append(values, event[key])
	}

	return strings.Join(columns, ", "), values, strings.Join(placeholders, ", ")
}

func snakeCaseKey(key string) string {
	var result strings.Builder
	for i, r := range key {
		if i > 0 && unicode.IsUpper(r) {
			result.WriteRune('_')
		}
		result.WriteRune(unicode.ToLower(r))
	}
	return result.String()
}
