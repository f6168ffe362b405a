package output

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/chrisdamba/menuboard/internal/models"
	"github.com/chrisdamba/menuboard/internal/storage"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"
)

var placedAt = time.Date(2026, 10, 15, 12, 30, 0, 0, time.UTC)

func orderEvent(t *testing.T, id string, total float64) []byte {
	t.Helper()
	msg, err := json.Marshal(map[string]interface{}{
		"timestamp":    placedAt.Unix(),
		"eventType":    models.EventOrderConfirmed,
		"orderId":      id,
		"customerName": "Guest",
		"items":        `[{"name":"Burger","quantity":2}]`,
		"itemCount":    2,
		"totalAmount":  total,
		"notes":        "",
	})
	require.NoError(t, err)
	return msg
}

func ratingEvent(t *testing.T) []byte {
	t.Helper()
	msg, err := json.Marshal(map[string]interface{}{
		"timestamp":   placedAt.Unix(),
		"eventType":   models.EventItemRated,
		"orderId":     "order-1",
		"itemName":    "Burger",
		"category":    "Main Courses",
		"score":       4,
		"rating":      4.0,
		"reviewCount": 1,
	})
	require.NoError(t, err)
	return msg
}

const hourPartition = "year=2026/month=10/day=15/hour=12"

func TestConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	out := NewConsoleOutput(&buf)
	require.NoError(t, out.WriteMessage("order_events", []byte(`{"a":1}`)))
	assert.Equal(t, "[order_events] {\"a\":1}\n", buf.String())
	assert.NoError(t, out.Close())
}

type failingDestination struct{ closed bool }

func (f *failingDestination) WriteMessage(string, []byte) error { return errors.New("down") }
func (f *failingDestination) Close() error {
	f.closed = true
	return nil
}

func TestMultiOutputReachesEveryDestination(t *testing.T) {
	var buf bytes.Buffer
	broken := &failingDestination{}
	multi := MultiOutput{broken, NewConsoleOutput(&buf)}

	err := multi.WriteMessage("rating_events", []byte("{}"))
	assert.EqualError(t, err, "down")
	assert.Contains(t, buf.String(), "[rating_events]")

	require.NoError(t, multi.Close())
	assert.True(t, broken.closed)
}

func TestJSONOutputPartitionsByHour(t *testing.T) {
	root := t.TempDir()
	out := NewJSONOutput(storage.NewFileStore(root), "events")

	require.NoError(t, out.WriteMessage(models.TopicOrders, orderEvent(t, "order-1", 19)))
	require.NoError(t, out.WriteMessage(models.TopicOrders, orderEvent(t, "order-2", 9.5)))
	require.NoError(t, out.Close())

	data, err := os.ReadFile(filepath.Join(root, "events", models.TopicOrders, hourPartition, dataFile(out.id, "json")))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var first map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "order-1", first["orderId"])

	assert.Error(t, out.WriteMessage(models.TopicOrders, []byte(`{"orderId":"x"}`)))
}

func TestRestartKeepsEarlierEventFiles(t *testing.T) {
	root := t.TempDir()
	store := storage.NewFileStore(root)

	first := NewJSONOutput(store, "events")
	require.NoError(t, first.WriteMessage(models.TopicOrders, orderEvent(t, "order-1", 19)))
	require.NoError(t, first.Close())

	second := NewJSONOutput(store, "events")
	require.NoError(t, second.WriteMessage(models.TopicOrders, orderEvent(t, "order-2", 5)))
	require.NoError(t, second.Close())
	assert.NotEqual(t, first.id, second.id)

	files, err := filepath.Glob(filepath.Join(root, "events", models.TopicOrders, hourPartition, "data-*.json"))
	require.NoError(t, err)
	require.Len(t, files, 2)

	var ids []string
	for _, f := range files {
		data, err := os.ReadFile(f)
		require.NoError(t, err)
		var event map[string]interface{}
		require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &event))
		ids = append(ids, event["orderId"].(string))
	}
	assert.ElementsMatch(t, []string{"order-1", "order-2"}, ids)
}

func TestCSVOutput(t *testing.T) {
	root := t.TempDir()
	out := NewCSVOutput(storage.NewFileStore(root), "")

	require.NoError(t, out.WriteMessage(models.TopicRatings, ratingEvent(t)))
	require.NoError(t, out.Close())

	data, err := os.ReadFile(filepath.Join(root, models.TopicRatings, hourPartition, dataFile(out.id, "csv")))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "category,eventType,itemName,orderId,rating,reviewCount,score,timestamp", lines[0])
	assert.Equal(t, "Main Courses,"+models.EventItemRated+",Burger,order-1,4,1,4,"+strconv.FormatInt(placedAt.Unix(), 10), lines[1])
}

func TestKafkaOutput(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		if !bytes.Contains(val, []byte("order-1")) {
			return errors.New("unexpected payload")
		}
		return nil
	})
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	out := NewKafkaOutputWithProducer(producer)
	require.NoError(t, out.WriteMessage(models.TopicOrders, orderEvent(t, "order-1", 19)))

	err := out.WriteMessage(models.TopicOrders, orderEvent(t, "order-2", 5))
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)

	require.NoError(t, out.Close())
	assert.Error(t, out.WriteMessage(models.TopicOrders, []byte("{}")))
}

func TestParquetOutput(t *testing.T) {
	root := t.TempDir()
	out := NewParquetOutput(storage.NewFileStore(root), "lake")

	require.NoError(t, out.WriteMessage(models.TopicOrders, orderEvent(t, "order-1", 19)))
	require.NoError(t, out.WriteMessage(models.TopicOrders, orderEvent(t, "order-2", 9.5)))
	require.NoError(t, out.WriteMessage(models.TopicRatings, ratingEvent(t)))
	assert.Error(t, out.WriteMessage("unknown_events", orderEvent(t, "x", 1)))
	require.NoError(t, out.Close())

	fr, err := local.NewLocalFileReader(filepath.Join(root, "lake", models.TopicOrders, hourPartition, dataFile(out.id, "parquet")))
	require.NoError(t, err)
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, new(OrderRow), 1)
	require.NoError(t, err)
	defer pr.ReadStop()

	require.EqualValues(t, 2, pr.GetNumRows())
	rows := make([]OrderRow, 2)
	require.NoError(t, pr.Read(&rows))
	assert.Equal(t, "order-1", rows[0].OrderID)
	assert.Equal(t, 9.5, rows[1].TotalAmount)
	assert.EqualValues(t, 2, rows[1].ItemCount)

	_, err = os.Stat(filepath.Join(root, "lake", models.TopicRatings, hourPartition, dataFile(out.id, "parquet")))
	assert.NoError(t, err)
}

type recordedExec struct {
	sql  string
	args []any
}

type fakeExecer struct {
	calls []recordedExec
}

func (f *fakeExecer) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.calls = append(f.calls, recordedExec{sql: sql, args: args})
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func TestPostgresOutput(t *testing.T) {
	db := &fakeExecer{}
	out := &PostgresOutput{db: db}

	require.NoError(t, out.WriteMessage(models.TopicRatings, ratingEvent(t)))
	require.Len(t, db.calls, 1)
	assert.Equal(t,
		"INSERT INTO fact_rating (category, event_time, event_type, item_name, order_id, rating, review_count, score) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)",
		db.calls[0].sql)
	assert.Equal(t, placedAt, db.calls[0].args[1])

	assert.Error(t, out.WriteMessage("unknown_events", ratingEvent(t)))
	assert.NoError(t, out.Close())
}

func TestSnakeCaseKey(t *testing.T) {
	assert.Equal(t, "review_count", snakeCaseKey("reviewCount"))
	assert.Equal(t, "order_id", snakeCaseKey("orderId"))
	assert.Equal(t, "notes", snakeCaseKey("notes"))
}
