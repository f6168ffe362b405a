package output

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sync"

	"github.com/chrisdamba/menuboard/internal/models"
	"github.com/chrisdamba/menuboard/internal/storage"
	"github.com/rs/zerolog/log"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"
)

// OrderRow is the Parquet layout of an order event.
type OrderRow struct {
	Timestamp    int64   `json:"timestamp" parquet:"name=timestamp, type=INT64"`
	EventType    string  `json:"eventType" parquet:"name=event_type, type=BYTE_ARRAY, convertedtype=UTF8"`
	OrderID      string  `json:"orderId" parquet:"name=order_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	CustomerName string  `json:"customerName" parquet:"name=customer_name, type=BYTE_ARRAY, convertedtype=UTF8"`
	Items        string  `json:"items" parquet:"name=items, type=BYTE_ARRAY, convertedtype=UTF8"`
	ItemCount    int32   `json:"itemCount" parquet:"name=item_count, type=INT32"`
	TotalAmount  float64 `json:"totalAmount" parquet:"name=total_amount, type=DOUBLE"`
	Notes        string  `json:"notes" parquet:"name=notes, type=BYTE_ARRAY, convertedtype=UTF8"`
}

// RatingRow is the Parquet layout of a rating event.
type RatingRow struct {
	Timestamp   int64   `json:"timestamp" parquet:"name=timestamp, type=INT64"`
	EventType   string  `json:"eventType" parquet:"name=event_type, type=BYTE_ARRAY, convertedtype=UTF8"`
	OrderID     string  `json:"orderId" parquet:"name=order_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	ItemName    string  `json:"itemName" parquet:"name=item_name, type=BYTE_ARRAY, convertedtype=UTF8"`
	Category    string  `json:"category" parquet:"name=category, type=BYTE_ARRAY, convertedtype=UTF8"`
	Score       int32   `json:"score" parquet:"name=score, type=INT32"`
	Rating      float64 `json:"rating" parquet:"name=rating, type=DOUBLE"`
	ReviewCount int32   `json:"reviewCount" parquet:"name=review_count, type=INT32"`
}

// rowFor decodes msg into the row type registered for topic and returns it together
// with the schema object the Parquet writer needs.
func rowFor(topic string, msg []byte) (interface{}, interface{}, error) {
	switch topic {
	case models.TopicOrders:
		var row OrderRow
		if err := json.Unmarshal(msg, &row); err != nil {
			return nil, nil, fmt.Errorf("invalid event: %w", err)
		}
		return row, new(OrderRow), nil
	case models.TopicRatings:
		var row RatingRow
		if err := json.Unmarshal(msg, &row); err != nil {
			return nil, nil, fmt.Errorf("invalid event: %w", err)
		}
		return row, new(RatingRow), nil
	default:
		return nil, nil, fmt.Errorf("no parquet schema for topic %s", topic)
	}
}

type parquetTarget struct {
	mu     sync.Mutex
	writer *writer.ParquetWriter
	file   source.ParquetFile
}

// ParquetOutput keeps one Parquet writer per topic and hour. Files are finalised on Close.
type ParquetOutput struct {
	mu      sync.Mutex
	store   storage.Store
	folder  string
	id      string
	targets map[string]*parquetTarget
}

func NewParquetOutput(store storage.Store, folder string) *ParquetOutput {
	return &ParquetOutput{
		store:   store,
		folder:  folder,
		id:      newFileID(),
		targets: make(map[string]*parquetTarget),
	}
}

func (p *ParquetOutput) WriteMessage(topic string, msg []byte) error {
	_, ts, err := eventTime(msg)
	if err != nil {
		return err
	}
	row, schema, err := rowFor(topic, msg)
	if err != nil {
		return err
	}

	key := path.Join(partitionPath(p.folder, topic, ts), dataFile(p.id, "parquet"))
	p.mu.Lock()
	target, ok := p.targets[key]
	if !ok {
		target, err = p.newTarget(key, schema)
		if err != nil {
			p.mu.Unlock()
			return fmt.Errorf("failed to create new writer: %w", err)
		}
		p.targets[key] = target
	}
	p.mu.Unlock()

	target.mu.Lock()
	defer target.mu.Unlock()
	if err := target.writer.Write(row); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	return nil
}

func (p *ParquetOutput) newTarget(key string, schema interface{}) (*parquetTarget, error) {
	fw, err := NewParquetFile(context.Background(), p.store, key)
	if err != nil {
		return nil, err
	}
	pw, err := writer.NewParquetWriter(fw, schema, 4)
	if err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to create ParquetWriter: %w", err)
	}
	return &parquetTarget{writer: pw, file: fw}, nil
}

func (p *ParquetOutput) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for key, target := range p.targets {
		target.mu.Lock()
		if err := target.writer.WriteStop(); err != nil {
			log.Error().Err(err).Str("file", key).Msg("Error closing parquet writer")
			if firstErr == nil {
				firstErr = err
			}
		}
		if err := target.file.Close(); err != nil {
			log.Error().Err(err).Str("file", key).Msg("Error closing parquet file")
			if firstErr == nil {
				firstErr = err
			}
		}
		target.mu.Unlock()
		delete(p.targets, key)
	}
	return firstErr
}

// NewParquetFile opens name for writing. Local stores get a seekable file; bucket
// stores get a write-only object that is uploaded when closed.
func NewParquetFile(ctx context.Context, store storage.Store, name string) (source.ParquetFile, error) {
	if fs, ok := store.(*storage.FileStore); ok {
		location := fs.Location(name)
		if err := os.MkdirAll(filepath.Dir(location), os.ModePerm); err != nil {
			return nil, err
		}
		fw, err := local.NewLocalFileWriter(location)
		if err != nil {
			return nil, fmt.Errorf("failed to create local file writer: %w", err)
		}
		return fw, nil
	}
	w, err := store.NewWriter(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloud file writer: %w", err)
	}
	return &objectFile{w: w}, nil
}

// objectFile adapts a storage.Writer to the file interface the Parquet writer expects.
type objectFile struct {
	w      storage.Writer
	offset int64
}

func (o *objectFile) Open(string) (source.ParquetFile, error)   { return o, nil }
func (o *objectFile) Create(string) (source.ParquetFile, error) { return o, nil }

func (o *objectFile) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		o.offset = offset
	case io.SeekCurrent:
		o.offset += offset
	default:
		return 0, fmt.Errorf("seek from end not supported for object storage")
	}
	return o.offset, nil
}

func (o *objectFile) Read([]byte) (int, error) {
	return 0, fmt.Errorf("read not supported for object storage")
}

func (o *objectFile) Write(p []byte) (int, error) {
	n, err := o.w.Write(p)
	o.offset += int64(n)
	return n, err
}

func (o *objectFile) Close() error {
	return o.w.Close()
}
