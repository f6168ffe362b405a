package output

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"sync"

	"github.com/chrisdamba/menuboard/internal/storage"
)

// JSONOutput appends events as JSON lines, one file per topic and hour for each output.
type JSONOutput struct {
	mu     sync.Mutex
	store  storage.Store
	folder string
	id     string
	files  map[string]storage.Writer
}

func NewJSONOutput(store storage.Store, folder string) *JSONOutput {
	return &JSONOutput{
		store:  store,
		folder: folder,
		id:     newFileID(),
		files:  make(map[string]storage.Writer),
	}
}

func (j *JSONOutput) WriteMessage(topic string, msg []byte) error {
	event, ts, err := eventTime(msg)
	if err != nil {
		return err
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	fileKey := path.Join(partitionPath(j.folder, topic, ts), dataFile(j.id, "json"))
	file, ok := j.files[fileKey]
	if !ok {
		file, err = j.store.NewWriter(context.Background(), fileKey)
		if err != nil {
			return err
		}
		j.files[fileKey] = file
	}

	jsonData, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if _, err := file.Write(append(jsonData, '\n')); err != nil {
		return fmt.Errorf("failed to write %s: %w", fileKey, err)
	}
	return nil
}

func (j *JSONOutput) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	var firstErr error
	for key, file := range j.files {
		if err := file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(j.files, key)
	}
	return firstErr
}

// CSVOutput writes one CSV file per topic and hour. The header is fixed by the first
// event written to each file; later events fill the same columns.
type CSVOutput struct {
	mu      sync.Mutex
	store   storage.Store
	folder  string
	id      string
	writers map[string]*csv.Writer
	files   map[string]storage.Writer
	headers map[string][]string
}

func NewCSVOutput(store storage.Store, folder string) *CSVOutput {
	return &CSVOutput{
		store:   store,
		folder:  folder,
		id:      newFileID(),
		writers: make(map[string]*csv.Writer),
		files:   make(map[string]storage.Writer),
		headers: make(map[string][]string),
	}
}

func (c *CSVOutput) WriteMessage(topic string, msg []byte) error {
	event, ts, err := eventTime(msg)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	fileKey := path.Join(partitionPath(c.folder, topic, ts), dataFile(c.id, "csv"))
	csvWriter, ok := c.writers[fileKey]
	if !ok {
		file, err := c.store.NewWriter(context.Background(), fileKey)
		if err != nil {
			return err
		}
		csvWriter = csv.NewWriter(file)
		c.writers[fileKey] = csvWriter
		c.files[fileKey] = file

		headers := sortedKeys(event)
		if err := csvWriter.Write(headers); err != nil {
			return err
		}
		c.headers[fileKey] = headers
	}

	row := make([]string, len(c.headers[fileKey]))
	for i, header := range c.headers[fileKey] {
		if value, ok := event[header]; ok {
			row[i] = csvValue(value)
		}
	}
	if err := csvWriter.Write(row); err != nil {
		return err
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

func (c *CSVOutput) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var firstErr error
	for key, csvWriter := range c.writers {
		csvWriter.Flush()
		if err := csvWriter.Error(); err != nil && firstErr == nil {
			firstErr = err
		}
		if err := c.files[key].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(c.writers, key)
		delete(c.files, key)
	}
	return firstErr
}

func sortedKeys(event map[string]interface{}) []string {
	keys := make([]string, 0, len(event))
	for key := range event {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// csvValue renders JSON numbers without exponents so unix timestamps stay readable.
func csvValue(v interface{}) string {
	switch t := v.(type) {
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}
