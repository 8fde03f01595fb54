// Package doclog persists every indexed document as a JSON record so the
// in-process index can be rebuilt on startup. The log is append-only: records
// are never updated or deleted, and Load replays them in insertion order.
package doclog

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/resumeforge/resumeforge/internal/domain"
)

const keyPrefix = domain.KeyPrefix + "doclog:"

// store is the consumer interface for the document log (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Record is one persisted document with its embedding.
type Record struct {
	ID       int            `json:"id"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Vector   []float32      `json:"vector"`
}

// Log writes and replays document records over a key-value store.
type Log struct {
	store store
}

// New creates a document log backed by the given store.
func New(s store) *Log {
	return &Log{store: s}
}

// Append persists a record under its id.
func (l *Log) Append(ctx context.Context, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record %d: %w", rec.ID, err)
	}
	if err := l.store.Set(ctx, l.key(rec.ID), data); err != nil {
		return fmt.Errorf("persist record %d: %w", rec.ID, err)
	}
	return nil
}

// Load returns all records ordered by id. Replaying them into an empty index
// reproduces the ids they were stored under.
func (l *Log) Load(ctx context.Context) ([]Record, error) {
	keys, err := l.store.Scan(ctx, keyPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan document log: %w", err)
	}

	records := make([]Record, 0, len(keys))
	for _, key := range keys {
		data, err := l.store.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("load record %s: %w", key, err)
		}
		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("decode record %s: %w", key, err)
		}
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, nil
}

func (l *Log) key(id int) string {
	return keyPrefix + strconv.Itoa(id)
}

// IsLogKey reports whether key belongs to the document log namespace.
func IsLogKey(key string) bool {
	return strings.HasPrefix(key, keyPrefix)
}
