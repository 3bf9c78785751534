package publish

import (
	"cmp"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/jinzhu/copier"
)

// Memory is an in-process BlobStore and Records implementation. Blobs may
// be mirrored into a directory so that exported files survive the process.
type Memory struct {
	mu      sync.Mutex
	dir     string
	blobs   map[string][]byte
	records map[string][]Record
	unique  map[string][]string
	subs    []*memorySub
	nextSub int
}

type memorySub struct {
	id int
	q  Query
	fn func([]Record)
}

// MemoryOption configures Memory.
type MemoryOption func(*Memory)

// WithBlobDir mirrors uploaded blobs under dir.
func WithBlobDir(dir string) MemoryOption {
	return func(m *Memory) { m.dir = dir }
}

// WithUnique enforces uniqueness of the given field tuple in collection.
func WithUnique(collection string, fields ...string) MemoryOption {
	return func(m *Memory) { m.unique[collection] = fields }
}

// NewMemory creates an empty store. Upvotes are unique per (user, meme).
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		blobs:   map[string][]byte{},
		records: map[string][]Record{},
		unique:  map[string][]string{},
	}
	opts = append([]MemoryOption{WithUnique(CollectionUpvotes, FieldUserID, FieldMemeID)}, opts...)
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// UploadBlob implements BlobStore.
func (m *Memory) UploadBlob(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path = strings.TrimPrefix(filepath.ToSlash(path), "/")
	if path == "" || strings.Contains(path, "..") {
		return "", fmt.Errorf("非法的存储路径 %q", path)
	}

	m.mu.Lock()
	m.blobs[path] = slices.Clone(data)
	m.mu.Unlock()

	if m.dir == "" {
		return "mem://" + path, nil
	}
	target := filepath.Join(m.dir, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("创建存储目录失败: %w", err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("写入文件 %s 失败: %w", target, err)
	}
	abs, err := filepath.Abs(target)
	if err != nil {
		return "", err
	}
	return "file://" + filepath.ToSlash(abs), nil
}

// Blob returns a stored blob.
func (m *Memory) Blob(path string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.blobs[path]
	return slices.Clone(data), ok
}

// CreateRecord implements Records.
func (m *Memory) CreateRecord(ctx context.Context, collection string, fields Fields) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	rec := Record{ID: newID(), Collection: collection}
	if err := copier.CopyWithOption(&rec.Fields, &fields, copier.Option{DeepCopy: true}); err != nil {
		return "", fmt.Errorf("复制记录字段失败: %w", err)
	}

	m.mu.Lock()
	if key := m.unique[collection]; len(key) > 0 {
		for _, existing := range m.records[collection] {
			if sameKey(existing.Fields, rec.Fields, key) {
				m.mu.Unlock()
				return "", fmt.Errorf("%w: %s", ErrDuplicate, collection)
			}
		}
	}
	m.records[collection] = append(m.records[collection], rec)
	notify := m.pending(collection)
	m.mu.Unlock()

	notify()
	return rec.ID, nil
}

// DeleteRecord implements Records.
func (m *Memory) DeleteRecord(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	recs := m.records[collection]
	i := slices.IndexFunc(recs, func(r Record) bool { return r.ID == id })
	if i < 0 {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	m.records[collection] = slices.Delete(slices.Clone(recs), i, i+1)
	notify := m.pending(collection)
	m.mu.Unlock()

	notify()
	return nil
}

// Query implements Records.
func (m *Memory) Query(ctx context.Context, q Query) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.query(q)
}

// Subscribe implements Records. Callbacks run synchronously on the
// goroutine that made the change, after the store lock is released.
func (m *Memory) Subscribe(q Query, fn func([]Record)) (cancel func()) {
	m.mu.Lock()
	m.nextSub++
	sub := &memorySub{id: m.nextSub, q: q, fn: fn}
	m.subs = append(m.subs, sub)
	initial, _ := m.query(q)
	m.mu.Unlock()

	fn(initial)
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.subs = slices.DeleteFunc(m.subs, func(s *memorySub) bool { return s.id == sub.id })
	}
}

// pending snapshots the results for subscribers of collection. Must be
// called with mu held; the returned func must be called without it.
func (m *Memory) pending(collection string) func() {
	type delivery struct {
		fn   func([]Record)
		recs []Record
	}
	var out []delivery
	for _, s := range m.subs {
		if s.q.Collection != collection {
			continue
		}
		recs, err := m.query(s.q)
		if err != nil {
			continue
		}
		out = append(out, delivery{fn: s.fn, recs: recs})
	}
	return func() {
		for _, d := range out {
			d.fn(d.recs)
		}
	}
}

func (m *Memory) query(q Query) ([]Record, error) {
	var out []Record
	for _, rec := range m.records[q.Collection] {
		if !matches(rec.Fields, q.Where) {
			continue
		}
		var cp Record
		if err := copier.CopyWithOption(&cp, &rec, copier.Option{DeepCopy: true}); err != nil {
			return nil, err
		}
		out = append(out, cp)
	}
	if q.OrderBy != "" {
		slices.SortStableFunc(out, func(a, b Record) int {
			c := compareValues(a.Fields[q.OrderBy], b.Fields[q.OrderBy])
			if q.Descending {
				return -c
			}
			return c
		})
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func matches(fields, where Fields) bool {
	for k, v := range where {
		if fmt.Sprint(fields[k]) != fmt.Sprint(v) {
			return false
		}
	}
	return true
}

func sameKey(a, b Fields, key []string) bool {
	for _, k := range key {
		if fmt.Sprint(a[k]) != fmt.Sprint(b[k]) {
			return false
		}
	}
	return true
}

func compareValues(a, b any) int {
	switch av := a.(type) {
	case int64:
		if bv, ok := b.(int64); ok {
			return cmp.Compare(av, bv)
		}
	case int:
		if bv, ok := b.(int); ok {
			return cmp.Compare(av, bv)
		}
	case float64:
		if bv, ok := b.(float64); ok {
			return cmp.Compare(av, bv)
		}
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Compare(bv)
		}
	}
	return cmp.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func newID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
