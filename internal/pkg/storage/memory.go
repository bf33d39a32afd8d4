package storage

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"sync"
	"time"
)

// Memory keeps objects in process memory. It backs the mock deployment and tests.
type Memory struct {
	bucket  string
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemory returns an empty Memory store.
func NewMemory(bucket string) *Memory {
	if bucket == "" {
		bucket = "local"
	}
	return &Memory{bucket: bucket, objects: make(map[string][]byte)}
}

// PutObject copies r into memory.
func (m *Memory) PutObject(ctx context.Context, key string, r io.Reader, opts PutOptions) (ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return ObjectInfo{}, err
	}

	var buf bytes.Buffer
	n, err := io.Copy(&buf, r)
	if err != nil {
		return ObjectInfo{}, err
	}

	m.mu.Lock()
	m.objects[key] = buf.Bytes()
	m.mu.Unlock()

	return ObjectInfo{Bucket: m.bucket, Key: key, Size: n, ContentType: opts.ContentType}, nil
}

// PresignGet returns a memory:// URL carrying the expiry.
func (m *Memory) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	u := url.URL{
		Scheme:   "memory",
		Host:     m.bucket,
		Path:     "/" + key,
		RawQuery: url.Values{"expires": []string{time.Now().Add(expiry).UTC().Format(time.RFC3339)}}.Encode(),
	}
	return u.String(), nil
}

// Object returns the stored bytes for key.
func (m *Memory) Object(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.objects[key]
	return b, ok
}

// Close drops every object.
func (m *Memory) Close() error {
	m.mu.Lock()
	m.objects = make(map[string][]byte)
	m.mu.Unlock()
	return nil
}
