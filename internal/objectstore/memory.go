package objectstore

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"
)

// Memory is an in-process object store with the same semantics as Store.
// It backs local runs without a bucket and tests.
type Memory struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{objects: map[string][]byte{}}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	body, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("objectstore: Get %q: %w", key, ErrNotFound)
	}
	return append([]byte(nil), body...), nil
}

func (m *Memory) GetJSON(ctx context.Context, key string, v any) error {
	body, err := m.Get(ctx, key)
	if err != nil {
		return err
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return fmt.Errorf("objectstore: GetJSON %q: empty object: %w", key, ErrNotFound)
	}
	if err := ParseJSON(body, v); err != nil {
		return fmt.Errorf("objectstore: GetJSON %q: %w", key, err)
	}
	return nil
}

func (m *Memory) PutJSON(_ context.Context, key string, v any) error {
	body, err := FormatJSON(v)
	if err != nil {
		return fmt.Errorf("objectstore: PutJSON %q: %w", key, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = body
	return nil
}

func (m *Memory) PutMarker(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = []byte{}
	return nil
}

func (m *Memory) Exists(_ context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[key]
	return ok, nil
}

func (m *Memory) Copy(_ context.Context, src, dst string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	body, ok := m.objects[src]
	if !ok {
		return fmt.Errorf("objectstore: Copy %q: %w", src, ErrNotFound)
	}
	m.objects[dst] = append([]byte(nil), body...)
	return nil
}

// List returns the keys under prefix in lexical order, as S3 does.
func (m *Memory) List(_ context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var keys []string
	for k := range m.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// PresignPut returns a memory:// URL; nothing can be uploaded through it.
func (m *Memory) PresignPut(_ context.Context, key, contentType string, size int64, ttl time.Duration) (string, error) {
	q := url.Values{}
	q.Set("contentType", contentType)
	q.Set("size", fmt.Sprint(size))
	q.Set("expires", fmt.Sprint(int(ttl.Seconds())))
	return "memory:///" + key + "?" + q.Encode(), nil
}

// Keys returns every stored key in lexical order.
func (m *Memory) Keys() []string {
	keys, _ := m.List(context.Background(), "")
	return keys
}
