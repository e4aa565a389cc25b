package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Mirror caches JSON-encoded values under a namespace. Invalidate drops every
// key of the namespace at once by rotating a generation token, so callers do
// not need to know which filter keys were written.
type Mirror struct {
	Store     Store
	Namespace string
	TTL       time.Duration
}

func (m *Mirror) enabled() bool {
	return m != nil && m.Store != nil
}

func (m *Mirror) genKey() string {
	return m.Namespace + ":gen"
}

func (m *Mirror) generation(ctx context.Context) (string, error) {
	b, found, err := m.Store.Get(ctx, m.genKey())
	if err != nil {
		return "", err
	}
	if found && len(b) > 0 {
		return string(b), nil
	}
	gen := uuid.NewString()
	if err := m.Store.Set(ctx, m.genKey(), []byte(gen), 0); err != nil {
		return "", err
	}
	return gen, nil
}

// Load decodes the cached value of key into out and reports whether it was
// present. gen is the generation the lookup ran under; pass it to Save so a
// value computed before an Invalidate is written into the retired generation
// and never served.
func (m *Mirror) Load(ctx context.Context, key string, out any) (gen string, found bool, err error) {
	if !m.enabled() {
		return "", false, nil
	}
	gen, err = m.generation(ctx)
	if err != nil {
		return "", false, err
	}
	b, found, err := m.Store.Get(ctx, m.entryKey(gen, key))
	if err != nil || !found {
		return gen, false, err
	}
	if err := json.Unmarshal(b, out); err != nil {
		return gen, false, nil
	}
	return gen, true, nil
}

// Save stores value under key in generation gen. An empty gen is a no-op.
func (m *Mirror) Save(ctx context.Context, gen, key string, value any) error {
	if !m.enabled() || gen == "" {
		return nil
	}
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return m.Store.Set(ctx, m.entryKey(gen, key), b, m.TTL)
}

func (m *Mirror) entryKey(gen, key string) string {
	return m.Namespace + ":" + gen + ":" + key
}

func (m *Mirror) Invalidate(ctx context.Context) error {
	if !m.enabled() {
		return nil
	}
	return m.Store.Set(ctx, m.genKey(), []byte(uuid.NewString()), 0)
}
