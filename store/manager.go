package store

import (
	"context"
	"log/slog"

	"golang.org/x/sync/singleflight"
)

// GenerateFunc produces the payload for a missing artifact.
type GenerateFunc func(ctx context.Context) ([]byte, error)

// Manager adds generate-or-serve semantics on top of a Backend. Per
// key, at most one generation is in flight at a time: competing
// callers for the same key block on the in-flight generation and share
// its result, while unrelated keys proceed in parallel. A failed
// generation commits nothing, so the key simply stays absent.
//
// Manager is safe for concurrent use.
type Manager struct {
	backend Backend
	group   singleflight.Group
	logger  *slog.Logger
}

// NewManager wraps a backend. A nil logger discards diagnostics.
func NewManager(backend Backend, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Manager{backend: backend, logger: logger}
}

// Backend returns the wrapped backend, for committing sibling
// artifacts produced by the same generation.
func (m *Manager) Backend() Backend { return m.backend }

// result carries a generation outcome through the flight group.
type result struct {
	data []byte
	hit  bool
}

// GetOrGenerate returns the payload for key, generating and persisting
// it if absent. The hit flag reports whether the payload was served
// from the store. With force set, the entry is regenerated and
// atomically replaced even if present.
//
// The generation runs under the context of the first caller of the
// flight; later callers of the same key share its outcome.
func (m *Manager) GetOrGenerate(ctx context.Context, key string, force bool, generate GenerateFunc) ([]byte, bool, error) {
	v, err, _ := m.group.Do(key, func() (any, error) {
		if !force {
			data, ok, err := m.backend.Get(key)
			if err != nil {
				return nil, err
			}
			if ok {
				return result{data: data, hit: true}, nil
			}
		}

		data, err := generate(ctx)
		if err != nil {
			return nil, err
		}

		if force {
			err = m.backend.ForceSet(key, data)
		} else {
			err = m.backend.PutIfAbsent(key, data)
		}
		if err != nil {
			return nil, err
		}

		m.logger.Info("artifact generated", "key", key, "bytes", len(data), "forced", force)
		return result{data: data}, nil
	})
	if err != nil {
		return nil, false, err
	}

	r := v.(result)
	return r.data, r.hit, nil
}
