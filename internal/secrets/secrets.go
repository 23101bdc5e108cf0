package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Store looks up a named secret.  A missing secret is reported through the
// boolean, not as an error.
type Store interface {
	Lookup(ctx context.Context, name string) (string, bool, error)
}

// FileStore serves secrets from a flat YAML mapping of name to value, the
// same layout as a hosted app's secrets file.
type FileStore struct {
	values map[string]string
}

// LoadFile reads a YAML secrets file.  A missing file yields an empty store.
func LoadFile(path string) (*FileStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &FileStore{values: map[string]string{}}, nil
		}
		return nil, fmt.Errorf("read secrets file: %w", err)
	}
	values := map[string]string{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parse secrets file %s: %w", path, err)
	}
	return &FileStore{values: values}, nil
}

// NewMapStore wraps an in-memory map.
func NewMapStore(values map[string]string) *FileStore {
	return &FileStore{values: values}
}

func (s *FileStore) Lookup(_ context.Context, name string) (string, bool, error) {
	v, ok := s.values[name]
	if !ok || v == "" {
		return "", false, nil
	}
	return v, true, nil
}

// Chain asks each store in order and returns the first hit.  A store that
// errors is logged and skipped so one broken backend does not hide the rest.
type Chain struct {
	stores []Store
	log    *zap.Logger
}

// NewChain builds a Chain; nil stores are ignored.
func NewChain(log *zap.Logger, stores ...Store) *Chain {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Chain{log: log}
	for _, s := range stores {
		if s != nil {
			c.stores = append(c.stores, s)
		}
	}
	return c
}

func (c *Chain) Lookup(ctx context.Context, name string) (string, bool, error) {
	for _, s := range c.stores {
		v, ok, err := s.Lookup(ctx, name)
		if err != nil {
			c.log.Warn("secret lookup failed", zap.String("name", name), zap.Error(err))
			continue
		}
		if ok {
			return v, true, nil
		}
	}
	return "", false, nil
}
