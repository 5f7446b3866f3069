// Package yamlfile stores token records in a YAML file, one entry per
// application ID. Suitable for CLI and desktop use where a single user owns
// the file.
package yamlfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-yaml"

	"github.com/BobDickinson/lib-facebook/pkg/facebook/tokenstore"
)

type Repository struct {
	path string

	mu sync.Mutex
}

var _ = tokenstore.Repository(&Repository{})

func NewRepository(path string) *Repository {
	return &Repository{path: path}
}

func (r *Repository) Load(_ context.Context, appID string) (tokenstore.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.read()
	if err != nil {
		return tokenstore.Record{}, err
	}

	rec, ok := records[appID]
	if !ok {
		return tokenstore.Record{}, tokenstore.ErrNotFound
	}

	return rec, nil
}

func (r *Repository) Store(_ context.Context, rec tokenstore.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.read()
	if err != nil {
		return err
	}
	records[rec.AppID] = rec

	return r.write(records)
}

func (r *Repository) Delete(_ context.Context, appID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.read()
	if err != nil {
		return err
	}
	if _, ok := records[appID]; !ok {
		return tokenstore.ErrNotFound
	}
	delete(records, appID)

	return r.write(records)
}

func (r *Repository) read() (map[string]tokenstore.Record, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]tokenstore.Record{}, nil
		}
		return nil, fmt.Errorf("reading token file: %w", err)
	}

	records := map[string]tokenstore.Record{}
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decoding token file: %w", err)
	}

	return records, nil
}

func (r *Repository) write(records map[string]tokenstore.Record) error {
	data, err := yaml.Marshal(records)
	if err != nil {
		return fmt.Errorf("encoding token file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(r.path), 0o700); err != nil {
		return fmt.Errorf("creating token directory: %w", err)
	}

	// Tokens are credentials; keep the file private to the owning user.
	if err := os.WriteFile(r.path, data, 0o600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}

	return nil
}
