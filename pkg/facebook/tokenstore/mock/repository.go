package tokenmock

import (
	"context"

	"github.com/BobDickinson/lib-facebook/pkg/facebook/tokenstore"
)

type RepositoryOption func(*Repository)

// Repository is a map-backed token store for tests.
type Repository struct {
	records map[string]tokenstore.Record

	loadErr, storeErr, deleteErr error
}

func WithRecord(rec tokenstore.Record) RepositoryOption {
	return func(r *Repository) { r.records[rec.AppID] = rec }
}
func WithLoadError(err error) RepositoryOption {
	return func(r *Repository) { r.loadErr = err }
}
func WithStoreError(err error) RepositoryOption {
	return func(r *Repository) { r.storeErr = err }
}
func WithDeleteError(err error) RepositoryOption {
	return func(r *Repository) { r.deleteErr = err }
}

var _ = tokenstore.Repository(&Repository{})

func NewInMemRepository(opts ...RepositoryOption) *Repository {
	r := &Repository{
		records: make(map[string]tokenstore.Record),
	}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

func (r *Repository) Load(_ context.Context, appID string) (tokenstore.Record, error) {
	if r.loadErr != nil {
		return tokenstore.Record{}, r.loadErr
	}

	rec, ok := r.records[appID]
	if !ok {
		return tokenstore.Record{}, tokenstore.ErrNotFound
	}

	return rec, nil
}

func (r *Repository) Store(_ context.Context, rec tokenstore.Record) error {
	if r.storeErr != nil {
		return r.storeErr
	}
	r.records[rec.AppID] = rec

	return nil
}

func (r *Repository) Delete(_ context.Context, appID string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.records[appID]; !ok {
		return tokenstore.ErrNotFound
	}
	delete(r.records, appID)

	return nil
}

// Record returns the stored record for appID, if any.
func (r *Repository) Record(appID string) (tokenstore.Record, bool) {
	rec, ok := r.records[appID]
	return rec, ok
}
