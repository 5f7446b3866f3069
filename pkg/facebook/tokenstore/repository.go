// Package tokenstore persists access tokens so a session can be resumed
// across process restarts.
package tokenstore

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("not found")

// Record is the persisted state of one logged-in application.
type Record struct {
	AppID       string    `yaml:"appID"`
	AccessToken string    `yaml:"accessToken"`
	Expiry      time.Time `yaml:"expiry,omitempty"`
	Permissions []string  `yaml:"permissions,omitempty"`
	UserID      string    `yaml:"userID,omitempty"`
}

type Repository interface {
	Load(ctx context.Context, appID string) (Record, error)
	Store(ctx context.Context, rec Record) error
	Delete(ctx context.Context, appID string) error
}
