package yamlfile_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BobDickinson/lib-facebook/pkg/facebook/tokenstore"
	"github.com/BobDickinson/lib-facebook/pkg/facebook/tokenstore/yamlfile"
)

func TestRepository_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fbgraph", "tokens.yaml")
	repo := yamlfile.NewRepository(path)

	_, err := repo.Load(t.Context(), "123")
	assert.ErrorIs(t, err, tokenstore.ErrNotFound)

	rec := tokenstore.Record{
		AppID:       "123",
		AccessToken: "tok-1",
		Expiry:      time.Now().Add(time.Hour).UTC().Truncate(time.Second),
		Permissions: []string{"public_profile", "email"},
		UserID:      "42",
	}
	require.NoError(t, repo.Store(t.Context(), rec))

	// records survive a fresh repository on the same path
	reopened := yamlfile.NewRepository(path)
	got, err := reopened.Load(t.Context(), "123")
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm(), "token file must stay private")
	}

	require.NoError(t, repo.Delete(t.Context(), "123"))
	_, err = repo.Load(t.Context(), "123")
	assert.ErrorIs(t, err, tokenstore.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(t.Context(), "123"), tokenstore.ErrNotFound)
}

func TestRepository_MultipleApps(t *testing.T) {
	repo := yamlfile.NewRepository(filepath.Join(t.TempDir(), "tokens.yaml"))

	require.NoError(t, repo.Store(t.Context(), tokenstore.Record{AppID: "123", AccessToken: "tok-1"}))
	require.NoError(t, repo.Store(t.Context(), tokenstore.Record{AppID: "456", AccessToken: "tok-2"}))
	require.NoError(t, repo.Delete(t.Context(), "123"))

	got, err := repo.Load(t.Context(), "456")
	require.NoError(t, err)
	assert.Equal(t, "tok-2", got.AccessToken)
}

func TestRepository_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{{not yaml"), 0o600))

	repo := yamlfile.NewRepository(path)
	_, err := repo.Load(t.Context(), "123")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, tokenstore.ErrNotFound)
}
