package graph_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BobDickinson/lib-facebook/internal/graph"
)

func TestClient_Do(t *testing.T) {
	type recorded struct {
		method string
		path   string
		query  url.Values
		body   string
	}

	var last recorded
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		last = recorded{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.Query(),
			body:   string(body),
		}

		switch r.URL.Path {
		case "/v19.0/me":
			_, _ = w.Write([]byte(`{"id":"42","name":"Pat Example"}`))
		case "/v19.0/me/feed":
			_, _ = w.Write([]byte(`{"id":"42_128"}`))
		case "/v19.0/forbidden":
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":{"message":"denied","type":"OAuthException","code":10}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := graph.NewClient(graph.WithBaseURL(server.URL))

	t.Run("GET appends params and token to the query", func(t *testing.T) {
		params := url.Values{}
		params.Set("fields", "id,name")

		result, err := client.Do(t.Context(), http.MethodGet, "me", params, "tok-1")
		require.NoError(t, err)
		assert.True(t, result.OK())
		assert.Equal(t, `{"id":"42","name":"Pat Example"}`, result.Body)

		assert.Equal(t, http.MethodGet, last.method)
		assert.Equal(t, "/v19.0/me", last.path)
		assert.Equal(t, "id,name", last.query.Get("fields"))
		assert.Equal(t, "tok-1", last.query.Get("access_token"))
	})

	t.Run("POST form-encodes params in the body", func(t *testing.T) {
		params := url.Values{}
		params.Set("message", "hello world")

		result, err := client.Do(t.Context(), http.MethodPost, "me/feed", params, "tok-1")
		require.NoError(t, err)
		assert.True(t, result.OK())

		assert.Equal(t, http.MethodPost, last.method)
		assert.Empty(t, last.query.Get("message"))

		form, err := url.ParseQuery(last.body)
		require.NoError(t, err)
		assert.Equal(t, "hello world", form.Get("message"))
		assert.Equal(t, "tok-1", form.Get("access_token"))
	})

	t.Run("lowercase method is normalized", func(t *testing.T) {
		result, err := client.Do(t.Context(), "get", "me", nil, "tok-1")
		require.NoError(t, err)
		assert.True(t, result.OK())
		assert.Equal(t, http.MethodGet, last.method)
	})

	t.Run("protocol error is a Result, not an error", func(t *testing.T) {
		result, err := client.Do(t.Context(), http.MethodGet, "forbidden", nil, "tok-1")
		require.NoError(t, err)
		assert.False(t, result.OK())
		assert.Equal(t, http.StatusForbidden, result.StatusCode)
		assert.Contains(t, result.Body, "OAuthException")
	})

	t.Run("transport failure is an error", func(t *testing.T) {
		broken := graph.NewClient(graph.WithBaseURL("http://127.0.0.1:1"))
		_, err := broken.Do(t.Context(), http.MethodGet, "me", nil, "tok-1")
		assert.Error(t, err)
	})
}

func TestClient_GETCache(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		_, _ = w.Write([]byte(`{"id":"42"}`))
	}))
	defer server.Close()

	client := graph.NewClient(
		graph.WithBaseURL(server.URL),
		graph.WithCacheTTL(time.Minute),
	)

	for range 3 {
		result, err := client.Do(t.Context(), http.MethodGet, "me", nil, "tok-1")
		require.NoError(t, err)
		assert.Equal(t, `{"id":"42"}`, result.Body)
	}
	assert.Equal(t, 1, hits, "repeated GETs within the TTL must be served from cache")

	// a different token is a different cache entry
	_, err := client.Do(t.Context(), http.MethodGet, "me", nil, "tok-2")
	require.NoError(t, err)
	assert.Equal(t, 2, hits)

	// POSTs bypass the cache
	_, err = client.Do(t.Context(), http.MethodPost, "me", nil, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, 3, hits)
}

func TestAppAccessToken(t *testing.T) {
	assert.Equal(t, "123|secret", graph.AppAccessToken("123", "secret"))
}
