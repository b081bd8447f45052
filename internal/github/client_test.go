package github

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ShayCichocki/devteam/internal/orchestrator"
	"github.com/ShayCichocki/devteam/internal/persona"
)

var (
	_ orchestrator.Collaborator = (*Client)(nil)
	_ persona.RepoStateSource   = (*Client)(nil)
)

// recorded is one request seen by the fake API.
type recorded struct {
	Method string
	Path   string
	Body   map[string]any
}

// fakeAPI is a scripted GitHub REST API.
type fakeAPI struct {
	t        *testing.T
	mu       sync.Mutex
	requests []recorded
	routes   map[string]http.HandlerFunc
}

func newFakeAPI(t *testing.T) (*fakeAPI, *Client) {
	t.Helper()
	f := &fakeAPI{t: t, routes: make(map[string]http.HandlerFunc)}
	srv := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(srv.Close)

	c, err := New(Config{Owner: "acme", Repo: "shop", Token: "tok", BaseURL: srv.URL})
	require.NoError(t, err)
	return f, c
}

// on registers a handler for "METHOD /path" (path relative to /repos/acme/shop).
func (f *fakeAPI) on(route string, status int, body any) {
	f.routes[route] = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if body != nil {
			_ = json.NewEncoder(w).Encode(body)
		}
	}
}

func (f *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	rec := recorded{Method: r.Method, Path: strings.TrimPrefix(r.URL.Path, "/repos/acme/shop")}
	if data, _ := io.ReadAll(r.Body); len(data) > 0 {
		_ = json.Unmarshal(data, &rec.Body)
	}
	f.mu.Lock()
	f.requests = append(f.requests, rec)
	h, ok := f.routes[rec.Method+" "+rec.Path]
	f.mu.Unlock()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Not Found"}`))
		return
	}
	h(w, r)
}

func (f *fakeAPI) find(method, path string) (recorded, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.requests {
		if r.Method == method && r.Path == path {
			return r, true
		}
	}
	return recorded{}, false
}

func (f *fakeAPI) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func TestNew_Defaults(t *testing.T) {
	c, err := New(Config{Owner: "acme", Repo: "shop"})
	require.NoError(t, err)
	cfg := c.Config()
	require.Equal(t, "main", cfg.DefaultBranch)
	require.Equal(t, "develop", cfg.IntegrationBranch)
	require.Equal(t, "squash", cfg.MergeMethod)
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{Owner: "acme"})
	require.Error(t, err)

	_, err = New(Config{Owner: "acme", Repo: "shop", MergeMethod: "octopus"})
	require.Error(t, err)
}
