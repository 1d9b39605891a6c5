package swarm

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pbelskiy/helix-swarm/internal/json"
)

// recordedRequest is what fakeSwarm saw for one request.
type recordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Form   url.Values
	JSON   map[string]any
	User   string
}

type fakeResponse struct {
	status int
	body   string
}

// fakeSwarm is an httptest server answering canned responses per route and
// recording every request. Unknown routes answer 404 with an error body.
type fakeSwarm struct {
	server *httptest.Server

	mu       sync.Mutex
	routes   map[string][]fakeResponse
	requests []recordedRequest
}

func newFakeSwarm(t *testing.T) *fakeSwarm {
	t.Helper()
	f := &fakeSwarm{routes: make(map[string][]fakeResponse)}
	f.server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.server.Close)
	return f
}

// handle queues responses for method and path (relative to the API root,
// e.g. "reviews/12"). The last response repeats.
func (f *fakeSwarm) handle(method, path string, responses ...fakeResponse) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[method+" "+path] = responses
}

// ok registers a 200 response with body.
func (f *fakeSwarm) ok(method, path, body string) {
	f.handle(method, path, fakeResponse{status: http.StatusOK, body: body})
}

func (f *fakeSwarm) serve(w http.ResponseWriter, r *http.Request) {
	rec := recordedRequest{
		Method: r.Method,
		Query:  r.URL.Query(),
	}
	rec.User, _, _ = r.BasicAuth()

	// strip /api/v<version>/
	path := strings.TrimPrefix(r.URL.Path, "/api/")
	if i := strings.Index(path, "/"); i >= 0 {
		path = path[i+1:]
	}
	rec.Path = path

	switch {
	case strings.HasPrefix(r.Header.Get("Content-Type"), "application/json"):
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &rec.JSON)
	case strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded"):
		_ = r.ParseForm()
		rec.Form = r.PostForm
	}

	f.mu.Lock()
	f.requests = append(f.requests, rec)
	key := r.Method + " " + path
	queue := f.routes[key]
	resp := fakeResponse{status: http.StatusNotFound, body: `{"error": "Not Found"}`}
	if len(queue) > 0 {
		resp = queue[0]
		if len(queue) > 1 {
			f.routes[key] = queue[1:]
		}
	}
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.status)
	_, _ = w.Write([]byte(resp.body))
}

// url returns the connection URL for API version.
func (f *fakeSwarm) url(version string) string {
	return f.server.URL + "/api/v" + version
}

func (f *fakeSwarm) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeSwarm) last(t *testing.T) recordedRequest {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.requests, "no request recorded")
	return f.requests[len(f.requests)-1]
}

// client creates a Client against the fake for API version.
func (f *fakeSwarm) client(t *testing.T, version string, opts ...Option) *Client {
	t.Helper()
	c, err := New(f.url(version), "login", "password", opts...)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

// newBlockingServer returns the URL of a server whose handler waits until
// block is closed or the client goes away.
func newBlockingServer(t *testing.T, block <-chan struct{}) string {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(server.Close)
	return server.URL
}
