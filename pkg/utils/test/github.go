package testutils

import (
	"net/http"
	"net/http/httptest"
	"sync"
)

// FakeGitHub serves zipballs at {path}/zipball/{branch} and answers 404 for
// anything else. Repository URLs passed to ParseRepository are
// Server.URL + path, which contain no github.com and so are used verbatim.
type FakeGitHub struct {
	Server *httptest.Server

	mu       sync.Mutex
	archives map[string][]byte
	auth     []string
}

// NewFakeGitHub starts a fake archive host. Callers must Close it.
func NewFakeGitHub() *FakeGitHub {
	g := &FakeGitHub{archives: map[string][]byte{}}
	g.Server = httptest.NewServer(http.HandlerFunc(g.serve))
	return g
}

// AddArchive serves zipball for repoPath (e.g. "/acme/widgets") at branch.
func (g *FakeGitHub) AddArchive(repoPath, branch string, zipball []byte) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.archives[repoPath+"/zipball/"+branch] = zipball
}

// URL returns the repository URL for repoPath.
func (g *FakeGitHub) URL(repoPath string) string {
	return g.Server.URL + repoPath
}

// Authorizations returns the Authorization headers received, in order.
func (g *FakeGitHub) Authorizations() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, len(g.auth))
	copy(out, g.auth)
	return out
}

func (g *FakeGitHub) Close() {
	g.Server.Close()
}

func (g *FakeGitHub) serve(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	g.auth = append(g.auth, r.Header.Get("Authorization"))
	body, ok := g.archives[r.URL.Path]
	g.mu.Unlock()

	if !ok {
		http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	_, _ = w.Write(body)
}
