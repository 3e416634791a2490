package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"urldeck/internal/testsupport"
)

type iconServer struct {
	*httptest.Server
	mu       sync.Mutex
	requests map[string]int
}

func newIconServer(t *testing.T, png []byte) *iconServer {
	t.Helper()
	s := &iconServer{requests: make(map[string]int)}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests[r.URL.Path]++
		s.mu.Unlock()
		if r.URL.Path == "/favicon.png" {
			w.Write(png)
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *iconServer) count(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[path]
}

func TestEnrichWritesIconsAndUsesCache(t *testing.T) {
	png := testsupport.PNG(t, 16, 16)
	srv := newIconServer(t, png)
	env := setupCLITestEnv(t, testsupport.WithLookupService(srv.URL+"/s2/favicons"))
	writeListFile(t, env.cfg.Paths.ListFile, "Local\n"+srv.URL+"/home\n\nBroken\nhttp://\n")

	out, _, err := runCLI(t, []string{"enrich"}, env.configPath)
	if err != nil {
		t.Fatalf("enrich: %v", err)
	}
	requireContains(t, out, "Enriched 2 entries")
	requireContains(t, out, "favicon_png")
	requireContains(t, out, "placeholder")
	requireContains(t, out, "Wrote 2 icon files")

	local, err := os.ReadFile(filepath.Join(env.cfg.Paths.IconDir, "001-Local.png"))
	if err != nil {
		t.Fatalf("read local icon: %v", err)
	}
	if !bytes.Equal(local, png) {
		t.Fatal("local icon does not match served bytes")
	}
	if _, err := os.Stat(filepath.Join(env.cfg.Paths.IconDir, "002-Broken.png")); err != nil {
		t.Fatalf("expected placeholder icon file: %v", err)
	}
	if got := srv.count("/favicon.png"); got != 1 {
		t.Fatalf("favicon.png requests = %d, want 1", got)
	}

	out, _, err = runCLI(t, []string{"enrich"}, env.configPath)
	if err != nil {
		t.Fatalf("second enrich: %v", err)
	}
	requireContains(t, out, "Wrote 0 icon files")
	if got := srv.count("/favicon.png"); got != 1 {
		t.Fatalf("favicon.png requests after cached run = %d, want 1", got)
	}

	out, _, err = runCLI(t, []string{"cache", "stats"}, env.configPath)
	if err != nil {
		t.Fatalf("cache stats: %v", err)
	}
	requireContains(t, out, "Icons")
	requireContains(t, out, "Format png")

	out, _, err = runCLI(t, []string{"cache", "clear"}, env.configPath)
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	requireContains(t, out, "Removed 1 cached icons")

	out, _, err = runCLI(t, []string{"cache", "stats"}, env.configPath)
	if err != nil {
		t.Fatalf("cache stats after clear: %v", err)
	}
	requireContains(t, out, "Cache is empty")
}

func TestEnrichNoCacheFetchesEveryRun(t *testing.T) {
	png := testsupport.PNG(t, 16, 16)
	srv := newIconServer(t, png)
	env := setupCLITestEnv(t, testsupport.WithLookupService(srv.URL+"/s2/favicons"))
	writeListFile(t, env.cfg.Paths.ListFile, "Local\n"+srv.URL+"\n")
	iconsDir := filepath.Join(env.baseDir, "custom-icons")

	for i := 0; i < 2; i++ {
		if _, _, err := runCLI(t, []string{"enrich", "--no-cache", "--jobs", "1", "--icons-dir", iconsDir}, env.configPath); err != nil {
			t.Fatalf("enrich run %d: %v", i, err)
		}
	}
	if got := srv.count("/favicon.png"); got != 2 {
		t.Fatalf("favicon.png requests = %d, want 2", got)
	}
	if _, err := os.Stat(filepath.Join(iconsDir, "001-Local.png")); err != nil {
		t.Fatalf("expected icon in custom dir: %v", err)
	}
}

func TestEnrichEmptyList(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"enrich"}, env.configPath)
	if err != nil {
		t.Fatalf("enrich: %v", err)
	}
	requireContains(t, out, "Enriched 0 entries")
	requireContains(t, out, "Wrote 0 icon files")
}

func TestCacheCommandsRequireEnabledCache(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithCacheDisabled())

	_, _, err := runCLI(t, []string{"cache", "stats"}, env.configPath)
	if err == nil {
		t.Fatal("expected error with cache disabled")
	}
	requireContains(t, err.Error(), "disabled")
}
