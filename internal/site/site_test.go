package site

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/starford/worklog/internal/content"
	"github.com/starford/worklog/internal/models"
	"github.com/starford/worklog/internal/pages"
	"github.com/starford/worklog/internal/render"
	"github.com/starford/worklog/internal/testutil"
)

func testRouter(t *testing.T, files map[string]string, opts Options) http.Handler {
	t.Helper()
	_, store := testutil.MemContent(t, files)
	r, err := render.New(render.Site{Title: "worklog", Owner: "me"}, render.ServerLinks{})
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}
	return NewRouter(pages.NewService(content.NewIndex(store), r), opts)
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

var fixture = map[string]string{
	"til/go/slices.md": testutil.Doc("Slices", "2024-06-01", "go"),
	"til/shell.md":     testutil.Doc("Shell tricks", "2024-01-01", "bash"),
	"recipes/soup.mdx": testutil.Doc("Soup", ""),
}

func TestPages(t *testing.T) {
	h := testRouter(t, fixture, Options{})

	tests := []struct {
		target string
		status int
		want   string
	}{
		{"/", http.StatusOK, "Open recipes"},
		{"/til", http.StatusOK, "Shell tricks"},
		{"/til/", http.StatusOK, "Shell tricks"},
		{"/til?tag=GO", http.StatusOK, "Slices"},
		{"/til/go/slices", http.StatusOK, "Body of Slices."},
		{"/recipes/soup", http.StatusOK, "Body of Soup."},
		{"/til/go/missing", http.StatusNotFound, ""},
		{"/drafts", http.StatusNotFound, ""},
		{"/drafts/x", http.StatusNotFound, ""},
		{"/til/..%2Frecipes%2Fsoup", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		w := get(t, h, tt.target)
		if w.Code != tt.status {
			t.Errorf("GET %s status = %d, want %d", tt.target, w.Code, tt.status)
			continue
		}
		if tt.want != "" && !strings.Contains(w.Body.String(), tt.want) {
			t.Errorf("GET %s body missing %q", tt.target, tt.want)
		}
	}
}

func TestPostPathDecodedOnce(t *testing.T) {
	h := testRouter(t, map[string]string{
		"til/a%25b.md": testutil.Doc("Percent", ""),
		"til/c d.md":   testutil.Doc("Spaced", ""),
	}, Options{})

	tests := []struct {
		target string
		status int
	}{
		{"/til/a%2525b", http.StatusOK},
		{"/til/a%25b", http.StatusNotFound},
		{"/til/c%20d", http.StatusOK},
	}
	for _, tt := range tests {
		if w := get(t, h, tt.target); w.Code != tt.status {
			t.Errorf("GET %s status = %d, want %d", tt.target, w.Code, tt.status)
		}
	}
}

func TestSectionFilter(t *testing.T) {
	h := testRouter(t, fixture, Options{})
	w := get(t, h, "/til?tag=bash")
	if strings.Contains(w.Body.String(), `class="post-title">Slices<`) {
		t.Error("filtered listing should not include untagged post")
	}
}

func TestLoadErrorIs500(t *testing.T) {
	h := testRouter(t, map[string]string{
		"notes/ok.md":  testutil.Doc("OK", ""),
		"notes/bad.md": "no frontmatter",
	}, Options{})

	for _, target := range []string{"/notes", "/notes/bad", "/api/sections/notes/posts"} {
		w := get(t, h, target)
		if w.Code != http.StatusInternalServerError {
			t.Errorf("GET %s status = %d, want 500", target, w.Code)
		}
		if strings.Contains(w.Body.String(), "OK") {
			t.Errorf("GET %s rendered a partial page", target)
		}
	}
}

func TestETag(t *testing.T) {
	h := testRouter(t, fixture, Options{})
	first := get(t, h, "/til")
	etag := first.Header().Get("ETag")
	if etag == "" {
		t.Fatal("missing ETag")
	}

	req := httptest.NewRequest(http.MethodGet, "/til", nil)
	req.Header.Set("If-None-Match", etag)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusNotModified {
		t.Errorf("status = %d, want 304", w.Code)
	}
}

func TestAPI(t *testing.T) {
	h := testRouter(t, fixture, Options{})

	w := get(t, h, "/api/sections")
	var sections struct {
		Sections []models.Section `json:"sections"`
	}
	if err := json.NewDecoder(w.Body).Decode(&sections); err != nil {
		t.Fatal(err)
	}
	if len(sections.Sections) != 4 || sections.Sections[0] != models.SectionTIL {
		t.Errorf("sections = %v", sections.Sections)
	}

	w = get(t, h, "/api/sections/til/posts")
	var posts struct {
		Posts []models.Post `json:"posts"`
	}
	if err := json.NewDecoder(w.Body).Decode(&posts); err != nil {
		t.Fatal(err)
	}
	if len(posts.Posts) != 2 || posts.Posts[0].Slug != "go/slices" {
		t.Errorf("posts = %+v", posts.Posts)
	}

	w = get(t, h, "/api/sections/til/posts?tag=Bash")
	posts.Posts = nil
	if err := json.NewDecoder(w.Body).Decode(&posts); err != nil {
		t.Fatal(err)
	}
	if len(posts.Posts) != 1 || posts.Posts[0].Slug != "shell" {
		t.Errorf("tagged posts = %+v", posts.Posts)
	}

	w = get(t, h, "/api/sections/til/tags")
	if !strings.Contains(w.Body.String(), `{"tag":"bash","count":1}`) {
		t.Errorf("tags body = %s", w.Body.String())
	}

	w = get(t, h, "/api/sections/workouts/posts")
	if strings.TrimSpace(w.Body.String()) != `{"posts":[]}` {
		t.Errorf("empty section body = %s", w.Body.String())
	}

	w = get(t, h, "/api/sections/til/posts/go/slices")
	var doc models.Document
	if err := json.NewDecoder(w.Body).Decode(&doc); err != nil {
		t.Fatal(err)
	}
	if doc.Meta.Title != "Slices" || doc.Body != "Body of Slices.\n" {
		t.Errorf("doc = %+v", doc)
	}
}

func TestAPI_NotFound(t *testing.T) {
	h := testRouter(t, fixture, Options{})
	for _, target := range []string{
		"/api/sections/drafts/posts",
		"/api/sections/drafts/tags",
		"/api/sections/til/posts/nope",
	} {
		if w := get(t, h, target); w.Code != http.StatusNotFound {
			t.Errorf("GET %s status = %d, want 404", target, w.Code)
		}
	}
}

func TestHealthAndOptionalHandlers(t *testing.T) {
	h := testRouter(t, nil, Options{})
	if w := get(t, h, "/health/ready"); w.Code != http.StatusOK {
		t.Errorf("ready status = %d", w.Code)
	}

	marker := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("marker"))
	})
	h = testRouter(t, nil, Options{Events: marker, Metrics: marker})
	for _, target := range []string{"/api/events", "/metrics"} {
		if w := get(t, h, target); w.Body.String() != "marker" {
			t.Errorf("GET %s body = %q", target, w.Body.String())
		}
	}
}
