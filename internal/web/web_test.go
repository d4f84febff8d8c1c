package web

import (
	"context"
	"errors"
	"html/template"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/galatea-comics/galatea/internal/catalog"
	"github.com/galatea-comics/galatea/internal/comic"
	"github.com/galatea-comics/galatea/internal/reader"
)

func testCatalog() *catalog.Catalog {
	return catalog.New([]catalog.Page{
		{Title: "Opening", Panels: []catalog.Panel{
			{Image: "/panels/1-1.png", Narration: "It begins."},
			{Content: "**Bold** move", AspectRatio: "4:3", Background: "linear-gradient(#000, #333)"},
			{Dialogue: "Hello <there>", Speaker: "Galatea", ClassName: "wide"},
		}},
		{Title: "Middle", Panels: []catalog.Panel{
			{Narration: "Second page, first panel."},
			{Narration: "Second page, last panel."},
		}},
		{Title: "Blank"},
	})
}

func setupRouter(t *testing.T, f comic.Fetcher) (*Handler, chi.Router) {
	t.Helper()
	h, err := New(f, nil)
	require.NoError(t, err)
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return h, r
}

func get(t *testing.T, r http.Handler, target string) (int, string) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	return w.Code, string(body)
}

func TestRedirectToFirstPage(t *testing.T) {
	_, r := setupRouter(t, comic.NewLocalFetcher(testCatalog()))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/comic/1?panel=0", w.Header().Get("Location"))
}

func TestFirstPanel(t *testing.T) {
	_, r := setupRouter(t, comic.NewLocalFetcher(testCatalog()))
	code, body := get(t, r, "/comic/1")

	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Page 1 of 3")
	assert.Contains(t, body, "Opening")
	assert.Contains(t, body, `src="/panels/1-1.png"`)
	assert.Contains(t, body, "It begins.")
	assert.Contains(t, body, `id="next" href="/comic/1?panel=1"`)
	assert.NotContains(t, body, `id="prev"`, "no previous panel on the first page")
	assert.Contains(t, body, `aria-current="true"`)
}

func TestContentMarkdownAndStyle(t *testing.T) {
	_, r := setupRouter(t, comic.NewLocalFetcher(testCatalog()))
	code, body := get(t, r, "/comic/1?panel=1")

	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "<strong>Bold</strong> move")
	assert.Contains(t, body, "aspect-ratio: 4 / 3;")
	assert.Contains(t, body, "background: linear-gradient(#000, #333);")
	assert.Contains(t, body, `id="prev" href="/comic/1?panel=0"`)
}

func TestDialogueEscaped(t *testing.T) {
	_, r := setupRouter(t, comic.NewLocalFetcher(testCatalog()))
	_, body := get(t, r, "/comic/1?panel=2")

	assert.Contains(t, body, `class="panel wide"`)
	assert.Contains(t, body, `<span class="speaker">Galatea</span>`)
	assert.Contains(t, body, "Hello &lt;there&gt;")
	assert.Contains(t, body, `id="next" href="/comic/2?panel=0"`, "last panel links to the next page")
}

func TestLastPanelQuery(t *testing.T) {
	_, r := setupRouter(t, comic.NewLocalFetcher(testCatalog()))
	code, body := get(t, r, "/comic/2?panel=last")

	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Second page, last panel.")
	assert.NotContains(t, body, "Second page, first panel.")
	assert.Contains(t, body, `id="next" href="/comic/3?panel=0"`)
}

func TestPrevCrossesToLastPanel(t *testing.T) {
	_, r := setupRouter(t, comic.NewLocalFetcher(testCatalog()))
	_, body := get(t, r, "/comic/2?panel=0")
	assert.Contains(t, body, `id="prev" href="/comic/1?panel=last"`)
}

func TestPanelQueryClamped(t *testing.T) {
	_, r := setupRouter(t, comic.NewLocalFetcher(testCatalog()))
	_, body := get(t, r, "/comic/2?panel=99")
	assert.Contains(t, body, "Second page, last panel.")
	_, body = get(t, r, "/comic/2?panel=-5")
	assert.Contains(t, body, "Second page, first panel.")
	_, body = get(t, r, "/comic/2?panel=zzz")
	assert.Contains(t, body, "Second page, first panel.")
}

func TestErrorPages(t *testing.T) {
	_, r := setupRouter(t, comic.NewLocalFetcher(testCatalog()))

	tests := []struct {
		path    string
		code    int
		message string
	}{
		{"/comic/0", http.StatusNotFound, "the page number is not valid"},
		{"/comic/abc", http.StatusNotFound, "the page number is not valid"},
		{"/comic/4", http.StatusNotFound, "That page does not exist."},
		{"/comic/3", http.StatusInternalServerError, "This page has no panels to show."},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			code, body := get(t, r, tt.path)
			assert.Equal(t, tt.code, code)
			assert.Contains(t, body, tt.message)
			assert.Contains(t, body, "Try again")
			assert.Contains(t, body, `href="/comic/1">Return to start`)
		})
	}
}

type failingFetcher struct{}

func (failingFetcher) Fetch(context.Context, int) (*comic.Result, error) {
	return nil, &comic.TransportError{URL: "http://upstream/api/comic/1", Err: errors.New("refused")}
}

func TestTransportError(t *testing.T) {
	_, r := setupRouter(t, failingFetcher{})
	code, body := get(t, r, "/comic/1?panel=2")
	assert.Equal(t, http.StatusBadGateway, code)
	assert.Contains(t, body, "Could not load the page.")
	assert.Contains(t, body, `href="/comic/1?panel=2">Try again`)
}

func TestBrokenPanelIsIsolated(t *testing.T) {
	h, r := setupRouter(t, comic.NewLocalFetcher(testCatalog()))
	h.markdown = func(string) (template.HTML, error) { panic("renderer exploded") }

	code, body := get(t, r, "/comic/1?panel=1")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "This panel could not be displayed.")
	assert.Contains(t, body, "Page 1 of 3", "the rest of the page still renders")
	assert.Contains(t, body, `id="next"`)

	h.markdown = func(string) (template.HTML, error) { return "", errors.New("bad markdown") }
	_, body = get(t, r, "/comic/1?panel=1")
	assert.Contains(t, body, "This panel could not be displayed.")

	_, body = get(t, r, "/comic/1?panel=0")
	assert.Contains(t, body, "It begins.", "panels without content are unaffected")
}

func TestCSSRatio(t *testing.T) {
	assert.Equal(t, "16 / 9", cssRatio("16:9"))
	assert.Equal(t, "2.35 / 1", cssRatio("2.35:1"))
	assert.Equal(t, "3 / 4", cssRatio("3/4"))
	assert.Equal(t, "16 / 9", cssRatio("wide"))
	assert.Equal(t, "16 / 9", cssRatio("0:1"))
}

func TestTargetHref(t *testing.T) {
	assert.Equal(t, "", targetHref(reader.Target{}))
	assert.Equal(t, "/comic/2?panel=3", targetHref(reader.Target{Moved: true, Page: 2, Panel: 3}))
	assert.Equal(t, "/comic/4?panel=last", targetHref(reader.Target{Moved: true, Page: 4, CrossPage: true, LastPanel: true}))
}
