// Package web renders the comic reader as server-side HTML. Navigation is
// carried entirely in the URL: /comic/{page}?panel=i|last.
package web

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"go.uber.org/zap"

	"github.com/galatea-comics/galatea/internal/catalog"
	"github.com/galatea-comics/galatea/internal/comic"
	"github.com/galatea-comics/galatea/internal/logging"
	"github.com/galatea-comics/galatea/internal/reader"
)

// Handler serves reader pages.
type Handler struct {
	fetcher comic.Fetcher
	log     *zap.Logger
	md      goldmark.Markdown
	page    *template.Template
	panel   *template.Template

	// markdown renders panel content. Replaced in tests.
	markdown func(src string) (template.HTML, error)
}

// New creates a handler whose pages are resolved with fetcher.
func New(fetcher comic.Fetcher, log *zap.Logger) (*Handler, error) {
	page, err := template.New("page").Parse(pageTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing page template: %w", err)
	}
	panel, err := template.New("panel").Parse(panelTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing panel template: %w", err)
	}

	h := &Handler{
		fetcher: fetcher,
		log:     logging.OrNop(log),
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Typographer),
		),
		page:  page,
		panel: panel,
	}
	h.markdown = h.renderMarkdown
	return h, nil
}

// RegisterRoutes mounts the reader pages onto the given router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, pageHref(1, "0"), http.StatusFound)
	})
	r.Get("/comic", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, pageHref(1, "0"), http.StatusFound)
	})
	r.Get("/comic/{page}", h.handlePage)
}

type dot struct {
	Number  int
	Href    string
	Current bool
}

type pageData struct {
	Ready        bool
	Title        string
	PageNumber   int
	TotalPages   int
	Panel        template.HTML
	Prev         string
	Next         string
	Dots         []dot
	ErrorMessage string
	RetryHref    string
}

type layerView struct {
	catalog.Layer
	HTML template.HTML
}

type panelView struct {
	ClassName string
	Style     template.CSS
	Layers    []layerView
}

func (h *Handler) handlePage(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "page")
	retry := r.URL.RequestURI()

	n, err := comic.ParsePageNumber(raw)
	if err != nil {
		h.renderError(w, http.StatusNotFound, err, retry)
		return
	}

	res, err := h.fetcher.Fetch(r.Context(), n)
	switch {
	case err != nil:
		status := http.StatusBadGateway
		if errors.Is(err, comic.ErrNotFound) {
			status = http.StatusNotFound
		}
		h.log.Info("page fetch failed", zap.Int("page", n), zap.Error(err))
		h.renderError(w, status, err, retry)
		return
	case len(res.Page.Panels) == 0:
		h.renderError(w, http.StatusInternalServerError, fmt.Errorf("page %d: %w", n, reader.ErrEmptyPage), retry)
		return
	}

	count := len(res.Page.Panels)
	idx := panelIndex(r.URL.Query().Get("panel"), count)
	pos := reader.Position{Page: n, Panel: idx, PanelCount: count, PrevPage: res.PrevPage, NextPage: res.NextPage}

	data := pageData{
		Ready:      true,
		Title:      res.Page.Title,
		PageNumber: n,
		TotalPages: res.TotalPages,
		Panel:      h.renderPanel(n, idx, res.Page.Panels[idx]),
		Prev:       targetHref(reader.Plan(pos, reader.ActionPrevPanel)),
		Next:       targetHref(reader.Plan(pos, reader.ActionNextPanel)),
	}
	for i := 0; i < count; i++ {
		data.Dots = append(data.Dots, dot{Number: i + 1, Href: pageHref(n, strconv.Itoa(i)), Current: i == idx})
	}
	h.render(w, http.StatusOK, data)
}

// panelIndex reads the panel query value. "last" selects the final panel;
// anything unparsable selects the first.
func panelIndex(q string, count int) int {
	if q == "last" {
		return count - 1
	}
	i, err := strconv.Atoi(q)
	if err != nil {
		return 0
	}
	return reader.ClampPanel(i, count)
}

func pageHref(page int, panel string) string {
	return fmt.Sprintf("/comic/%d?panel=%s", page, panel)
}

// targetHref links to a planned move, or returns "" when there is nowhere
// to go.
func targetHref(t reader.Target) string {
	switch {
	case !t.Moved:
		return ""
	case t.LastPanel:
		return pageHref(t.Page, "last")
	default:
		return pageHref(t.Page, strconv.Itoa(t.Panel))
	}
}

// renderPanel renders a single panel. A panel that fails to render is
// replaced by a placeholder so the rest of the page still works.
func (h *Handler) renderPanel(page, idx int, p catalog.Panel) (out template.HTML) {
	defer func() {
		if rec := recover(); rec != nil {
			h.log.Error("panel render panicked", zap.Int("page", page), zap.Int("panel", idx), zap.Any("panic", rec))
			out = template.HTML(placeholderHTML)
		}
	}()

	view := panelView{ClassName: p.ClassName, Style: panelStyle(p)}
	for _, l := range p.Layers() {
		lv := layerView{Layer: l}
		if l.Kind == catalog.LayerContent {
			html, err := h.markdown(l.Value)
			if err != nil {
				h.log.Warn("panel content failed to render", zap.Int("page", page), zap.Int("panel", idx), zap.Error(err))
				return template.HTML(placeholderHTML)
			}
			lv.HTML = html
		}
		view.Layers = append(view.Layers, lv)
	}

	var buf bytes.Buffer
	if err := h.panel.Execute(&buf, view); err != nil {
		h.log.Warn("panel template failed", zap.Int("page", page), zap.Int("panel", idx), zap.Error(err))
		return template.HTML(placeholderHTML)
	}
	return template.HTML(buf.String())
}

func (h *Handler) renderMarkdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := h.md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("converting markdown: %w", err)
	}
	return template.HTML(buf.String()), nil
}

// panelStyle builds the inline style for a panel. Catalog values are
// trusted but may not break out of the declaration.
func panelStyle(p catalog.Panel) template.CSS {
	style := "aspect-ratio: " + cssRatio(p.Ratio()) + ";"
	if p.Background != "" {
		style += " background: " + cssSafe(p.Background) + ";"
	}
	return template.CSS(style)
}

// cssRatio converts "16:9" to the CSS form "16 / 9".
func cssRatio(r string) string {
	w, hgt, ok := strings.Cut(r, ":")
	if !ok {
		w, hgt, ok = strings.Cut(r, "/")
	}
	wf, err1 := strconv.ParseFloat(strings.TrimSpace(w), 64)
	hf, err2 := strconv.ParseFloat(strings.TrimSpace(hgt), 64)
	if !ok || err1 != nil || err2 != nil || wf <= 0 || hf <= 0 {
		return cssRatio(catalog.DefaultAspectRatio)
	}
	return strconv.FormatFloat(wf, 'f', -1, 64) + " / " + strconv.FormatFloat(hf, 'f', -1, 64)
}

func cssSafe(v string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ';', '{', '}', '<', '>', '"', '\\':
			return -1
		}
		return r
	}, v)
}

func (h *Handler) renderError(w http.ResponseWriter, status int, err error, retry string) {
	h.render(w, status, pageData{ErrorMessage: reader.Describe(err), RetryHref: retry})
}

func (h *Handler) render(w http.ResponseWriter, status int, data pageData) {
	var buf bytes.Buffer
	if err := h.page.Execute(&buf, data); err != nil {
		h.log.Error("page template failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
