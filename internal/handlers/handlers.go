package handlers

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"raffledash/internal/models"
	"raffledash/internal/store"
	"raffledash/internal/view"
)

//go:embed templates/*.html
var templateFS embed.FS

// Messages shown in place of the list when the store cannot be reached
const (
	msgRafflesUnavailable = "Failed to load raffles. Please try again later."
	msgBuyersUnavailable  = "Failed to load buyers. Please try again later."
	msgDatabase           = "Unable to connect to database"
	msgViewExpired        = "This view has expired. Reload the page to fetch the raffles again."
)

var funcs = template.FuncMap{
	"datetime": func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.UTC().Format("2006-01-02 15:04 UTC")
	},
	"tickets": func(t models.Tickets) string {
		parts := make([]string, 0, len(t))
		for _, n := range t {
			parts = append(parts, strconv.Itoa(n))
		}
		return strings.Join(parts, ", ")
	},
}

// Handler serves the dashboard pages and the JSON routes
type Handler struct {
	store        store.Store
	views        *view.Registry
	fetchTimeout time.Duration
	pages        map[string]*template.Template
	now          func() time.Time
}

// New parses the embedded templates. fetchTimeout bounds each store call on
// top of the request context; zero means no extra bound.
func New(st store.Store, views *view.Registry, fetchTimeout time.Duration) (*Handler, error) {
	h := &Handler{
		store:        st,
		views:        views,
		fetchTimeout: fetchTimeout,
		pages:        make(map[string]*template.Template),
		now:          time.Now,
	}

	for _, page := range []string{"index.html", "raffle.html"} {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html",
			"templates/"+page,
		)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", page, err)
		}
		h.pages[page] = t
	}
	return h, nil
}

func (h *Handler) fetchContext(r *http.Request) (context.Context, context.CancelFunc) {
	if h.fetchTimeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), h.fetchTimeout)
}

// render executes a full page. Output is buffered so a template error never
// leaves a half-written page behind.
func (h *Handler) render(w http.ResponseWriter, status int, page string, data any) {
	h.execute(w, status, page, "layout.html", data)
}

// renderFragment executes a named block of a page, for HTMX swaps
func (h *Handler) renderFragment(w http.ResponseWriter, status int, page, name string, data any) {
	h.execute(w, status, page, name, data)
}

func (h *Handler) execute(w http.ResponseWriter, status int, page, name string, data any) {
	t, ok := h.pages[page]
	if !ok {
		slog.Error("unknown template", "page", page)
		http.Error(w, "Template Error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		slog.Error("template execute error", "page", page, "template", name, "error", err)
		http.Error(w, "Template Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Debug("write response", "error", err)
	}
}

// Health reports liveness without touching the store
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, "OK")
}
