package comic

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/galatea-comics/galatea/internal/logging"
)

// response is the wire shape of GET /api/comic/{page}.
type response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	*Result
}

// RegisterRoutes mounts the comic page API. The index route is only
// available when f also implements Indexer.
func RegisterRoutes(r chi.Router, f Fetcher, log *zap.Logger) {
	log = logging.OrNop(log)
	r.Route("/api/comic", func(r chi.Router) {
		if idx, ok := f.(Indexer); ok {
			r.Get("/", handleIndex(idx, log))
		}
		r.Get("/{page}", handlePage(f, log))
	})
}

func handlePage(f Fetcher, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := chi.URLParam(r, "page")
		n, err := ParsePageNumber(raw)
		if err != nil {
			writeJSON(w, http.StatusNotFound, response{Error: "Page not found"})
			return
		}

		res, err := f.Fetch(r.Context(), n)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				writeJSON(w, http.StatusNotFound, response{Error: "Page not found"})
				return
			}
			log.Error("resolving page", zap.Int("page", n), zap.Error(err))
			writeJSON(w, http.StatusBadGateway, response{Error: err.Error()})
			return
		}

		writeJSON(w, http.StatusOK, response{Success: true, Result: res})
	}
}

func handleIndex(idx Indexer, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index, err := idx.Index(r.Context())
		if err != nil {
			log.Error("building index", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, index)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
