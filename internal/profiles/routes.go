package profiles

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts the profile API routes.
func RegisterRoutes(r chi.Router, store *Store) {
	r.Route("/api/profiles", func(r chi.Router) {
		r.Get("/", handleList(store))
		r.Post("/", handleCreate(store))
		r.Get("/{uid}", handleGet(store))
		r.Put("/{uid}", handleSave(store))
		r.Delete("/{uid}", handleDeleteAll(store))
		r.Post("/{uid}/verify", handleVerify(store))
		r.Post("/{uid}/active", handleTouch(store))
		r.Put("/{uid}/complete", handleSaveComplete(store))
		r.Get("/{uid}/preferences", handleGetPreferences(store))
		r.Put("/{uid}/preferences", handleSavePreferences(store))
		r.Delete("/{uid}/preferences", handleDeletePreferences(store))
		r.Get("/{uid}/matches", handleMatches(store))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps store errors onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "validation failed", "problems": ve.Problems})
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrExists):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func badBody(w http.ResponseWriter) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
}

func handleList(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.ListProfiles(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		if list == nil {
			list = []Profile{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func handleCreate(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p Profile
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			badBody(w)
			return
		}
		created, err := store.CreateProfile(r.Context(), p)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

func handleGet(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := store.GetProfile(r.Context(), chi.URLParam(r, "uid"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func handleSave(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p Profile
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			badBody(w)
			return
		}
		p.UID = chi.URLParam(r, "uid")
		saved, err := store.SaveProfile(r.Context(), p)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, saved)
	}
}

func handleDeleteAll(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.DeleteAll(r.Context(), chi.URLParam(r, "uid")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleVerify(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.VerifyProfile(r.Context(), chi.URLParam(r, "uid")); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "verified"})
	}
}

func handleTouch(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.TouchLastActive(r.Context(), chi.URLParam(r, "uid")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type completeRequest struct {
	Profile     Profile     `json:"profile"`
	Preferences Preferences `json:"preferences"`
}

type completeResponse struct {
	Profile     *Profile     `json:"profile"`
	Preferences *Preferences `json:"preferences"`
}

func handleSaveComplete(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req completeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badBody(w)
			return
		}
		req.Profile.UID = chi.URLParam(r, "uid")
		p, prefs, err := store.SaveComplete(r.Context(), req.Profile, req.Preferences)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, completeResponse{Profile: p, Preferences: prefs})
	}
}

func handleGetPreferences(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := store.GetPreferences(r.Context(), chi.URLParam(r, "uid"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func handleSavePreferences(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p Preferences
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			badBody(w)
			return
		}
		saved, err := store.SavePreferences(r.Context(), chi.URLParam(r, "uid"), p)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, saved)
	}
}

func handleDeletePreferences(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.DeletePreferences(r.Context(), chi.URLParam(r, "uid")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleMatches(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matches, err := store.FindMatches(r.Context(), chi.URLParam(r, "uid"))
		if err != nil {
			writeError(w, err)
			return
		}
		if matches == nil {
			matches = []Profile{}
		}
		writeJSON(w, http.StatusOK, matches)
	}
}
