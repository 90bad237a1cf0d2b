// Package api exposes the catalog over HTTP as JSON.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"bookhaven/internal/catalog"
)

type Server struct {
	store *catalog.Store
}

func New(store *catalog.Store) *Server { return &Server{store: store} }

func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/books", s.handleListBooks)
	mux.HandleFunc("GET /api/books/{id}", s.handleGetBook)
}

func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	books := s.store.List()
	if q := r.URL.Query().Get("q"); q != "" {
		books = s.store.Search(q)
	}
	if books == nil {
		books = []catalog.Book{}
	}
	writeJSON(w, http.StatusOK, books)
}

func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	// Path ids are normalized to int64 here; anything non-numeric can
	// never match a book.
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Book not found"})
		return
	}
	b, err := s.store.Get(id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Book not found"})
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write json response")
	}
}

// WithLog logs each request the way the frontend servers do.
func WithLog(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		h.ServeHTTP(w, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("took", time.Since(start)).
			Msg("request")
	})
}
