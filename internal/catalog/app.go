package catalog

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"FlashIt/pkg/kit"
)

type Server struct {
	Catalog *Catalog
	Source  Source
	Log     *zap.Logger
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(kit.NotFound)
	r.MethodNotAllowed(kit.MethodNotAllowed)

	r.Get("/healthz", kit.Healthz)
	r.Get("/readyz", s.ready)

	r.Get("/products", s.list)
	r.Get("/products/featured", s.featured)
	r.Get("/products/{id}", s.get)
	r.Get("/categories", s.categories)

	return r
}

func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	if s.Source == nil {
		w.WriteHeader(http.StatusOK)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
	defer cancel()

	if err := s.Source.Ping(ctx); err != nil {
		if s.Log != nil {
			s.Log.Warn("readyz failed", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// list serves the product grid: ?q= searches by name, otherwise ?category=
// filters (default all).
func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if q.Has("q") {
		kit.WriteJSON(w, http.StatusOK, s.Catalog.SearchPage(q.Get("q")))
		return
	}

	category := q.Get("category")
	if category == "" {
		category = CategoryAll
	}
	kit.WriteJSON(w, http.StatusOK, s.Catalog.CategoryPage(category))
}

func (s *Server) featured(w http.ResponseWriter, _ *http.Request) {
	kit.WriteJSON(w, http.StatusOK, s.Catalog.FeaturedPage())
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")

	id, err := strconv.Atoi(raw)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad id", map[string]any{"id": raw})
		return
	}

	p, ok := s.Catalog.FindByID(id)
	if !ok {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
		return
	}
	kit.WriteJSON(w, http.StatusOK, NewDetail(p))
}

func (s *Server) categories(w http.ResponseWriter, _ *http.Request) {
	kit.WriteJSON(w, http.StatusOK, s.Catalog.Categories())
}
