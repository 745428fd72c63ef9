package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"FlashIt/pkg/kit"
)

type HTTPDeps struct {
	Log     *zap.Logger
	Metrics kit.MetricsDeps
}

func NewHandler(s *Server, deps HTTPDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer)
	r.Use(kit.Logging(deps.Log))
	kit.Instrument(r, deps.Metrics)

	r.Mount("/", s.Routes())
	return r
}
