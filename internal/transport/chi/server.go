package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kitchenops/recipedex/internal/domain"
	"github.com/kitchenops/recipedex/internal/logger"
	"github.com/kitchenops/recipedex/internal/metrics"
	healthuc "github.com/kitchenops/recipedex/internal/usecase/health"
	recipeuc "github.com/kitchenops/recipedex/internal/usecase/recipe"
	reindexuc "github.com/kitchenops/recipedex/internal/usecase/reindex"
	searchuc "github.com/kitchenops/recipedex/internal/usecase/search"
)

// StaleIndexHeader flags a successful catalog mutation whose search index
// projection failed: the record stands, search may lag until a reindex.
const StaleIndexHeader = "X-Search-Stale"

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server exposes the recipe catalog API. Routes are wired in Mount; the
// HTTP layer owns error-kind-to-status mapping, the usecases own the rest.
type Server struct {
	recipes       *recipeuc.Service
	search        *searchuc.Service
	reindex       *reindexuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	recipes *recipeuc.Service,
	search *searchuc.Service,
	reindex *reindexuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		recipes: recipes,
		search:  search,
		reindex: reindex,
		health:  health,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrValidation, http.StatusBadRequest, ""),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ""),
		sentinelHandler(domain.ErrReindexInProgress, http.StatusConflict, ""),
		sentinelHandler(domain.ErrIndexUnavailable, http.StatusInternalServerError, "search service unavailable"),
		sentinelHandler(domain.ErrIndexQuery, http.StatusInternalServerError, "search service unavailable"),
		sentinelHandler(domain.ErrStore, http.StatusInternalServerError, "record store failure"),
	}
	return s
}

// Mount wires all routes onto the router. requireAuth guards the mutating
// surface; reads and health stay public.
func (s *Server) Mount(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Get("/health", s.Health)
	r.Get("/metrics", s.Metrics)
	r.Get("/recipes", s.ListRecipes)
	r.Get("/recipes/search", s.SearchRecipes)
	r.Get("/recipes/{id}", s.GetRecipe)

	r.Group(func(g chi.Router) {
		g.Use(requireAuth)
		g.Get("/", s.Root)
		g.Post("/recipes", s.CreateRecipe)
		g.Post("/recipes/reindex", s.Reindex)
		g.Put("/recipes/{id}", s.UpdateRecipe)
		g.Delete("/recipes/{id}", s.DeleteRecipe)
	})
}

// Root handles GET /.
func (s *Server) Root(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Connected"))
}

// Health handles GET /health: 204 when the store pings, 503 otherwise.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	if err := s.health.Check(r.Context()); err != nil {
		logger.FromContext(r.Context()).Warn("health check failed", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// ListRecipes handles GET /recipes.
func (s *Server) ListRecipes(w http.ResponseWriter, r *http.Request) {
	recs, err := s.recipes.List(r.Context(), parseLimit(r))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": recs})
}

// CreateRecipe handles POST /recipes.
func (s *Server) CreateRecipe(w http.ResponseWriter, r *http.Request) {
	var in domain.RecipeInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := s.recipes.Create(r.Context(), in)
	if err != nil {
		if rec != nil && errors.Is(err, domain.ErrIndexWrite) {
			s.reportStaleIndex(w, r, err)
			writeJSON(w, http.StatusCreated, rec)
			return
		}
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, rec)
}

// GetRecipe handles GET /recipes/{id}.
func (s *Server) GetRecipe(w http.ResponseWriter, r *http.Request) {
	rec, err := s.recipes.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// UpdateRecipe handles PUT /recipes/{id}: full replacement of
// title/ingredients/steps.
func (s *Server) UpdateRecipe(w http.ResponseWriter, r *http.Request) {
	var in domain.RecipeInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := s.recipes.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		if rec != nil && errors.Is(err, domain.ErrIndexWrite) {
			s.reportStaleIndex(w, r, err)
			writeJSON(w, http.StatusOK, rec)
			return
		}
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// DeleteRecipe handles DELETE /recipes/{id}.
func (s *Server) DeleteRecipe(w http.ResponseWriter, r *http.Request) {
	err := s.recipes.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, domain.ErrIndexWrite) {
			// Record is gone; only the search document removal failed.
			s.reportStaleIndex(w, r, err)
			w.WriteHeader(http.StatusNoContent)
			return
		}
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SearchRecipes handles GET /recipes/search.
func (s *Server) SearchRecipes(w http.ResponseWriter, r *http.Request) {
	metrics.SearchRequestsTotal.Inc()

	q := r.URL.Query().Get("q")
	ingredients := r.URL.Query().Get("ingredients")

	page, err := s.search.Search(r.Context(), q, ingredients, parseLimit(r))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// Reindex handles POST /recipes/reindex.
func (s *Server) Reindex(w http.ResponseWriter, r *http.Request) {
	count, err := s.reindex.ReindexAll(r.Context())
	if err != nil {
		metrics.ReindexRunsTotal.WithLabelValues("error").Inc()
		s.handleDomainError(w, r, err)
		return
	}

	metrics.ReindexRunsTotal.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Reindexed %d recipes", count),
	})
}

// reportStaleIndex marks the response for a committed mutation whose index
// projection failed.
func (s *Server) reportStaleIndex(w http.ResponseWriter, r *http.Request, err error) {
	metrics.IndexWriteFailuresTotal.Inc()
	logger.FromContext(r.Context()).Warn("search index out of sync", zap.Error(err))
	w.Header().Set(StaleIndexHeader, "true")
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	logger.FromContext(r.Context()).Error("unhandled error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}

// sentinelHandler maps a sentinel error to a status. An empty message
// exposes the error text (safe for expected 4xx outcomes); infrastructure
// failures get a fixed public message naming the failing subsystem.
func sentinelHandler(sentinel error, status int, message string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		if message == "" {
			writeError(w, status, err.Error())
		} else {
			writeError(w, status, message)
		}
		return true
	}
}

// parseLimit reads the limit parameter. Absent or unparseable values yield
// domain.LimitUnset so the service applies its default; explicit values are
// passed through for clamping, floored at MinLimit here so a negative
// parameter cannot collide with the sentinel.
func parseLimit(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return domain.LimitUnset
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return domain.LimitUnset
	}
	if limit < domain.MinLimit {
		return domain.MinLimit
	}
	return limit
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
