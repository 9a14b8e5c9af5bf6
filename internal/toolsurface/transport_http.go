package toolsurface

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"edgarqa/internal/apperr"
	"edgarqa/internal/logging"
	"edgarqa/internal/query"
)

// NewHTTPRouter builds the chi router serving every tool as a REST-ish
// endpoint plus operational routes (health, cache introspection). CORS
// is locked to allowedOrigins; an empty list means same-origin only.
func NewHTTPRouter(engine *query.Engine, registry *Registry, allowedOrigins []string, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(loggingMiddleware(logger))
	corsOpts := cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}
	if len(allowedOrigins) == 0 {
		// go-chi/cors treats an empty origin list as "allow all".
		corsOpts.AllowOriginFunc = func(*http.Request, string) bool { return false }
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/health", healthHandler(engine))
	r.Get("/list_emissions_datasets", toolHandler(registry, "list_emissions_datasets"))
	r.Get("/get_dataset_schema/{file_id}", func(w http.ResponseWriter, req *http.Request) {
		args, _ := json.Marshal(map[string]string{"file_id": chi.URLParam(req, "file_id")})
		dispatch(w, req, registry, "get_dataset_schema", args)
	})
	r.Get("/get_data_quality", toolHandler(registry, "get_data_quality"))
	r.Get("/cache/stats", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, engine.CacheStats())
	})
	r.Delete("/cache/clear", func(w http.ResponseWriter, req *http.Request) {
		engine.ClearCache()
		w.WriteHeader(http.StatusNoContent)
	})

	// routePath special-cases the tool names whose literal HTTP path,
	// per spec.md §6, does not mirror the tool name one-to-one: "query"
	// mounts at /batch/query and the dotted "metrics.yoy" mounts at
	// /metrics/yoy since a dot cannot stand as a bare path segment.
	routePath := map[string]string{
		"query":       "/batch/query",
		"metrics.yoy": "/metrics/yoy",
	}
	for _, name := range []string{
		"query", "top_n", "compare_emissions", "analyze_emissions_trend", "metrics.yoy",
		"analyze_monthly_trends", "detect_seasonal_patterns",
		"aggregate_across_sectors", "smart_query_emissions", "get_quality_filtered_data",
		"get_validated_records", "get_uncertainty_analysis",
	} {
		path, ok := routePath[name]
		if !ok {
			path = "/" + name
		}
		r.Post(path, postToolHandler(registry, name))
	}

	return r
}

func healthHandler(engine *query.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()
		if err := engine.Ping(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func toolHandler(registry *Registry, name string) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		dispatch(w, req, registry, name, json.RawMessage("{}"))
	}
}

func postToolHandler(registry *Registry, name string) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		body, err := readBody(req)
		if err != nil {
			writeError(w, apperr.New(apperr.InvalidArgument, "could not read request body"))
			return
		}
		dispatch(w, req, registry, name, body)
	}
}

func dispatch(w http.ResponseWriter, req *http.Request, registry *Registry, name string, args json.RawMessage) {
	result, err := registry.Call(req.Context(), name, args)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func readBody(req *http.Request) (json.RawMessage, error) {
	var raw json.RawMessage
	if req.ContentLength == 0 {
		return json.RawMessage("{}"), nil
	}
	if err := json.NewDecoder(req.Body).Decode(&raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorEnvelope is the wire shape every failure renders as, per
// spec.md §7.
type errorEnvelope struct {
	Error       string   `json:"error"`
	Detail      string   `json:"detail"`
	Suggestions []string `json:"suggestions,omitempty"`
	RequestID   string   `json:"request_id,omitempty"`
}

func writeError(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	status := statusFor(kind)
	var detail string
	var suggestions []string
	if e, ok := apperr.As(err); ok {
		detail = e.Detail
		suggestions = e.Suggestions
	} else {
		detail = err.Error()
	}
	writeJSON(w, status, errorEnvelope{Error: string(kind), Detail: detail, Suggestions: suggestions})
}

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.InvalidArgument, apperr.UnknownDataset, apperr.UnknownColumn, apperr.EntityUnresolved, apperr.GrainMismatch:
		return http.StatusBadRequest
	case apperr.NoDataFound:
		return http.StatusNotFound
	case apperr.RateLimited:
		return http.StatusTooManyRequests
	case apperr.PoolExhausted, apperr.ConnectionUnhealthy, apperr.StorageTransient, apperr.LLMUnavailable:
		return http.StatusServiceUnavailable
	case apperr.StoragePermanent, apperr.BudgetExhausted:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func requestIDMiddleware(base *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			id := uuid.NewString()
			w.Header().Set("X-Request-ID", id)
			ctx := logging.WithRequestLogger(req.Context(), base, id)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	}
}

func loggingMiddleware(base *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
			next.ServeHTTP(ww, req)
			base.Info("http request",
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
