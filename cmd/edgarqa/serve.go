package main

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"edgarqa/internal/apperr"
	"edgarqa/internal/assembler"
	"edgarqa/internal/baseline"
	"edgarqa/internal/catalog"
	"edgarqa/internal/entity"
	"edgarqa/internal/intent"
	"edgarqa/internal/orchestrator"
	"edgarqa/internal/query"
	"edgarqa/internal/ratelimit"
	"edgarqa/internal/toolsurface"
	"edgarqa/internal/warehouse"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP Tool Surface and question-answering API",
	RunE:  runServe,
}

var stdioCmd = &cobra.Command{
	Use:   "stdio",
	Short: "Run the Tool Surface over newline-delimited JSON-RPC on stdin/stdout",
	RunE:  runStdio,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	logger, err := loadLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	cat, err := catalog.Load(cfg.ManifestPath)
	if err != nil {
		logger.Error("failed to load catalog manifest", zap.Error(err))
		return err
	}

	pool, err := warehouse.Open(cfg.DBPath, warehouse.PoolConfig{
		BaseSize:       cfg.DBPoolSize,
		Overflow:       cfg.DBPoolOverflow,
		AcquireTimeout: 5 * time.Second,
	}, logger)
	if err != nil {
		logger.Error("failed to open warehouse", zap.Error(err))
		return err
	}
	defer pool.Close()

	cache := warehouse.NewCache(cfg.CacheTTL, cfg.CacheSize)
	gw := warehouse.New(pool, cache, logger)
	resolver := entity.New()
	engine := query.New(cat, gw, resolver)
	registry := toolsurface.Build(engine)

	gate := ratelimit.NewSemaphore(cfg.LLMConcurrency)
	llmClient := orchestrator.NewWithLimits(
		orchestrator.DefaultConfig(cfg.LLMEndpoint, cfg.LLMUsername, cfg.LLMPassword),
		gate, nil,
	)
	loop := orchestrator.NewLoop(llmClient, registry, cfg.LLMCallBudget)
	baselineProvider := baseline.New(logger)
	ipLimiter := ratelimit.NewLimiter(cfg.RateLimitMax, cfg.RateLimitWindow)

	router := chi.NewRouter()
	router.Use(ipRateLimitMiddleware(ipLimiter))
	router.Mount("/", toolsurface.NewHTTPRouter(engine, registry, cfg.AllowedOrigins, logger))
	router.Post("/ask", askHandler(loop, baselineProvider, logger))

	addr := ":" + itoa(cfg.Port)
	logger.Info("starting edgarqa HTTP server", zap.String("addr", addr))
	return http.ListenAndServe(addr, router)
}

func runStdio(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	logger, err := loadLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	cat, err := catalog.Load(cfg.ManifestPath)
	if err != nil {
		return err
	}
	pool, err := warehouse.Open(cfg.DBPath, warehouse.PoolConfig{
		BaseSize:       cfg.DBPoolSize,
		Overflow:       cfg.DBPoolOverflow,
		AcquireTimeout: 5 * time.Second,
	}, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	cache := warehouse.NewCache(cfg.CacheTTL, cfg.CacheSize)
	gw := warehouse.New(pool, cache, logger)
	engine := query.New(cat, gw, entity.New())
	registry := toolsurface.Build(engine)

	server := toolsurface.NewStdioServer(registry, logger)
	return server.Serve(context.Background(), cmd.InOrStdin(), cmd.OutOrStdout())
}

type askRequest struct {
	Question  string `json:"question"`
	Persona   string `json:"persona"`
	RequestID string `json:"request_id"`
}

func askHandler(loop *orchestrator.Loop, bp *baseline.Provider, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req askRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeAskError(w, apperr.New(apperr.InvalidArgument, "malformed request body"))
			return
		}
		if req.Question == "" {
			writeAskError(w, apperr.New(apperr.InvalidArgument, "question is required"))
			return
		}

		requestID := req.RequestID
		if requestID == "" {
			requestID = uuid.NewString()
		}
		persona := intent.ParsePersona(req.Persona)
		kind := intent.Classify(req.Question)

		if kind == intent.Baseline {
			answer := bp.BaselineAnswer(req.Question, persona)
			env := assembler.Assemble(assembler.Input{
				Kind: kind, Persona: persona, RequestID: requestID, Body: answer,
			})
			writeJSON(w, http.StatusOK, env)
			return
		}

		result, err := loop.Run(r.Context(), req.Question, persona)
		if err != nil {
			logger.Error("orchestrator loop failed", zap.Error(err), zap.String("request_id", requestID))
			writeAskError(w, err)
			return
		}

		var qualityMeta *query.QualityMetadata
		var fallbackTrace []query.TraceStep
		var suggestions []string
		var lastCallErr error
		for i := len(result.ToolCalls) - 1; i >= 0; i-- {
			call := result.ToolCalls[i]
			if call.Err != nil {
				lastCallErr = call.Err
				continue
			}
			if m, tr := extractMeta(call.Result); m != nil {
				qualityMeta = m
				fallbackTrace = tr
				break
			}
		}

		noData := qualityMeta == nil && len(result.ToolCalls) > 0
		if noData && lastCallErr != nil {
			if e, ok := apperr.As(lastCallErr); ok {
				suggestions = e.Suggestions
			}
		}

		var baselineCtx *baseline.EnrichResult
		if kind == intent.Hybrid {
			ctx := bp.Enrich(req.Question, persona)
			baselineCtx = &ctx
		}

		env := assembler.Assemble(assembler.Input{
			Kind:            kind,
			Persona:         persona,
			RequestID:       requestID,
			Body:            result.Answer,
			Quality:         qualityMeta,
			Baseline:        baselineCtx,
			NoData:          noData,
			FallbackTrace:   fallbackTrace,
			Suggestions:     suggestions,
			BudgetExhausted: result.BudgetExhausted,
		})
		writeJSON(w, http.StatusOK, env)
	}
}

// extractMeta pulls quality metadata and fallback trace out of a tool
// result. Every Query Engine operation's result type either is, or
// embeds, query.Result or carries its own query.Meta field; this type
// switch covers each shape rather than requiring a shared interface
// that would force every result type to carry unused fields.
func extractMeta(result any) (*query.QualityMetadata, []query.TraceStep) {
	switch v := result.(type) {
	case query.Result:
		return v.Meta.QualityMetadata, v.Meta.FallbackTrace
	case query.CompareResult:
		return v.Meta.QualityMetadata, v.Meta.FallbackTrace
	case query.TrendResult:
		return v.Meta.QualityMetadata, v.Meta.FallbackTrace
	case query.YoyResult:
		return v.Meta.QualityMetadata, v.Meta.FallbackTrace
	case query.SeasonalResult:
		return v.Meta.QualityMetadata, v.Meta.FallbackTrace
	case query.AggregateAcrossSectorsResult:
		return v.Meta.QualityMetadata, v.Meta.FallbackTrace
	case query.SmartQueryResult:
		return v.Meta.QualityMetadata, v.Meta.FallbackTrace
	case query.UncertaintyAnalysisResult:
		return v.Meta.QualityMetadata, v.Meta.FallbackTrace
	default:
		return nil, nil
	}
}

// askErrorEnvelope mirrors toolsurface's error envelope shape (spec.md
// §7); duplicated rather than imported because toolsurface's is
// intentionally unexported to that package's transports.
type askErrorEnvelope struct {
	Error       string   `json:"error"`
	Detail      string   `json:"detail"`
	Suggestions []string `json:"suggestions,omitempty"`
}

func writeAskError(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	status := http.StatusInternalServerError
	switch kind {
	case apperr.InvalidArgument, apperr.UnknownDataset, apperr.UnknownColumn, apperr.EntityUnresolved, apperr.GrainMismatch:
		status = http.StatusBadRequest
	case apperr.NoDataFound:
		status = http.StatusNotFound
	case apperr.RateLimited:
		status = http.StatusTooManyRequests
	case apperr.LLMUnavailable, apperr.StorageTransient, apperr.PoolExhausted, apperr.ConnectionUnhealthy:
		status = http.StatusServiceUnavailable
	case apperr.BudgetExhausted, apperr.StoragePermanent:
		status = http.StatusUnprocessableEntity
	}
	detail := err.Error()
	var suggestions []string
	if e, ok := apperr.As(err); ok {
		detail = e.Detail
		suggestions = e.Suggestions
	}
	writeJSON(w, status, askErrorEnvelope{Error: string(kind), Detail: detail, Suggestions: suggestions})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ipRateLimitMiddleware enforces the fixed-window per-IP limit from
// spec.md §4.10, responding 429 with a retry hint on breach.
func ipRateLimitMiddleware(limiter *ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := r.RemoteAddr
			if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
				ip = host
			}
			if !limiter.Allow(ip) {
				w.Header().Set("Retry-After", "60")
				writeJSON(w, http.StatusTooManyRequests, askErrorEnvelope{
					Error:  string(apperr.RateLimited),
					Detail: "too many requests, retry after 60 seconds",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
