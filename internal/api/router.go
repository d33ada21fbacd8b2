package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/luraaya/factengine/internal/api/handlers"
	mw "github.com/luraaya/factengine/internal/api/middleware"
	"github.com/luraaya/factengine/internal/buildconfig"
	"github.com/luraaya/factengine/internal/domain"
	"github.com/luraaya/factengine/internal/ephemeris"
	"github.com/luraaya/factengine/internal/metrics"
	"github.com/luraaya/factengine/internal/service"
	"github.com/luraaya/factengine/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const serviceName = "factengine"

// Options configures NewApp. Zero values fall back to an in-memory place
// directory, the analytic ephemeris, and a private metrics registry.
type Options struct {
	DB             *pgxpool.Pool
	Places         domain.PlaceStore
	Engine         domain.EphemerisEngine
	Registry       *prometheus.Registry
	CalcVersion    string
	TZDataVersion  string
	HouseSystem    domain.HouseSystem
	APIKey         string
	RateLimitRPS   float64
	RateLimitBurst int
}

// App holds the router and background services for lifecycle management.
type App struct {
	Router       *chi.Mux
	Contracts    *service.ContractService
	Places       *service.PlaceService
	limiter      *mw.RateLimiter
	db           *pgxpool.Pool
	startTime    time.Time
	requestCount atomic.Int64
	errorCount   atomic.Int64
}

func NewApp(opts Options, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}

	// Stores
	places := opts.Places
	switch {
	case places != nil:
	case opts.DB != nil:
		places = store.NewPlaceStore(opts.DB)
	default:
		places = store.NewMemoryPlaceStore()
	}

	engine := opts.Engine
	if engine == nil {
		engine = ephemeris.NewAnalyticEngine()
	}

	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	m := metrics.New(reg)

	if opts.RateLimitRPS <= 0 {
		opts.RateLimitRPS = 100
	}
	if opts.RateLimitBurst <= 0 {
		opts.RateLimitBurst = 20
	}

	// Services
	contractSvc := service.NewContractService(engine, service.ContractConfig{
		CalcVersion:   opts.CalcVersion,
		TZDataVersion: opts.TZDataVersion,
		HouseSystem:   opts.HouseSystem,
	}, m, logger)
	placeSvc := service.NewPlaceService(places, logger)

	// Wire the place directory into contract computation
	contractSvc.SetPlaceStore(places)

	// Handlers
	computeHandler := handlers.NewComputeHandler(contractSvc, logger)
	placeHandler := handlers.NewPlaceHandler(placeSvc, logger)

	r := chi.NewRouter()

	app := &App{
		Router:    r,
		Contracts: contractSvc,
		Places:    placeSvc,
		limiter:   mw.NewRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst),
		db:        opts.DB,
		startTime: time.Now(),
	}

	// Metrics collector for middleware
	metricsCollector := mw.NewMetricsCollector(&app.requestCount, &app.errorCount, m)

	// Global middleware (order matters)
	r.Use(mw.RequestID)                // Generate/extract request ID first
	r.Use(middleware.RealIP)           // Extract real IP
	r.Use(metricsCollector.Middleware) // Collect metrics
	r.Use(mw.Logging(logger))          // Log all requests
	r.Use(middleware.Recoverer)        // Recover from panics
	r.Use(app.limiter.Middleware)      // Rate limiting

	// Service info, health, and metrics (no auth)
	r.Get("/", app.rootHandler(contractSvc.CalcVersion()))
	r.Get("/health", app.healthHandler())
	r.Get("/stats", app.statsHandler())
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	// Authenticated routes
	r.Route("/v1", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(opts.APIKey))

		r.Post("/compute", computeHandler.Compute)
		r.Post("/resolve", computeHandler.Resolve)

		// Place directory
		r.Route("/places", func(r chi.Router) {
			r.Get("/", placeHandler.List)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", placeHandler.GetByID)
				r.Put("/", placeHandler.Upsert)
				r.Delete("/", placeHandler.Delete)
			})
		})
	})

	return app
}

// Start launches background maintenance.
func (app *App) Start() {
	app.limiter.Start(10 * time.Minute)
}

// Stop halts background maintenance started by Start.
func (app *App) Stop() {
	app.limiter.Stop()
}

func (app *App) rootHandler(calcVersion string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":  "ok",
			"service": serviceName,
			"build":   buildconfig.VersionInfo(calcVersion),
		})
	}
}

func (app *App) healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if app.db != nil {
			if err := app.db.Ping(r.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "error", "error": err.Error()})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func (app *App) statsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		response := map[string]any{
			"uptime_seconds": uptime.Seconds(),
			"uptime_human":   uptime.Round(time.Second).String(),
			"request_count":  app.requestCount.Load(),
			"error_count":    app.errorCount.Load(),
			"goroutines":     runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"go_version": runtime.Version(),
		}

		writeJSON(w, http.StatusOK, response)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Ensure stores and engines satisfy interfaces at compile time.
var (
	_ domain.PlaceStore      = (*store.PlaceStore)(nil)
	_ domain.PlaceStore      = (*store.MemoryPlaceStore)(nil)
	_ domain.EphemerisEngine = (*ephemeris.AnalyticEngine)(nil)
	_ domain.EphemerisEngine = (*ephemeris.MockEngine)(nil)
)
