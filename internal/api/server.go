// Package api provides HTTP handlers and the main API server logic for Gezgin.
//
// It exposes RESTful endpoints for onboarding, trip plan management, the
// planner conversation, and the live trip surfaces (briefing, live check,
// tour guide). The API integrates with the planner, genai, and store modules.
package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/gezgin-ai/gezgin/internal/genai"
	"github.com/gezgin-ai/gezgin/internal/planner"
	"github.com/gezgin-ai/gezgin/internal/scheduler"
	"github.com/gezgin-ai/gezgin/internal/store"
	"github.com/gezgin-ai/gezgin/internal/util"
)

const (
	// DefaultAddr is the default listen address for the API server.
	DefaultAddr = ":8080"

	// briefingCacheTTL keeps daily briefings warm; the content changes slowly.
	briefingCacheTTL = 30 * time.Minute
	// liveCheckCacheTTL is short: live statuses go stale fast.
	liveCheckCacheTTL = 5 * time.Minute
	// cacheSweepInterval is how often expired advisory entries are purged.
	cacheSweepInterval = 10 * time.Minute

	// DefaultGenerateTimeout bounds one generator round trip.
	DefaultGenerateTimeout = 60 * time.Second
)

// Opts holds configuration options for the API server.
type Opts struct {
	Addr string
}

// Option configures API server options.
type Option func(*Opts)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// Server wires the session state, the store, and the generation client behind
// the HTTP surface.
type Server struct {
	st       store.Store
	ga       genai.ClientInterface
	session  *planner.SessionState
	advisory *cache.Cache
}

// NewServer assembles a server around an existing store and generation client.
func NewServer(st store.Store, ga genai.ClientInterface) *Server {
	session := planner.NewSessionState(st)
	return &Server{
		st:       st,
		ga:       ga,
		session:  session,
		advisory: cache.New(briefingCacheTTL, cacheSweepInterval),
	}
}

// Run initializes the store, the generation client, and the HTTP server, then
// blocks serving requests. It is the composition root used by cmd/gezgin.
func Run(storeOpts []store.Option, genaiOpts []genai.Option, apiOpts []Option) error {
	var cfg Opts
	for _, opt := range apiOpts {
		opt(&cfg)
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}

	st, err := openStore(storeOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer st.Close()

	ga, err := genai.NewClient(genaiOpts...)
	if err != nil {
		return fmt.Errorf("failed to initialize GenAI client: %w", err)
	}

	srv := NewServer(st, ga)
	if err := srv.session.Hydrate(); err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}

	if util.ParseBoolEnv("GEZGIN_LIVE_REFRESH", true) {
		sched := scheduler.NewScheduler()
		defer sched.Stop()
		if err := sched.AddJob(scheduler.DefaultLiveCheckSpec, srv.refreshLiveStatuses); err != nil {
			return fmt.Errorf("failed to schedule live status refresh: %w", err)
		}
	}
	defer func() {
		if err := srv.session.Flush(); err != nil {
			slog.Error("Server.Run: final flush failed", "error", err)
		}
	}()

	slog.Info("Server.Run: Gezgin API listening", "addr", cfg.Addr)
	return http.ListenAndServe(cfg.Addr, srv.Routes())
}

// openStore picks the backend from the configured DSN. An empty DSN yields
// the in-memory store.
func openStore(storeOpts []store.Option) (store.Store, error) {
	var cfg store.Opts
	for _, opt := range storeOpts {
		opt(&cfg)
	}
	switch {
	case cfg.DSN == "":
		slog.Info("Server.openStore: no DSN configured, using in-memory store")
		return store.NewInMemoryStore(), nil
	case store.DetectDSNType(cfg.DSN) == "postgres":
		return store.NewPostgresStore(store.WithPostgresDSN(cfg.DSN))
	default:
		return store.NewSQLiteStore(store.WithSQLiteDSN(cfg.DSN))
	}
}

// Routes builds the HTTP mux for the API surface.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/signup", s.signupHandler)
	mux.HandleFunc("POST /auth/login", s.loginHandler)

	mux.HandleFunc("POST /onboarding", s.onboardingHandler)
	mux.HandleFunc("GET /profile", s.profileHandler)

	mux.HandleFunc("GET /plans", s.listPlansHandler)
	mux.HandleFunc("GET /plans/active", s.activePlanHandler)
	mux.HandleFunc("POST /plans/active/confirm", s.confirmPlanHandler)
	mux.HandleFunc("GET /plans/active/days", s.daySummariesHandler)
	mux.HandleFunc("GET /plans/active/days/{day}", s.dayHandler)
	mux.HandleFunc("GET /plans/{id}", s.getPlanHandler)
	mux.HandleFunc("POST /plans/{id}/activate", s.activatePlanHandler)
	mux.HandleFunc("DELETE /plans/{id}", s.deletePlanHandler)

	mux.HandleFunc("POST /chat", s.chatHandler)
	mux.HandleFunc("POST /guide", s.guideHandler)
	mux.HandleFunc("GET /briefing/{day}", s.briefingHandler)
	mux.HandleFunc("GET /livecheck/{day}", s.liveCheckHandler)

	mux.HandleFunc("POST /activities/{id}/arrive", s.arriveHandler)
	mux.HandleFunc("POST /activities/{id}/favorite", s.favoriteHandler)
	mux.HandleFunc("DELETE /activities/{id}", s.removeActivityHandler)

	mux.HandleFunc("GET /favorites", s.favoritesHandler)
	mux.HandleFunc("GET /stamps", s.stampsHandler)
	mux.HandleFunc("GET /notifications", s.notificationsHandler)

	mux.HandleFunc("GET /health", s.healthHandler)
	return mux
}
