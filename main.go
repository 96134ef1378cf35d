package main

import (
	"context"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"focus-hub/core"
	"focus-hub/ledger"
	"focus-hub/notes"
	"focus-hub/pkg/auth"
	"focus-hub/pkg/resources"
	"focus-hub/pkg/servers"
	"focus-hub/quiz"
	"focus-hub/users"
)

func main() {
	// 1. Config
	cfg, err := resources.LoadConfig(viper.New(), ".env")
	if err != nil {
		log.Fatal().Err(err).Str("stage", "startup").Str("component", "main").Msg("unable to load config")
	}

	// 2. Logger
	ctx := resources.ConfigureLogger(context.Background(), cfg)
	startupLogger := log.Ctx(ctx).With().Str("stage", "startup").Str("component", "main").Logger()
	shutdownLogger := log.Ctx(ctx).With().Str("stage", "shut down").Str("component", "main").Logger()

	startupLogger.Info().Msg("application starting up")
	defer shutdownLogger.Info().Msg("application stopped")

	// 3. Telemetry (traces/metrics/logs), zerolog bridged into OTel logs
	ctx, stopFn, err := resources.Observe(ctx, cfg)
	if err != nil {
		startupLogger.Fatal().Err(err).Msg("unable to setup otel telemetry")
	}
	defer stopFn(ctx, 15*time.Second)

	// 4. Store
	pool, stopFn, err := resources.CreateDatabaseConnectionPool(ctx, cfg)
	if err != nil {
		startupLogger.Fatal().Err(err).Msg("unable to create database connection pool")
	}
	defer stopFn(ctx, 15*time.Second)

	if cfg.DBAutoMigrate {
		err = resources.Migrate(ctx, pool)
		if err != nil {
			startupLogger.Fatal().Err(err).Msg("unable to migrate database")
		}
	}

	// 5. Wiring
	verifier, err := buildVerifier(cfg)
	if err != nil {
		startupLogger.Fatal().Err(err).Msg("unable to build token verifier")
	}

	options := core.Options{
		DefaultTimezone:        cfg.DefaultTimezone,
		MaxPageSize:            cfg.MaxPageSize,
		RecheckOverlapOnUpdate: cfg.RecheckOverlapOnUpdate,
	}

	classOptions := options
	classOptions.OwnerScopedDelete = cfg.ClassDeleteScope == resources.DeleteScopeOwner
	classes := core.NewService(core.KindClass, core.NewRepository(pool, core.KindClass), classOptions)

	taskOptions := options
	taskOptions.OwnerScopedDelete = true
	tasks := core.NewService(core.KindTask, core.NewRepository(pool, core.KindTask), taskOptions)

	generator := quiz.Disabled()
	if cfg.GeminiAPIKey != "" {
		generator, err = quiz.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			startupLogger.Fatal().Err(err).Msg("unable to build quiz generator")
		}
	} else {
		startupLogger.Warn().Msg("GEMINI_API_KEY not set, quiz generation disabled")
	}
	generator = quiz.WithBreaker(quiz.DefaultBreakerConfig("gemini"), generator)

	// 6. Daemons/servers setup

	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(otelgin.Middleware(cfg.Name))
	engine.Use(resources.RequestLogger())
	engine.Use(resources.NewHTTPMetrics(cfg.Name).Middleware())

	engine.GET("/", func(gctx *gin.Context) {
		gctx.String(http.StatusOK, "Focus hub is Running")
	})
	engine.GET("/health", resources.HealthHandler(pool))

	api := engine.Group("/", auth.Authenticate(verifier))
	core.Routes(api, core.NewHandlers(classes))
	core.Routes(api, core.NewHandlers(tasks))
	users.Routes(api, users.NewHandlers(users.NewRepository(pool)))
	notes.Routes(api, notes.NewHandlers(notes.NewRepository(pool), notes.NewSanitizer()))
	ledger.Routes(api, ledger.NewHandlers(ledger.NewRepository(pool)))
	quiz.Routes(api, quiz.NewHandlers(generator))

	restHandler := cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", resources.RequestIDHeader},
		ExposedHeaders:   []string{resources.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	})(engine)

	debugHandler := http.NewServeMux()
	debugHandler.HandleFunc("/debug/pprof/", pprof.Index)
	debugHandler.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	debugHandler.HandleFunc("/debug/pprof/profile", pprof.Profile)
	debugHandler.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	debugHandler.HandleFunc("/debug/pprof/trace", pprof.Trace)

	// 7. Daemons/servers lifecycle

	errChan := make(chan error, 16)

	stopFn = servers.Launch(ctx, servers.NewBaseServer("base-server", pool), errChan)
	defer stopFn(ctx, 15*time.Second)

	stopFn = servers.Launch(ctx, servers.NewHTTPServer("debug-server", "localhost", cfg.DebugPort, debugHandler), errChan)
	defer stopFn(ctx, 15*time.Second)

	stopFn = servers.Launch(ctx, servers.NewHTTPServer("rest-server", cfg.HTTPHost, cfg.HTTPPort, restHandler), errChan)
	defer stopFn(ctx, 15*time.Second)

	startupLogger.Info().Str("addr", cfg.HTTPHost+":"+cfg.HTTPPort).Msg("application running")

	// 8. Wait for shutdown signal

	notifyCtx, cancelNotifyFn := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer cancelNotifyFn()

	select {
	case <-notifyCtx.Done():
		startupLogger.Info().Msg("application shutdown requested")
	case runErr := <-errChan:
		shutdownLogger.Error().Err(runErr).Msg("runtime error")
	}
}

func buildVerifier(cfg *resources.Config) (auth.Verifier, error) {
	verifierCfg := auth.Config{
		SigningMethod: cfg.AuthSigningMethod,
		Secret:        cfg.AuthSecret,
		Issuer:        cfg.AuthIssuer,
		Audience:      cfg.AuthAudience,
	}

	if cfg.AuthPublicKeyFile != "" {
		pem, err := os.ReadFile(cfg.AuthPublicKeyFile)
		if err != nil {
			return nil, err
		}
		verifierCfg.PublicKeyPEM = pem
	}

	return auth.NewVerifier(verifierCfg)
}
