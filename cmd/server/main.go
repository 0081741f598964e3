package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"drawroom/internal/auth"
	"drawroom/internal/config"
	"drawroom/internal/database"
	"drawroom/internal/handlers"
	"drawroom/internal/history"
	"drawroom/internal/presence"
	"drawroom/internal/services"
	"drawroom/internal/telemetry"
	"drawroom/internal/websocket"
	"drawroom/pkg/logger"
)

const (
	shutdownTimeout = 15 * time.Second
	recorderTimeout = 5 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", logger.Err(err))
	}

	logger.Setup(logger.Options{
		Service: cfg.Service.Name,
		Level:   cfg.Logger.Level,
		Format:  cfg.Logger.Format,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.Init(ctx, cfg.Service, cfg.Telemetry)
	if err != nil {
		logger.Fatal("failed to initialise tracing", logger.Err(err))
	}

	db, err := openDatabase(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("failed to connect to database", logger.Err(err))
	}
	defer db.Close()

	presenceStore, closePresence := openPresence(ctx, cfg.Redis)
	defer closePresence()

	authService := auth.NewService(db, cfg.JWT)
	roomService := services.NewRoomService(db, presenceStore, cfg.Rooms.HistoryLimit)

	recorder := history.NewRecorder(db, cfg.Rooms.RecorderBuffer, recorderTimeout)
	hubManager := websocket.NewManager(recorder, cfg.Rooms.HubIdleTimeout)
	hubManager.StartCleanup(time.Minute)
	registry := websocket.NewRegistry(authService)
	protocol := websocket.NewProtocol(registry, hubManager, presenceStore)

	router := handlers.NewRouter(cfg.Service.Name, handlers.Handlers{
		Auth:      handlers.NewAuthHandlers(authService),
		Rooms:     handlers.NewRoomHandlers(roomService, authService),
		WebSocket: handlers.NewWebSocketHandlers(registry, protocol, cfg.Rooms.SendBuffer, cfg.Rooms.MaxMessageSize),
		Health:    handlers.NewHealthHandlers(hubManager, registry),
	})

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("server started", "addr", cfg.Server.Port, "env", cfg.Service.Env)
		printAPIEndpoints()
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", logger.Err(err))
		}
	}()

	<-ctx.Done()
	logger.Info("server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", logger.Err(err))
	}
	hubManager.Stop()
	if err := recorder.Close(shutdownCtx); err != nil {
		logger.Error("history recorder did not drain", logger.Err(err))
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		logger.Error("tracer shutdown failed", logger.Err(err))
	}
	logger.Info("server stopped")
}

// openDatabase connects to Postgres and applies the schema. DATABASE_URL=memory
// selects the in-process store.
func openDatabase(ctx context.Context, cfg config.DatabaseConfig) (database.Database, error) {
	if cfg.URL == "memory" {
		logger.Warn("using in-memory database, history is lost on restart")
		return database.NewMemoryDB(), nil
	}

	db, err := database.NewPostgresDB(ctx, cfg.URL, cfg.PingTimeout)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// openPresence falls back to no presence tracking when Redis is not
// configured or unreachable.
func openPresence(ctx context.Context, cfg config.RedisConfig) (presence.Store, func()) {
	if cfg.URL == "" {
		return presence.Noop{}, func() {}
	}

	rdb, err := presence.NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Warn("presence disabled", logger.Err(err))
		return presence.Noop{}, func() {}
	}
	return presence.NewRedisStore(rdb, cfg.PresenceTTL), func() {
		if err := rdb.Close(); err != nil {
			logger.Warn("failed to close redis", logger.Err(err))
		}
	}
}

func printAPIEndpoints() {
	logger.Info("api endpoints",
		"routes", []string{
			"POST /signup",
			"POST /signin",
			"POST /room",
			"GET  /room/{slug}",
			"GET  /room/{roomId}/presence",
			"GET  /chat/{roomId}",
			"GET  /health",
			"GET  /stats",
			"WS   /ws?token=",
		},
	)
}
