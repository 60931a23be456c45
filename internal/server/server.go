package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	chromem "github.com/philippgille/chromem-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/oalvarez/petfolio/config"
	"github.com/oalvarez/petfolio/internal/chat"
	"github.com/oalvarez/petfolio/internal/chat/index"
	"github.com/oalvarez/petfolio/internal/chat/memory"
	"github.com/oalvarez/petfolio/internal/runtime"
	"github.com/oalvarez/petfolio/internal/store"
	"github.com/oalvarez/petfolio/provider"
)

func Run(cfg *config.Config) error {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	// Unified HTTP error handler with structured JSON and logging
	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		baseLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Cookie", "Authorization"},
		AllowCredentials: true,
	}))

	e.GET("/healthz", func(c echo.Context) error { return c.String(200, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	ctx := context.Background()
	dsn, err := cfg.Storage.Postgres.DSN()
	if err != nil {
		return err
	}
	if err := Migrate("file://migrations", dsn, "up", 0); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	st, err := store.NewWithDSN(ctx, dsn)
	if err != nil {
		return err
	}

	secret, err := runtime.LoadJWTSecret(cfg)
	if err != nil {
		return err
	}

	// optional redis: distributed session memory and scheduler locks
	var rdb *redis.Client
	if cfg.Storage.Redis.Enabled() {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Storage.Redis.Addr(),
			Password: cfg.Storage.Redis.Password,
			DB:       cfg.Storage.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis connection failed (%s): %w", cfg.Storage.Redis.Addr(), err)
		}
	}

	// chat subsystem wiring
	llm, err := provider.NewProvider(cfg.Providers)
	if err != nil {
		return err
	}
	vectors, err := chromem.NewPersistentDB(cfg.Storage.VectorDir, false)
	if err != nil {
		return fmt.Errorf("open vector store: %w", err)
	}
	chatLogger := log.New(log.Writer(), "[CHAT] ", log.LstdFlags)
	builder := index.NewBuilder(vectors, llm, index.Config{
		ChunkSize:    cfg.Chat.ChunkSize,
		ChunkOverlap: cfg.Chat.ChunkOverlap,
		TopK:         cfg.Chat.TopK,
		FetchTimeout: cfg.Chat.FetchTimeout,
	}, chatLogger)

	var sessions memory.Store
	switch cfg.Chat.SessionStore {
	case "redis":
		if rdb == nil {
			return fmt.Errorf("chat.session_store=redis but storage.redis is not configured")
		}
		sessions = memory.NewRedisStore(rdb, cfg.Chat.MaxTurns(), cfg.Chat.SessionTTL)
	default:
		sessions = memory.NewInMemory(cfg.Chat.MaxTurns(), cfg.Chat.SessionTTL)
	}

	composer := chat.NewComposer(llm, cfg.Chat.ModelTimeout, chatLogger)
	build := func(ctx context.Context, petID string, urls []string) (chat.Searcher, error) {
		ix, err := builder.Build(ctx, petID, urls)
		if err != nil {
			return nil, err
		}
		return ix, nil
	}
	chatSvc := chat.NewService(st, sessions, composer, build, chatLogger)

	api := e.Group("/api")
	auth := &AuthHandler{Store: st, Secret: secret}
	auth.Register(api.Group("/auth"))

	ph := &PetsHandler{Store: st}
	ph.Register(api.Group("/pets"), secret)

	rh := &RecordsHandler{Store: st}
	rh.Register(api.Group("/pets"), secret)

	rem := &RemindersHandler{Store: st}
	rem.Register(api.Group("/reminders"), secret)

	nh := &NotificationsHandler{Store: st}
	nh.Register(api.Group("/notifications"), secret)

	ch := &ChatHandler{Svc: chatSvc}
	ch.Register(api.Group("/chat"), secret)

	sched := &Scheduler{Store: st, Stop: make(chan struct{}), Rdb: rdb}
	sched.Start()

	addr := cfg.General.Listen
	if addr == "" {
		addr = ":8080"
	}
	log.Printf("listening on %s", addr)
	return e.Start(addr)
}
