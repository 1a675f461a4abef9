package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"boxmgr/internal/auth"
	"boxmgr/internal/config"
	"boxmgr/internal/database"
	"boxmgr/internal/handler"
	"boxmgr/internal/middleware"
	"boxmgr/internal/repository"
	"boxmgr/internal/router"
	"boxmgr/internal/service"
	"boxmgr/internal/token"
	"boxmgr/internal/vision"
)

type App struct {
	server *http.Server
	db     *database.DB
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	slog.Info("connecting to PostgreSQL")
	db, err := database.New(context.Background(), cfg.DatabaseURL, database.Options{
		MaxConns:     cfg.DBMaxConns,
		MinConns:     cfg.DBMinConns,
		ConnLifetime: cfg.DBConnLifetime,
		ConnIdleTime: cfg.DBConnIdleTime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.EnsureSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure database schema: %w", err)
	}

	pool := db.Pool
	userRepo := repository.NewUserRepository(pool)
	categoryRepo := repository.NewCategoryRepository(pool)
	boxRepo := repository.NewBoxRepository(pool)
	itemRepo := repository.NewItemRepository(pool)
	settingRepo := repository.NewSettingRepository(pool)
	slog.Info("database ready")

	if err := repairAdminAccess(context.Background(), userRepo); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to verify admin access: %w", err)
	}

	codec, err := token.NewCodec(cfg.TokenSecret, cfg.SessionTTL)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize token codec: %w", err)
	}
	resolver := auth.NewResolver(codec)
	authMiddleware := middleware.NewAuthMiddleware(resolver)

	authService := service.NewAuthService(userRepo, codec)
	userService := service.NewUserService(userRepo)
	inventoryService := service.NewInventoryService(categoryRepo, boxRepo, itemRepo)
	visionClient := vision.NewClient()
	scanService := service.NewScanService(boxRepo, itemRepo, settingRepo, visionClient)

	appRouter := router.New(cfg, authMiddleware, router.Handlers{
		Auth:     handler.NewAuthHandler(authService, resolver, cfg.SessionTTL, cfg.Production()),
		User:     handler.NewUserHandler(userService),
		Category: handler.NewCategoryHandler(inventoryService),
		Box:      handler.NewBoxHandler(inventoryService),
		Scan:     handler.NewScanHandler(scanService),
		Search:   handler.NewSearchHandler(inventoryService),
		Setting:  handler.NewSettingHandler(settingRepo),
		Health:   handler.NewHealthHandler(db),
	})

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      appRouter,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}

	return &App{server: server, db: db}, nil
}

// repairAdminAccess promotes every account when the user table is
// non-empty but holds no admin. That state can only be reached by
// external edits to the table; without the repair the user management
// API would be permanently unreachable.
func repairAdminAccess(ctx context.Context, users *repository.UserRepository) error {
	total, err := users.Count(ctx)
	if err != nil {
		return err
	}
	if total == 0 {
		return nil
	}

	admins, err := users.CountAdmins(ctx)
	if err != nil {
		return err
	}
	if admins > 0 {
		return nil
	}

	promoted, err := users.PromoteAllToAdmin(ctx)
	if err != nil {
		return err
	}

	slog.Warn("no admin account found, promoted all users", "count", promoted)
	return nil
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.db.Close()
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	a.db.Close()

	slog.Info("server stopped")
	return nil
}
