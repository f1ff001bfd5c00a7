package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pub_pos_backend/internal/cart"
	"pub_pos_backend/internal/config"
	"pub_pos_backend/internal/database"
	"pub_pos_backend/internal/handlers"
	"pub_pos_backend/internal/live"
	"pub_pos_backend/internal/metrics"
	"pub_pos_backend/internal/middleware"
	"pub_pos_backend/internal/models"
	"pub_pos_backend/internal/repositories"
	"pub_pos_backend/internal/router"
	"pub_pos_backend/internal/services"
	"pub_pos_backend/internal/session"
	"pub_pos_backend/internal/store"
	"pub_pos_backend/internal/textgen"
	"pub_pos_backend/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const serviceName = "pub-pos-backend"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	utils.InitLogger(cfg.LogLevel, cfg.Env)

	st, err := openStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("Failed to open document store")
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New(serviceName)
	}

	// Long-lived views back every read path.
	menuView := live.Watch(ctx, st, repositories.CollectionMenu, repositories.ViewOrder(repositories.CollectionMenu), repositories.DecodeMenuItem)
	orderView := live.Watch(ctx, st, repositories.CollectionOrders, repositories.ViewOrder(repositories.CollectionOrders), repositories.DecodeOrder)
	staffView := live.Watch(ctx, st, repositories.CollectionStaff, repositories.ViewOrder(repositories.CollectionStaff), repositories.DecodeStaff)
	settingsView := live.Watch(ctx, st, repositories.CollectionSettings, repositories.ViewOrder(repositories.CollectionSettings), repositories.DecodeSettings)
	defer func() {
		menuView.Close()
		orderView.Close()
		staffView.Close()
		settingsView.Close()
	}()

	// Initialize Repositories
	menuRepo := repositories.NewMenuRepository(st)
	orderRepo := repositories.NewOrderRepository(st)
	staffRepo := repositories.NewStaffRepository(st)
	settingsRepo := repositories.NewSettingsRepository(st)

	// Initialize Services
	sessions := session.NewManager(cfg.JWTSecret, cfg.SessionTTL)
	describer := textgen.NewClient(textgen.Config{
		BaseURL: cfg.TextGen.URL,
		APIKey:  cfg.TextGen.APIKey,
		Model:   cfg.TextGen.Model,
		Timeout: cfg.TextGen.Timeout,
	})

	settingsService := services.NewSettingsService(settingsRepo, settingsView)
	menuService := services.NewMenuService(menuRepo, menuView, describer)
	orderService := services.NewOrderService(orderRepo, menuRepo, menuService, settingsService, orderView, m)
	staffService := services.NewStaffService(staffRepo, staffView)
	authService := services.NewAuthService(staffRepo, sessions, m)
	reportService := services.NewReportService(menuView, orderView, staffService)

	if cfg.SeedMenu {
		seedMenu(ctx, menuView, menuService)
	}

	carts := cart.NewRegistry(cfg.CartTTL)
	go carts.Run(ctx, time.Minute)
	go purgeSessions(ctx, sessions, 10*time.Minute)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(utils.GinLogger())
	if m != nil {
		engine.Use(m.Middleware())
	}

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", middleware.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{middleware.RequestIDHeader}
	corsConfig.AllowCredentials = true
	engine.Use(cors.New(corsConfig))

	router.Setup(engine, sessions, m, router.Handlers{
		Auth:     handlers.NewAuthHandler(authService),
		Menu:     handlers.NewMenuHandler(menuService, reportService),
		Cart:     handlers.NewCartHandler(carts, menuService, orderService, settingsService),
		Order:    handlers.NewOrderHandler(orderService),
		Staff:    handlers.NewStaffHandler(staffService),
		Settings: handlers.NewSettingsHandler(settingsService),
		Report:   handlers.NewReportHandler(reportService),
		Live:     handlers.NewLiveHandler(st, m),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.LogInfo("Server starting", map[string]interface{}{"port": cfg.Port, "store": cfg.StoreDriver, "env": cfg.Env})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.LogError(err, "Failed to start server")
			stop()
		}
	}()

	<-ctx.Done()
	utils.LogInfo("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.LogError(err, "Graceful shutdown failed")
	}
}

func openStore(cfg *config.Config) (store.Store, error) {
	if cfg.StoreDriver == config.StoreMemory {
		utils.LogInfo("Using in-memory document store")
		return store.NewMemoryStore(repositories.Collections...), nil
	}

	dsn := cfg.DB.DSN()
	db, err := database.InitDB(dsn)
	if err != nil {
		return nil, err
	}
	if err := database.EnsureSchema(db, cfg.DB.SchemaPath); err != nil {
		db.Close()
		return nil, err
	}
	ps, err := store.NewPostgresStore(db, dsn)
	if err != nil {
		db.Close()
		return nil, err
	}
	return ps, nil
}

// seedMenu writes the demo catalog when the menu is empty.
func seedMenu(ctx context.Context, menuView *live.View[models.MenuItem], menuService services.MenuService) {
	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := menuView.Wait(waitCtx); err != nil {
		utils.LogError(err, "Menu seed skipped: menu view not ready")
		return
	}
	if len(menuView.Items()) > 0 {
		utils.LogDebug("Menu seed skipped: catalog not empty")
		return
	}
	if _, err := menuService.SeedMenu(ctx); err != nil {
		utils.LogError(err, "Menu seed failed")
	}
}

func purgeSessions(ctx context.Context, sessions *session.Manager, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sessions.PurgeRevoked(); n > 0 {
				utils.LogDebug("Purged revoked sessions", map[string]interface{}{"count": n})
			}
		}
	}
}
