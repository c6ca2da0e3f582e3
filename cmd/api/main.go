package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"storefront/internal/auth"
	"storefront/internal/catalog"
	"storefront/internal/categories"
	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/logger"
	"storefront/internal/products"
	"storefront/internal/specgroups"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	log, err := logger.New(logger.Config{
		Development: cfg.IsDev(),
		Level:       cfg.LogLevel,
		Encoding:    cfg.LogEncoding,
	})
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPostgres(ctx, cfg.DatabaseURL, db.Options{
		MaxConns: int32(cfg.DBMaxConns),
		MinConns: int32(cfg.DBMinConns),
	})
	if err != nil {
		log.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	jwtMgr := auth.NewJWTManager(auth.JWTConfig{
		Issuer:        cfg.JWTIssuer,
		AccessSecret:  cfg.JWTAccessSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		AccessTTL:     time.Duration(cfg.AccessTokenTTLMin) * time.Minute,
		RefreshTTL:    time.Duration(cfg.RefreshTokenTTLDays) * 24 * time.Hour,
	})

	authHandler := auth.NewHandler(auth.Dependencies{
		JWT:     jwtMgr,
		Users:   auth.NewUserRepo(pool),
		Refresh: auth.NewRefreshRepo(pool),
		Log:     log.Named("auth"),
	})

	resolver := catalog.NewResolver(catalog.NewPGStore(pool), log.Named("catalog"), catalog.Options{
		MaxPathDepth: cfg.CatalogPathMaxDepth,
		CacheSize:    cfg.CatalogCacheSize,
		CacheTTL:     time.Duration(cfg.CatalogCacheTTLSec) * time.Second,
	})
	catalogHandler := catalog.NewHandler(resolver, log.Named("catalog"))

	catHandler := categories.NewHandler(categories.NewRepo(pool), resolver, log.Named("categories"))
	specHandler := specgroups.NewHandler(specgroups.NewRepo(pool), resolver, log.Named("specgroups"))
	prodHandler := products.NewHandler(products.NewRepo(pool), resolver, log.Named("products"))

	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api")
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
		authGroup.POST("/logout", authHandler.Logout)
	}

	// Public catalog routes (no login required)
	api.GET("/categories", catHandler.ListPublic)
	api.GET("/categories/:id/specs", catalogHandler.CategorySpecs)
	api.GET("/categories/:id/path", catalogHandler.Path)
	api.GET("/categories/:id/breadcrumb", catalogHandler.Breadcrumb)
	api.GET("/products", prodHandler.ListPublic)
	api.GET("/products/:id", prodHandler.GetPublic)

	protected := api.Group("/")
	protected.Use(auth.AuthMiddleware(jwtMgr))
	{
		protected.GET("/me", authHandler.Me)
		protected.POST("/auth/logout-all", authHandler.LogoutAll)

		admin := protected.Group("/admin")
		admin.Use(auth.RequireAdmin(cfg.AdminEmails))

		admin.GET("/categories", catHandler.AdminList)
		admin.POST("/categories", catHandler.AdminCreate)
		admin.PATCH("/categories/:id", catHandler.AdminUpdate)
		admin.DELETE("/categories/:id", catHandler.AdminDelete)

		admin.GET("/spec-groups", specHandler.AdminList)
		admin.GET("/spec-groups/:id", specHandler.AdminGet)
		admin.POST("/spec-groups", specHandler.AdminCreate)
		admin.PATCH("/spec-groups/:id", specHandler.AdminUpdate)
		admin.DELETE("/spec-groups/:id", specHandler.AdminDelete)

		admin.POST("/products", prodHandler.AdminCreate)
		admin.DELETE("/products/:id", prodHandler.AdminDeactivate)
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown", zap.Error(err))
	}
}
