package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"BIHIN-backend/internal/docs"
	"BIHIN-backend/internal/inventory/dashboard"
	"BIHIN-backend/internal/inventory/exports"
	"BIHIN-backend/internal/inventory/items"
	"BIHIN-backend/internal/inventory/rentals"
	"BIHIN-backend/internal/platform/apierr"
	"BIHIN-backend/internal/platform/auth"
	"BIHIN-backend/internal/platform/config"
	"BIHIN-backend/internal/platform/db"
	"BIHIN-backend/internal/platform/logger"
)

func main() {
	cfgPath := flag.String("config", "config/config.yaml", "path to config file")
	flag.Parse()

	// 設定読み込み
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		panic(err)
	}

	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("starting", "mode", cfg.Mode, "version", cfg.Version)

	conn, err := db.Connect(cfg.DB)
	if err != nil {
		logger.Error("db connect failed", "error", err)
		os.Exit(1)
	}
	defer conn.Close()
	logger.Info("connected to DB", "dbname", cfg.DB.DBName)

	if cfg.DB.Migrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := db.Migrate(ctx, conn)
		cancel()
		if err != nil {
			logger.Error("migration failed", "error", err)
			os.Exit(1)
		}
		logger.Info("schema migrated")
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(logger.Middleware(), gin.Recovery())
	_ = r.SetTrustedProxies(nil)

	if cfg.Mode == config.ModeDev {
		origins := cfg.Server.CORSOrigins
		if len(origins) == 0 {
			origins = []string{"http://localhost:3000"}
		}
		// CORS（開発中のみ必要）
		r.Use(cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", logger.HeaderRequestID},
			ExposeHeaders:    []string{"Content-Length", "Content-Disposition", logger.HeaderRequestID},
			AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowCredentials: true,
		}))

		docs.SwaggerInfo.Host = cfg.Server.Addr
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// ヘルス
	r.GET("/healthz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := conn.PingContext(ctx); err != nil {
			c.String(http.StatusServiceUnavailable, "db unavailable")
			return
		}
		c.String(http.StatusOK, "ok")
	})

	authSvc := auth.NewService(conn.DB, []byte(cfg.JWT.Secret), cfg.TokenTTL())
	itemSvc := items.NewService(conn)
	rentalSvc := rentals.NewService(conn, cfg.Location())

	// /api/v1
	api := r.Group("/api/v1")
	auth.RegisterRoutes(api, authSvc)

	protected := api.Group("", auth.RequireAuth(authSvc))
	auth.RegisterProtectedRoutes(protected, authSvc)
	items.RegisterRoutes(protected, itemSvc)
	rentals.RegisterRoutes(protected, rentalSvc)
	exports.RegisterRoutes(protected, exports.NewHandler(rentalSvc, exports.Options{
		CSVEncoding: cfg.App.CSVEncoding,
		PDFFontPath: cfg.App.PDFFontPath,
	}))
	dashboard.RegisterRoutes(protected, dashboard.NewService(itemSvc, rentalSvc))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, apierr.Body(apierr.CodeNotFound, "route not found"))
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		var err error
		if cfg.TLSEnabled() {
			logger.Info("listening (TLS)", "addr", cfg.Server.Addr)
			err = srv.ListenAndServeTLS(cfg.Certificate.Cert, cfg.Certificate.Key)
		} else {
			logger.Info("listening", "addr", cfg.Server.Addr)
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}
