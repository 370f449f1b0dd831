package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mart_inventory/internal/config"
	"mart_inventory/internal/database"
	"mart_inventory/internal/router"
	"mart_inventory/pkg/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.LoadServer()
	utils.InitLogger(cfg.LogLevel, cfg.LogFile)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	openCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	db, err := database.Open(openCtx, cfg.DBDriver, cfg.DatabaseDSN)
	cancel()
	if err != nil {
		// Keep serving: /health reports database=false and data routes answer 503.
		utils.LogError(err, "Database connection failed; serving without a database", map[string]interface{}{"driver": cfg.DBDriver})
	} else {
		defer db.Close()
		utils.LogInfo("Database initialized", map[string]interface{}{"driver": cfg.DBDriver})
	}

	if !cfg.GinDebug {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(utils.GinLogger())
	engine.Use(func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 50<<20)
		c.Next()
	})

	router.Setup(engine, db, router.Options{
		AllowedOrigins:       cfg.CORSOrigins,
		SharedSecret:         []byte(cfg.SharedSecret),
		TransactionReadLimit: cfg.TransactionReadLimit,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.LogInfo("Server starting", map[string]interface{}{"addr": cfg.Addr(), "api": "http://" + cfg.Addr() + "/api"})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.LogError(err, "Failed to start server")
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.LogError(err, "Server shutdown failed")
	}
	utils.LogInfo("Server stopped")
}
