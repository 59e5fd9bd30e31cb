// Command server runs the shibgate session gateway: it reconciles
// Shibboleth SP-asserted principals against the local account store,
// issues sessions, and serves the SSO link endpoints the host wiki
// consumes.
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
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wikifed/shibgate/auth"
	"github.com/wikifed/shibgate/auth/db"
	"github.com/wikifed/shibgate/internal/slogging"
)

func main() {
	if err := run(); err != nil {
		slogging.Get().Error("Server exited with error: %v", err)
		os.Exit(1)
	}
}

func run() error {
	config, err := auth.LoadConfig()
	if err != nil {
		return err
	}

	if err := slogging.Initialize(slogging.Config{
		Level:            slogging.ParseLogLevel(config.Server.LogLevel),
		IsDev:            config.Server.IsDev,
		LogDir:           config.Server.LogDir,
		AlsoLogToConsole: true,
	}); err != nil {
		return err
	}
	logger := slogging.Get()
	defer func() { _ = logger.Close() }()

	dbManager := db.NewManager()
	defer func() { _ = dbManager.Close() }()

	if err := dbManager.InitGorm(config.Database.URL); err != nil {
		return err
	}
	if err := dbManager.Gorm().Migrate(); err != nil {
		return err
	}
	if err := dbManager.InitRedis(db.RedisConfig{
		Host:     config.Redis.Host,
		Port:     config.Redis.Port,
		Password: config.Redis.Password,
		DB:       config.Redis.DB,
	}); err != nil {
		return err
	}

	service, err := auth.NewService(dbManager, config)
	if err != nil {
		return err
	}

	if !config.Server.IsDev {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(auth.RequestID())

	middleware := auth.NewMiddleware(service)
	router.Use(middleware.Authenticate())

	auth.NewHandlers(service).RegisterRoutes(router)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	server := &http.Server{
		Addr:              config.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("shibgate listening on %s", config.Server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("Received %s, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return server.Shutdown(ctx)
}
