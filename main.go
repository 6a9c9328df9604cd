package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"gobandit/internal"
	"gobandit/internal/api"
	"gobandit/internal/bandit"
	"gobandit/internal/config"
	"gobandit/internal/container"
	"gobandit/ui"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := internal.NewLogger(appConfig.Log.Level)

	appContainer, err := container.New(appConfig, logger)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	defer appContainer.Shutdown(context.Background())

	if appConfig.Database.Enabled() {
		db, err := container.OpenDatabase(context.Background(), appConfig.Database)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		if err := appContainer.InitWithDatabase(db); err != nil {
			log.Fatalf("Failed to initialize container: %v", err)
		}
	} else {
		logger.Warn("DATABASE_URL not set, runs are kept in memory")
	}

	gin.SetMode(appConfig.Server.GinMode)
	defaults := bandit.EnsembleConfig{Seed: appConfig.Bandit.Seed, Window: appConfig.Bandit.Window}
	router := api.NewRouter(
		api.NewSessionHandler(appContainer.Sessions, defaults),
		api.NewRunHandler(appContainer.Evaluator, appContainer.Ledger, defaults),
	)
	apiServer := &http.Server{Addr: ":" + appConfig.Server.Port, Handler: router}

	reportApp, err := ui.NewApp(ui.Config{Port: appConfig.Server.ReportPort}, appContainer.Ledger, logger)
	if err != nil {
		log.Fatalf("Failed to initialize report UI: %v", err)
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("Starting bandit API on %s", apiServer.Addr)
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	go func() {
		if err := reportApp.Start(); err != nil {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		logger.Info("Received %s, shutting down", sig)
	case err := <-errCh:
		logger.Error("Server failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), appConfig.Server.ShutdownTimeout)
	defer cancel()
	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Error("API shutdown: %v", err)
	}
	if err := reportApp.Shutdown(ctx); err != nil {
		logger.Error("Report UI shutdown: %v", err)
	}
}
