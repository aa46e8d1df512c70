package main

import (
	"catalog_server/api"
	"catalog_server/database"
	"catalog_server/repository"
	"catalog_server/services"
	"catalog_server/storage"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/MonkyMars/gecho"
	"github.com/spf13/cobra"
)

var serveMemory bool

// catalog serve
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var db *database.DB
		var products repository.ProductRepository
		if serveMemory {
			logger.Warn("Serving from an in-memory product repository, nothing is persisted")
			products = repository.NewMemoryProductRepository()
		} else {
			if err := database.Initialize(); err != nil {
				return err
			}
			defer database.CloseInstance()

			db = database.GetInstance()
			if err := database.Migrate(ctx, db); err != nil {
				return err
			}
			products = repository.NewProductRepository(db)
		}

		images, err := storage.New(ctx, cfg)
		if err != nil {
			return err
		}

		sm := services.NewServiceManager(logger, cfg, db, products, images)
		defer sm.Close()

		server := &http.Server{
			Addr:           cfg.Server.Port,
			Handler:        api.App(cfg, sm, images),
			ReadTimeout:    cfg.Server.ReadTimeout,
			WriteTimeout:   cfg.Server.WriteTimeout,
			IdleTimeout:    cfg.Server.IdleTimeout,
			MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
		}

		serveErr := make(chan error, 1)
		go func() {
			logger.Info(fmt.Sprintf("Starting server (%s) on %s", cfg.Server.AppName, cfg.Server.Port))
			serveErr <- server.ListenAndServe()
		}()

		select {
		case err := <-serveErr:
			if !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Failed to start server", gecho.Field("error", err))
				return err
			}
			return nil
		case <-ctx.Done():
		}

		logger.Info("Received shutdown signal, draining connections", gecho.Field("timeout", cfg.Server.ShutdownTimeout.String()))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Graceful shutdown failed", gecho.Field("error", err))
			return err
		}
		logger.Info("Server stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveMemory, "memory", false, "keep products in memory instead of postgres")
}
