package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"twin-sync/core/loader"
	"twin-sync/core/logger"
	"twin-sync/core/middleware/auth"
	"twin-sync/core/middleware/rayid"
	"twin-sync/feature/batches"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "twin-sync/docs/swagger"
)

// @title Twin Sync API
// @version 1.0
// @description Batch ingestion of part data into the twin registry and the dataspace catalog.
// @host localhost:8080
// @BasePath /

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the twin-sync server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := bootstrap(cmd.Context(), true)
		if err != nil {
			return err
		}
		logg := svc.log
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
			BodyLimit:             svc.cfg.Server.BodyLimit(),
		})

		mgr := loader.NewManager(logg)
		mgr.Register(batches.NewFeature(svc.orch, svc.storage, svc.cfg.Storage, logg))

		// RayID first so every log line of a request carries it.
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// Swagger stays public.
		app.Get("/swagger/*", swagger.HandlerDefault)

		app.Use(auth.New(auth.Config{ApiKey: svc.cfg.Server.ApiKey}))

		if err := mgr.LoadAll(app); err != nil {
			return err
		}

		errc := make(chan error, 1)
		go func() {
			logg.Info("Starting server", zap.String("port", svc.cfg.Server.Port))
			errc <- app.Listen(":" + svc.cfg.Server.Port)
		}()

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		select {
		case <-sig:
		case err := <-errc:
			return fmt.Errorf("server failed: %w", err)
		}

		logg.Info("Shutting down server...")
		_ = app.Shutdown()

		ctx, cancel := context.WithTimeout(context.Background(), svc.cfg.Server.ShutdownTimeout())
		defer cancel()
		if err := svc.orch.Shutdown(ctx); err != nil {
			logg.Warn("Running batches did not finish in time", zap.Error(err))
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
