package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dailymath/dailymath/internal/api"
	"github.com/dailymath/dailymath/internal/app"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the app core and its HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			application, err := app.New(ctx, cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			defer application.Close()

			if err := application.Start(ctx); err != nil {
				return err
			}

			apiHandler := api.NewAPIHandler(api.Services{
				Users:       application.Users,
				Linker:      application.Linker,
				Questions:   application.Questions,
				History:     application.History,
				Submissions: application.Submissions,
			})
			uploadsDir := ""
			if application.LocalBlobs != nil {
				uploadsDir = application.LocalBlobs.Dir()
			}
			router := api.NewRouter(apiHandler, uploadsDir)

			serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)
			srv := &http.Server{
				Addr:         serverAddr,
				Handler:      router,
				ReadTimeout:  15 * time.Second,
				WriteTimeout: 60 * time.Second, // grading calls can take time
				IdleTimeout:  120 * time.Second,
			}

			serverErr := make(chan error, 1)
			go func() {
				log.Printf("Starting server on %s. Press Ctrl+C to quit.", serverAddr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- fmt.Errorf("could not listen on %s: %w", serverAddr, err)
				}
				close(serverErr)
			}()

			select {
			case err := <-serverErr:
				return err
			case <-ctx.Done():
			}
			log.Println("Shutting down server...")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("server forced to shutdown: %w", err)
			}

			log.Println("Server exiting gracefully")
			return nil
		},
	}
}

