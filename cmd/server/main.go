package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/logparts/backend/config"
	httpDelivery "github.com/logparts/backend/internal/delivery/http"
	"github.com/logparts/backend/internal/infrastructure/catalogfile"
	"github.com/logparts/backend/internal/metrics"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "logparts",
		Short:         "Auto parts catalog search API",
		Long:          "LogParts serves confidence-ranked product search and \"did you mean\" suggestions over an auto parts catalog.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.PersistentFlags().String("config", "", "config file (default is ./config.yaml)")
	root.PersistentFlags().String("db-type", "", "product store: sqlite or memory")
	root.PersistentFlags().String("db-path", "", "path to the SQLite database")
	root.PersistentFlags().Bool("debug", false, "enable debug logging for search and storage")

	root.AddCommand(newServeCmd(), newSeedCmd())
	return root
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			return serve(cmd.Context(), cfg)
		},
	}

	cmd.Flags().String("port", "", "port to listen on")
	cmd.Flags().String("env", "", "environment: development or production")
	cmd.Flags().String("seed", "", "catalog file to load before serving")
	cmd.Flags().Bool("no-cache", false, "disable the response cache")
	return cmd
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed <catalog-file>",
		Short: "Load a YAML or JSON catalog file into the product store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			result, err := catalogfile.NewLoader(store.writer).LoadFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "read %d, inserted %d, skipped %d, errors %d\n",
				result.Read, result.Inserted, result.Skipped, len(result.Errors))
			for _, e := range result.Errors {
				fmt.Fprintf(cmd.ErrOrStderr(), "  %s\n", e)
			}
			return nil
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	log.Printf("Starting LogParts Backend v%s", httpDelivery.Version)
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Database: %s %s", cfg.Database.Type, cfg.Database.Path)

	metrics.Register()

	app, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	log.Printf("Search: default_limit=%d, max_limit=%d, candidates=x%d (max %d), debug=%v",
		cfg.Search.DefaultLimit,
		cfg.Search.MaxLimit,
		cfg.Search.CandidateMultiplier,
		cfg.Search.MaxCandidates,
		cfg.Search.EnableDebugLogging)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           app.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Printf("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
