package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/kailashhh7/traffic-accident-hotspot-analysis/internal/api"
	"github.com/kailashhh7/traffic-accident-hotspot-analysis/internal/config"
	"github.com/kailashhh7/traffic-accident-hotspot-analysis/internal/db"
	"github.com/kailashhh7/traffic-accident-hotspot-analysis/internal/version"
)

var (
	configPath  = flag.String("config", "", "Path to a JSON config file (defaults apply when empty)")
	listen      = flag.String("listen", "", "Listen address (overrides config)")
	dbPath      = flag.String("db", "", "Path to the sqlite database (overrides config)")
	devMode     = flag.Bool("dev", false, "Read migrations from internal/db/migrations on disk")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

// Main
func main() {
	flag.Usage = usage
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	applyFlagOverrides(cfg, *listen, *dbPath)
	db.DevMode = *devMode

	if args := flag.Args(); len(args) > 0 {
		if args[0] != "migrate" {
			usage()
			os.Exit(2)
		}
		if err := db.RunMigrateCommand(args[1:], cfg.GetDBPath(), os.Stdout); err != nil {
			log.Fatalf("migrate: %v", err)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal(err)
	}
	log.Printf("Graceful shutdown complete")
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] [migrate <command>]\n\n", os.Args[0])
	flag.PrintDefaults()
}

// loadConfig reads the config file at path, or returns defaults when
// path is empty.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.EmptyConfig(), nil
	}
	return config.LoadConfig(path)
}

// applyFlagOverrides lets non-empty command line values win over the file.
func applyFlagOverrides(cfg *config.Config, listen, dbPath string) {
	if listen != "" {
		cfg.Listen = &listen
	}
	if dbPath != "" {
		cfg.DBPath = &dbPath
	}
}

// newHandler mounts the API and the admin debug routes on one mux.
func newHandler(database *db.DB, cfg *config.Config) http.Handler {
	mux := api.NewServer(database, cfg).ServeMux()
	database.AttachAdminRoutes(mux)
	return api.LoggingMiddleware(mux)
}

// run serves until ctx is cancelled, then shuts the server down within
// the configured timeout.
func run(ctx context.Context, cfg *config.Config) error {
	database, err := db.NewDB(cfg.GetDBPath())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	server := &http.Server{
		Addr:    cfg.GetListen(),
		Handler: newHandler(database, cfg),
	}

	errc := make(chan error, 1)
	go func() {
		log.Printf("listening on %s (db %s)", server.Addr, cfg.GetDBPath())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	log.Println("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GetShutdownTimeout())
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
		// Force close the server if graceful shutdown fails
		if err := server.Close(); err != nil {
			log.Printf("HTTP server force close error: %v", err)
		}
	}
	return nil
}
