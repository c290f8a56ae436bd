package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"bikeplan/internal/archive"
	"bikeplan/internal/config"
	"bikeplan/internal/gbfs"
	"bikeplan/internal/geocode"
	"bikeplan/internal/handler"
	"bikeplan/internal/planner"
	"bikeplan/internal/realtime"
	"bikeplan/internal/server"
	"bikeplan/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// CLI flags
	flag.IntVar(&cfg.Port, "port", cfg.Port, "HTTP server port")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to the SQLite database")
	flag.StringVar(&cfg.GBFSURL, "gbfs-url", cfg.GBFSURL, "GBFS auto-discovery URL")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// Cancelled on SIGINT/SIGTERM for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := storage.Open(cfg.DBPath, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	feed := gbfs.NewClient(cfg.GBFSURL, cfg.HTTPTimeout, cfg.FeedCacheTTL, logger)

	opts := planner.Options{Candidates: cfg.Candidates}
	if cfg.Archive != nil {
		opts.Archive = archive.New(*cfg.Archive, logger)
		logger.Info("archiving trip plans", "bucket", cfg.Archive.Bucket, "prefix", cfg.Archive.Prefix)
	}
	p := planner.New(feed, db, realtime.Placeholder{}, opts, logger)

	geo := geocode.New(cfg.GeocoderURL, cfg.GeocoderViewbox, "bikeplan/1.0 (trip planner)")
	h := handler.New(p, feed, db, geo, logger)

	srv := server.New(cfg, h, logger)
	if err := srv.ListenAndServe(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
