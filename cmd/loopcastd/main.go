package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aminofox/loopcast/pkg/config"
	"github.com/aminofox/loopcast/pkg/httpapi"
	"github.com/aminofox/loopcast/pkg/logger"
	"github.com/aminofox/loopcast/pkg/manifest"
	"github.com/aminofox/loopcast/pkg/playout"
	"github.com/aminofox/loopcast/pkg/servecache"
	"github.com/aminofox/loopcast/pkg/store"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	configFile := flag.String("config", "config.yaml", "Path to config file")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("loopcastd %s (commit: %s, built: %s)\n", version, commit, date)
		return
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewDefaultLogger(logger.ParseLevel(cfg.Logging.Level), cfg.Logging.Format)

	ctx := context.Background()

	resolver, err := store.New(store.Config{
		Type:            store.BackendType(cfg.Store.Type),
		BasePath:        cfg.Store.BasePath,
		Endpoint:        cfg.Store.Endpoint,
		Region:          cfg.Store.Region,
		Bucket:          cfg.Store.Bucket,
		AccessKeyID:     cfg.Store.AccessKeyID,
		SecretAccessKey: cfg.Store.SecretAccessKey,
	})
	if err != nil {
		log.Fatal("failed to construct resource store", logger.Err(err))
		return
	}
	defer resolver.Close()

	packages, err := manifest.ReadDir(ctx, cfg.Library.ManifestDir, resolver)
	if err != nil {
		log.Fatal("failed to load package library", logger.Err(err))
		return
	}
	log.Info("loaded package library", logger.Int("packages", len(packages)))

	specs := make([]playout.StreamSpec, len(cfg.Library.Streams))
	for i, s := range cfg.Library.Streams {
		kind, err := s.KindType()
		if err != nil {
			log.Fatal("invalid stream spec", logger.Err(err))
			return
		}
		specs[i] = playout.StreamSpec{
			Name:    s.Name,
			Kind:    kind,
			Width:   s.Width,
			Height:  s.Height,
			Bitrate: s.Bitrate,
		}
	}

	// A whole-second start keeps Locate's elapsed-second truncation aligned
	// with the Unix-second keys of the variant playlist cache.
	pl, err := playout.Assemble(packages, specs, time.Now().Truncate(time.Second))
	if err != nil {
		log.Fatal("failed to assemble playlist", logger.Err(err))
		return
	}
	log.Info("assembled playlist",
		logger.Int("streams", len(pl.Streams)),
		logger.Int("sources", len(packages)))

	var cache servecache.Cache
	switch cfg.Cache.Type {
	case "redis":
		client := servecache.NewClient(cfg.Cache.RedisAddress, cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
		cache = servecache.NewRedis(client, "loopcast:")
	default:
		cache = servecache.NewInMemory()
	}

	httpCfg := httpapi.Config{
		BindAddress:  cfg.Server.BindAddress,
		Base:         cfg.Server.Base,
		MediaBase:    cfg.Server.MediaBase,
		Speed:        cfg.Server.Speed,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	if cfg.Server.TLS != nil {
		httpCfg.TLS = &httpapi.TLSConfig{
			Domain:   cfg.Server.TLS.Domain,
			CacheDir: cfg.Server.TLS.CacheDir,
		}
	}
	server := httpapi.NewServer(httpCfg, pl, cache, cfg.Cache.TTL, log)

	go func() {
		if err := server.Start(); err != nil {
			log.Error("httpapi server error", logger.Err(err))
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	log.Info("loopcastd started", logger.String("addr", cfg.Server.BindAddress))

	<-sigChan
	log.Info("shutdown signal received, draining in-flight requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("error during shutdown", logger.Err(err))
	}

	log.Info("loopcastd stopped")
}
