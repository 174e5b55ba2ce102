package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"

	"github.com/oarkflow/oracle/nlp/config"
	"github.com/oarkflow/oracle/nlp/oracle"
	"github.com/oarkflow/oracle/nlp/server"
	"github.com/oarkflow/oracle/nlp/store"
	"github.com/oarkflow/oracle/nlp/telemetry"
)

func main() {
	cfgPath := flag.String("config", "oracle.yaml", "configuration file (.yaml, .json or .bcl)")
	envPath := flag.String("env", ".env", "environment file")
	addr := flag.String("addr", "", "listen address, overrides the configuration")
	flag.Parse()

	cfg := config.MustLoad(*cfgPath, *envPath)
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	closer, err := telemetry.SetupLogging(cfg.Log)
	if err != nil {
		log.Fatal(err)
	}
	defer closer.Close()

	engine, err := cfg.NewEngine(slog.Default())
	if err != nil {
		log.Fatal(err)
	}
	var st server.Store
	if cfg.Store.DSN != "" {
		db, err := store.Open(cfg.Store.DSN)
		if err != nil {
			log.Fatal(err)
		}
		defer db.Close()
		st = db
	}

	sampler := oracle.NewSampler(rand.New(rand.NewSource(cfg.Sample.Seed)))
	srv := server.New(engine, sampler, st, server.Options{
		RateLimit:  cfg.Server.RateLimit,
		Burst:      cfg.Server.Burst,
		AccessLogs: true,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	go func() {
		err := config.Watch(ctx, *cfgPath, func(next *config.Config) {
			e, err := next.NewEngine(slog.Default())
			if err != nil {
				slog.Error("Configuration change rejected", slog.String("err", err.Error()))
				return
			}
			srv.SetEngine(e)
			slog.Info("Engine reloaded",
				slog.String("method", next.Oracle.Method), slog.Int("beam_width", next.Oracle.BeamWidth))
		})
		if err != nil {
			slog.Warn("Config watch disabled", slog.String("err", err.Error()))
		}
	}()

	if err := srv.Run(ctx, cfg.Server.Addr); err != nil {
		slog.Error("Server error", slog.String("err", err.Error()))
		os.Exit(1)
	}
}
