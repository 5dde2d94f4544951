package main

import (
	"context"
	"flag"
	"log"
	"os"

	"FinChart/internal/di"
	"FinChart/pkg/config"
)

func main() {
	defaultPath := "config/config.yaml"
	if p := os.Getenv("FINCHART_CONFIG"); p != "" {
		defaultPath = p
	}
	configPath := flag.String("config", defaultPath, "config file path")
	checkOnly := flag.Bool("check", false, "validate the config and exit")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if *checkOnly {
		log.Printf("config ok: %s", *configPath)
		return
	}

	log.Printf("env=%s addr=%s series=%s cache=%s kafka=%t scheduler=%t",
		cfg.Environment, cfg.Addr(), cfg.Series.Source, cfg.Cache.Backend, cfg.Kafka.Enabled, cfg.Scheduler.Enabled)

	app, cleanup, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	// Run blocks until SIGINT or SIGTERM.
	err = app.Run(context.Background())
	cleanup()
	if err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
