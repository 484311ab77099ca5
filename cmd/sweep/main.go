package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/sigec-posto/internal/adapter/vault"
	"github.com/seu-repo/sigec-posto/internal/app"
	"github.com/seu-repo/sigec-posto/pkg/config"
)

var (
	configPath = flag.String("config", "", "Config file (defaults to the server search path)")
	timeout    = flag.Duration("timeout", 2*time.Minute, "Abort the sweep after this long")
	verbose    = flag.Bool("verbose", false, "Enable debug logging")
)

// sweep runs every alert rule once, for cron jobs and manual catch-up.
// It exits 0 when another replica holds the sweep lock.
func main() {
	flag.Parse()

	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadFrom(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}
	if *verbose {
		cfg.Logging.Level = "debug"
	}

	logger, err := app.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Sweep failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	if cfg.Vault.Enabled {
		secrets, err := vault.NewSecretManager(cfg.Vault.Address, cfg.Vault.Token, cfg.Vault.MountPath, logger)
		if err != nil {
			return err
		}
		if err := secrets.Resolve(ctx, cfg); err != nil {
			return err
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	st, err := app.OpenStorage(cfg.Database, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	co, err := app.OpenCoordination(cfg.Redis, logger)
	if err != nil {
		return err
	}
	defer co.Close()

	mq, err := app.OpenQueue(cfg, logger)
	if err != nil {
		return err
	}
	defer mq.Close()

	svc := app.NewServices(cfg, st, co, mq, logger)

	res, ran, err := svc.Sweeper.SweepOnce(ctx)
	if err != nil {
		return err
	}
	if !ran {
		fmt.Println("sweep skipped: lock held by another instance")
		return nil
	}

	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
