package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/awnumar/memguard"

	"github.com/MKhiriev/go-zk-vault/internal/client"
	"github.com/MKhiriev/go-zk-vault/internal/config"
	"github.com/MKhiriev/go-zk-vault/internal/crypto"
	"github.com/MKhiriev/go-zk-vault/internal/logger"
	"github.com/MKhiriev/go-zk-vault/internal/service"
	"github.com/MKhiriev/go-zk-vault/internal/session"
	"github.com/MKhiriev/go-zk-vault/internal/store"
	"github.com/MKhiriev/go-zk-vault/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	// wipe enclaves and exit on Ctrl-C
	memguard.CatchInterrupt()
	code := run()
	memguard.Purge()
	os.Exit(code)
}

func run() int {
	cfg, args, err := config.GetStructuredConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "zkvault: %v\n", err)
		return 2
	}

	log, err := newLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "zkvault: %v\n", err)
		return 1
	}

	ctx := log.WithContext(context.Background())

	storages, err := store.NewStorages(ctx, cfg.Storage, log)
	if err != nil {
		log.Err(err).Msg("error opening storage")
		fmt.Fprintf(os.Stderr, "zkvault: cannot open vault: %v\n", err)
		return 1
	}
	defer storages.Close()

	keyChain, err := crypto.NewKeyChainService(cfg.App.KDFParams())
	if err != nil {
		fmt.Fprintf(os.Stderr, "zkvault: %v\n", err)
		return 2
	}

	keys := session.NewKeyManager(log)
	services := service.NewServices(storages, keyChain, keys, log)
	app := client.NewApp(services, keys, cfg.App, models.NewAppBuildInfo(buildVersion, buildDate, buildCommit), log)

	if err = app.Run(ctx, args); err != nil {
		fmt.Fprintf(os.Stderr, "zkvault: %s\n", client.Describe(err))
		if errors.Is(err, client.ErrUsage) || errors.Is(err, client.ErrUnknownCommand) || errors.Is(err, client.ErrNoUser) {
			return 2
		}
		return 1
	}
	return 0
}

func newLogger(cfg config.Log) (*logger.Logger, error) {
	log := logger.NewLogger("zkvault")
	if cfg.File != "" {
		var err error
		if log, err = logger.NewFileLogger("zkvault", cfg.File); err != nil {
			log.Warn().Err(err).Msg("logging to stderr instead")
		}
	}
	if err := logger.SetLevel(cfg.Level); err != nil {
		return nil, err
	}
	return log, nil
}
