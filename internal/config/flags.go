package config

import (
	"flag"
	"fmt"
	"os"
	"time"
)

// parseFlags parses the global configuration flags from args and returns
// the remaining positional arguments.
//
// Flags:
//
//	-c/-config json file path with configs
//	-kdf key derivation function (pbkdf2-sha256, argon2id)
//	-kdf-iterations PBKDF2 iterations or Argon2id time cost
//	-kdf-memory Argon2id memory in KiB
//	-kdf-threads Argon2id parallelism
//	-idle-timeout auto-lock after inactivity (e.g., "10m"; 0 disables)
//	-d database DSN
//	-log-level log level
//	-log-file log file path
func parseFlags(args []string) (*StructuredConfig, []string, error) {
	var jsonConfigPath string
	var kdfAlgorithm string
	var kdfIterations uint
	var kdfMemory uint
	var kdfThreads uint
	var idleTimeout time.Duration
	var databaseDSN string
	var logLevel string
	var logFile string

	fs := flag.NewFlagSet("zkvault", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	fs.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	fs.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	fs.StringVar(&kdfAlgorithm, "kdf", "", "Key derivation function (pbkdf2-sha256, argon2id)")
	fs.UintVar(&kdfIterations, "kdf-iterations", 0, "PBKDF2 iterations or Argon2id time cost")
	fs.UintVar(&kdfMemory, "kdf-memory", 0, "Argon2id memory in KiB")
	fs.UintVar(&kdfThreads, "kdf-threads", 0, "Argon2id parallelism")
	fs.DurationVar(&idleTimeout, "idle-timeout", 0, "Auto-lock after inactivity (e.g., 10m)")
	fs.StringVar(&databaseDSN, "d", "", "Database DSN (SQLite path or postgres:// URL)")
	fs.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&logFile, "log-file", "", "Log file path")

	if err := fs.Parse(args); err != nil {
		return nil, nil, fmt.Errorf("error parsing flags: %w", err)
	}

	if kdfThreads > 255 {
		return nil, nil, fmt.Errorf("%w: kdf-threads must be at most 255", ErrInvalidAppConfigs)
	}
	if kdfIterations > 1<<32-1 || kdfMemory > 1<<32-1 {
		return nil, nil, fmt.Errorf("%w: kdf cost out of range", ErrInvalidAppConfigs)
	}

	return &StructuredConfig{
		App: App{
			KDFAlgorithm:  kdfAlgorithm,
			KDFIterations: uint32(kdfIterations),
			KDFMemoryKiB:  uint32(kdfMemory),
			KDFThreads:    uint8(kdfThreads),
			IdleTimeout:   idleTimeout,
		},
		Storage: Storage{
			DB: DBConfig{
				DSN: databaseDSN,
			},
		},
		Log: Log{
			Level: logLevel,
			File:  logFile,
		},
		JSONFilePath: jsonConfigPath,
	}, fs.Args(), nil
}
