// Package config loads pipeline settings from an optional config.yaml with
// environment overrides. Input and output directories come from the command
// line, not from here.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/rpattn/dataqc/internal/db"
	"github.com/rpattn/dataqc/internal/pipeline"
)

// Ledger backends.
const (
	LedgerBackendFile     = "file"
	LedgerBackendPostgres = "postgres"
)

// Config holds every tunable of a pipeline run.
type Config struct {
	// InputPattern is the glob matched against file names in the input
	// directory.
	InputPattern string
	// LedgerBackend selects "file" or "postgres".
	LedgerBackend string
	// LedgerPath is the ledger CSV location for the file backend.
	LedgerPath string
	// ReportPath, when non-empty, enables the xlsx run report.
	ReportPath string
	// LogLevel is one of debug, info, warn, error.
	LogLevel string
	// LogFormat is "text" or "json".
	LogFormat string
	// Database is used only with the postgres ledger backend.
	Database db.Config
}

// DefaultConfig returns the settings used when no config file or environment
// overrides are present.
func DefaultConfig() Config {
	return Config{
		InputPattern:  pipeline.DefaultPattern,
		LedgerBackend: LedgerBackendFile,
		LedgerPath:    "processed_files.csv",
		LogLevel:      "info",
		LogFormat:     "text",
		Database:      db.DefaultConfig(),
	}
}

// Load reads config.yaml from configPath (if present) and applies
// environment overrides with the PIPELINE prefix, e.g. PIPELINE_LEDGER_PATH.
func Load(configPath string) (Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AutomaticEnv()
	v.SetEnvPrefix("PIPELINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.BindEnv("input_pattern")
	v.BindEnv("ledger.backend")
	v.BindEnv("ledger.path")
	v.BindEnv("report.path")
	v.BindEnv("logging.level")
	v.BindEnv("logging.format")
	v.BindEnv("database.host")
	v.BindEnv("database.port")
	v.BindEnv("database.user")
	v.BindEnv("database.password")
	v.BindEnv("database.dbname")
	v.BindEnv("database.sslmode")

	if err := v.ReadInConfig(); err != nil {
		// Config file is optional; defaults and env vars still apply.
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if v.IsSet("input_pattern") {
		cfg.InputPattern = v.GetString("input_pattern")
	}
	if v.IsSet("ledger.backend") {
		cfg.LedgerBackend = v.GetString("ledger.backend")
	}
	if v.IsSet("ledger.path") {
		cfg.LedgerPath = v.GetString("ledger.path")
	}
	if v.IsSet("report.path") {
		cfg.ReportPath = v.GetString("report.path")
	}
	if v.IsSet("logging.level") {
		cfg.LogLevel = v.GetString("logging.level")
	}
	if v.IsSet("logging.format") {
		cfg.LogFormat = v.GetString("logging.format")
	}
	if v.IsSet("database.host") {
		cfg.Database.Host = v.GetString("database.host")
	}
	if v.IsSet("database.port") {
		cfg.Database.Port = v.GetInt("database.port")
	}
	if v.IsSet("database.user") {
		cfg.Database.User = v.GetString("database.user")
	}
	if v.IsSet("database.password") {
		cfg.Database.Password = v.GetString("database.password")
	}
	if v.IsSet("database.dbname") {
		cfg.Database.DBName = v.GetString("database.dbname")
	}
	if v.IsSet("database.sslmode") {
		cfg.Database.SSLMode = v.GetString("database.sslmode")
	}

	switch cfg.LedgerBackend {
	case LedgerBackendFile, LedgerBackendPostgres:
	default:
		return cfg, fmt.Errorf("unknown ledger backend %q", cfg.LedgerBackend)
	}

	return cfg, nil
}
