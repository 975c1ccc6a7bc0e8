package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies SOKO_* environment variable overrides, and
// returns the final Config. A missing file is not an error; the defaults
// plus environment are used. The returned Config has NOT been validated;
// the caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known SOKO_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	setStr(&cfg.Service.Name, "SOKO_SERVICE_NAME")

	setInt(&cfg.Server.Port, "SOKO_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "SOKO_CORS_ORIGINS")

	setStr(&cfg.Database.DSN, "SOKO_DATABASE_DSN")
	setStr(&cfg.Database.DSN, "DATABASE_URL") // deploy-platform alias
	setStr(&cfg.Database.Host, "SOKO_DATABASE_HOST")
	setInt(&cfg.Database.Port, "SOKO_DATABASE_PORT")
	setStr(&cfg.Database.Database, "SOKO_DATABASE_NAME")
	setStr(&cfg.Database.User, "SOKO_DATABASE_USER")
	setStr(&cfg.Database.Password, "SOKO_DATABASE_PASSWORD")
	setStr(&cfg.Database.SSLMode, "SOKO_DATABASE_SSLMODE")
	setInt(&cfg.Database.PoolMaxConns, "SOKO_DATABASE_POOL_MAX_CONNS")
	setInt(&cfg.Database.PoolMinConns, "SOKO_DATABASE_POOL_MIN_CONNS")
	setBool(&cfg.Database.RunMigrations, "SOKO_DATABASE_RUN_MIGRATIONS")

	setStr(&cfg.LogLevel, "SOKO_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
