package config

import (
	"os"
	"path/filepath"
	"strconv"
)

type Config struct {
	Port          int
	BindAddress   string
	DataDir       string
	LogLevel      string
	JWTSecret     string
	EncryptionKey string
	SnapshotCron  string
	SnapshotKeep  int
	DevMode       bool
}

func Load() *Config {
	cfg := &Config{
		Port:         8765,
		BindAddress:  "127.0.0.1",
		DataDir:      resolveDataDir(),
		LogLevel:     "info",
		JWTSecret:    getEnv("WALDIEZ_JWT_SECRET", ""),
		SnapshotCron: getEnv("WALDIEZ_SNAPSHOT_CRON", "@hourly"),
		SnapshotKeep: 24,
		DevMode:      getEnv("WALDIEZ_DEV", "false") == "true",
	}

	if p := getEnv("WALDIEZ_PORT", ""); p != "" {
		if port, err := strconv.Atoi(p); err == nil {
			cfg.Port = port
		}
	}
	if b := getEnv("WALDIEZ_BIND", ""); b != "" {
		cfg.BindAddress = b
	}
	if d := getEnv("WALDIEZ_DATA_DIR", ""); d != "" {
		cfg.DataDir = d
	}
	if l := getEnv("WALDIEZ_LOG_LEVEL", ""); l != "" {
		cfg.LogLevel = l
	}
	if ek := getEnv("WALDIEZ_ENCRYPTION_KEY", ""); ek != "" {
		cfg.EncryptionKey = ek
	}
	if k := getEnv("WALDIEZ_SNAPSHOT_KEEP", ""); k != "" {
		if keep, err := strconv.Atoi(k); err == nil && keep > 0 {
			cfg.SnapshotKeep = keep
		}
	}

	return cfg
}

func resolveDataDir() string {
	// Resolve data dir relative to the executable, not the CWD
	exe, err := os.Executable()
	if err != nil {
		return "./data"
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "./data"
	}
	return filepath.Join(filepath.Dir(exe), "data")
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}
