package geo

import (
	"fmt"
	"log/slog"

	"eventetl/internal/config"
	apperrors "eventetl/internal/errors"
)

// Providers
const (
	ProviderMMDB  = "mmdb"
	ProviderTable = "table"
)

// Open builds the configured Locator. Relative paths resolve against workDir.
// A positive cache size wraps the result in an LRU memo.
func Open(cfg config.GeoConfig, workDir string, logger *slog.Logger) (Source, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "geo"))

	var (
		source Source
		path   string
	)

	switch cfg.Provider {
	case ProviderMMDB, "":
		path = config.ResolvePath(workDir, cfg.DatabasePath)
		db, err := OpenMMDB(path, cfg.Language)
		if err != nil {
			return nil, err
		}
		source = db
	case ProviderTable:
		path = config.ResolvePath(workDir, cfg.TablePath)
		table, err := LoadTable(path)
		if err != nil {
			return nil, err
		}
		source = WithoutClose(table)
	default:
		return nil, apperrors.NewConfigError(fmt.Sprintf("unknown geo provider %q", cfg.Provider), nil)
	}

	logger.Info("Geo lookup ready",
		slog.String("provider", cfg.Provider),
		slog.String("path", path),
		slog.Int("cache_size", cfg.CacheSize))

	if cfg.CacheSize <= 0 {
		return source, nil
	}

	cached, err := NewCached(source, cfg.CacheSize)
	if err != nil {
		source.Close()
		return nil, apperrors.NewConfigError("invalid geo cache size", err)
	}
	return cached, nil
}
