package connection

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"dailyledger/config"
	"dailyledger/storage"
)

// OpenKV connects the persistence medium selected by cfg.Backend.
func OpenKV(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (storage.KV, error) {
	logger = logger.With("backend", cfg.Backend)

	switch cfg.Backend {
	case "memory":
		logger.Warn("ledger is kept in memory and will not survive a restart")
		return storage.NewMemoryKV(), nil

	case "file":
		kv, err := storage.NewFileKV(cfg.FileDir)
		if err != nil {
			return nil, err
		}
		logger.Info("ledger storage ready", "dir", cfg.FileDir)
		return kv, nil

	case "sqlite":
		if dir := filepath.Dir(cfg.SQLitePath); dir != "" {
			if err := os.MkdirAll(dir, 0o700); err != nil {
				return nil, fmt.Errorf("create sqlite dir: %w", err)
			}
		}
		kv, err := storage.OpenSQLiteKV(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		logger.Info("ledger storage ready", "path", cfg.SQLitePath)
		return kv, nil

	case "redis":
		rdb, err := RedisConnection(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		logger.Info("ledger storage ready", "addr", cfg.RedisAddr)
		return storage.NewRedisKV(rdb, cfg.RedisPrefix), nil

	case "firestore":
		client, err := FBConnection(ctx, cfg.FirestoreCredential)
		if err != nil {
			return nil, err
		}
		logger.Info("ledger storage ready", "collection", cfg.FirestoreCollection)
		return storage.NewFirestoreKV(client, cfg.FirestoreCollection), nil
	}
	return nil, fmt.Errorf("unknown ledger backend %q", cfg.Backend)
}
