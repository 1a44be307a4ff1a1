package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"github.com/dmitrijs2005/skincare/internal/client/config"
	"github.com/dmitrijs2005/skincare/internal/client/migrations"
	"github.com/dmitrijs2005/skincare/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/skincare/internal/filex"

	_ "modernc.org/sqlite"
)

// Store is the opened local store together with its cleanup.
type Store struct {
	Metadata metadata.Repository
	close    func() error
}

func (s *Store) Close() error {
	if s == nil || s.close == nil {
		return nil
	}
	return s.close()
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens the SQLite file at dsn and brings its schema up to date.
func InitDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	if err := filex.EnsureDir(dsn); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// OpenStore opens the local store selected by cfg.StoreBackend.
func OpenStore(ctx context.Context, cfg *config.Config) (*Store, error) {
	switch cfg.StoreBackend {
	case config.StoreSQLite, "":
		db, err := InitDatabase(ctx, cfg.DBPath)
		if err != nil {
			return nil, err
		}
		return &Store{Metadata: metadata.NewSQLiteRepository(db), close: db.Close}, nil

	case config.StoreRedis:
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("redis %s: %w", cfg.RedisAddr, err)
		}
		return &Store{Metadata: metadata.NewRedisRepository(rdb, "skincare"), close: rdb.Close}, nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
