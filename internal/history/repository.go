package history

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"

	"codeberg.org/mutker/perfctl/internal/errors"
	"codeberg.org/mutker/perfctl/internal/logger"

	_ "github.com/mattn/go-sqlite3"
)

type Repository interface {
	StoreSnapshot(ctx context.Context, rec *Snapshot) error
	StoreEvent(ctx context.Context, rec *Event) error
	Close() error
}

type sqliteRepository struct {
	db *sql.DB
	mu sync.Mutex
}

func NewRepository(cfg Config) (Repository, error) {
	errFactory := errors.New()

	if cfg.DBPath == "" {
		return nil, errFactory.New(ErrInvalidDBPath)
	}

	logger.Debug().Msgf("Initializing session history at: %s", cfg.DBPath)

	// Ensure the directory exists
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), defaultDirPerm); err != nil {
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	dsn := cfg.DBPath + "?_journal=WAL&_auto_vacuum=2"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	return &sqliteRepository{
		db: db,
	}, nil
}

func (r *sqliteRepository) StoreSnapshot(ctx context.Context, rec *Snapshot) error {
	errFactory := errors.New()
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx, `
        INSERT INTO snapshots (
            timestamp, fps, ram_usage_pct, cpu_usage_pct, temperature,
            thermal_state, throttle_strength, resolution_scale, lod_level,
            corrected
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(timestamp) DO UPDATE SET
            fps = excluded.fps,
            ram_usage_pct = excluded.ram_usage_pct,
            cpu_usage_pct = excluded.cpu_usage_pct,
            temperature = excluded.temperature,
            thermal_state = excluded.thermal_state,
            throttle_strength = excluded.throttle_strength,
            resolution_scale = excluded.resolution_scale,
            lod_level = excluded.lod_level,
            corrected = excluded.corrected
    `,
		rec.Timestamp.Unix(),
		rec.FPS,
		rec.RAMUsagePct,
		rec.CPUUsagePct,
		rec.TemperatureC,
		rec.ThermalState,
		rec.Throttle,
		rec.ResolutionScale,
		rec.LODLevel,
		boolToInt(rec.Corrected),
	)
	if err != nil {
		return errFactory.Wrap(ErrStorageAccess, err)
	}

	return nil
}

func (r *sqliteRepository) StoreEvent(ctx context.Context, rec *Event) error {
	errFactory := errors.New()
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx, `
        INSERT INTO events (timestamp, category, magnitude, reasons)
        VALUES (?, ?, ?, ?)
    `,
		rec.Timestamp.Unix(),
		rec.Category,
		rec.Magnitude,
		rec.Reasons,
	)
	if err != nil {
		return errFactory.Wrap(ErrStorageAccess, err)
	}

	return nil
}

func (r *sqliteRepository) Close() error {
	errFactory := errors.New()
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.db.Close(); err != nil {
		return errFactory.Wrap(ErrStorageClose, err)
	}
	return nil
}
