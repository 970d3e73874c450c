package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/Vodeneev/exerciser/internal/pkg/config"
	"github.com/Vodeneev/exerciser/internal/pkg/models"
)

// Ensure PostgresStore implements Store
var _ Store = (*PostgresStore)(nil)

// PostgresStore persists studios, classes and scrape logs in PostgreSQL.
type PostgresStore struct {
	db   *sqlx.DB
	opts Options
}

// Open connects, pings and migrates the schema.
func Open(ctx context.Context, cfg config.PostgresConfig, opts Options) (*PostgresStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("postgres DSN is required")
	}

	db, err := sqlx.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	slog.Info("PostgreSQL storage initialized successfully")
	return NewPostgresStore(db, opts), nil
}

// NewPostgresStore wraps an existing connection. The schema is assumed to be in place.
func NewPostgresStore(db *sqlx.DB, opts Options) *PostgresStore {
	return &PostgresStore{db: db, opts: opts.withDefaults()}
}

const pruneClassesQuery = `
	DELETE FROM fitness_classes
	WHERE start_time < $1
	  AND studio_id IN (SELECT id FROM studios WHERE brand = $2)`

const insertClassQuery = `
	INSERT INTO fitness_classes (
		id, studio_id, class_name, instructor, start_time, end_time,
		duration, capacity, spots_available, level, description, booking_url
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	ON CONFLICT (id) DO NOTHING`

const upsertClassQuery = `
	INSERT INTO fitness_classes (
		id, studio_id, class_name, instructor, start_time, end_time,
		duration, capacity, spots_available, level, description, booking_url
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	ON CONFLICT (id) DO UPDATE SET
		instructor = EXCLUDED.instructor,
		end_time = EXCLUDED.end_time,
		duration = EXCLUDED.duration,
		capacity = EXCLUDED.capacity,
		spots_available = EXCLUDED.spots_available,
		level = EXCLUDED.level,
		description = EXCLUDED.description,
		booking_url = EXCLUDED.booking_url`

const insertScrapeLogQuery = `
	INSERT INTO scrape_logs (brand, status, message, class_count, completed_at, error_details)
	VALUES ($1, $2, $3, $4, $5, $6)`

// WriteScrapeResult applies a successful result in a single transaction.
func (s *PostgresStore) WriteScrapeResult(ctx context.Context, result models.ScrapeResult) (err error) {
	if !result.Succeeded() {
		return fmt.Errorf("%w: %s is %s", ErrNotSuccessful, result.Brand, result.Status)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				slog.Error("Failed to roll back scrape result", "brand", result.Brand, "error", rbErr)
			}
		}
	}()

	res, err := tx.ExecContext(ctx, pruneClassesQuery, s.opts.cutoff(), result.Brand)
	if err != nil {
		return fmt.Errorf("failed to prune classes for %s: %w", result.Brand, err)
	}
	pruned, _ := res.RowsAffected()

	inserted, err := s.insertClasses(ctx, tx, result.Classes)
	if err != nil {
		return err
	}

	if err = insertLog(ctx, tx, models.NewScrapeLog(result, s.opts.Now())); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit scrape result for %s: %w", result.Brand, err)
	}

	slog.Info("Scrape result persisted",
		"brand", result.Brand,
		"classes", len(result.Classes),
		"inserted", inserted,
		"pruned", pruned)
	return nil
}

func (s *PostgresStore) insertClasses(ctx context.Context, tx *sqlx.Tx, classes []models.FitnessClass) (int64, error) {
	if len(classes) == 0 {
		return 0, nil
	}

	query := insertClassQuery
	if s.opts.InsertPolicy == config.InsertUpsert {
		query = upsertClassQuery
	}

	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare class insert: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	for _, c := range classes {
		res, err := stmt.ExecContext(ctx,
			c.ID, c.StudioID, c.ClassName, c.Instructor, c.StartTime.UTC(), c.EndTime.UTC(),
			c.Duration, c.Capacity, c.SpotsAvailable, c.Level, c.Description, c.BookingURL,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert class %s: %w", c.ID, err)
		}
		n, _ := res.RowsAffected()
		inserted += n
	}
	return inserted, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertLog(ctx context.Context, db execer, entry models.ScrapeLog) error {
	_, err := db.ExecContext(ctx, insertScrapeLogQuery,
		entry.Brand, entry.Status, entry.Message, entry.ClassCount, entry.CompletedAt.UTC(), entry.ErrorDetails)
	if err != nil {
		return fmt.Errorf("failed to insert scrape log for %s: %w", entry.Brand, err)
	}
	return nil
}

// AppendScrapeLog writes a standalone log row.
func (s *PostgresStore) AppendScrapeLog(ctx context.Context, entry models.ScrapeLog) error {
	if entry.CompletedAt.IsZero() {
		entry.CompletedAt = s.opts.Now()
	}
	return insertLog(ctx, s.db, entry)
}

const upsertStudioQuery = `
	INSERT INTO studios (id, name, brand, location, address, latitude, longitude, website_url, phone_number)
	VALUES (:id, :name, :brand, :location, :address, :latitude, :longitude, :website_url, :phone_number)
	ON CONFLICT (id) DO UPDATE SET
		name = EXCLUDED.name,
		brand = EXCLUDED.brand,
		location = EXCLUDED.location,
		address = EXCLUDED.address,
		latitude = EXCLUDED.latitude,
		longitude = EXCLUDED.longitude,
		website_url = EXCLUDED.website_url,
		phone_number = EXCLUDED.phone_number`

// UpsertStudios creates or refreshes studio rows in one transaction.
func (s *PostgresStore) UpsertStudios(ctx context.Context, studios []models.Studio) error {
	if len(studios) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, st := range studios {
		if _, err := tx.NamedExecContext(ctx, upsertStudioQuery, st); err != nil {
			return fmt.Errorf("failed to upsert studio %s: %w", st.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit studios: %w", err)
	}

	slog.Info("Studios upserted", "count", len(studios))
	return nil
}

const brandStatsQuery = `
	SELECT
		$1::text AS brand,
		(SELECT COUNT(*) FROM studios WHERE brand = $1) AS studios,
		COUNT(fc.id) AS classes,
		COUNT(fc.id) FILTER (WHERE fc.start_time >= $2) AS upcoming,
		MIN(fc.start_time) AS first_start,
		MAX(fc.start_time) AS last_start
	FROM fitness_classes fc
	JOIN studios s ON s.id = fc.studio_id
	WHERE s.brand = $1`

// BrandStats counts the stored classes of one brand.
func (s *PostgresStore) BrandStats(ctx context.Context, brand string) (BrandStats, error) {
	var stats BrandStats
	if err := s.db.GetContext(ctx, &stats, brandStatsQuery, brand, s.opts.Now()); err != nil {
		return BrandStats{}, fmt.Errorf("failed to get stats for %s: %w", brand, err)
	}
	return stats, nil
}

const recentLogsQuery = `
	SELECT id, brand, status, message, class_count, completed_at, error_details
	FROM scrape_logs
	WHERE ($1 = '' OR brand = $1)
	ORDER BY completed_at DESC, id DESC
	LIMIT $2`

// RecentScrapeLogs lists the newest log rows.
func (s *PostgresStore) RecentScrapeLogs(ctx context.Context, brand string, limit int) ([]models.ScrapeLog, error) {
	if limit <= 0 {
		limit = 50
	}
	logs := []models.ScrapeLog{}
	if err := s.db.SelectContext(ctx, &logs, recentLogsQuery, brand, limit); err != nil {
		return nil, fmt.Errorf("failed to list scrape logs: %w", err)
	}
	return logs, nil
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
