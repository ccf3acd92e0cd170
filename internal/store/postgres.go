package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/signsurvey/internal/config"
	"github.com/JonMunkholm/signsurvey/internal/logging"
	"github.com/JonMunkholm/signsurvey/internal/survey"
)

const schema = `
CREATE TABLE IF NOT EXISTS photos (
	custom_id            TEXT PRIMARY KEY,
	submission_id        TEXT,
	municipality         TEXT,
	initials             TEXT,
	status               TEXT NOT NULL,
	submission_started   TIMESTAMPTZ,
	last_updated         TIMESTAMPTZ,
	number_of_substrates INTEGER,
	photo_link           TEXT,
	substrates           JSONB NOT NULL DEFAULT '[]'::jsonb,
	import_id            UUID,
	imported_at          TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const upsertPhoto = `
INSERT INTO photos (
	custom_id, submission_id, municipality, initials, status,
	submission_started, last_updated, number_of_substrates, photo_link,
	substrates, import_id, imported_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now())
ON CONFLICT (custom_id) DO UPDATE SET
	submission_id        = EXCLUDED.submission_id,
	municipality         = EXCLUDED.municipality,
	initials             = EXCLUDED.initials,
	status               = EXCLUDED.status,
	submission_started   = EXCLUDED.submission_started,
	last_updated         = EXCLUDED.last_updated,
	number_of_substrates = EXCLUDED.number_of_substrates,
	photo_link           = EXCLUDED.photo_link,
	substrates           = EXCLUDED.substrates,
	import_id            = EXCLUDED.import_id,
	imported_at          = EXCLUDED.imported_at`

const selectPhoto = `
SELECT custom_id, submission_id, municipality, initials, status,
	submission_started, last_updated, number_of_substrates, photo_link, substrates
FROM photos
WHERE custom_id = $1`

// Postgres stores photos in a single table, substrates as JSONB.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects to the database described by cfg, verifies the
// connection and creates the photos table if needed.
func NewPostgres(ctx context.Context, cfg config.DatabaseConfig) (*Postgres, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	p := NewPostgresFromPool(pool)
	if err := p.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := p.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	logging.FromContext(ctx).Info("connected to database", "name", poolConfig.ConnConfig.Database)
	return p, nil
}

// NewPostgresFromPool wraps an existing pool.
func NewPostgresFromPool(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Migrate creates the photos table if it does not exist.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create photos table: %w", err)
	}
	return nil
}

// SavePhoto upserts photo by custom_id. The import id carried by ctx, if
// any, is recorded with the row.
func (p *Postgres) SavePhoto(ctx context.Context, photo survey.Photo) error {
	key, err := keyOf(photo)
	if err != nil {
		return err
	}

	substrates := photo.Substrates
	if substrates == nil {
		substrates = []survey.Substrate{}
	}
	substratesJSON, err := json.Marshal(substrates)
	if err != nil {
		return fmt.Errorf("encode substrates for %s: %w", key, err)
	}

	_, err = p.pool.Exec(ctx, upsertPhoto,
		key,
		toPgText(photo.ID),
		toPgText(photo.Municipality),
		toPgText(photo.Initials),
		string(photo.Status),
		toPgTimestamptz(photo.SubmissionStarted),
		toPgTimestamptz(photo.LastUpdated),
		toPgInt4(photo.NumberOfSubstrates),
		toPgText(photo.PhotoLink),
		substratesJSON,
		toPgUUID(logging.ImportID(ctx)),
	)
	if err != nil {
		return fmt.Errorf("save photo %s: %w", key, err)
	}
	return nil
}

// GetPhoto reads back the photo stored under customID.
func (p *Postgres) GetPhoto(ctx context.Context, customID string) (survey.Photo, error) {
	var (
		photo          survey.Photo
		submissionID   pgtype.Text
		municipality   pgtype.Text
		initials       pgtype.Text
		status         string
		started        pgtype.Timestamptz
		updated        pgtype.Timestamptz
		substrateCount pgtype.Int4
		photoLink      pgtype.Text
		substratesJSON []byte
	)

	err := p.pool.QueryRow(ctx, selectPhoto, customID).Scan(
		&photo.CustomID, &submissionID, &municipality, &initials, &status,
		&started, &updated, &substrateCount, &photoLink, &substratesJSON,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return survey.Photo{}, fmt.Errorf("%w: %s", ErrNotFound, customID)
	}
	if err != nil {
		return survey.Photo{}, fmt.Errorf("load photo %s: %w", customID, err)
	}

	photo.ID = fromPgText(submissionID)
	photo.Municipality = fromPgText(municipality)
	photo.Initials = fromPgText(initials)
	photo.Status = survey.Status(status)
	photo.SubmissionStarted = fromPgTimestamptz(started)
	photo.LastUpdated = fromPgTimestamptz(updated)
	photo.NumberOfSubstrates = fromPgInt4(substrateCount)
	photo.PhotoLink = fromPgText(photoLink)

	if err := json.Unmarshal(substratesJSON, &photo.Substrates); err != nil {
		return survey.Photo{}, fmt.Errorf("decode substrates for %s: %w", customID, err)
	}
	if photo.Substrates == nil {
		photo.Substrates = []survey.Substrate{}
	}
	return photo, nil
}

func (p *Postgres) Ping(ctx context.Context) error { return p.pool.Ping(ctx) }

func (p *Postgres) Close() { p.pool.Close() }
