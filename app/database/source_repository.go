package database

import (
	"database/sql"
	"fmt"
	"time"
)

var _ SourceRepository = (*SourceRepositoryImpl)(nil)

// SourceRepositoryImpl handles database operations for content sources
type SourceRepositoryImpl struct {
	db *DB
}

func NewSourceRepository(db *DB) *SourceRepositoryImpl {
	return &SourceRepositoryImpl{db: db}
}

const sourceColumns = `id, slug, name, COALESCE(url, ''), crawl_type, content_type,
	COALESCE(channel_id, ''), crawl_interval_minutes, last_crawled_at, is_active,
	created_at, updated_at`

func (r *SourceRepositoryImpl) GetActiveSources() ([]Source, error) {
	rows, err := r.db.Query(`
		SELECT `+sourceColumns+`
		FROM sources
		WHERE is_active = true
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get active sources: %w", err)
	}
	defer rows.Close()

	var sources []Source
	for rows.Next() {
		source, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		sources = append(sources, source)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating source rows: %w", err)
	}

	return sources, nil
}

func (r *SourceRepositoryImpl) GetSourceBySlug(slug string) (*Source, error) {
	row := r.db.QueryRow(`
		SELECT `+sourceColumns+`
		FROM sources
		WHERE slug = $1
	`, slug)

	source, err := scanSource(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &source, nil
}

// UpsertSource registers or refreshes a source definition. The pipeline never
// touches any of these fields afterwards except last_crawled_at.
func (r *SourceRepositoryImpl) UpsertSource(source Source) (string, error) {
	var dbID string
	err := r.db.QueryRow(`
		INSERT INTO sources (slug, name, url, crawl_type, content_type, channel_id, crawl_interval_minutes, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (slug) DO UPDATE SET
			name = EXCLUDED.name,
			url = EXCLUDED.url,
			crawl_type = EXCLUDED.crawl_type,
			content_type = EXCLUDED.content_type,
			channel_id = EXCLUDED.channel_id,
			crawl_interval_minutes = EXCLUDED.crawl_interval_minutes,
			is_active = EXCLUDED.is_active,
			updated_at = NOW()
		RETURNING id
	`, source.Slug, source.Name, source.URL, source.CrawlType, source.ContentType,
		source.ChannelID, source.CrawlIntervalMinutes, source.Active).Scan(&dbID)

	if err != nil {
		return "", fmt.Errorf("failed to upsert source: %w", err)
	}

	return dbID, nil
}

func (r *SourceRepositoryImpl) UpdateLastCrawledAt(sourceID string, crawledAt time.Time) error {
	_, err := r.db.Exec(`
		UPDATE sources
		SET last_crawled_at = $2, updated_at = NOW()
		WHERE id = $1
	`, sourceID, crawledAt)

	if err != nil {
		return fmt.Errorf("failed to update last crawled time: %w", err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSource(row rowScanner) (Source, error) {
	var source Source
	err := row.Scan(
		&source.ID, &source.Slug, &source.Name, &source.URL, &source.CrawlType,
		&source.ContentType, &source.ChannelID, &source.CrawlIntervalMinutes,
		&source.LastCrawledAt, &source.Active, &source.CreatedAt, &source.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return Source{}, err
	}
	if err != nil {
		return Source{}, fmt.Errorf("failed to scan source row: %w", err)
	}
	return source, nil
}
