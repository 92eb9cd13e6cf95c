package database

import (
	"fmt"
)

var _ CrawlLogRepository = (*CrawlLogRepositoryImpl)(nil)

// CrawlLogRepositoryImpl handles the append-only crawl audit log
type CrawlLogRepositoryImpl struct {
	db *DB
}

func NewCrawlLogRepository(db *DB) *CrawlLogRepositoryImpl {
	return &CrawlLogRepositoryImpl{db: db}
}

func (r *CrawlLogRepositoryImpl) InsertCrawlLog(log CrawlLog) error {
	_, err := r.db.Exec(`
		INSERT INTO crawl_log (source_id, items_found, items_new, items_published, errors, started_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, log.SourceID, log.ItemsFound, log.ItemsNew, log.ItemsPublished,
		nullIfEmpty(log.Errors), log.StartedAt, log.CompletedAt)

	if err != nil {
		return fmt.Errorf("failed to insert crawl log: %w", err)
	}

	return nil
}
