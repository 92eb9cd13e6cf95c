package tasks

import (
	"context"
	"log/slog"
	"time"

	"github.com/thopica/basketball-lobster/app/crawler"
	"github.com/thopica/basketball-lobster/app/curator"
	"github.com/thopica/basketball-lobster/app/database"
)

// CrawlSourceTask runs one ingestion pass for one source: crawl, validate,
// deduplicate, curate, decide, insert, then record the run in the crawl log.
// A single candidate's failure never aborts the rest of the run.
type CrawlSourceTask struct {
	Task
	Source       database.Source
	crawler      *crawler.Crawler
	curator      *curator.Curator
	policy       curator.PublishPolicy
	sourceRepo   database.SourceRepository
	contentRepo  database.ContentRepository
	crawlLogRepo database.CrawlLogRepository
}

func NewCrawlSourceTask(source database.Source, sourceCrawler *crawler.Crawler,
	contentCurator *curator.Curator, sourceRepo database.SourceRepository,
	contentRepo database.ContentRepository, crawlLogRepo database.CrawlLogRepository) *CrawlSourceTask {
	return &CrawlSourceTask{
		Task:         NewTask(TaskTypeCrawlSource, source.Name),
		Source:       source,
		crawler:      sourceCrawler,
		curator:      contentCurator,
		policy:       curator.ScheduledPolicy,
		sourceRepo:   sourceRepo,
		contentRepo:  contentRepo,
		crawlLogRepo: crawlLogRepo,
	}
}

func (t *CrawlSourceTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	logEntry := database.CrawlLog{
		SourceID:  t.Source.ID,
		StartedAt: time.Now().UTC(),
	}

	candidates := t.crawler.Run(ctx, t.Source)
	logEntry.ItemsFound = len(candidates)

	duplicateCount := 0
	skippedCount := 0

	for _, candidate := range candidates {
		if candidate.URL == "" || candidate.Headline == "" {
			skippedCount++
			continue
		}

		// Dedup before the expensive classifier call; the same item seen on
		// a later run must not be rescored.
		exists, err := t.contentRepo.ExistsByURL(candidate.URL)
		if err != nil {
			slog.Warn("Dedup check failed, skipping candidate", "source", t.Source.Name, "url", candidate.URL, "error", err)
			logEntry.Errors = err.Error()
			continue
		}
		if exists {
			duplicateCount++
			continue
		}

		result := t.curator.Curate(ctx, candidate.Headline, candidate.SourceName, candidate.Text)
		published, needsReview := t.policy.Decide(result.Score)

		score := result.Score
		record := database.Content{
			URL:               candidate.URL,
			Headline:          candidate.Headline,
			Summary:           result.Summary,
			SourceName:        candidate.SourceName,
			Author:            candidate.Author,
			ContentType:       candidate.ContentType,
			ThumbnailURL:      candidate.ThumbnailURL,
			AIQualityScore:    &score,
			AIScoreReason:     result.Reason,
			Published:         published,
			NeedsReview:       needsReview,
			SourcePublishedAt: candidate.SourcePublishedAt,
		}

		_, inserted, err := t.contentRepo.InsertContent(record)
		if err != nil {
			slog.Warn("Content insert failed", "source", t.Source.Name, "url", candidate.URL, "error", err)
			logEntry.Errors = err.Error()
			continue
		}
		if !inserted {
			// Lost the race against a concurrent run; the uniqueness
			// constraint is the authoritative guard.
			duplicateCount++
			continue
		}

		logEntry.ItemsNew++
		if published {
			logEntry.ItemsPublished++
		}
	}

	// Default bookkeeping runs even when the pass recorded errors.
	completedAt := time.Now().UTC()
	logEntry.CompletedAt = &completedAt

	if err := t.sourceRepo.UpdateLastCrawledAt(t.Source.ID, completedAt); err != nil {
		slog.Warn("Failed to update last crawled time", "source", t.Source.Name, "error", err)
	}

	if err := t.crawlLogRepo.InsertCrawlLog(logEntry); err != nil {
		slog.Warn("Failed to insert crawl log", "source", t.Source.Name, "error", err)
	}

	slog.Info("Task completed",
		"type", "CrawlSource",
		"source", t.Source.Name,
		"duration", t.GetDuration(),
		"found", logEntry.ItemsFound,
		"duplicates", duplicateCount,
		"skipped", skippedCount,
		"new", logEntry.ItemsNew,
		"published", logEntry.ItemsPublished)

	return nil
}
