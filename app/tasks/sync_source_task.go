package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/thopica/basketball-lobster/app/config"
	"github.com/thopica/basketball-lobster/app/database"
)

// SyncSourceTask registers one YAML source definition in the database, so
// operators edit sources as files and the pipeline reads them as rows.
type SyncSourceTask struct {
	Task
	SourceConfig *config.SourceConfig
	sourceRepo   database.SourceRepository
}

func NewSyncSourceTask(sourceConfig *config.SourceConfig, sourceRepo database.SourceRepository) *SyncSourceTask {
	return &SyncSourceTask{
		Task:         NewTask(TaskTypeSyncSource, sourceConfig.Name),
		SourceConfig: sourceConfig,
		sourceRepo:   sourceRepo,
	}
}

func (t *SyncSourceTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	source := database.Source{
		Slug:                 t.SourceConfig.Slug,
		Name:                 t.SourceConfig.Name,
		URL:                  t.SourceConfig.URL,
		CrawlType:            t.SourceConfig.CrawlType,
		ContentType:          t.SourceConfig.ContentType,
		ChannelID:            t.SourceConfig.Settings.ChannelID,
		CrawlIntervalMinutes: t.SourceConfig.CrawlIntervalMinutes,
		Active:               t.SourceConfig.Active,
	}

	dbID, err := t.sourceRepo.UpsertSource(source)
	if err != nil {
		return fmt.Errorf("failed to sync source %s: %w", t.SourceConfig.Name, err)
	}

	slog.Debug("Source registered", "source", t.SourceConfig.Name, "id", dbID, "active", t.SourceConfig.Active)

	return nil
}
