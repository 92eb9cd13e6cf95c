package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/thopica/basketball-lobster/app/cfg"
	"github.com/thopica/basketball-lobster/app/config"
	"github.com/thopica/basketball-lobster/app/crawler"
	"github.com/thopica/basketball-lobster/app/curator"
	"github.com/thopica/basketball-lobster/app/database"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

type Scheduler struct {
	sourceConfigs []*config.SourceConfig
	sourceRepo    database.SourceRepository
	contentRepo   database.ContentRepository
	crawlLogRepo  database.CrawlLogRepository
	crawler       *crawler.Crawler
	curator       *curator.Curator
	interval      time.Duration
	workerCount   int
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
	taskQueue     chan TaskInterface
}

func NewScheduler(sourceConfigs []*config.SourceConfig, sourceRepo database.SourceRepository,
	contentRepo database.ContentRepository, crawlLogRepo database.CrawlLogRepository,
	sourceCrawler *crawler.Crawler, contentCurator *curator.Curator) TaskSchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		sourceConfigs: sourceConfigs,
		sourceRepo:    sourceRepo,
		contentRepo:   contentRepo,
		crawlLogRepo:  crawlLogRepo,
		crawler:       sourceCrawler,
		curator:       contentCurator,
		interval:      time.Duration(cfg.SchedulerInterval) * time.Second,
		workerCount:   cfg.WorkerCount,
		ctx:           ctx,
		cancel:        cancel,
		taskQueue:     make(chan TaskInterface, 300),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueStartupTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueDueCrawls()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) enqueueStartupTasks() {
	if len(s.sourceConfigs) == 0 {
		slog.Debug("No source definitions found")
	}

	for _, sourceConfig := range s.sourceConfigs {
		syncTask := NewSyncSourceTask(sourceConfig, s.sourceRepo)
		if err := s.EnqueueTask(syncTask); err != nil {
			slog.Warn("Failed to enqueue SyncSourceTask", "source", sourceConfig.Name, "error", err)
		}
	}

	s.enqueueDueCrawls()
}

// enqueueDueCrawls schedules one crawl per active source whose crawl interval
// has elapsed since its last successful run.
func (s *Scheduler) enqueueDueCrawls() {
	sources, err := s.sourceRepo.GetActiveSources()
	if err != nil {
		slog.Warn("Failed to load active sources", "error", err)
		return
	}

	if len(sources) == 0 {
		slog.Debug("No active sources registered")
		return
	}

	now := time.Now().UTC()
	for _, source := range sources {
		if source.LastCrawledAt != nil {
			nextDue := source.LastCrawledAt.Add(time.Duration(source.CrawlIntervalMinutes) * time.Minute)
			if nextDue.After(now) {
				slog.Debug("Source not due for crawling yet", "source", source.Name, "next_due", nextDue)
				continue
			}
		}

		crawlTask := NewCrawlSourceTask(source, s.crawler, s.curator, s.sourceRepo, s.contentRepo, s.crawlLogRepo)
		if err := s.EnqueueTask(crawlTask); err != nil {
			slog.Warn("Failed to enqueue CrawlSourceTask", "source", source.Name, "error", err)
		}
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)

	if err != nil {
		slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

		if task.CanRetry() {
			task.IncrementRetryCount()
			retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
			if retryDelay > 30*time.Second {
				retryDelay = 30 * time.Second
			}

			slog.Warn("Task retry scheduled", "type", string(task.GetType()), "source", task.GetSourceName(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

			go func() {
				time.Sleep(retryDelay)
				select {
				case <-s.ctx.Done():
					slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
					return
				default:
					if retryErr := s.EnqueueTask(task); retryErr != nil {
						slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
					}
				}
			}()
		} else {
			slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		}
	}
}
