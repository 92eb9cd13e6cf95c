package tasks

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/thopica/basketball-lobster/app/crawler"
	"github.com/thopica/basketball-lobster/app/curator"
	"github.com/thopica/basketball-lobster/app/database"
)

type fakeClassifier struct {
	response string
	calls    int
}

func (f *fakeClassifier) Classify(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.response, nil
}

type fakeSourceRepo struct {
	lastCrawledID string
	lastCrawledAt time.Time
}

func (f *fakeSourceRepo) GetActiveSources() ([]database.Source, error)          { return nil, nil }
func (f *fakeSourceRepo) GetSourceBySlug(string) (*database.Source, error)      { return nil, nil }
func (f *fakeSourceRepo) UpsertSource(source database.Source) (string, error)   { return source.ID, nil }
func (f *fakeSourceRepo) UpdateLastCrawledAt(sourceID string, crawledAt time.Time) error {
	f.lastCrawledID = sourceID
	f.lastCrawledAt = crawledAt
	return nil
}

type fakeContentRepo struct {
	existing map[string]bool
	inserted []database.Content
	raceLost bool
}

func (f *fakeContentRepo) ExistsByURL(url string) (bool, error) { return f.existing[url], nil }
func (f *fakeContentRepo) GetPublishedByID(string) (*database.Content, error) { return nil, nil }
func (f *fakeContentRepo) ListPublished(database.ContentFilter) ([]database.Content, int, error) {
	return nil, 0, nil
}

func (f *fakeContentRepo) InsertContent(content database.Content) (string, bool, error) {
	if f.raceLost {
		return "", false, nil
	}
	f.inserted = append(f.inserted, content)
	return fmt.Sprintf("id-%d", len(f.inserted)), true, nil
}

func (f *fakeContentRepo) ToggleVote(string, string) (bool, error) { return false, nil }
func (f *fakeContentRepo) GetVotedContentIDs(string, []string) (map[string]bool, error) {
	return nil, nil
}
func (f *fakeContentRepo) ListForModeration(string, string, int, int) ([]database.Content, int, error) {
	return nil, 0, nil
}
func (f *fakeContentRepo) ApproveContent([]string) (int64, error) { return 0, nil }
func (f *fakeContentRepo) DeleteContent([]string) (int64, error)  { return 0, nil }
func (f *fakeContentRepo) GetModerationStats() (int, int, int, int, error) {
	return 0, 0, 0, 0, nil
}

type fakeCrawlLogRepo struct {
	logs []database.CrawlLog
}

func (f *fakeCrawlLogRepo) InsertCrawlLog(log database.CrawlLog) error {
	f.logs = append(f.logs, log)
	return nil
}

func singleItemFeedServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<?xml version="1.0"?>
<rss version="2.0">
<channel>
<title>HoopsWire</title>
<item>
  <title>Breaking: blockbuster trade</title>
  <link>https://hoopswire.example/trade</link>
  <description>Two contenders swapped starters.</description>
</item>
</channel>
</rss>`)
	}))
}

func newCrawlTaskFixture(t *testing.T, server *httptest.Server, response string) (*CrawlSourceTask, *fakeClassifier, *fakeSourceRepo, *fakeContentRepo, *fakeCrawlLogRepo) {
	t.Helper()

	classifier := &fakeClassifier{response: response}
	sourceRepo := &fakeSourceRepo{}
	contentRepo := &fakeContentRepo{existing: map[string]bool{}}
	crawlLogRepo := &fakeCrawlLogRepo{}

	source := database.Source{
		ID:          "src-1",
		Name:        "HoopsWire",
		URL:         server.URL,
		CrawlType:   "rss",
		ContentType: "article",
	}

	task := NewCrawlSourceTask(source,
		crawler.NewCrawler(server.Client(), "test-agent", ""),
		curator.NewCurator(classifier),
		sourceRepo, contentRepo, crawlLogRepo)

	return task, classifier, sourceRepo, contentRepo, crawlLogRepo
}

func TestCrawlSourceTask_HighScorePublishesWithoutReview(t *testing.T) {
	server := singleItemFeedServer(t)
	defer server.Close()

	task, _, sourceRepo, contentRepo, crawlLogRepo := newCrawlTaskFixture(t, server,
		`{"summary": "Two contenders swapped starters.", "score": 8, "reason": "Breaking trade"}`)

	if err := task.Execute(context.Background()); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if len(contentRepo.inserted) != 1 {
		t.Fatalf("Expected 1 insert, got %d", len(contentRepo.inserted))
	}

	record := contentRepo.inserted[0]
	if !record.Published || record.NeedsReview {
		t.Errorf("Score 8 should publish without review, got published=%t needsReview=%t",
			record.Published, record.NeedsReview)
	}
	if record.AIQualityScore == nil || *record.AIQualityScore != 8 {
		t.Errorf("Expected stored score 8")
	}
	if record.URL != "https://hoopswire.example/trade" {
		t.Errorf("Unexpected URL: %s", record.URL)
	}

	if len(crawlLogRepo.logs) != 1 {
		t.Fatalf("Expected 1 crawl log entry, got %d", len(crawlLogRepo.logs))
	}
	logEntry := crawlLogRepo.logs[0]
	if logEntry.ItemsFound != 1 || logEntry.ItemsNew != 1 || logEntry.ItemsPublished != 1 {
		t.Errorf("Unexpected crawl log counts: found=%d new=%d published=%d",
			logEntry.ItemsFound, logEntry.ItemsNew, logEntry.ItemsPublished)
	}
	if logEntry.CompletedAt == nil {
		t.Errorf("Crawl log should record completion time")
	}

	if sourceRepo.lastCrawledID != "src-1" {
		t.Errorf("Expected last crawled update for src-1, got %q", sourceRepo.lastCrawledID)
	}
}

func TestCrawlSourceTask_MidScorePublishesWithReview(t *testing.T) {
	server := singleItemFeedServer(t)
	defer server.Close()

	task, _, _, contentRepo, _ := newCrawlTaskFixture(t, server,
		`{"summary": "s", "score": 6, "reason": "r"}`)

	if err := task.Execute(context.Background()); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if len(contentRepo.inserted) != 1 {
		t.Fatalf("Expected 1 insert, got %d", len(contentRepo.inserted))
	}
	record := contentRepo.inserted[0]
	if !record.Published || !record.NeedsReview {
		t.Errorf("Score 6 should publish held for review, got published=%t needsReview=%t",
			record.Published, record.NeedsReview)
	}
}

func TestCrawlSourceTask_LowScoreStoredUnpublished(t *testing.T) {
	server := singleItemFeedServer(t)
	defer server.Close()

	task, _, _, contentRepo, crawlLogRepo := newCrawlTaskFixture(t, server,
		`{"summary": "s", "score": 3, "reason": "thin content"}`)

	if err := task.Execute(context.Background()); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if len(contentRepo.inserted) != 1 {
		t.Fatalf("Low-scoring items should still be stored, got %d inserts", len(contentRepo.inserted))
	}
	if contentRepo.inserted[0].Published {
		t.Errorf("Score 3 must not publish")
	}
	if crawlLogRepo.logs[0].ItemsPublished != 0 {
		t.Errorf("Crawl log should count 0 published items")
	}
}

func TestCrawlSourceTask_DuplicateSkipsClassifier(t *testing.T) {
	server := singleItemFeedServer(t)
	defer server.Close()

	task, classifier, _, contentRepo, crawlLogRepo := newCrawlTaskFixture(t, server,
		`{"summary": "s", "score": 8, "reason": "r"}`)
	contentRepo.existing["https://hoopswire.example/trade"] = true

	if err := task.Execute(context.Background()); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if classifier.calls != 0 {
		t.Errorf("Classifier must not run for known URLs, got %d calls", classifier.calls)
	}
	if len(contentRepo.inserted) != 0 {
		t.Errorf("Duplicate must not be inserted")
	}
	logEntry := crawlLogRepo.logs[0]
	if logEntry.ItemsFound != 1 || logEntry.ItemsNew != 0 {
		t.Errorf("Unexpected crawl log counts: found=%d new=%d", logEntry.ItemsFound, logEntry.ItemsNew)
	}
}

func TestCrawlSourceTask_LostInsertRaceCountsAsDuplicate(t *testing.T) {
	server := singleItemFeedServer(t)
	defer server.Close()

	task, _, _, contentRepo, crawlLogRepo := newCrawlTaskFixture(t, server,
		`{"summary": "s", "score": 8, "reason": "r"}`)
	contentRepo.raceLost = true

	if err := task.Execute(context.Background()); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	logEntry := crawlLogRepo.logs[0]
	if logEntry.ItemsNew != 0 || logEntry.ItemsPublished != 0 {
		t.Errorf("A lost insert race must not count as new: new=%d published=%d",
			logEntry.ItemsNew, logEntry.ItemsPublished)
	}
}

func TestCrawlSourceTask_CrawlFailureStillRecorded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	task, classifier, sourceRepo, _, crawlLogRepo := newCrawlTaskFixture(t, server,
		`{"summary": "s", "score": 8, "reason": "r"}`)

	if err := task.Execute(context.Background()); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if classifier.calls != 0 {
		t.Errorf("Classifier must not run when the crawl yields nothing")
	}
	if len(crawlLogRepo.logs) != 1 || crawlLogRepo.logs[0].ItemsFound != 0 {
		t.Errorf("Failed crawl should still write a log entry with 0 items found")
	}
	if sourceRepo.lastCrawledID != "src-1" {
		t.Errorf("Failed crawl should still update the last crawled time")
	}
}

func TestCrawlSourceTask_CancelledContext(t *testing.T) {
	server := singleItemFeedServer(t)
	defer server.Close()

	task, _, _, contentRepo, _ := newCrawlTaskFixture(t, server,
		`{"summary": "s", "score": 8, "reason": "r"}`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := task.Execute(ctx); err == nil {
		t.Errorf("Expected error for cancelled context")
	}
	if len(contentRepo.inserted) != 0 {
		t.Errorf("Cancelled task must not insert content")
	}
}
