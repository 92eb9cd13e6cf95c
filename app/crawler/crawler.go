package crawler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/thopica/basketball-lobster/app/database"
)

// fetchTimeout bounds every strategy's network round trip so one slow origin
// cannot stall a whole ingestion run.
const fetchTimeout = 10 * time.Second

// Crawler fetches raw items from external origins, dispatching on the
// source's crawl strategy tag. Every strategy degrades to an empty candidate
// list on transport, parse, or API failure.
type Crawler struct {
	httpClient    *http.Client
	feedParser    *gofeed.Parser
	userAgent     string
	youtubeAPIKey string
}

func NewCrawler(httpClient *http.Client, userAgent, youtubeAPIKey string) *Crawler {
	return &Crawler{
		httpClient:    httpClient,
		feedParser:    gofeed.NewParser(),
		userAgent:     userAgent,
		youtubeAPIKey: youtubeAPIKey,
	}
}

// Run produces the bounded candidate list for one source, newest first where
// the origin supports ordering. An unknown strategy tag is logged and yields
// an empty list; it is never fatal to the caller.
func (c *Crawler) Run(ctx context.Context, source database.Source) []Candidate {
	switch source.CrawlType {
	case "rss", "podcast_rss":
		return c.crawlFeed(ctx, source)
	case "youtube_api":
		return c.crawlYouTube(ctx, source)
	default:
		slog.Error("Unknown crawl type", "source", source.Name, "crawl_type", source.CrawlType)
		return nil
	}
}
