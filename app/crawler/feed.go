package crawler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"github.com/thopica/basketball-lobster/app/database"
)

// maxFeedItems caps how many entries one syndicated feed contributes per run.
const maxFeedItems = 20

// crawlFeed implements the syndicated-feed strategy for article and podcast
// sources. Per-item malformation (missing link or title) is skipped, never
// fatal; any fetch or parse failure yields an empty list.
func (c *Crawler) crawlFeed(ctx context.Context, source database.Source) []Candidate {
	data, err := c.fetch(ctx, source.URL)
	if err != nil {
		slog.Warn("Feed fetch failed", "source", source.Name, "error", err)
		return nil
	}

	feed, err := c.feedParser.Parse(strings.NewReader(string(data)))
	if err != nil {
		slog.Warn("Feed parse failed", "source", source.Name, "error", err)
		return nil
	}

	items := feed.Items
	if len(items) > maxFeedItems {
		items = items[:maxFeedItems]
	}

	candidates := make([]Candidate, 0, len(items))
	for _, item := range items {
		if item == nil || item.Link == "" || item.Title == "" {
			continue
		}

		candidate := Candidate{
			URL:          item.Link,
			Headline:     item.Title,
			Text:         bestSnippet(item),
			Author:       feedAuthor(item),
			SourceName:   source.Name,
			ContentType:  source.ContentType,
			ThumbnailURL: extractThumbnail(item),
		}

		if item.PublishedParsed != nil {
			candidate.SourcePublishedAt = item.PublishedParsed
		}

		candidates = append(candidates, candidate)
	}

	return candidates
}

func (c *Crawler) fetch(ctx context.Context, url string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}

func bestSnippet(item *gofeed.Item) string {
	if item.Description != "" {
		return item.Description
	}
	if item.Content != "" {
		return item.Content
	}
	return item.Title
}

func feedAuthor(item *gofeed.Item) string {
	if len(item.Authors) > 0 && item.Authors[0] != nil && item.Authors[0].Name != "" {
		return item.Authors[0].Name
	}
	if item.Author != nil {
		return item.Author.Name
	}
	return ""
}

// extractThumbnail looks for the first image-bearing enclosure, then a
// media:thumbnail extension, then the first <img> embedded in the entry HTML.
func extractThumbnail(item *gofeed.Item) string {
	for _, enclosure := range item.Enclosures {
		if enclosure != nil && strings.HasPrefix(enclosure.Type, "image") && enclosure.URL != "" {
			return enclosure.URL
		}
	}

	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}

	if media, ok := item.Extensions["media"]; ok {
		for _, ext := range media["thumbnail"] {
			if url := ext.Attrs["url"]; url != "" {
				return url
			}
		}
		for _, ext := range media["content"] {
			if ext.Attrs["medium"] == "image" && ext.Attrs["url"] != "" {
				return ext.Attrs["url"]
			}
		}
	}

	return firstEmbeddedImage(item.Content)
}

func firstEmbeddedImage(html string) string {
	if html == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	src, _ := doc.Find("img").First().Attr("src")
	return src
}
