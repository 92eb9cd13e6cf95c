package crawler

import (
	"context"
	"html"
	"log/slog"
	"time"

	"github.com/thopica/basketball-lobster/app/database"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// maxChannelItems caps how many videos one channel contributes per run.
const maxChannelItems = 10

// crawlYouTube implements the channel-listing strategy via the YouTube Data
// API v3, newest videos first. Any API error is recoverable: logged, empty
// list returned.
func (c *Crawler) crawlYouTube(ctx context.Context, source database.Source) []Candidate {
	if c.youtubeAPIKey == "" || source.ChannelID == "" {
		slog.Error("YouTube crawl missing API key or channel_id", "source", source.Name)
		return nil
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	service, err := youtube.NewService(timeoutCtx, option.WithAPIKey(c.youtubeAPIKey))
	if err != nil {
		slog.Warn("YouTube service init failed", "source", source.Name, "error", err)
		return nil
	}

	resp, err := service.Search.List([]string{"snippet"}).
		ChannelId(source.ChannelID).
		Order("date").
		MaxResults(maxChannelItems).
		Type("video").
		Context(timeoutCtx).
		Do()
	if err != nil {
		slog.Warn("YouTube API call failed", "source", source.Name, "error", err)
		return nil
	}

	candidates := make([]Candidate, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item == nil || item.Id == nil || item.Id.VideoId == "" || item.Snippet == nil {
			continue
		}

		// The API returns HTML-encoded titles.
		headline := html.UnescapeString(item.Snippet.Title)
		if headline == "" {
			continue
		}

		text := item.Snippet.Description
		if text == "" {
			text = headline
		}

		candidate := Candidate{
			URL:          "https://www.youtube.com/watch?v=" + item.Id.VideoId,
			Headline:     headline,
			Text:         text,
			Author:       item.Snippet.ChannelTitle,
			SourceName:   source.Name,
			ContentType:  "video",
			ThumbnailURL: bestVideoThumbnail(item.Snippet.Thumbnails),
		}

		if item.Snippet.PublishedAt != "" {
			if publishedAt, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt); err == nil {
				candidate.SourcePublishedAt = &publishedAt
			}
		}

		candidates = append(candidates, candidate)
	}

	return candidates
}

func bestVideoThumbnail(thumbnails *youtube.ThumbnailDetails) string {
	if thumbnails == nil {
		return ""
	}
	for _, thumbnail := range []*youtube.Thumbnail{thumbnails.High, thumbnails.Medium, thumbnails.Default} {
		if thumbnail != nil && thumbnail.Url != "" {
			return thumbnail.Url
		}
	}
	return ""
}
