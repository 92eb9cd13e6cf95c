package database

import (
	"time"
)

type Source struct {
	ID                   string // Database UUID
	Slug                 string // Definition identifier derived from filename
	Name                 string
	URL                  string
	CrawlType            string // rss, podcast_rss, youtube_api
	ContentType          string // article, video, podcast
	ChannelID            string // youtube_api only
	CrawlIntervalMinutes int
	LastCrawledAt        *time.Time
	Active               bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

type Content struct {
	ID                string
	URL               string // Globally unique, dedup identity
	Headline          string
	Summary           string
	SourceName        string
	Author            string
	ContentType       string
	ThumbnailURL      string
	AIQualityScore    *int // 1-10, nil when never curated
	AIScoreReason     string
	VoteCount         int
	CommentCount      int
	IsUserSubmitted   bool
	SubmittedBy       string
	Published         bool
	NeedsReview       bool
	SourcePublishedAt *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type Comment struct {
	ID        string
	ContentID string
	UserID    string
	ParentID  *string
	Body      string
	VoteCount int
	CreatedAt time.Time
	UpdatedAt time.Time
}

type CrawlLog struct {
	ID             string
	SourceID       string
	ItemsFound     int
	ItemsNew       int
	ItemsPublished int
	Errors         string // Empty when the run completed cleanly
	StartedAt      time.Time
	CompletedAt    *time.Time
}
