package database

import (
	"errors"
	"time"
)

// ErrMissingReference reports a write against a content record or parent
// comment that does not exist. Callers treat it as bad input, not a server
// fault.
var ErrMissingReference = errors.New("referenced record does not exist")

type SourceRepository interface {
	GetActiveSources() ([]Source, error)
	GetSourceBySlug(slug string) (*Source, error)

	UpsertSource(source Source) (string, error)
	UpdateLastCrawledAt(sourceID string, crawledAt time.Time) error
}

// ContentFilter narrows ListPublished queries. Zero values mean "no
// constraint" except Limit, which callers must always set.
type ContentFilter struct {
	ContentType  string // article, video, podcast; empty for all
	CreatedAfter *time.Time
	OrderBy      string // created_at or vote_count; created_at when empty
	Limit        int
	Offset       int
}

type ContentRepository interface {
	ExistsByURL(url string) (bool, error)
	GetPublishedByID(id string) (*Content, error)
	ListPublished(filter ContentFilter) ([]Content, int, error)

	// InsertContent reports inserted=false when the URL already exists;
	// a concurrent insert of the same URL is an expected skip, not an error.
	InsertContent(content Content) (string, bool, error)

	ToggleVote(userID, contentID string) (bool, error)
	GetVotedContentIDs(userID string, contentIDs []string) (map[string]bool, error)

	ListForModeration(status, contentType string, limit, offset int) ([]Content, int, error)
	ApproveContent(ids []string) (int64, error)
	DeleteContent(ids []string) (int64, error)
	GetModerationStats() (review, unpublished, published, all int, err error)
}

type CommentRepository interface {
	GetCommentsByContentID(contentID string) ([]Comment, error)
	InsertComment(comment Comment) (*Comment, error)

	ToggleCommentVote(userID, commentID string) (bool, error)
	GetVotedCommentIDs(userID string, commentIDs []string) (map[string]bool, error)
}

type CrawlLogRepository interface {
	InsertCrawlLog(log CrawlLog) error
}
