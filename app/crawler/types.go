package crawler

import (
	"time"
)

// Candidate is a not-yet-persisted piece of content discovered during one
// crawl pass. Produced by a fetch strategy, consumed and discarded by the
// ingestion task within the same run.
type Candidate struct {
	URL               string // Dedup identity
	Headline          string
	Text              string // Description or snippet used for curation
	Author            string
	SourceName        string
	ContentType       string
	ThumbnailURL      string
	SourcePublishedAt *time.Time
}
