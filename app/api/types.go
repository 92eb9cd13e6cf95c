package api

import (
	"net/http"
	"time"

	"github.com/thopica/basketball-lobster/app/content"
	"github.com/thopica/basketball-lobster/app/crawler"
	"github.com/thopica/basketball-lobster/app/curator"
	"github.com/thopica/basketball-lobster/app/database"
	"github.com/thopica/basketball-lobster/app/tasks"
)

type Handler struct {
	sourceRepo   database.SourceRepository
	contentRepo  database.ContentRepository
	commentRepo  database.CommentRepository
	crawlLogRepo database.CrawlLogRepository
	crawler      *crawler.Crawler
	curator      *curator.Curator
	scheduler    tasks.TaskSchedulerInterface
	rankConfig   content.RankConfig
	httpClient   *http.Client
	userAgent    string
}

type contentResponse struct {
	ID                string     `json:"id"`
	URL               string     `json:"url"`
	Headline          string     `json:"headline"`
	Summary           string     `json:"summary,omitempty"`
	SourceName        string     `json:"source_name"`
	Author            string     `json:"author,omitempty"`
	ContentType       string     `json:"content_type"`
	ThumbnailURL      string     `json:"thumbnail_url,omitempty"`
	AIQualityScore    *int       `json:"ai_quality_score"`
	AIScoreReason     string     `json:"ai_score_reason,omitempty"`
	VoteCount         int        `json:"vote_count"`
	CommentCount      int        `json:"comment_count"`
	IsUserSubmitted   bool       `json:"is_user_submitted"`
	Published         bool       `json:"published"`
	NeedsReview       bool       `json:"needs_review"`
	SourcePublishedAt *time.Time `json:"source_published_at"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	UserVoted         bool       `json:"user_voted"`
}

type commentResponse struct {
	ID        string             `json:"id"`
	ContentID string             `json:"content_id"`
	UserID    string             `json:"user_id"`
	ParentID  *string            `json:"parent_id"`
	Body      string             `json:"body"`
	VoteCount int                `json:"vote_count"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
	UserVoted bool               `json:"user_voted"`
	Replies   []*commentResponse `json:"replies"`
}

type feedResponse struct {
	Items   []contentResponse `json:"items"`
	Total   int               `json:"total"`
	Page    int               `json:"page"`
	Limit   int               `json:"limit"`
	HasMore bool              `json:"has_more"`
}

func newContentResponse(record database.Content, userVoted bool) contentResponse {
	return contentResponse{
		ID:                record.ID,
		URL:               record.URL,
		Headline:          record.Headline,
		Summary:           record.Summary,
		SourceName:        record.SourceName,
		Author:            record.Author,
		ContentType:       record.ContentType,
		ThumbnailURL:      record.ThumbnailURL,
		AIQualityScore:    record.AIQualityScore,
		AIScoreReason:     record.AIScoreReason,
		VoteCount:         record.VoteCount,
		CommentCount:      record.CommentCount,
		IsUserSubmitted:   record.IsUserSubmitted,
		Published:         record.Published,
		NeedsReview:       record.NeedsReview,
		SourcePublishedAt: record.SourcePublishedAt,
		CreatedAt:         record.CreatedAt,
		UpdatedAt:         record.UpdatedAt,
		UserVoted:         userVoted,
	}
}

func newCommentResponses(nodes []*content.CommentNode) []*commentResponse {
	responses := make([]*commentResponse, 0, len(nodes))
	for _, node := range nodes {
		responses = append(responses, &commentResponse{
			ID:        node.ID,
			ContentID: node.ContentID,
			UserID:    node.UserID,
			ParentID:  node.ParentID,
			Body:      node.Body,
			VoteCount: node.VoteCount,
			CreatedAt: node.CreatedAt,
			UpdatedAt: node.UpdatedAt,
			UserVoted: node.UserVoted,
			Replies:   newCommentResponses(node.Replies),
		})
	}
	return responses
}
