package api

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/thopica/basketball-lobster/app/cfg"
	"github.com/thopica/basketball-lobster/app/content"
	"github.com/thopica/basketball-lobster/app/crawler"
	"github.com/thopica/basketball-lobster/app/curator"
	"github.com/thopica/basketball-lobster/app/database"
	"github.com/thopica/basketball-lobster/app/tasks"
)

const (
	defaultPageSize = 30
	maxPageSize     = 50

	// hotFetchCap bounds how many records enter the in-memory hot ranking.
	hotFetchCap = 500
)

func NewHandler(sourceRepo database.SourceRepository, contentRepo database.ContentRepository,
	commentRepo database.CommentRepository, crawlLogRepo database.CrawlLogRepository,
	sourceCrawler *crawler.Crawler, contentCurator *curator.Curator,
	scheduler tasks.TaskSchedulerInterface) *Handler {
	appCfg := cfg.Get()

	return &Handler{
		sourceRepo:   sourceRepo,
		contentRepo:  contentRepo,
		commentRepo:  commentRepo,
		crawlLogRepo: crawlLogRepo,
		crawler:      sourceCrawler,
		curator:      contentCurator,
		scheduler:    scheduler,
		rankConfig:   content.DefaultRankConfig(),
		httpClient:   &http.Client{Timeout: 5 * time.Second},
		userAgent:    appCfg.UserAgent,
	}
}

// GetFeed serves the ranked, paginated public feed. The hot view ranks a
// bounded recent window in memory and diversifies the returned page; new and
// top delegate ordering to the database.
func (h *Handler) GetFeed(c *gin.Context) {
	sortMode := c.DefaultQuery("sort", "hot")
	contentType := c.DefaultQuery("type", "all")
	topPeriod := c.DefaultQuery("top_period", "today")
	userID := c.Query("user_id")

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
	if err != nil || limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset := (page - 1) * limit

	filter := database.ContentFilter{Limit: limit, Offset: offset}
	if contentType != "all" {
		filter.ContentType = contentType
	}

	now := time.Now().UTC()
	var items []database.Content
	var total int

	switch sortMode {
	case "new":
		items, total, err = h.contentRepo.ListPublished(filter)

	case "top":
		var since time.Time
		switch topPeriod {
		case "week":
			since = now.Add(-7 * 24 * time.Hour)
		case "month":
			since = now.Add(-30 * 24 * time.Hour)
		default: // today
			since = now.Add(-24 * time.Hour)
		}
		filter.CreatedAfter = &since
		filter.OrderBy = "vote_count"
		items, total, err = h.contentRepo.ListPublished(filter)

	default: // hot
		since := now.Add(-h.rankConfig.HotWindow)
		windowFilter := database.ContentFilter{
			ContentType:  filter.ContentType,
			CreatedAfter: &since,
			Limit:        hotFetchCap,
		}

		var window []database.Content
		window, total, err = h.contentRepo.ListPublished(windowFilter)
		if err == nil {
			h.rankConfig.SortHot(window, now)

			if offset >= len(window) {
				items = nil
			} else {
				end := offset + limit
				if end > len(window) {
					end = len(window)
				}
				items = content.Diversify(window[offset:end])
			}
		}
	}

	if err != nil {
		slog.Error("Database error", "operation", "list_feed", "sort", sortMode, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load feed"})
		return
	}

	voted := map[string]bool{}
	if userID != "" && len(items) > 0 {
		ids := make([]string, 0, len(items))
		for _, item := range items {
			ids = append(ids, item.ID)
		}
		voted, err = h.contentRepo.GetVotedContentIDs(userID, ids)
		if err != nil {
			slog.Error("Database error", "operation", "get_votes", "error", err)
			voted = map[string]bool{}
		}
	}

	responses := make([]contentResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, newContentResponse(item, voted[item.ID]))
	}

	c.JSON(http.StatusOK, feedResponse{
		Items:   responses,
		Total:   total,
		Page:    page,
		Limit:   limit,
		HasMore: total > offset+limit,
	})
}

// GetContentByID serves one published record with its threaded discussion.
func (h *Handler) GetContentByID(c *gin.Context) {
	id := c.Param("id")
	userID := c.Query("user_id")

	record, err := h.contentRepo.GetPublishedByID(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_content", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load content"})
		return
	}
	if record == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Content not found"})
		return
	}

	comments, err := h.commentRepo.GetCommentsByContentID(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_comments", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load comments"})
		return
	}

	userVoted := false
	votedComments := map[string]bool{}
	if userID != "" {
		voted, err := h.contentRepo.GetVotedContentIDs(userID, []string{record.ID})
		if err == nil {
			userVoted = voted[record.ID]
		}

		if len(comments) > 0 {
			commentIDs := make([]string, 0, len(comments))
			for _, comment := range comments {
				commentIDs = append(commentIDs, comment.ID)
			}
			if voted, err := h.commentRepo.GetVotedCommentIDs(userID, commentIDs); err == nil {
				votedComments = voted
			}
		}
	}

	tree := content.BuildCommentTree(comments, votedComments)

	c.JSON(http.StatusOK, gin.H{
		"content":  newContentResponse(*record, userVoted),
		"comments": newCommentResponses(tree),
	})
}

type submitRequest struct {
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	UserID      string `json:"user_id"`
}

// SubmitContent handles direct user submissions: dedup, best-effort page
// scrape, curation under the submission policy, insert.
func (h *Handler) SubmitContent(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.URL == "" || req.ContentType == "" || req.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	parsedURL, err := url.Parse(req.URL)
	if err != nil || parsedURL.Hostname() == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid URL"})
		return
	}

	exists, err := h.contentRepo.ExistsByURL(req.URL)
	if err != nil {
		slog.Error("Database error", "operation", "check_duplicate", "url", req.URL, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check URL"})
		return
	}
	if exists {
		c.JSON(http.StatusConflict, gin.H{"error": "This URL has already been submitted"})
		return
	}

	headline, pageText := h.scrapePage(c.Request.Context(), req.URL)
	if headline == "" {
		headline = req.URL
	}
	if pageText == "" {
		pageText = headline
	}

	result := h.curator.Curate(c.Request.Context(), headline, "User Submission", pageText)
	published, needsReview := curator.SubmissionPolicy.Decide(result.Score)

	score := result.Score
	record := database.Content{
		URL:             req.URL,
		Headline:        headline,
		Summary:         result.Summary,
		SourceName:      strings.TrimPrefix(parsedURL.Hostname(), "www."),
		ContentType:     req.ContentType,
		AIQualityScore:  &score,
		AIScoreReason:   result.Reason,
		IsUserSubmitted: true,
		SubmittedBy:     req.UserID,
		Published:       published,
		NeedsReview:     needsReview,
	}

	id, inserted, err := h.contentRepo.InsertContent(record)
	if err != nil {
		slog.Error("Database error", "operation", "insert_submission", "url", req.URL, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store submission"})
		return
	}
	if !inserted {
		c.JSON(http.StatusConflict, gin.H{"error": "This URL has already been submitted"})
		return
	}

	record.ID = id
	message := "Your submission is pending review."
	if published {
		message = "Your submission is live!"
	}

	c.JSON(http.StatusOK, gin.H{
		"content":   newContentResponse(record, false),
		"published": published,
		"message":   message,
	})
}

type voteRequest struct {
	ContentID string `json:"content_id"`
	UserID    string `json:"user_id"`
}

func (h *Handler) Vote(c *gin.Context) {
	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ContentID == "" || req.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing content_id or user_id"})
		return
	}

	voted, err := h.contentRepo.ToggleVote(req.UserID, req.ContentID)
	if err != nil {
		slog.Error("Database error", "operation", "toggle_vote", "content_id", req.ContentID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record vote"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"voted": voted})
}

type commentRequest struct {
	ContentID string  `json:"content_id"`
	UserID    string  `json:"user_id"`
	Body      string  `json:"body"`
	ParentID  *string `json:"parent_id"`
}

func (h *Handler) CreateComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ContentID == "" || req.UserID == "" || strings.TrimSpace(req.Body) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	comment, err := h.commentRepo.InsertComment(database.Comment{
		ContentID: req.ContentID,
		UserID:    req.UserID,
		ParentID:  req.ParentID,
		Body:      strings.TrimSpace(req.Body),
	})
	if errors.Is(err, database.ErrMissingReference) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Content not found"})
		return
	}
	if err != nil {
		slog.Error("Database error", "operation", "insert_comment", "content_id", req.ContentID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store comment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":         comment.ID,
		"content_id": comment.ContentID,
		"user_id":    comment.UserID,
		"parent_id":  comment.ParentID,
		"body":       comment.Body,
		"vote_count": comment.VoteCount,
		"created_at": comment.CreatedAt,
		"updated_at": comment.UpdatedAt,
	})
}

type commentVoteRequest struct {
	CommentID string `json:"comment_id"`
	UserID    string `json:"user_id"`
}

func (h *Handler) CommentVote(c *gin.Context) {
	var req commentVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.CommentID == "" || req.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing comment_id or user_id"})
		return
	}

	voted, err := h.commentRepo.ToggleCommentVote(req.UserID, req.CommentID)
	if err != nil {
		slog.Error("Database error", "operation", "toggle_comment_vote", "comment_id", req.CommentID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record vote"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"voted": voted})
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := gin.H{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if sources, err := h.sourceRepo.GetActiveSources(); err == nil {
		health["active_sources"] = len(sources)
	}

	if _, _, _, all, err := h.contentRepo.GetModerationStats(); err == nil {
		health["content_records"] = all
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) AdminListContent(c *gin.Context) {
	status := c.DefaultQuery("status", "review")
	contentType := c.DefaultQuery("type", "all")

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 {
		limit = 50
	}
	offset := (page - 1) * limit

	if contentType == "all" {
		contentType = ""
	}

	items, total, err := h.contentRepo.ListForModeration(status, contentType, limit, offset)
	if err != nil {
		slog.Error("Database error", "operation", "list_moderation", "status", status, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list content"})
		return
	}

	responses := make([]contentResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, newContentResponse(item, false))
	}

	c.JSON(http.StatusOK, feedResponse{
		Items:   responses,
		Total:   total,
		Page:    page,
		Limit:   limit,
		HasMore: total > offset+limit,
	})
}

type moderationRequest struct {
	ID     string   `json:"id"`
	IDs    []string `json:"ids"`
	Action string   `json:"action"`
}

func (h *Handler) AdminModerateContent(c *gin.Context) {
	var req moderationRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Action == "" || (req.ID == "" && len(req.IDs) == 0) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing id/ids and action"})
		return
	}

	if req.Action != "approve" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid action"})
		return
	}

	targetIDs := req.IDs
	if len(targetIDs) == 0 {
		targetIDs = []string{req.ID}
	}

	updated, err := h.contentRepo.ApproveContent(targetIDs)
	if err != nil {
		slog.Error("Database error", "operation", "approve_content", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to approve content"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "updated": updated})
}

func (h *Handler) AdminDeleteContent(c *gin.Context) {
	var req moderationRequest
	if err := c.ShouldBindJSON(&req); err != nil || (req.ID == "" && len(req.IDs) == 0) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing id/ids"})
		return
	}

	targetIDs := req.IDs
	if len(targetIDs) == 0 {
		targetIDs = []string{req.ID}
	}

	deleted, err := h.contentRepo.DeleteContent(targetIDs)
	if err != nil {
		slog.Error("Database error", "operation", "delete_content", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete content"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "deleted": deleted})
}

func (h *Handler) AdminStats(c *gin.Context) {
	review, unpublished, published, all, err := h.contentRepo.GetModerationStats()
	if err != nil {
		slog.Error("Database error", "operation", "moderation_stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"review":      review,
		"unpublished": unpublished,
		"published":   published,
		"all":         all,
	})
}

// AdminTriggerCrawl enqueues an immediate crawl for every active source,
// regardless of its schedule.
func (h *Handler) AdminTriggerCrawl(c *gin.Context) {
	sources, err := h.sourceRepo.GetActiveSources()
	if err != nil {
		slog.Error("Database error", "operation", "get_sources", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load sources"})
		return
	}

	enqueued := 0
	for _, source := range sources {
		task := tasks.NewCrawlSourceTask(source, h.crawler, h.curator, h.sourceRepo, h.contentRepo, h.crawlLogRepo)
		if err := h.scheduler.EnqueueTask(task); err != nil {
			slog.Warn("Failed to enqueue crawl task", "source", source.Name, "error", err)
			continue
		}
		enqueued++
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "sources_enqueued": enqueued})
}
