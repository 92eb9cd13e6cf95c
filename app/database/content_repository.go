package database

import (
	"database/sql"
	"fmt"
	"strconv"

	"github.com/lib/pq"
)

var _ ContentRepository = (*ContentRepositoryImpl)(nil)

// ContentRepositoryImpl handles database operations for content records
type ContentRepositoryImpl struct {
	db *DB
}

func NewContentRepository(db *DB) *ContentRepositoryImpl {
	return &ContentRepositoryImpl{db: db}
}

const contentColumns = `id, url, headline, COALESCE(summary, ''), source_name,
	COALESCE(author, ''), content_type, COALESCE(thumbnail_url, ''),
	ai_quality_score, COALESCE(ai_score_reason, ''), vote_count, comment_count,
	is_user_submitted, COALESCE(submitted_by, ''), published, needs_review,
	source_published_at, created_at, updated_at`

// ExistsByURL is the dedup check run before any classifier call. The URL
// uniqueness constraint remains the authoritative guard against races.
func (r *ContentRepositoryImpl) ExistsByURL(url string) (bool, error) {
	var id string
	err := r.db.QueryRow(`SELECT id FROM content WHERE url = $1 LIMIT 1`, url).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check URL existence: %w", err)
	}
	return true, nil
}

func (r *ContentRepositoryImpl) GetPublishedByID(id string) (*Content, error) {
	row := r.db.QueryRow(`
		SELECT `+contentColumns+`
		FROM content
		WHERE id = $1 AND published = true
	`, id)

	content, err := scanContent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &content, nil
}

func (r *ContentRepositoryImpl) ListPublished(filter ContentFilter) ([]Content, int, error) {
	where := "published = true"
	args := []interface{}{}

	if filter.ContentType != "" {
		args = append(args, filter.ContentType)
		where += " AND content_type = $" + strconv.Itoa(len(args))
	}
	if filter.CreatedAfter != nil {
		args = append(args, *filter.CreatedAfter)
		where += " AND created_at >= $" + strconv.Itoa(len(args))
	}

	var total int
	err := r.db.QueryRow("SELECT COUNT(*) FROM content WHERE "+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count published content: %w", err)
	}

	orderBy := "created_at DESC"
	if filter.OrderBy == "vote_count" {
		orderBy = "vote_count DESC, created_at DESC"
	}

	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(`
		SELECT %s
		FROM content
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d
	`, contentColumns, where, orderBy, len(args)-1, len(args))

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list published content: %w", err)
	}
	defer rows.Close()

	items, err := collectContent(rows)
	if err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (r *ContentRepositoryImpl) InsertContent(content Content) (string, bool, error) {
	var id string
	err := r.db.QueryRow(`
		INSERT INTO content (
			url, headline, summary, source_name, author, content_type,
			thumbnail_url, ai_quality_score, ai_score_reason,
			is_user_submitted, submitted_by, published, needs_review,
			source_published_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id
	`, content.URL, content.Headline, nullIfEmpty(content.Summary), content.SourceName,
		nullIfEmpty(content.Author), content.ContentType, nullIfEmpty(content.ThumbnailURL),
		content.AIQualityScore, nullIfEmpty(content.AIScoreReason),
		content.IsUserSubmitted, nullIfEmpty(content.SubmittedBy),
		content.Published, content.NeedsReview, content.SourcePublishedAt).Scan(&id)

	if err != nil {
		// A concurrent run may have stored the same URL between the dedup
		// check and this insert. That race is an expected skip.
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to insert content: %w", err)
	}

	return id, true, nil
}

// ToggleVote adds the user's vote, or removes it when one exists, keeping
// content.vote_count in step within the same transaction.
func (r *ContentRepositoryImpl) ToggleVote(userID, contentID string) (bool, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return false, fmt.Errorf("failed to begin vote transaction: %w", err)
	}
	defer tx.Rollback()

	var voteID string
	err = tx.QueryRow(`SELECT id FROM votes WHERE user_id = $1 AND content_id = $2`,
		userID, contentID).Scan(&voteID)

	var voted bool
	switch {
	case err == sql.ErrNoRows:
		if _, err := tx.Exec(`INSERT INTO votes (user_id, content_id) VALUES ($1, $2)`,
			userID, contentID); err != nil {
			return false, fmt.Errorf("failed to insert vote: %w", err)
		}
		if _, err := tx.Exec(`UPDATE content SET vote_count = vote_count + 1, updated_at = NOW() WHERE id = $1`,
			contentID); err != nil {
			return false, fmt.Errorf("failed to increment vote count: %w", err)
		}
		voted = true
	case err != nil:
		return false, fmt.Errorf("failed to check existing vote: %w", err)
	default:
		if _, err := tx.Exec(`DELETE FROM votes WHERE id = $1`, voteID); err != nil {
			return false, fmt.Errorf("failed to delete vote: %w", err)
		}
		if _, err := tx.Exec(`UPDATE content SET vote_count = GREATEST(vote_count - 1, 0), updated_at = NOW() WHERE id = $1`,
			contentID); err != nil {
			return false, fmt.Errorf("failed to decrement vote count: %w", err)
		}
		voted = false
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit vote transaction: %w", err)
	}

	return voted, nil
}

func (r *ContentRepositoryImpl) GetVotedContentIDs(userID string, contentIDs []string) (map[string]bool, error) {
	voted := make(map[string]bool)
	if len(contentIDs) == 0 {
		return voted, nil
	}

	rows, err := r.db.Query(`
		SELECT content_id FROM votes
		WHERE user_id = $1 AND content_id = ANY($2)
	`, userID, pq.Array(contentIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to get voted content IDs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan voted content ID: %w", err)
		}
		voted[id] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating vote rows: %w", err)
	}

	return voted, nil
}

func (r *ContentRepositoryImpl) ListForModeration(status, contentType string, limit, offset int) ([]Content, int, error) {
	where := "1 = 1"
	args := []interface{}{}

	switch status {
	case "review":
		where = "published = true AND needs_review = true"
	case "unpublished":
		where = "published = false"
	case "published":
		where = "published = true AND needs_review = false"
	}

	if contentType != "" {
		args = append(args, contentType)
		where += " AND content_type = $" + strconv.Itoa(len(args))
	}

	var total int
	err := r.db.QueryRow("SELECT COUNT(*) FROM content WHERE "+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count moderation content: %w", err)
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`
		SELECT %s
		FROM content
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, contentColumns, where, len(args)-1, len(args))

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list moderation content: %w", err)
	}
	defer rows.Close()

	items, err := collectContent(rows)
	if err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// ApproveContent publishes the records and clears their review flag.
func (r *ContentRepositoryImpl) ApproveContent(ids []string) (int64, error) {
	result, err := r.db.Exec(`
		UPDATE content
		SET published = true, needs_review = false, updated_at = NOW()
		WHERE id = ANY($1)
	`, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("failed to approve content: %w", err)
	}

	updated, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get approved row count: %w", err)
	}

	return updated, nil
}

func (r *ContentRepositoryImpl) DeleteContent(ids []string) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM content WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("failed to delete content: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get deleted row count: %w", err)
	}

	return deleted, nil
}

func (r *ContentRepositoryImpl) GetModerationStats() (review, unpublished, published, all int, err error) {
	// SUM over zero rows is NULL; COALESCE keeps the scan valid on an
	// empty table.
	err = r.db.QueryRow(`
		SELECT
			COALESCE(SUM(CASE WHEN published = true AND needs_review = true THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN published = false THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN published = true AND needs_review = false THEN 1 ELSE 0 END), 0),
			COUNT(*)
		FROM content
	`).Scan(&review, &unpublished, &published, &all)

	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("failed to get moderation stats: %w", err)
	}

	return review, unpublished, published, all, nil
}

func scanContent(row rowScanner) (Content, error) {
	var content Content
	err := row.Scan(
		&content.ID, &content.URL, &content.Headline, &content.Summary,
		&content.SourceName, &content.Author, &content.ContentType,
		&content.ThumbnailURL, &content.AIQualityScore, &content.AIScoreReason,
		&content.VoteCount, &content.CommentCount, &content.IsUserSubmitted,
		&content.SubmittedBy, &content.Published, &content.NeedsReview,
		&content.SourcePublishedAt, &content.CreatedAt, &content.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return Content{}, err
	}
	if err != nil {
		return Content{}, fmt.Errorf("failed to scan content row: %w", err)
	}
	return content, nil
}

func collectContent(rows *sql.Rows) ([]Content, error) {
	var items []Content
	for rows.Next() {
		content, err := scanContent(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, content)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating content rows: %w", err)
	}

	return items, nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
