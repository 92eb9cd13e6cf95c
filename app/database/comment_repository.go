package database

import (
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

var _ CommentRepository = (*CommentRepositoryImpl)(nil)

// CommentRepositoryImpl handles database operations for discussion comments
type CommentRepositoryImpl struct {
	db *DB
}

func NewCommentRepository(db *DB) *CommentRepositoryImpl {
	return &CommentRepositoryImpl{db: db}
}

// GetCommentsByContentID returns the flat comment set for one content
// record, oldest first. The thread structure is rebuilt by the caller.
func (r *CommentRepositoryImpl) GetCommentsByContentID(contentID string) ([]Comment, error) {
	rows, err := r.db.Query(`
		SELECT id, content_id, user_id, parent_id, body, vote_count, created_at, updated_at
		FROM comments
		WHERE content_id = $1
		ORDER BY created_at ASC
	`, contentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get comments: %w", err)
	}
	defer rows.Close()

	var comments []Comment
	for rows.Next() {
		var comment Comment
		err := rows.Scan(
			&comment.ID, &comment.ContentID, &comment.UserID, &comment.ParentID,
			&comment.Body, &comment.VoteCount, &comment.CreatedAt, &comment.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment row: %w", err)
		}
		comments = append(comments, comment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comment rows: %w", err)
	}

	return comments, nil
}

// InsertComment stores a comment and bumps the owning record's comment count
// within one transaction.
func (r *CommentRepositoryImpl) InsertComment(comment Comment) (*Comment, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin comment transaction: %w", err)
	}
	defer tx.Rollback()

	var stored Comment
	err = tx.QueryRow(`
		INSERT INTO comments (content_id, user_id, parent_id, body)
		VALUES ($1, $2, $3, $4)
		RETURNING id, content_id, user_id, parent_id, body, vote_count, created_at, updated_at
	`, comment.ContentID, comment.UserID, comment.ParentID, comment.Body).Scan(
		&stored.ID, &stored.ContentID, &stored.UserID, &stored.ParentID,
		&stored.Body, &stored.VoteCount, &stored.CreatedAt, &stored.UpdatedAt,
	)
	if err != nil {
		// A bad content_id or parent_id trips the foreign key, which is the
		// caller's mistake rather than a storage fault.
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return nil, ErrMissingReference
		}
		return nil, fmt.Errorf("failed to insert comment: %w", err)
	}

	if _, err := tx.Exec(`UPDATE content SET comment_count = comment_count + 1, updated_at = NOW() WHERE id = $1`,
		comment.ContentID); err != nil {
		return nil, fmt.Errorf("failed to increment comment count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit comment transaction: %w", err)
	}

	return &stored, nil
}

// ToggleCommentVote adds the user's vote on a comment, or removes it when one
// exists, keeping comments.vote_count in step within the same transaction.
func (r *CommentRepositoryImpl) ToggleCommentVote(userID, commentID string) (bool, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return false, fmt.Errorf("failed to begin comment vote transaction: %w", err)
	}
	defer tx.Rollback()

	var voteID string
	err = tx.QueryRow(`SELECT id FROM comment_votes WHERE user_id = $1 AND comment_id = $2`,
		userID, commentID).Scan(&voteID)

	var voted bool
	switch {
	case err == sql.ErrNoRows:
		if _, err := tx.Exec(`INSERT INTO comment_votes (user_id, comment_id) VALUES ($1, $2)`,
			userID, commentID); err != nil {
			return false, fmt.Errorf("failed to insert comment vote: %w", err)
		}
		if _, err := tx.Exec(`UPDATE comments SET vote_count = vote_count + 1, updated_at = NOW() WHERE id = $1`,
			commentID); err != nil {
			return false, fmt.Errorf("failed to increment comment vote count: %w", err)
		}
		voted = true
	case err != nil:
		return false, fmt.Errorf("failed to check existing comment vote: %w", err)
	default:
		if _, err := tx.Exec(`DELETE FROM comment_votes WHERE id = $1`, voteID); err != nil {
			return false, fmt.Errorf("failed to delete comment vote: %w", err)
		}
		if _, err := tx.Exec(`UPDATE comments SET vote_count = GREATEST(vote_count - 1, 0), updated_at = NOW() WHERE id = $1`,
			commentID); err != nil {
			return false, fmt.Errorf("failed to decrement comment vote count: %w", err)
		}
		voted = false
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit comment vote transaction: %w", err)
	}

	return voted, nil
}

func (r *CommentRepositoryImpl) GetVotedCommentIDs(userID string, commentIDs []string) (map[string]bool, error) {
	voted := make(map[string]bool)
	if len(commentIDs) == 0 {
		return voted, nil
	}

	rows, err := r.db.Query(`
		SELECT comment_id FROM comment_votes
		WHERE user_id = $1 AND comment_id = ANY($2)
	`, userID, pq.Array(commentIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to get voted comment IDs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan voted comment ID: %w", err)
		}
		voted[id] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comment vote rows: %w", err)
	}

	return voted, nil
}
