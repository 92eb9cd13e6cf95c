package content

import (
	"github.com/thopica/basketball-lobster/app/database"
)

// CommentNode is one enriched comment in the reconstructed discussion tree.
type CommentNode struct {
	database.Comment
	UserVoted bool
	Replies   []*CommentNode
}

// BuildCommentTree turns the flat, chronologically-ordered comment set for
// one content record into a forest. Each node is attached under its parent
// when the parent is present in the set; a comment whose parent is missing
// becomes a root rather than being dropped. Order within the root list and
// within each Replies list follows the input (oldest first).
//
// voted marks comment IDs the viewing user has voted on; pass nil for
// anonymous viewers.
func BuildCommentTree(comments []database.Comment, voted map[string]bool) []*CommentNode {
	nodes := make(map[string]*CommentNode, len(comments))
	ordered := make([]*CommentNode, 0, len(comments))

	for _, comment := range comments {
		node := &CommentNode{
			Comment:   comment,
			UserVoted: voted[comment.ID],
			Replies:   []*CommentNode{},
		}
		nodes[comment.ID] = node
		ordered = append(ordered, node)
	}

	roots := make([]*CommentNode, 0, len(comments))
	for _, node := range ordered {
		if node.ParentID != nil {
			if parent, ok := nodes[*node.ParentID]; ok {
				parent.Replies = append(parent.Replies, node)
				continue
			}
		}
		roots = append(roots, node)
	}

	return roots
}
