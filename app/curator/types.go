package curator

import (
	"context"
)

// CurationResult is the bounded outcome of one classifier call. Score is
// always an integer in [1,10], whatever the classifier returned.
type CurationResult struct {
	Summary string `json:"summary"`
	Score   int    `json:"score"`
	Reason  string `json:"reason"`
}

// Classifier is the external text-classification collaborator. One prompt in,
// raw model text out. Implementations own their request timeout.
type Classifier interface {
	Classify(ctx context.Context, prompt string) (string, error)
}
