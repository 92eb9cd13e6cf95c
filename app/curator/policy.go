package curator

// PublishPolicy maps a quality score to a publish/review decision. Both call
// sites evaluate the same pure function with their own constants, so the two
// threshold tables cannot drift apart silently.
type PublishPolicy struct {
	PublishThreshold int
	ReviewLow        int
	ReviewHigh       int
}

// Decide returns the publish flag and review flag for a score.
func (p PublishPolicy) Decide(score int) (published, needsReview bool) {
	published = score >= p.PublishThreshold
	needsReview = score >= p.ReviewLow && score <= p.ReviewHigh
	return published, needsReview
}

// ScheduledPolicy governs scheduled ingestion: publish at 5+, with 5-7
// published but held for moderator review.
var ScheduledPolicy = PublishPolicy{PublishThreshold: 5, ReviewLow: 5, ReviewHigh: 7}

// SubmissionPolicy governs direct user submissions: a lower publish bar of 4,
// with everything below 6 flagged for review, including low-scoring
// unpublished submissions.
var SubmissionPolicy = PublishPolicy{PublishThreshold: 4, ReviewLow: 1, ReviewHigh: 5}
