package curator

import "testing"

func TestScheduledPolicy(t *testing.T) {
	cases := []struct {
		score       int
		published   bool
		needsReview bool
	}{
		{1, false, false},
		{4, false, false},
		{5, true, true},
		{6, true, true},
		{7, true, true},
		{8, true, false},
		{10, true, false},
	}

	for _, tc := range cases {
		published, needsReview := ScheduledPolicy.Decide(tc.score)
		if published != tc.published || needsReview != tc.needsReview {
			t.Errorf("Score %d: expected published=%t needsReview=%t, got published=%t needsReview=%t",
				tc.score, tc.published, tc.needsReview, published, needsReview)
		}
	}
}

func TestSubmissionPolicy(t *testing.T) {
	cases := []struct {
		score       int
		published   bool
		needsReview bool
	}{
		{1, false, true},
		{3, false, true},
		{4, true, true},
		{5, true, true},
		{6, true, false},
		{10, true, false},
	}

	for _, tc := range cases {
		published, needsReview := SubmissionPolicy.Decide(tc.score)
		if published != tc.published || needsReview != tc.needsReview {
			t.Errorf("Score %d: expected published=%t needsReview=%t, got published=%t needsReview=%t",
				tc.score, tc.published, tc.needsReview, published, needsReview)
		}
	}
}
