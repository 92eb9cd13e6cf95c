package curator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
)

type fakeClassifier struct {
	response string
	err      error
	calls    int
	prompts  []string
}

func (f *fakeClassifier) Classify(_ context.Context, prompt string) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

func TestCurate_ParsesWellFormedResponse(t *testing.T) {
	classifier := &fakeClassifier{
		response: `{"summary": "The Lakers traded for a new center.", "score": 8, "reason": "Breaking trade news"}`,
	}
	curator := NewCurator(classifier)

	result := curator.Curate(context.Background(), "Lakers make a trade", "HoopsWire", "Trade details here")

	if result.Summary != "The Lakers traded for a new center." {
		t.Errorf("Unexpected summary: %s", result.Summary)
	}
	if result.Score != 8 {
		t.Errorf("Expected score 8, got %d", result.Score)
	}
	if result.Reason != "Breaking trade news" {
		t.Errorf("Unexpected reason: %s", result.Reason)
	}
}

func TestCurate_StripsMarkdownFences(t *testing.T) {
	classifier := &fakeClassifier{
		response: "```json\n{\"summary\": \"Summary text\", \"score\": 6, \"reason\": \"ok\"}\n```",
	}
	curator := NewCurator(classifier)

	result := curator.Curate(context.Background(), "Headline", "Source", "Body")

	if result.Score != 6 || result.Summary != "Summary text" {
		t.Errorf("Fenced response should parse, got score %d summary %q", result.Score, result.Summary)
	}
}

func TestCurate_ClampsScoreIntoRange(t *testing.T) {
	cases := []struct {
		raw  string
		want int
	}{
		{"15", 10},
		{"0", 1},
		{"-3", 1},
		{"7.6", 8},
		{"7.4", 7},
		{"1", 1},
		{"10", 10},
		{"1e300", 10},
		{"-1e300", 1},
	}

	for _, tc := range cases {
		classifier := &fakeClassifier{
			response: fmt.Sprintf(`{"summary": "s", "score": %s, "reason": "r"}`, tc.raw),
		}
		result := NewCurator(classifier).Curate(context.Background(), "Headline", "Source", "Body")
		if result.Score != tc.want {
			t.Errorf("Raw score %s: expected %d, got %d", tc.raw, tc.want, result.Score)
		}
		if result.Score < 1 || result.Score > 10 {
			t.Errorf("Raw score %s produced out-of-range %d", tc.raw, result.Score)
		}
	}
}

func TestClampScore_NonFiniteInput(t *testing.T) {
	cases := []struct {
		score float64
		want  int
	}{
		{math.NaN(), 1},
		{math.Inf(1), 10},
		{math.Inf(-1), 1},
	}

	for _, tc := range cases {
		if got := clampScore(tc.score); got != tc.want {
			t.Errorf("clampScore(%v): expected %d, got %d", tc.score, tc.want, got)
		}
	}
}

func TestCurate_FallbackOnClassifierError(t *testing.T) {
	classifier := &fakeClassifier{err: errors.New("connection refused")}
	curator := NewCurator(classifier)

	result := curator.Curate(context.Background(), "Warriors sign veteran guard", "HoopsWire", "Body")

	if result.Summary != "Warriors sign veteran guard" {
		t.Errorf("Fallback summary should be the headline, got %q", result.Summary)
	}
	if result.Score != 5 {
		t.Errorf("Fallback score should be 5, got %d", result.Score)
	}
	if result.Reason != "AI scoring failed - flagged for manual review" {
		t.Errorf("Unexpected fallback reason: %s", result.Reason)
	}
}

func TestCurate_FallbackOnUnparseableResponse(t *testing.T) {
	classifier := &fakeClassifier{response: "I cannot rate this content."}
	curator := NewCurator(classifier)

	result := curator.Curate(context.Background(), "Headline", "Source", "Body")

	if result.Score != 5 || result.Summary != "Headline" {
		t.Errorf("Expected fallback result, got score %d summary %q", result.Score, result.Summary)
	}
}

func TestCurate_TruncatesLongContent(t *testing.T) {
	classifier := &fakeClassifier{
		response: `{"summary": "s", "score": 5, "reason": "r"}`,
	}
	curator := NewCurator(classifier)

	longText := strings.Repeat("z", maxContentChars+500)
	curator.Curate(context.Background(), "Headline", "Source", longText)

	if len(classifier.prompts) != 1 {
		t.Fatalf("Expected one classifier call, got %d", len(classifier.prompts))
	}
	if strings.Count(classifier.prompts[0], "z") > maxContentChars {
		t.Errorf("Content should be truncated to %d chars before the classifier call", maxContentChars)
	}
}
