package curator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"
)

const curationPrompt = `You are a basketball content curator for an NBA fan community called Basketball Lobster.

Given the following content, do two things:
1. Write a 2-3 sentence summary that captures the key takeaway for NBA fans.
   Be concise, informative, and engaging. Do not use clickbait language.
2. Rate the content quality on a scale of 1-10 based on:
   - NBA relevance (must be primarily about NBA, non-NBA content scores 1-2)
   - Quality of analysis or reporting
   - Timeliness and newsworthiness
   - Engagement potential for serious basketball fans
   Score higher for: breaking news/trades, player stories/narratives, hot takes/debate content

Return ONLY a valid JSON object with no other text:
{"summary": "your 2-3 sentence summary", "score": 7, "reason": "brief explanation"}`

// maxContentChars bounds the text sent to the classifier per call.
const maxContentChars = 2000

// Curator wraps the classifier collaborator with the fixed curation prompt,
// response parsing, score clamping, and a fallback so ingestion never blocks
// on a classifier failure.
type Curator struct {
	classifier Classifier
}

func NewCurator(classifier Classifier) *Curator {
	return &Curator{classifier: classifier}
}

// Curate scores one candidate. On any failure (transport, timeout, malformed
// payload) it returns the fallback result instead of an error: score 5,
// headline as summary, rationale marking the item for manual review.
func (c *Curator) Curate(ctx context.Context, headline, sourceName, text string) CurationResult {
	if len(text) > maxContentChars {
		text = text[:maxContentChars]
	}

	prompt := fmt.Sprintf("%s\n\nHeadline: %s\nSource: %s\nContent: %s",
		curationPrompt, headline, sourceName, text)

	raw, err := c.classifier.Classify(ctx, prompt)
	if err != nil {
		slog.Warn("Classifier call failed, using fallback result", "headline", headline, "error", err)
		return fallbackResult(headline)
	}

	result, err := parseResponse(raw)
	if err != nil {
		slog.Warn("Classifier response unparseable, using fallback result", "headline", headline, "error", err)
		return fallbackResult(headline)
	}

	return result
}

// parseResponse extracts a CurationResult from raw model output, tolerating
// markdown fences around the JSON payload.
func parseResponse(raw string) (CurationResult, error) {
	cleaned := strings.ReplaceAll(raw, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	var parsed struct {
		Summary string  `json:"summary"`
		Score   float64 `json:"score"`
		Reason  string  `json:"reason"`
	}
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return CurationResult{}, fmt.Errorf("failed to parse classifier response: %w", err)
	}

	return CurationResult{
		Summary: parsed.Summary,
		Score:   clampScore(parsed.Score),
		Reason:  parsed.Reason,
	}, nil
}

// clampScore maps any numeric score to an integer in [1,10]. The clamp runs
// on the float64 before conversion: extreme or non-finite model output must
// not reach the int conversion, whose overflow behavior is undefined.
func clampScore(score float64) int {
	if math.IsNaN(score) || score < 1 {
		return 1
	}
	if score > 10 {
		return 10
	}
	return int(math.Round(score))
}

func fallbackResult(headline string) CurationResult {
	return CurationResult{
		Summary: headline,
		Score:   5,
		Reason:  "AI scoring failed - flagged for manual review",
	}
}
