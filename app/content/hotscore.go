package content

import (
	"math"
	"sort"
	"time"

	"github.com/thopica/basketball-lobster/app/database"
)

// RecencyTier grants a short-lived boost to items younger than MaxAgeHours.
// Tiers are checked in order; the first match wins.
type RecencyTier struct {
	MaxAgeHours float64
	Boost       float64
}

// RankConfig parameterizes the hot ranking so alternate tunings stay
// testable. Use DefaultRankConfig for the production values.
type RankConfig struct {
	RecencyTiers   []RecencyTier
	GravityByType  map[string]float64
	DefaultGravity float64
	AIWeight       float64
	VoteWeight     float64
	DefaultAIScore int
	HotWindow      time.Duration
}

// DefaultRankConfig returns the production ranking parameters.
//
// Votes are weighted higher per unit than the AI score because they are a
// rare, high-signal input in a low-traffic community. Gravity is tuned per
// content type: articles decay fastest (short news cycle), podcasts slowest
// (listened over days).
func DefaultRankConfig() RankConfig {
	return RankConfig{
		RecencyTiers: []RecencyTier{
			{MaxAgeHours: 1, Boost: 10},
			{MaxAgeHours: 3, Boost: 5},
			{MaxAgeHours: 6, Boost: 2},
		},
		GravityByType: map[string]float64{
			"article": 1.2,
			"video":   0.8,
			"podcast": 0.6,
		},
		DefaultGravity: 1.0,
		AIWeight:       2,
		VoteWeight:     3,
		DefaultAIScore: 5,
		HotWindow:      3 * 24 * time.Hour,
	}
}

// HotScore computes the time-decayed rank score for one published record.
// The score is strictly decreasing in age for fixed votes and quality.
func (c RankConfig) HotScore(voteCount int, aiScore *int, createdAt time.Time, contentType string, now time.Time) float64 {
	ageHours := now.Sub(createdAt).Hours()
	if ageHours < 0 {
		ageHours = 0
	}

	recencyBoost := 0.0
	for _, tier := range c.RecencyTiers {
		if ageHours < tier.MaxAgeHours {
			recencyBoost = tier.Boost
			break
		}
	}

	quality := c.DefaultAIScore
	if aiScore != nil {
		quality = *aiScore
	}

	base := float64(quality)*c.AIWeight + float64(voteCount)*c.VoteWeight + recencyBoost

	gravity, ok := c.GravityByType[contentType]
	if !ok {
		gravity = c.DefaultGravity
	}

	return base / math.Pow(ageHours+2, gravity)
}

// SortHot orders items descending by hot score, ties broken by newest
// created_at first. The sort is deterministic for any input order.
func (c RankConfig) SortHot(items []database.Content, now time.Time) {
	scores := make(map[string]float64, len(items))
	for _, item := range items {
		scores[item.ID] = c.HotScore(item.VoteCount, item.AIQualityScore, item.CreatedAt, item.ContentType, now)
	}

	sort.SliceStable(items, func(i, j int) bool {
		si, sj := scores[items[i].ID], scores[items[j].ID]
		if si != sj {
			return si > sj
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}
