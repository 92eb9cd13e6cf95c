package content

import (
	"github.com/thopica/basketball-lobster/app/database"
)

// Diversify reorders an already-ranked page so that no item extends a run of
// three sharing the same source, or three sharing the same content type.
//
// The pass is greedy: at each position the highest-ranked remaining item that
// satisfies the constraint against the last two placed items is taken. When
// no remaining item qualifies, the highest-ranked one is placed anyway so
// sparse feeds are never starved. The output is always a permutation of the
// input; relative rank order is preserved wherever the constraint allows.
func Diversify(items []database.Content) []database.Content {
	if len(items) <= 2 {
		return items
	}

	remaining := make([]database.Content, len(items))
	copy(remaining, items)

	placed := make([]database.Content, 0, len(items))
	for len(remaining) > 0 {
		pick := 0
		if len(placed) >= 2 {
			pick = -1
			prev1 := placed[len(placed)-1]
			prev2 := placed[len(placed)-2]
			for i, candidate := range remaining {
				sameSource := candidate.SourceName == prev1.SourceName && candidate.SourceName == prev2.SourceName
				sameType := candidate.ContentType == prev1.ContentType && candidate.ContentType == prev2.ContentType
				if !sameSource && !sameType {
					pick = i
					break
				}
			}
			// Relief valve: nothing qualifies, take the best-ranked item.
			if pick < 0 {
				pick = 0
			}
		}

		placed = append(placed, remaining[pick])
		remaining = append(remaining[:pick], remaining[pick+1:]...)
	}

	return placed
}
