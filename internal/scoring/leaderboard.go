package scoring

import (
	"sort"

	"github.com/htlin222/gkahoot/internal/domain"
)

// Rank folds every scored question's results into cumulative per-participant
// totals, sorted descending. A participant absent from a question simply
// contributes nothing for it. The function is pure: it does not touch its
// input and the same stats always produce the same ranking.
//
// Ties break by participant id ascending. Map iteration order would make an
// "encounter order" tiebreak nondeterministic, and rankings must not depend
// on which question was scored first.
func Rank(all map[int]domain.Stats) []domain.Ranking {
	totals := make(map[string]int)
	for _, stats := range all {
		for _, score := range stats.Scores {
			totals[score.ParticipantID] += score.Points
		}
	}

	rankings := make([]domain.Ranking, 0, len(totals))
	for id, total := range totals {
		rankings = append(rankings, domain.Ranking{ParticipantID: id, TotalPoints: total})
	}
	sort.Slice(rankings, func(i, j int) bool {
		if rankings[i].TotalPoints != rankings[j].TotalPoints {
			return rankings[i].TotalPoints > rankings[j].TotalPoints
		}
		return rankings[i].ParticipantID < rankings[j].ParticipantID
	})
	return rankings
}
