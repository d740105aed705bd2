package usecase

import (
	"sort"

	"github.com/kirillkom/pdf-rag-engine/internal/core/domain"
)

const DefaultRRFK = 60

// FuseRRF merges ranked lists with Reciprocal Rank Fusion: a hit at 1-based
// rank r adds 1/(k+r) to its total. Hits are identified by ID. Equal totals
// keep the order in which hits were first seen, scanning lists left to right
// and each list top to bottom.
func FuseRRF(rankings []domain.RankList, k int) domain.FusedRanking {
	if k <= 0 {
		k = DefaultRRFK
	}

	positions := make(map[string]int)
	out := make(domain.FusedRanking, 0)
	for _, list := range rankings {
		for rank, hit := range list {
			contribution := 1.0 / float64(k+rank+1)
			if idx, ok := positions[hit.ID]; ok {
				out[idx].Hit = preferRicherHit(out[idx].Hit, hit)
				out[idx].Score += contribution
				continue
			}
			positions[hit.ID] = len(out)
			out = append(out, domain.FusedHit{Hit: hit, Score: contribution})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

func trimFused(fused domain.FusedRanking, limit int) domain.FusedRanking {
	if limit <= 0 || len(fused) <= limit {
		return fused
	}
	return fused[:limit]
}

// asFused lifts a single strategy's list into the fused shape, keeping its
// native scores.
func asFused(list domain.RankList) domain.FusedRanking {
	out := make(domain.FusedRanking, 0, len(list))
	for _, hit := range list {
		out = append(out, domain.FusedHit{Hit: hit, Score: hit.Score})
	}
	return out
}

func preferRicherHit(current, candidate domain.RankedHit) domain.RankedHit {
	if current.Title == "" && candidate.Title != "" {
		current.Title = candidate.Title
	}
	if current.SourceID == "" && candidate.SourceID != "" {
		current.SourceID = candidate.SourceID
	}
	if current.Page == 0 && candidate.Page != 0 {
		current.Page = candidate.Page
	}
	if current.Content == "" && candidate.Content != "" {
		current.Content = candidate.Content
	}
	if current.Link == "" && candidate.Link != "" {
		current.Link = candidate.Link
	}
	return current
}
