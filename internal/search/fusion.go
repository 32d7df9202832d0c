package search

import (
	"sort"

	"github.com/docuvault/docsearch/internal/models"
)

// Fuse merges semantic and lexical candidates into one ranked list. Semantic
// results enter first. A lexical hit for a document already found semantically
// boosts that document's score by bonus and tags it hybrid; a lexical-only hit
// enters with its score multiplied by discount (lexical-only matches are
// trusted less). Scores are capped at 1.0; the fused list is sorted by score
// descending with ties broken by document id.
func Fuse(semantic, lexical []models.ScoredResult, bonus, discount float64) []models.ScoredResult {
	fused := make(map[string]*models.ScoredResult, len(semantic)+len(lexical))
	for _, r := range semantic {
		r := r
		fused[r.DocumentID] = &r
	}
	for _, l := range lexical {
		if existing, ok := fused[l.DocumentID]; ok {
			existing.Score += bonus
			if existing.Score > 1 {
				existing.Score = 1
			}
			existing.Provenance = models.ProvenanceHybrid
			continue
		}
		fused[l.DocumentID] = &models.ScoredResult{
			DocumentID: l.DocumentID,
			Score:      l.Score * discount,
			Provenance: models.ProvenanceLexical,
		}
	}

	results := make([]models.ScoredResult, 0, len(fused))
	for _, r := range fused {
		results = append(results, *r)
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].DocumentID < results[j].DocumentID
	})
	return results
}
