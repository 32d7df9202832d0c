// Package lexical provides term-occurrence based matching over raw document
// text fields, independent of the vector index. It keeps serving results when
// the embedding provider is unavailable.
package lexical

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"github.com/docuvault/docsearch/internal/models"
	"github.com/docuvault/docsearch/internal/storage"
)

const minTermLength = 2

// Tokenize lowercases the query, splits on non-alphanumeric runes, and drops
// terms shorter than two runes.
func Tokenize(query string) []string {
	fields := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	terms := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) >= minTermLength {
			terms = append(terms, f)
		}
	}
	return terms
}

// Score returns the lexical score of a document for the given terms: total
// occurrences across fields divided by the term count, scaled by the
// saturation divisor and capped at 1.0.
func Score(terms []string, saturation float64, fields ...string) float64 {
	if len(terms) == 0 {
		return 0
	}
	if saturation <= 0 {
		saturation = 1
	}
	total := 0
	for _, field := range fields {
		if field == "" {
			continue
		}
		lower := strings.ToLower(field)
		for _, term := range terms {
			total += strings.Count(lower, term)
		}
	}
	if total == 0 {
		return 0
	}
	score := float64(total) / float64(len(terms)) / saturation
	if score > 1 {
		score = 1
	}
	return score
}

// Matcher scores documents from the store against query terms.
type Matcher struct {
	store      storage.DocumentStore
	saturation float64
	pageSize   int
}

// NewMatcher creates a lexical matcher scanning the given store.
func NewMatcher(store storage.DocumentStore, saturation float64, pageSize int) *Matcher {
	if pageSize <= 0 {
		pageSize = 200
	}
	return &Matcher{store: store, saturation: saturation, pageSize: pageSize}
}

// Search scans the document store in pages, scores title, filename, content,
// and excerpt against the query terms, and returns up to limit non-zero
// results. Ties are broken by document id ascending so results are
// deterministic regardless of store iteration order.
func (m *Matcher) Search(ctx context.Context, query string, limit int) ([]models.ScoredResult, error) {
	terms := Tokenize(query)
	if len(terms) == 0 || limit <= 0 {
		return nil, nil
	}

	var results []models.ScoredResult
	offset := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		docs, err := m.store.ListDocuments(ctx, offset, m.pageSize)
		if err != nil {
			return nil, err
		}
		for _, doc := range docs {
			score := Score(terms, m.saturation, doc.Title, doc.FileName, doc.Content, doc.Excerpt)
			if score <= 0 {
				continue
			}
			results = append(results, models.ScoredResult{
				DocumentID: doc.ID,
				Score:      score,
				Provenance: models.ProvenanceLexical,
			})
		}
		if len(docs) < m.pageSize {
			break
		}
		offset += m.pageSize
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].DocumentID < results[j].DocumentID
	})
	if limit < len(results) {
		results = results[:limit]
	}
	return results, nil
}
