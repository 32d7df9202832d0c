package models

import "time"

// Provenance tags which retrieval strategy produced a result.
type Provenance string

const (
	ProvenanceSemantic Provenance = "semantic"
	ProvenanceLexical  Provenance = "lexical"
	// ProvenanceHybrid marks results found by both retrieval strategies.
	ProvenanceHybrid Provenance = "hybrid"
)

// ScoredResult is a transient per-query candidate: a document id with its
// retrieval score and provenance. Never persisted.
type ScoredResult struct {
	DocumentID string
	Score      float64
	Provenance Provenance
}

// SearchResult is a single resolved search hit.
type SearchResult struct {
	DocumentID string                 `json:"document_id"`
	Title      string                 `json:"title"`
	Preview    string                 `json:"preview"`
	Score      float64                `json:"score"`
	Provenance Provenance             `json:"provenance"`
	Category   string                 `json:"category,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// SearchResponse is the response for a search request.
type SearchResponse struct {
	Query          string          `json:"query"`
	Results        []*SearchResult `json:"results"`
	TotalResults   int             `json:"total_results"`
	SearchTimeMs   int64           `json:"search_time_ms"`
	Mode           SearchMode      `json:"mode"`
	FiltersApplied bool            `json:"filters_applied"`
}
