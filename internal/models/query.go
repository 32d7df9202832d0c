package models

import (
	"errors"
	"fmt"
	"time"
)

// Validation errors returned by SearchQuery.Validate.
var (
	ErrEmptyQuery  = errors.New("query cannot be empty")
	ErrInvalidMode = errors.New("unknown search mode")
)

// SearchMode selects the retrieval strategy for a query.
type SearchMode string

const (
	ModeSemantic SearchMode = "semantic"
	ModeLexical  SearchMode = "lexical"
	ModeHybrid   SearchMode = "hybrid"
)

// Valid reports whether the mode is one of the supported modes.
func (m SearchMode) Valid() bool {
	switch m {
	case ModeSemantic, ModeLexical, ModeHybrid:
		return true
	}
	return false
}

// SearchFilters are optional predicates applied to candidate documents after
// retrieval, against the document store. The vector index itself carries no
// filterable metadata beyond the document id.
type SearchFilters struct {
	Category string     `json:"category,omitempty"`
	Priority string     `json:"priority,omitempty"`
	DateFrom *time.Time `json:"date_from,omitempty"`
	DateTo   *time.Time `json:"date_to,omitempty"`
	OwnerID  string     `json:"owner_id,omitempty"`
}

// Empty reports whether no filter predicate is set.
func (f *SearchFilters) Empty() bool {
	if f == nil {
		return true
	}
	return f.Category == "" && f.Priority == "" && f.DateFrom == nil && f.DateTo == nil && f.OwnerID == ""
}

// Match reports whether doc satisfies every set predicate.
func (f *SearchFilters) Match(doc *Document) bool {
	if f == nil {
		return true
	}
	if f.Category != "" && doc.Category != f.Category {
		return false
	}
	if f.Priority != "" && doc.Priority != f.Priority {
		return false
	}
	if f.OwnerID != "" && doc.OwnerID != f.OwnerID {
		return false
	}
	if f.DateFrom != nil && doc.CreatedAt.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && doc.CreatedAt.After(*f.DateTo) {
		return false
	}
	return true
}

// SearchQuery represents a search request.
type SearchQuery struct {
	Query       string         `json:"query"`
	Limit       int            `json:"limit,omitempty"`
	Threshold   float64        `json:"threshold,omitempty"`
	Mode        SearchMode     `json:"mode,omitempty"`
	Filters     *SearchFilters `json:"filters,omitempty"`
	RequesterID string         `json:"requester_id,omitempty"`
}

// Validate checks the query and applies defaults: limit is clamped to 1..100,
// threshold to [0,1], and mode defaults to hybrid.
func (q *SearchQuery) Validate() error {
	if q.Query == "" {
		return ErrEmptyQuery
	}
	if q.Limit <= 0 {
		q.Limit = 10
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
	if q.Threshold < 0 {
		q.Threshold = 0
	}
	if q.Threshold > 1 {
		q.Threshold = 1
	}
	if q.Mode == "" {
		q.Mode = ModeHybrid
	}
	if !q.Mode.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidMode, q.Mode)
	}
	return nil
}
