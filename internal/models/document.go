// Package models defines core data structures for documents, queries, and search results.
package models

import "time"

// Document represents a stored document record. The document store owns the
// identifier; the search engine only references it.
type Document struct {
	ID        string                 `json:"id" db:"id"`
	Title     string                 `json:"title" db:"title"`
	FileName  string                 `json:"file_name" db:"file_name"`
	Category  string                 `json:"category,omitempty" db:"category"`
	Priority  string                 `json:"priority,omitempty" db:"priority"`
	OwnerID   string                 `json:"owner_id,omitempty" db:"owner_id"`
	Content   string                 `json:"content" db:"content"`
	Excerpt   string                 `json:"excerpt,omitempty" db:"excerpt"`
	Metadata  map[string]interface{} `json:"metadata,omitempty" db:"metadata"`
	CreatedAt time.Time              `json:"created_at" db:"created_at"`
	UpdatedAt time.Time              `json:"updated_at" db:"updated_at"`
}

// DocumentInput is the input for creating or updating a document.
type DocumentInput struct {
	ID       string                 `json:"id,omitempty"`
	Title    string                 `json:"title,omitempty"`
	FileName string                 `json:"file_name,omitempty"`
	Category string                 `json:"category,omitempty"`
	Priority string                 `json:"priority,omitempty"`
	OwnerID  string                 `json:"owner_id,omitempty"`
	Content  string                 `json:"content"`
	Excerpt  string                 `json:"excerpt,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}
