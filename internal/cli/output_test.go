package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/docuvault/docsearch/internal/models"
)

func sampleResponse() *models.SearchResponse {
	return &models.SearchResponse{
		Query:        "test query",
		SearchTimeMs: 42,
		TotalResults: 1,
		Mode:         models.ModeHybrid,
		Results: []*models.SearchResult{
			{
				DocumentID: "doc-1",
				Title:      "Test Doc",
				Preview:    "Content here",
				Score:      0.9,
				Provenance: models.ProvenanceHybrid,
				Category:   "finance",
			},
		},
	}
}

func TestWriteSearchResults_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, sampleResponse(), OutputJSON); err != nil {
		t.Fatalf("WriteSearchResults(json): %v", err)
	}
	var decoded models.SearchResponse
	if err := json.NewDecoder(&buf).Decode(&decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Query != "test query" || decoded.SearchTimeMs != 42 {
		t.Errorf("decoded query=%q time=%d", decoded.Query, decoded.SearchTimeMs)
	}
	if len(decoded.Results) != 1 || decoded.Results[0].DocumentID != "doc-1" {
		t.Errorf("decoded results: want one result with id doc-1, got %+v", decoded.Results)
	}
}

func TestWriteSearchResults_Text(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, sampleResponse(), OutputText); err != nil {
		t.Fatalf("WriteSearchResults(text): %v", err)
	}
	out := buf.String()
	for _, sub := range []string{"Found 1 results", "42ms", "hybrid", "Rank: 1", "ID: doc-1", "Test Doc", "Content here"} {
		if !strings.Contains(out, sub) {
			t.Errorf("text output missing %q:\n%s", sub, out)
		}
	}
}

func TestWriteSearchResults_Compact(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, sampleResponse(), OutputCompact); err != nil {
		t.Fatalf("WriteSearchResults(compact): %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %d", len(lines))
	}
	fields := strings.Split(lines[0], "\t")
	if len(fields) != 4 || fields[2] != "doc-1" {
		t.Errorf("compact line: got %q", lines[0])
	}
}

func TestWriteSearchResults_UnknownFormatTreatedAsText(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, &models.SearchResponse{Query: "x"}, OutputFormat("unknown")); err != nil {
		t.Fatalf("WriteSearchResults(unknown): %v", err)
	}
	if !strings.Contains(buf.String(), "Found") {
		t.Errorf("unknown format should fall back to text; got %q", buf.String())
	}
}

func TestParseOutputFormat(t *testing.T) {
	for _, ok := range []string{"text", "json", "compact"} {
		if _, err := ParseOutputFormat(ok); err != nil {
			t.Errorf("ParseOutputFormat(%q): %v", ok, err)
		}
	}
	if _, err := ParseOutputFormat("yaml"); err == nil {
		t.Error("expected error for unknown format")
	}
}
