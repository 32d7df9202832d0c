package lexical

import (
	"context"
	"testing"

	"github.com/docuvault/docsearch/internal/models"
	"github.com/docuvault/docsearch/internal/storage"
)

func TestTokenize(t *testing.T) {
	terms := Tokenize("Invoice #42: payment-due (URGENT)")
	want := []string{"invoice", "42", "payment", "due", "urgent"}
	if len(terms) != len(want) {
		t.Fatalf("terms = %v", terms)
	}
	for i := range want {
		if terms[i] != want[i] {
			t.Errorf("terms[%d] = %q, want %q", i, terms[i], want[i])
		}
	}
}

func TestTokenize_DropsShortTerms(t *testing.T) {
	terms := Tokenize("a I of contract")
	if len(terms) != 2 || terms[0] != "of" || terms[1] != "contract" {
		t.Errorf("terms = %v", terms)
	}
}

func TestScore(t *testing.T) {
	terms := []string{"invoice", "payment"}
	// "invoice" appears twice, "payment" once: 3 occurrences / 2 terms / 3.0 = 0.5
	got := Score(terms, 3.0, "invoice for invoice payment")
	if got != 0.5 {
		t.Errorf("Score = %f, want 0.5", got)
	}
}

func TestScore_CappedAtOne(t *testing.T) {
	terms := []string{"tax"}
	got := Score(terms, 2.0, "tax tax tax tax tax tax tax tax tax tax")
	if got != 1.0 {
		t.Errorf("Score = %f, want 1.0", got)
	}
}

func TestScore_NoMatch(t *testing.T) {
	if got := Score([]string{"missing"}, 3.0, "unrelated text"); got != 0 {
		t.Errorf("Score = %f", got)
	}
	if got := Score(nil, 3.0, "anything"); got != 0 {
		t.Errorf("Score with no terms = %f", got)
	}
}

func seedStore(t *testing.T) storage.DocumentStore {
	t.Helper()
	store, err := storage.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	ctx := context.Background()
	docs := []*models.Document{
		{ID: "a", Title: "Invoice March", Content: "invoice invoice payment terms"},
		{ID: "b", Title: "Vacation policy", FileName: "policy.pdf", Content: "employee vacation days"},
		{ID: "c", Title: "Invoice April", Content: "invoice payment"},
	}
	for _, d := range docs {
		if err := store.CreateDocument(ctx, d); err != nil {
			t.Fatal(err)
		}
	}
	return store
}

func TestMatcher_Search(t *testing.T) {
	store := seedStore(t)
	m := NewMatcher(store, 3.0, 2)

	results, err := m.Search(context.Background(), "invoice payment", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %+v", results)
	}
	// "a" has more occurrences (title + content) than "c".
	if results[0].DocumentID != "a" || results[1].DocumentID != "c" {
		t.Errorf("order = %s, %s", results[0].DocumentID, results[1].DocumentID)
	}
	if results[0].Score <= results[1].Score {
		t.Errorf("scores not descending: %f, %f", results[0].Score, results[1].Score)
	}
	for _, r := range results {
		if r.Provenance != models.ProvenanceLexical {
			t.Errorf("provenance = %s", r.Provenance)
		}
	}
}

func TestMatcher_DeterministicTies(t *testing.T) {
	store, err := storage.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	ctx := context.Background()
	for _, id := range []string{"z", "m", "a"} {
		if err := store.CreateDocument(ctx, &models.Document{ID: id, Content: "shared keyword"}); err != nil {
			t.Fatal(err)
		}
	}
	m := NewMatcher(store, 3.0, 10)
	results, err := m.Search(ctx, "keyword", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("results = %+v", results)
	}
	if results[0].DocumentID != "a" || results[1].DocumentID != "m" || results[2].DocumentID != "z" {
		t.Errorf("tie order = %s %s %s, want id ascending", results[0].DocumentID, results[1].DocumentID, results[2].DocumentID)
	}
}

func TestMatcher_RespectsLimit(t *testing.T) {
	store := seedStore(t)
	m := NewMatcher(store, 3.0, 10)
	results, err := m.Search(context.Background(), "invoice", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Errorf("len = %d", len(results))
	}
}
