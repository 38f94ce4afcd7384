//go:build !sqlite_fts5

package store

import "testing"

func TestFallback_LikeWildcardsMatchLiterally(t *testing.T) {
	db := testStore(t)
	_, _ = db.AddRec("https://sale.com", "100% cotton", ",shop,", "")
	_, _ = db.AddRec("https://other.com", "plain title", ",shop,", "")

	// "%" in a keyword must match the literal character, not act as a
	// LIKE wildcard that swallows every row.
	got, err := db.Search([]string{"100%"}, false, false, false)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || got[0].URL != "https://sale.com" {
		t.Errorf("got %d results, want only the literal match", len(got))
	}
}

func TestFallback_UnderscoreMatchesLiterally(t *testing.T) {
	db := testStore(t)
	_, _ = db.AddRec("https://snake.com", "snake_case", ",code,", "")
	_, _ = db.AddRec("https://camel.com", "camelCase", ",code,", "")

	got, err := db.Search([]string{"e_c"}, false, false, false)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || got[0].URL != "https://snake.com" {
		t.Errorf("got %d results, want only snake_case", len(got))
	}
}

func TestFallback_TagWildcardEscaped(t *testing.T) {
	db := testStore(t)
	_, _ = db.AddRec("https://a.com", "A", ",50%_off,", "")
	_, _ = db.AddRec("https://b.com", "B", ",full-price,", "")

	got, err := db.SearchTags([]string{"50%_off"})
	if err != nil {
		t.Fatalf("SearchTags: %v", err)
	}
	if len(got) != 1 || got[0].URL != "https://a.com" {
		t.Errorf("got %d results, want only the literal tag match", len(got))
	}
}
