package store

import (
	"errors"
	"testing"

	"github.com/mkovac/linkstash/internal/apperr"
)

func testStore(t *testing.T) *DB {
	t.Helper()
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func strPtr(s string) *string { return &s }

func TestAddRec(t *testing.T) {
	db := testStore(t)
	id, err := db.AddRec("https://www.google.com", "Google", ",search,google,", "Search engine")
	if err != nil {
		t.Fatalf("AddRec: %v", err)
	}
	if id != 1 {
		t.Errorf("id = %d, want 1", id)
	}
}

func TestAddRec_DuplicateURL(t *testing.T) {
	db := testStore(t)
	if _, err := db.AddRec("https://www.google.com", "Google", ",search,", ""); err != nil {
		t.Fatalf("AddRec: %v", err)
	}

	_, err := db.AddRec("https://www.google.com", "Duplicate", ",search,", "")
	if !errors.Is(err, apperr.ErrDuplicateURL) {
		t.Fatalf("err = %v, want ErrDuplicateURL", err)
	}

	// The failed add must leave nothing behind: not a row, not a log entry.
	all, err := db.GetRecAll()
	if err != nil {
		t.Fatalf("GetRecAll: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("len(all) = %d, want 1", len(all))
	}
	res, err := db.UndoLast()
	if err != nil {
		t.Fatalf("UndoLast: %v", err)
	}
	if res == nil || res.Operation != opAdd || res.Affected != 1 {
		t.Fatalf("UndoLast = %+v, want ADD/1", res)
	}
	res, err = db.UndoLast()
	if err != nil {
		t.Fatalf("UndoLast: %v", err)
	}
	if res != nil {
		t.Fatalf("UndoLast after drain = %+v, want nil", res)
	}
}

func TestAddRec_EmptyURL(t *testing.T) {
	db := testStore(t)
	_, err := db.AddRec("", "Title", ",", "")
	if !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestGetRecByID(t *testing.T) {
	db := testStore(t)
	id, _ := db.AddRec("https://example.com", "Example", ",test,", "Description")

	b, err := db.GetRecByID(id)
	if err != nil {
		t.Fatalf("GetRecByID: %v", err)
	}
	if b == nil {
		t.Fatal("bookmark missing")
	}
	if b.URL != "https://example.com" || b.Title != "Example" || b.Tags != ",test," || b.Desc != "Description" {
		t.Errorf("bookmark = %+v", b)
	}
}

func TestGetRecByID_NotFound(t *testing.T) {
	db := testStore(t)
	b, err := db.GetRecByID(999)
	if err != nil {
		t.Fatalf("GetRecByID: %v", err)
	}
	if b != nil {
		t.Errorf("bookmark = %+v, want nil", b)
	}
}

func TestGetRecAll(t *testing.T) {
	db := testStore(t)
	_, _ = db.AddRec("https://example1.com", "Example 1", ",test,", "d1")
	_, _ = db.AddRec("https://example2.com", "Example 2", ",test,", "d2")

	all, err := db.GetRecAll()
	if err != nil {
		t.Fatalf("GetRecAll: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("len = %d, want 2", len(all))
	}
}

func TestUpdateRec_AllFields(t *testing.T) {
	db := testStore(t)
	id, _ := db.AddRec("https://example.com", "Original", ",test,", "Original desc")

	err := db.UpdateRec(id, UpdateFields{
		URL:   strPtr("https://updated.com"),
		Title: strPtr("Updated"),
		Tags:  strPtr(",updated,"),
		Desc:  strPtr("Updated desc"),
	})
	if err != nil {
		t.Fatalf("UpdateRec: %v", err)
	}

	b, _ := db.GetRecByID(id)
	if b.URL != "https://updated.com" || b.Title != "Updated" || b.Tags != ",updated," || b.Desc != "Updated desc" {
		t.Errorf("bookmark = %+v", b)
	}
}

func TestUpdateRec_Partial(t *testing.T) {
	db := testStore(t)
	id, _ := db.AddRec("https://example.com", "Original", ",test,", "Original desc")

	if err := db.UpdateRec(id, UpdateFields{Title: strPtr("New Title")}); err != nil {
		t.Fatalf("UpdateRec: %v", err)
	}

	b, _ := db.GetRecByID(id)
	if b.URL != "https://example.com" {
		t.Errorf("url changed: %q", b.URL)
	}
	if b.Title != "New Title" {
		t.Errorf("title = %q", b.Title)
	}
	if b.Tags != ",test," {
		t.Errorf("tags changed: %q", b.Tags)
	}
}

func TestUpdateRec_MissingIDIsNoop(t *testing.T) {
	db := testStore(t)
	if err := db.UpdateRec(42, UpdateFields{Title: strPtr("ghost")}); err != nil {
		t.Fatalf("UpdateRec on missing id: %v", err)
	}
	// Nothing was logged, so there is nothing to undo.
	res, err := db.UndoLast()
	if err != nil {
		t.Fatalf("UndoLast: %v", err)
	}
	if res != nil {
		t.Errorf("UndoLast = %+v, want nil", res)
	}
}

func TestUpdateRec_DuplicateURL(t *testing.T) {
	db := testStore(t)
	_, _ = db.AddRec("https://a.com", "A", ",", "")
	id, _ := db.AddRec("https://b.com", "B", ",", "")

	err := db.UpdateRec(id, UpdateFields{URL: strPtr("https://a.com")})
	if !errors.Is(err, apperr.ErrDuplicateURL) {
		t.Fatalf("err = %v, want ErrDuplicateURL", err)
	}

	// The aborted update must not leave a log entry behind.
	b, _ := db.GetRecByID(id)
	if b.URL != "https://b.com" {
		t.Errorf("url = %q, want unchanged", b.URL)
	}
	res, _ := db.UndoLast()
	if res == nil || res.Operation != opAdd {
		t.Errorf("UndoLast = %+v, want the ADD of b.com", res)
	}
}

func TestDeleteRec(t *testing.T) {
	db := testStore(t)
	id, _ := db.AddRec("https://example.com", "Example", ",test,", "Desc")

	if err := db.DeleteRec(id); err != nil {
		t.Fatalf("DeleteRec: %v", err)
	}
	b, _ := db.GetRecByID(id)
	if b != nil {
		t.Errorf("bookmark still present: %+v", b)
	}
}

func TestDeleteRec_NotFound(t *testing.T) {
	db := testStore(t)
	err := db.DeleteRec(7)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateRecBatch(t *testing.T) {
	db := testStore(t)
	var recs []Bookmark
	for _, u := range []string{"https://example1.com", "https://example2.com", "https://example3.com"} {
		id, _ := db.AddRec(u, "Old", ",test,", "")
		b, _ := db.GetRecByID(id)
		recs = append(recs, *b)
	}

	n, err := db.UpdateRecBatch(recs, UpdateFields{Title: strPtr("X")})
	if err != nil {
		t.Fatalf("UpdateRecBatch: %v", err)
	}
	if n != 3 {
		t.Fatalf("updated = %d, want 3", n)
	}
	for _, r := range recs {
		b, _ := db.GetRecByID(r.ID)
		if b.Title != "X" {
			t.Errorf("id %d title = %q, want X", r.ID, b.Title)
		}
	}
}

func TestUpdateRecBatch_AllOrNothing(t *testing.T) {
	db := testStore(t)
	id1, _ := db.AddRec("https://a.com", "A", ",", "")
	id2, _ := db.AddRec("https://b.com", "B", ",", "")
	b1, _ := db.GetRecByID(id1)
	b2, _ := db.GetRecByID(id2)

	// Forcing both rows to the same URL trips the unique constraint on
	// the second row; the whole batch must roll back.
	_, err := db.UpdateRecBatch([]Bookmark{*b1, *b2}, UpdateFields{URL: strPtr("https://same.com")})
	if !errors.Is(err, apperr.ErrDuplicateURL) {
		t.Fatalf("err = %v, want ErrDuplicateURL", err)
	}

	got1, _ := db.GetRecByID(id1)
	got2, _ := db.GetRecByID(id2)
	if got1.URL != "https://a.com" || got2.URL != "https://b.com" {
		t.Errorf("rows changed after failed batch: %q, %q", got1.URL, got2.URL)
	}

	// No leftover batch entries: the next undos are the original adds.
	res, _ := db.UndoLast()
	if res == nil || res.Operation != opAdd || res.Affected != 1 {
		t.Errorf("UndoLast = %+v, want ADD/1", res)
	}
}

func TestUpdateRecBatchTags(t *testing.T) {
	db := testStore(t)
	id1, _ := db.AddRec("https://a.com", "A", ",old,", "")
	id2, _ := db.AddRec("https://b.com", "B", ",old,", "")

	b1, _ := db.GetRecByID(id1)
	b2, _ := db.GetRecByID(id2)
	b1.Tags = ",old,extra,"
	b2.Tags = ",fresh,"

	n, err := db.UpdateRecBatchTags([]Bookmark{*b1, *b2}, UpdateFields{Desc: strPtr("shared")})
	if err != nil {
		t.Fatalf("UpdateRecBatchTags: %v", err)
	}
	if n != 2 {
		t.Fatalf("updated = %d, want 2", n)
	}

	got1, _ := db.GetRecByID(id1)
	got2, _ := db.GetRecByID(id2)
	if got1.Tags != ",old,extra," || got2.Tags != ",fresh," {
		t.Errorf("tags = %q, %q", got1.Tags, got2.Tags)
	}
	if got1.Desc != "shared" || got2.Desc != "shared" {
		t.Errorf("desc = %q, %q", got1.Desc, got2.Desc)
	}
}

func TestDeleteRecBatch(t *testing.T) {
	db := testStore(t)
	id1, _ := db.AddRec("https://a.com", "A", ",", "")
	id2, _ := db.AddRec("https://b.com", "B", ",", "")

	n, err := db.DeleteRecBatch([]int64{id1, id2, 999})
	if err != nil {
		t.Fatalf("DeleteRecBatch: %v", err)
	}
	if n != 2 {
		t.Fatalf("deleted = %d, want 2", n)
	}
	all, _ := db.GetRecAll()
	if len(all) != 0 {
		t.Errorf("len(all) = %d, want 0", len(all))
	}
}

func TestUpdateRecBatch_Empty(t *testing.T) {
	db := testStore(t)
	n, err := db.UpdateRecBatch(nil, UpdateFields{Title: strPtr("X")})
	if err != nil || n != 0 {
		t.Fatalf("got (%d, %v), want (0, nil)", n, err)
	}
}
