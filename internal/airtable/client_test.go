package airtable

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetchAll_FollowsOffsetPagination(t *testing.T) {
	var gotAuth, gotView string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotView = r.URL.Query().Get("view")
		w.Header().Set("content-type", "application/json")
		if r.URL.Query().Get("offset") == "" {
			_ = json.NewEncoder(w).Encode(listResponse{
				Records: []Record{
					{ID: "rec1", Fields: map[string]any{"Name": "one"}},
					{ID: "rec2", Fields: map[string]any{"Name": "two"}},
				},
				Offset: "page2",
			})
			return
		}
		_ = json.NewEncoder(w).Encode(listResponse{
			Records: []Record{{ID: "rec3", Fields: map[string]any{"Name": "three"}}},
		})
	}))
	defer srv.Close()

	c := NewClient("test-key", srv.Client()).WithBaseURL(srv.URL)
	recs, err := c.FetchAll(context.Background(), Table{Base: "base1", ID: "tbl1", View: "Production"})
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 3 {
		t.Fatalf("got %d records, want 3 across two pages", len(recs))
	}
	if recs[0].ID != "rec1" || recs[2].ID != "rec3" {
		t.Errorf("records out of order: %v", recs)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotView != "Production" {
		t.Errorf("view = %q", gotView)
	}
}

func TestFetchAll_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"NOT_FOUND"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient("test-key", srv.Client()).WithBaseURL(srv.URL)
	if _, err := c.FetchAll(context.Background(), Table{Base: "base1", ID: "missing"}); err == nil {
		t.Fatal("non-200 status must fail the fetch")
	}
}

func TestFetchAll_MissingKey(t *testing.T) {
	c := NewClient("", nil)
	if _, err := c.FetchAll(context.Background(), Table{Base: "b", ID: "t"}); err == nil {
		t.Fatal("missing api key must fail")
	}
}
