package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mavskr/newspipe/internal/model"
)

const espnTestResponse = `{
	"articles": [
		{
			"headline": "Mavericks beat Lakers in overtime",
			"description": "Luka Doncic scored 40 points.",
			"published": "2026-08-20T10:00:00Z",
			"links": {"web": {"href": "https://www.espn.com/nba/story/1"}},
			"images": [{"url": "https://a.espncdn.com/photo/1.jpg"}]
		},
		{
			"headline": "",
			"links": {"web": {"href": "https://www.espn.com/nba/story/2"}}
		},
		{
			"headline": "No link article",
			"links": {"web": {"href": ""}}
		},
		{
			"headline": "Second valid article",
			"links": {"web": {"href": "https://www.espn.com/nba/story/3"}}
		}
	]
}`

func TestESPNAdapterFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != userAgent {
			t.Errorf("User-Agent = %q", got)
		}
		fmt.Fprint(w, espnTestResponse)
	}))
	defer server.Close()

	adapter := NewESPNAdapter(server.Client(), 1<<20)
	adapter.url = server.URL

	candidates, err := adapter.Fetch(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 見出し・リンク欠落の2件はスキップされる
	if len(candidates) != 2 {
		t.Fatalf("len=%d, want 2", len(candidates))
	}

	first := candidates[0]
	if first.Title != "Mavericks beat Lakers in overtime" {
		t.Errorf("Title = %q", first.Title)
	}
	if first.Source != model.SourceESPN {
		t.Errorf("Source = %q", first.Source)
	}
	if first.SourceURL != "https://www.espn.com/nba/story/1" {
		t.Errorf("SourceURL = %q", first.SourceURL)
	}
	if first.ImageURL != "https://a.espncdn.com/photo/1.jpg" {
		t.Errorf("ImageURL = %q", first.ImageURL)
	}
	if first.PublishedAt.IsZero() {
		t.Error("PublishedAtが設定されるはず")
	}

	// publishedなしの記事は取得時刻で補完される
	if candidates[1].PublishedAt.IsZero() {
		t.Error("published欠落時は取得時刻で補完されるはず")
	}
}

func TestESPNAdapterLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, espnTestResponse)
	}))
	defer server.Close()

	adapter := NewESPNAdapter(server.Client(), 1<<20)
	adapter.url = server.URL

	candidates, err := adapter.Fetch(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candidates) != 1 {
		t.Errorf("len=%d, want 1", len(candidates))
	}
}

func TestESPNAdapterHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	adapter := NewESPNAdapter(server.Client(), 1<<20)
	adapter.url = server.URL

	if _, err := adapter.Fetch(context.Background(), 10); err == nil {
		t.Error("5xxはエラーを返すはず")
	}
}

func TestESPNAdapterInvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "not json")
	}))
	defer server.Close()

	adapter := NewESPNAdapter(server.Client(), 1<<20)
	adapter.url = server.URL

	if _, err := adapter.Fetch(context.Background(), 10); err == nil {
		t.Error("不正なJSONはエラーを返すはず")
	}
}
