package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mavskr/newspipe/internal/model"
)

const rssTestFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
	<title>Mavs Moneyball</title>
	<item>
		<title>Three takeaways from the win</title>
		<link>https://www.mavsmoneyball.com/takeaways</link>
		<description>Breaking down the fourth quarter run.</description>
		<pubDate>Thu, 20 Aug 2026 10:00:00 GMT</pubDate>
	</item>
	<item>
		<title></title>
		<link>https://www.mavsmoneyball.com/no-title</link>
	</item>
	<item>
		<title>Preview: Mavericks at Suns</title>
		<link>https://www.mavsmoneyball.com/preview</link>
	</item>
</channel>
</rss>`

func TestRSSAdapterFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, rssTestFeed)
	}))
	defer server.Close()

	adapter := NewMavsMoneyballAdapter(server.Client())
	adapter.feedURL = server.URL

	candidates, err := adapter.Fetch(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// タイトル空の1件はスキップされる
	if len(candidates) != 2 {
		t.Fatalf("len=%d, want 2", len(candidates))
	}

	first := candidates[0]
	if first.Title != "Three takeaways from the win" {
		t.Errorf("Title = %q", first.Title)
	}
	if first.Source != model.SourceMavsMoneyball {
		t.Errorf("Source = %q", first.Source)
	}
	if first.Content != "Breaking down the fourth quarter run." {
		t.Errorf("Content = %q", first.Content)
	}
	if first.PublishedAt.IsZero() {
		t.Error("PublishedAtが設定されるはず")
	}

	// pubDateなしのアイテムは取得時刻で補完される
	if candidates[1].PublishedAt.IsZero() {
		t.Error("pubDate欠落時は取得時刻で補完されるはず")
	}
}

func TestRSSAdapterLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, rssTestFeed)
	}))
	defer server.Close()

	adapter := NewMavsMoneyballAdapter(server.Client())
	adapter.feedURL = server.URL

	candidates, err := adapter.Fetch(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candidates) != 1 {
		t.Errorf("len=%d, want 1", len(candidates))
	}
}

func TestRSSAdapterFetchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	adapter := NewMavsMoneyballAdapter(server.Client())
	adapter.feedURL = server.URL

	if _, err := adapter.Fetch(context.Background(), 10); err == nil {
		t.Error("5xxはエラーを返すはず")
	}
}
