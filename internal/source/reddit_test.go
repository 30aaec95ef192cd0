package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mavskr/newspipe/internal/model"
)

const redditTestResponse = `{
	"data": {
		"children": [
			{"data": {"title": "Pinned megathread", "permalink": "/r/Mavericks/1", "stickied": true}},
			{"data": {"title": "Highlight video", "permalink": "/r/Mavericks/2", "is_video": true}},
			{"data": {"title": "NSFW post", "permalink": "/r/Mavericks/3", "over_18": true}},
			{"data": {"title": "  ", "permalink": "/r/Mavericks/4"}},
			{"data": {
				"title": "Game thread discussion",
				"selftext": "What a win tonight.",
				"permalink": "/r/Mavericks/5",
				"thumbnail": "https://b.thumbs.redditmedia.com/5.jpg",
				"created_utc": 1756300000
			}},
			{"data": {
				"title": "Trade rumor talk",
				"permalink": "/r/Mavericks/6",
				"thumbnail": "self"
			}}
		]
	}
}`

func TestRedditAdapterFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, redditTestResponse)
	}))
	defer server.Close()

	adapter := NewRedditAdapter(server.Client(), 1<<20)
	adapter.url = server.URL

	candidates, err := adapter.Fetch(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 固定表示・動画・成人向け・タイトル空の4件はスキップされる
	if len(candidates) != 2 {
		t.Fatalf("len=%d, want 2", len(candidates))
	}

	first := candidates[0]
	if first.Title != "Game thread discussion" {
		t.Errorf("Title = %q", first.Title)
	}
	if first.Source != model.SourceReddit {
		t.Errorf("Source = %q", first.Source)
	}
	if !strings.HasPrefix(first.SourceURL, "https://www.reddit.com/r/Mavericks/") {
		t.Errorf("パーマリンクが絶対URLに解決されるはず: %q", first.SourceURL)
	}
	if first.ImageURL != "https://b.thumbs.redditmedia.com/5.jpg" {
		t.Errorf("ImageURL = %q", first.ImageURL)
	}

	// "self"等のプレースホルダサムネイルは無視される
	if candidates[1].ImageURL != "" {
		t.Errorf("プレースホルダは無視されるはず: %q", candidates[1].ImageURL)
	}
}

func TestRedditAdapterLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, redditTestResponse)
	}))
	defer server.Close()

	adapter := NewRedditAdapter(server.Client(), 1<<20)
	adapter.url = server.URL

	candidates, err := adapter.Fetch(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candidates) != 1 {
		t.Errorf("len=%d, want 1", len(candidates))
	}
}
