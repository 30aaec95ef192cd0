package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/mavskr/newspipe/internal/security"
)

// allowAllGuard は検証を行わないSSRFGuardServiceのテスト用実装。
// httptestサーバはループバックアドレスで待ち受けるため、実際のガードでは
// テストページ内の相対リンクが全て弾かれてしまう。
type allowAllGuard struct{}

func (allowAllGuard) NewSafeClient(_ time.Duration, _ int64) *http.Client {
	return http.DefaultClient
}

func (allowAllGuard) ValidateURL(_ string) error { return nil }

func mustParseBase(t *testing.T, raw string) *url.URL {
	t.Helper()
	base, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("failed to parse base URL: %v", err)
	}
	return base
}

const scrapeTestPage = `<!DOCTYPE html>
<html><body>
<article>
	<h2 class="entry-title"><a href="/mavs-trade-deadline-analysis">Mavericks trade deadline analysis</a></h2>
	<img src="/images/trade.jpg">
</article>
<article>
	<h2><a href="/short">Short</a></h2>
</article>
<article>
	<h3><a href="https://thesmokingcuban.com/luka-injury-update">Luka injury status update for tonight</a></h3>
</article>
<article>
	<h2><a href="/mavs-trade-deadline-analysis">Mavericks trade deadline analysis</a></h2>
</article>
<article>
	<h2><a href="javascript:void(0)">This title is long enough to pass</a></h2>
</article>
</body></html>`

func newScrapeTestAdapter(server *httptest.Server) *ScrapeAdapter {
	adapter := NewSmokingCubanAdapter(server.Client(), allowAllGuard{}, 1<<20)
	adapter.baseURL = server.URL
	return adapter
}

func TestScrapeAdapterFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, scrapeTestPage)
	}))
	defer server.Close()

	adapter := newScrapeTestAdapter(server)

	candidates, err := adapter.Fetch(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 短いタイトル・重複URL・不正スキームの3件はスキップされる
	if len(candidates) != 2 {
		t.Fatalf("len=%d, want 2", len(candidates))
	}

	first := candidates[0]
	if first.Title != "Mavericks trade deadline analysis" {
		t.Errorf("Title = %q", first.Title)
	}
	// 相対URLはベースURLに対して解決される
	if first.SourceURL != server.URL+"/mavs-trade-deadline-analysis" {
		t.Errorf("SourceURL = %q", first.SourceURL)
	}
	if first.ImageURL != server.URL+"/images/trade.jpg" {
		t.Errorf("ImageURL = %q", first.ImageURL)
	}

	// 絶対URLはそのまま採用される
	if candidates[1].SourceURL != "https://thesmokingcuban.com/luka-injury-update" {
		t.Errorf("SourceURL = %q", candidates[1].SourceURL)
	}
}

func TestScrapeAdapterLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, scrapeTestPage)
	}))
	defer server.Close()

	adapter := newScrapeTestAdapter(server)

	candidates, err := adapter.Fetch(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candidates) != 1 {
		t.Errorf("len=%d, want 1", len(candidates))
	}
}

func TestScrapeAdapterHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	adapter := newScrapeTestAdapter(server)

	if _, err := adapter.Fetch(context.Background(), 10); err == nil {
		t.Error("4xxはエラーを返すはず")
	}
}

func TestScrapeAdapterFiltersInternalLinks(t *testing.T) {
	page := `<html><body>
<article><h2><a href="https://thesmokingcuban.com/mavs-season-preview-story">Mavericks season preview breakdown</a></h2></article>
<article><h2><a href="http://169.254.169.254/latest/meta-data">This link points at cloud metadata</a></h2></article>
</body></html>`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, page)
	}))
	defer server.Close()

	adapter := NewSmokingCubanAdapter(server.Client(), security.NewSSRFGuard(), 1<<20)
	adapter.baseURL = server.URL

	candidates, err := adapter.Fetch(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("len=%d, want 1", len(candidates))
	}
	if candidates[0].SourceURL != "https://thesmokingcuban.com/mavs-season-preview-story" {
		t.Errorf("SourceURL = %q", candidates[0].SourceURL)
	}
}

func TestResolveURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	defer server.Close()

	tests := []struct {
		href string
		want string
	}{
		{"/path/article", server.URL + "/path/article"},
		{"https://example.com/a", "https://example.com/a"},
		{"javascript:void(0)", ""},
		{"mailto:x@example.com", ""},
	}

	adapter := newScrapeTestAdapter(server)
	base := mustParseBase(t, adapter.baseURL)
	for _, tt := range tests {
		if got := resolveURL(base, tt.href); got != tt.want {
			t.Errorf("resolveURL(%q) = %q, want %q", tt.href, got, tt.want)
		}
	}
}
