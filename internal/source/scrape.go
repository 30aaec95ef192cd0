package source

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/mavskr/newspipe/internal/model"
	"github.com/mavskr/newspipe/internal/security"
)

// smokingCubanBaseURL はThe Smoking Cubanのトップページ。
const smokingCubanBaseURL = "https://thesmokingcuban.com/"

// minScrapeTitleLength はスクレイピングで採用する最小タイトル長。
// ナビゲーションリンク等の短いアンカーテキストを除外する。
const minScrapeTitleLength = 10

// Selectors はスクレイピング対象サイトのCSSセレクタ設定。
// サイトのマークアップ変更時はこの設定のみを更新すればよい。
type Selectors struct {
	// Article は記事ブロックのセレクタ。
	Article string
	// Title は記事ブロック内のタイトル要素のセレクタ。
	Title string
	// Link は記事ブロック内のリンク要素のセレクタ。
	Link string
	// Image は記事ブロック内の画像要素のセレクタ。
	Image string
}

// smokingCubanSelectors はThe Smoking Cubanの記事一覧のセレクタ。
var smokingCubanSelectors = Selectors{
	Article: "article",
	Title:   "h2 a, h3 a, .entry-title a",
	Link:    "h2 a, h3 a, .entry-title a",
	Image:   "img",
}

// ScrapeAdapter はHTMLスクレイピングで記事を取得するアダプタ。
// goqueryによるCSSセレクタベースの抽出を行う。
type ScrapeAdapter struct {
	client    *http.Client
	guard     security.SSRFGuardService
	maxSize   int64
	source    model.Source
	baseURL   string
	selectors Selectors
}

var _ Adapter = (*ScrapeAdapter)(nil)

// NewSmokingCubanAdapter はThe Smoking Cuban用のScrapeAdapterを生成する。
func NewSmokingCubanAdapter(client *http.Client, guard security.SSRFGuardService, maxSize int64) *ScrapeAdapter {
	return &ScrapeAdapter{
		client:    client,
		guard:     guard,
		maxSize:   maxSize,
		source:    model.SourceSmokingCuban,
		baseURL:   smokingCubanBaseURL,
		selectors: smokingCubanSelectors,
	}
}

// Name はソース識別子を返す。
func (a *ScrapeAdapter) Name() model.Source {
	return a.source
}

// Fetch はHTMLページをスクレイピングして候補記事を取得する。
// タイトルが短すぎる、またはリンクが解決できない記事はスキップする。
// 同一URLが複数回出現した場合は最初の1件のみを採用する。
func (a *ScrapeAdapter) Fetch(ctx context.Context, limit int) ([]model.Candidate, error) {
	body, err := fetchBody(ctx, a.client, a.baseURL, a.maxSize)
	if err != nil {
		return nil, fmt.Errorf("スクレイピング対象ページの取得に失敗: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("HTMLの解析に失敗: %w", err)
	}

	base, err := url.Parse(a.baseURL)
	if err != nil {
		return nil, fmt.Errorf("ベースURLの解析に失敗: %w", err)
	}

	seen := make(map[string]bool)
	var candidates []model.Candidate
	doc.Find(a.selectors.Article).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		title := strings.TrimSpace(sel.Find(a.selectors.Title).First().Text())
		if len(title) < minScrapeTitleLength {
			return true
		}

		href, ok := sel.Find(a.selectors.Link).First().Attr("href")
		if !ok || href == "" {
			return true
		}
		articleURL := resolveURL(base, href)
		if articleURL == "" || seen[articleURL] {
			return true
		}
		// ページ内容由来のURLは内部ホストを指していないか検証する
		if err := a.guard.ValidateURL(articleURL); err != nil {
			return true
		}
		seen[articleURL] = true

		imageURL := ""
		if src, ok := sel.Find(a.selectors.Image).First().Attr("src"); ok {
			imageURL = resolveURL(base, src)
		}

		candidates = append(candidates, model.Candidate{
			Title:       title,
			Source:      a.source,
			SourceURL:   articleURL,
			ImageURL:    imageURL,
			PublishedAt: time.Now(),
		})

		return limit <= 0 || len(candidates) < limit
	})

	return candidates, nil
}

// resolveURL は相対URLをベースURLに対して解決する。
// 解決できない場合は空文字列を返す。
func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	return resolved.String()
}
