package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mavskr/newspipe/internal/model"
)

// espnNewsURL はESPN NBAニュースAPIのエンドポイント。team=6はDallas Mavericks。
const espnNewsURL = "https://site.api.espn.com/apis/site/v2/sports/basketball/nba/news?team=6"

// espnResponse はESPNニュースAPIのレスポンス構造。
// 必要なフィールドのみをデコードする。
type espnResponse struct {
	Articles []espnArticle `json:"articles"`
}

type espnArticle struct {
	Headline    string    `json:"headline"`
	Description string    `json:"description"`
	Byline      string    `json:"byline"`
	Published   time.Time `json:"published"`
	Links       struct {
		Web struct {
			Href string `json:"href"`
		} `json:"web"`
	} `json:"links"`
	Images []struct {
		URL string `json:"url"`
	} `json:"images"`
}

// ESPNAdapter はESPN公式APIからMavericks関連ニュースを取得するアダプタ。
type ESPNAdapter struct {
	client  *http.Client
	maxSize int64
	url     string
}

var _ Adapter = (*ESPNAdapter)(nil)

// NewESPNAdapter はESPNAdapterの新しいインスタンスを生成する。
func NewESPNAdapter(client *http.Client, maxSize int64) *ESPNAdapter {
	return &ESPNAdapter{
		client:  client,
		maxSize: maxSize,
		url:     espnNewsURL,
	}
}

// Name はソース識別子を返す。
func (a *ESPNAdapter) Name() model.Source {
	return model.SourceESPN
}

// Fetch はESPN APIから候補記事を取得する。
// 見出しまたはリンクが欠落している記事はスキップする。
func (a *ESPNAdapter) Fetch(ctx context.Context, limit int) ([]model.Candidate, error) {
	body, err := fetchBody(ctx, a.client, a.url, a.maxSize)
	if err != nil {
		return nil, fmt.Errorf("ESPN APIの取得に失敗: %w", err)
	}

	var response espnResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("ESPN APIレスポンスの解析に失敗: %w", err)
	}

	candidates := make([]model.Candidate, 0, len(response.Articles))
	for _, article := range response.Articles {
		if article.Headline == "" || article.Links.Web.Href == "" {
			continue
		}

		imageURL := ""
		if len(article.Images) > 0 {
			imageURL = article.Images[0].URL
		}

		publishedAt := article.Published
		if publishedAt.IsZero() {
			publishedAt = time.Now()
		}

		candidates = append(candidates, model.Candidate{
			Title:       article.Headline,
			Content:     article.Description,
			Source:      model.SourceESPN,
			SourceURL:   article.Links.Web.Href,
			Author:      article.Byline,
			ImageURL:    imageURL,
			PublishedAt: publishedAt,
		})
	}

	return capCandidates(candidates, limit), nil
}
