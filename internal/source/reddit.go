package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mavskr/newspipe/internal/model"
)

// redditHotURL はr/Mavericksの人気投稿を取得するJSONエンドポイント。
const redditHotURL = "https://www.reddit.com/r/Mavericks/hot.json?limit=25"

// redditBaseURL は相対パーマリンクの前に付与するベースURL。
const redditBaseURL = "https://www.reddit.com"

// redditListing はReddit Listing APIのレスポンス構造。
type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	Title      string  `json:"title"`
	SelfText   string  `json:"selftext"`
	Permalink  string  `json:"permalink"`
	Thumbnail  string  `json:"thumbnail"`
	CreatedUTC float64 `json:"created_utc"`
	Stickied   bool    `json:"stickied"`
	IsVideo    bool    `json:"is_video"`
	Over18     bool    `json:"over_18"`
}

// RedditAdapter はr/Mavericksの人気投稿を取得するアダプタ。
type RedditAdapter struct {
	client  *http.Client
	maxSize int64
	url     string
}

var _ Adapter = (*RedditAdapter)(nil)

// NewRedditAdapter はRedditAdapterの新しいインスタンスを生成する。
func NewRedditAdapter(client *http.Client, maxSize int64) *RedditAdapter {
	return &RedditAdapter{
		client:  client,
		maxSize: maxSize,
		url:     redditHotURL,
	}
}

// Name はソース識別子を返す。
func (a *RedditAdapter) Name() model.Source {
	return model.SourceReddit
}

// Fetch はReddit APIから候補記事を取得する。
// 固定表示、動画、成人向け、タイトル空の投稿は除外する。
func (a *RedditAdapter) Fetch(ctx context.Context, limit int) ([]model.Candidate, error) {
	body, err := fetchBody(ctx, a.client, a.url, a.maxSize)
	if err != nil {
		return nil, fmt.Errorf("Reddit APIの取得に失敗: %w", err)
	}

	var listing redditListing
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, fmt.Errorf("Reddit APIレスポンスの解析に失敗: %w", err)
	}

	candidates := make([]model.Candidate, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		post := child.Data
		if post.Stickied || post.IsVideo || post.Over18 {
			continue
		}
		if strings.TrimSpace(post.Title) == "" || post.Permalink == "" {
			continue
		}

		// サムネイルは実URLの場合のみ採用する
		// ("self"や"default"等のプレースホルダ値が返ることがある)
		imageURL := ""
		if strings.HasPrefix(post.Thumbnail, "http") {
			imageURL = post.Thumbnail
		}

		publishedAt := time.Unix(int64(post.CreatedUTC), 0)
		if post.CreatedUTC == 0 {
			publishedAt = time.Now()
		}

		candidates = append(candidates, model.Candidate{
			Title:       post.Title,
			Content:     post.SelfText,
			Source:      model.SourceReddit,
			SourceURL:   redditBaseURL + post.Permalink,
			ImageURL:    imageURL,
			PublishedAt: publishedAt,
		})
	}

	return capCandidates(candidates, limit), nil
}
