package source

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/mavskr/newspipe/internal/model"
)

// mavsMoneyballFeedURL はMavs Moneyball (SB Nation) のRSSフィードURL。
const mavsMoneyballFeedURL = "https://www.mavsmoneyball.com/rss/current.xml"

// RSSAdapter はRSSフィードから記事を取得するアダプタ。
// フィードの解析にはgofeedを使用し、RSS/Atomの差異を吸収する。
type RSSAdapter struct {
	parser  *gofeed.Parser
	source  model.Source
	feedURL string
}

var _ Adapter = (*RSSAdapter)(nil)

// NewMavsMoneyballAdapter はMavs Moneyball用のRSSAdapterを生成する。
func NewMavsMoneyballAdapter(client *http.Client) *RSSAdapter {
	parser := gofeed.NewParser()
	parser.Client = client
	parser.UserAgent = userAgent
	return &RSSAdapter{
		parser:  parser,
		source:  model.SourceMavsMoneyball,
		feedURL: mavsMoneyballFeedURL,
	}
}

// Name はソース識別子を返す。
func (a *RSSAdapter) Name() model.Source {
	return a.source
}

// Fetch はRSSフィードから候補記事を取得する。
// タイトルまたはリンクが欠落しているアイテムはスキップする。
func (a *RSSAdapter) Fetch(ctx context.Context, limit int) ([]model.Candidate, error) {
	feed, err := a.parser.ParseURLWithContext(a.feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("RSSフィードの取得に失敗: %w", err)
	}

	candidates := make([]model.Candidate, 0, len(feed.Items))
	for _, item := range feed.Items {
		if strings.TrimSpace(item.Title) == "" || item.Link == "" {
			continue
		}

		content := item.Content
		if content == "" {
			content = item.Description
		}

		imageURL := ""
		if item.Image != nil {
			imageURL = item.Image.URL
		}

		publishedAt := time.Now()
		if item.PublishedParsed != nil {
			publishedAt = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			publishedAt = *item.UpdatedParsed
		}

		candidates = append(candidates, model.Candidate{
			Title:       item.Title,
			Content:     content,
			Source:      a.source,
			SourceURL:   item.Link,
			ImageURL:    imageURL,
			PublishedAt: publishedAt,
		})
	}

	return capCandidates(candidates, limit), nil
}
