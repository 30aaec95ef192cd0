// Package source はニュースソース毎の取得アダプタを提供する。
// ESPN API、Reddit API、RSSフィード、HTMLスクレイピングの各ソースを
// 共通のAdapterインターフェースに統一する。
package source

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/mavskr/newspipe/internal/model"
)

// userAgent は全アダプタ共通のUser-Agentヘッダ。
const userAgent = "MAVS.KR News Bot 1.0"

// Adapter はニュースソースからの記事取得機能を定義する。
// 各実装は最大limit件の候補記事を返す。取得や解析の失敗は
// エラーとして返し、呼び出し側でソース単位に集計される。
type Adapter interface {
	// Name はこのアダプタが扱うソース識別子を返す。
	Name() model.Source

	// Fetch はソースから候補記事を取得する。
	// 返却件数はlimit以下であることが保証される。
	Fetch(ctx context.Context, limit int) ([]model.Candidate, error)
}

// fetchBody はHTTP GETを実行しレスポンスボディを読み込む共通処理。
// 全アダプタで同一のUser-Agentとサイズ上限を適用する。
func fetchBody(ctx context.Context, client *http.Client, url string, maxSize int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("リクエストの作成に失敗: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストに失敗: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("予期しないステータスコード: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSize))
	if err != nil {
		return nil, fmt.Errorf("レスポンスの読み込みに失敗: %w", err)
	}
	return body, nil
}

// capCandidates は候補記事をlimit件に切り詰める。
func capCandidates(candidates []model.Candidate, limit int) []model.Candidate {
	if limit > 0 && len(candidates) > limit {
		return candidates[:limit]
	}
	return candidates
}
