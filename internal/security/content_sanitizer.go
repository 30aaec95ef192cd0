package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// ContentSanitizer は取得した記事コンテンツのサニタイズ機能を定義する。
// スクレイピングや外部APIで取得したHTMLは永続化前に必ずサニタイズする。
type ContentSanitizer interface {
	// SanitizeHTML はHTMLコンテンツから危険な要素を除去する。
	// script、iframe、イベントハンドラ等のXSSベクターが除去される。
	SanitizeHTML(html string) string

	// SanitizeText はプレーンテキストとして扱うフィールドから
	// 全てのHTMLタグを除去する。タイトルや要約に使用する。
	SanitizeText(text string) string
}

// contentSanitizer はContentSanitizerの実装。
// bluemondayのポリシーをラップし、並行アクセスに対して安全である。
type contentSanitizer struct {
	htmlPolicy *bluemonday.Policy
	textPolicy *bluemonday.Policy
}

// コンパイル時のインターフェース実装チェック
var _ ContentSanitizer = (*contentSanitizer)(nil)

// NewContentSanitizer はContentSanitizerの新しいインスタンスを生成する。
func NewContentSanitizer() *contentSanitizer {
	// 記事本文用: 基本的な書式タグとリンク、画像を許可
	htmlPolicy := bluemonday.UGCPolicy()
	// target="_blank"のリンクにrel="noopener noreferrer"を強制する
	htmlPolicy.RequireNoFollowOnLinks(false)
	htmlPolicy.RequireNoReferrerOnLinks(true)
	htmlPolicy.AddTargetBlankToFullyQualifiedLinks(true)

	// タイトル・要約用: 全てのタグを除去
	textPolicy := bluemonday.StrictPolicy()

	return &contentSanitizer{
		htmlPolicy: htmlPolicy,
		textPolicy: textPolicy,
	}
}

// SanitizeHTML はHTMLコンテンツから危険な要素を除去する。
func (s *contentSanitizer) SanitizeHTML(html string) string {
	if html == "" {
		return ""
	}
	return s.htmlPolicy.Sanitize(html)
}

// SanitizeText はテキストから全てのHTMLタグを除去する。
func (s *contentSanitizer) SanitizeText(text string) string {
	if text == "" {
		return ""
	}
	return strings.TrimSpace(s.textPolicy.Sanitize(text))
}
