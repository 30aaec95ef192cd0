// Package model はドメインモデルを定義する。
package model

import "time"

// News はクロール済みのニュース記事を表す。
// 翻訳フィールド（TitleKR/ContentKR/SummaryKR）は翻訳完了までnil。
type News struct {
	ID          string
	Title       string
	TitleKR     *string
	Content     string
	ContentKR   *string
	Summary     *string
	SummaryKR   *string
	Source      Source
	SourceURL   string // 重複判定の一意キー
	Author      string
	ImageURL    string
	PublishedAt time.Time
	CrawledAt   time.Time // 初回保存時に1回だけ設定され、以後変更されない
	ViewCount   int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Translated は記事が翻訳済みかを返す。
// title_krの有無から導出する（独立したフラグは持たない）。
func (n *News) Translated() bool {
	return n.TitleKR != nil && *n.TitleKR != ""
}

// Candidate はソースアダプタが取得した未保存の記事候補を表す。
// オプション項目が取得できなかった場合は空文字列のまま渡される。
// PublishedAtが取得できないソースでは取得時刻で代替される。
type Candidate struct {
	Title       string
	Content     string
	Source      Source
	SourceURL   string
	Author      string
	ImageURL    string
	PublishedAt time.Time
}

// Tag は記事に付与されるタグを表す。name一意。
type Tag struct {
	ID   string
	Name string
}

// NewsFilter は記事一覧のフィルタ条件を表す。
type NewsFilter struct {
	Source         *Source
	OnlyTranslated bool
}
