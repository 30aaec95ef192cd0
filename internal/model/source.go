// Package model はドメインモデルを定義する。
package model

import "fmt"

// Source はニュースの取得元フィードを表す閉じた列挙型。
// 新しいソースの追加はここへの定数追加とsourceInfosへの登録で行う。
type Source string

const (
	// SourceESPN はESPNのNBAニュースAPI。
	SourceESPN Source = "ESPN"
	// SourceMavsMoneyball はMavs MoneyballのRSSフィード。
	SourceMavsMoneyball Source = "MAVS_MONEYBALL"
	// SourceSmokingCuban はThe Smoking CubanのHTMLスクレイプ。
	SourceSmokingCuban Source = "SMOKING_CUBAN"
	// SourceReddit はr/Mavericksのhot投稿。
	SourceReddit Source = "REDDIT"
)

// FeedKind はソースの取得方式を表す。
type FeedKind string

const (
	// FeedKindAPI は構造化JSON APIからの取得。
	FeedKindAPI FeedKind = "api"
	// FeedKindRSS はRSS/Atomフィードからの取得。
	FeedKindRSS FeedKind = "rss"
	// FeedKindScrape はHTMLスクレイプによる取得。
	FeedKindScrape FeedKind = "scrape"
)

// SourceInfo はソースに紐づく表示・分類情報を保持する。
// 文字列比較によるswitch分岐ではなく、ルックアップテーブルで解決する。
type SourceInfo struct {
	Label string   // 表示名
	Kind  FeedKind // 取得方式
}

// sourceInfos は全ソースの関連情報テーブル。
var sourceInfos = map[Source]SourceInfo{
	SourceESPN:          {Label: "ESPN", Kind: FeedKindAPI},
	SourceMavsMoneyball: {Label: "Mavs Moneyball", Kind: FeedKindRSS},
	SourceSmokingCuban:  {Label: "The Smoking Cuban", Kind: FeedKindScrape},
	SourceReddit:        {Label: "Reddit", Kind: FeedKindAPI},
}

// Info はソースの関連情報を返す。未知のソースの場合はokがfalse。
func (s Source) Info() (SourceInfo, bool) {
	info, ok := sourceInfos[s]
	return info, ok
}

// Valid はソースが既知の列挙値かを返す。
func (s Source) Valid() bool {
	_, ok := sourceInfos[s]
	return ok
}

// ParseSource は文字列をSourceに変換する。未知の値はエラーを返す。
func ParseSource(raw string) (Source, error) {
	s := Source(raw)
	if !s.Valid() {
		return "", fmt.Errorf("未知のニュースソースです: %s", raw)
	}
	return s, nil
}

// AllSources は既知の全ソースを返す。順序は固定。
func AllSources() []Source {
	return []Source{SourceESPN, SourceMavsMoneyball, SourceSmokingCuban, SourceReddit}
}
