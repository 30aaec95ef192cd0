// Package model はドメインモデルを定義する。
package model

import "time"

// SourceReport は1ソース分のクロール結果を表す。
type SourceReport struct {
	Source  Source `json:"source"`
	Fetched int    `json:"fetched"`
	Saved   int    `json:"saved"`
	Updated int    `json:"updated"`
	Skipped int    `json:"skipped"`
	Errors  int    `json:"errors"`
	Failed  bool   `json:"failed"` // ソース自体の取得に失敗した場合true
}

// RunReport はクロール+翻訳サイクル1回分の実行結果を表す。
// パイプラインの唯一の外部観測可能な出力（永続化ストアの変更を除く）。
type RunReport struct {
	Saved             int            `json:"saved"`
	Updated           int            `json:"updated"`
	Skipped           int            `json:"skipped"`
	Errors            int            `json:"errors"`
	Translated        int            `json:"translated"`
	TranslationErrors int            `json:"translationErrors"`
	PerSource         []SourceReport `json:"perSource"`
	ExecutedAt        time.Time      `json:"executedAt"`
	DurationMs        int64          `json:"durationMs"`
}

// AddSource はソース別結果を集計に反映する。
func (r *RunReport) AddSource(sr SourceReport) {
	r.Saved += sr.Saved
	r.Updated += sr.Updated
	r.Skipped += sr.Skipped
	r.Errors += sr.Errors
	r.PerSource = append(r.PerSource, sr)
}

// TranslateResult は単一記事の翻訳実行結果を表す。
type TranslateResult struct {
	Success bool    `json:"success"`
	TitleKR *string `json:"titleTranslated,omitempty"`
	Error   string  `json:"error,omitempty"`
}
