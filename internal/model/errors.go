// Package model はドメインモデルを定義する。
package model

import (
	"errors"
	"fmt"
)

// ErrDuplicateSourceURL はsource_urlの一意制約違反を表す。
// 再クロールによる重複挿入の試行は正常系（スキップ）として扱われる。
var ErrDuplicateSourceURL = errors.New("同一source_urlの記事が既に存在します")

// ErrNewsNotFound は指定された記事が存在しないことを表す。
var ErrNewsNotFound = errors.New("指定された記事が見つかりません")

// APIError はHTTP APIの統一エラーフォーマットを表す。
type APIError struct {
	Code    string // エラーコード
	Message string // エラーメッセージ
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeNewsNotFound  = "NEWS_NOT_FOUND"
	ErrCodeInvalidSource = "INVALID_SOURCE"
	ErrCodeInvalidParam  = "INVALID_PARAM"
)

// NewUnauthorizedError は認証失敗エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:    ErrCodeUnauthorized,
		Message: "認証に失敗しました。",
	}
}

// NewNewsNotFoundError は記事未検出エラーを生成する。
func NewNewsNotFoundError(id string) *APIError {
	return &APIError{
		Code:    ErrCodeNewsNotFound,
		Message: fmt.Sprintf("指定された記事が見つかりません: %s", id),
	}
}

// NewInvalidSourceError は無効なソース指定エラーを生成する。
func NewInvalidSourceError(raw string) *APIError {
	return &APIError{
		Code:    ErrCodeInvalidSource,
		Message: fmt.Sprintf("無効なニュースソースです: %s", raw),
	}
}

// NewInvalidParamError は無効なクエリパラメータエラーを生成する。
func NewInvalidParamError(name string) *APIError {
	return &APIError{
		Code:    ErrCodeInvalidParam,
		Message: fmt.Sprintf("無効なパラメータです: %s", name),
	}
}
