// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/mavskr/newspipe/internal/model"
)

// NewsRepository はニュース記事の永続化インターフェース。
// source_urlの一意制約による重複防止と翻訳結果の書き込みを提供する。
type NewsRepository interface {
	// FindByID は指定IDの記事を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.News, error)

	// FindBySourceURL はsource_urlで記事を検索する。重複判定の唯一の手段。
	// 見つからない場合はnilを返す。
	FindBySourceURL(ctx context.Context, sourceURL string) (*model.News, error)

	// Create は新規記事を作成する。
	// source_urlの一意制約違反の場合はmodel.ErrDuplicateSourceURLを返す。
	Create(ctx context.Context, news *model.News) error

	// UpdateMutable は既存記事の可変フィールド（title/content/author/image_url）を更新する。
	// 翻訳フィールドとcrawled_atには触れない。
	UpdateMutable(ctx context.Context, news *model.News) error

	// UpdateTranslation は記事の翻訳フィールドを更新する。
	// contentKR/summaryKRがnilの場合は該当カラムを変更しない。
	UpdateTranslation(ctx context.Context, id string, titleKR string, contentKR, summaryKR *string) error

	// ListUntranslated はtitle_krが未設定の記事をpublished_at降順で最大limit件返す。
	ListUntranslated(ctx context.Context, limit int) ([]*model.News, error)

	// List はフィルタ条件に合致する記事をpublished_at降順でページネーション付きで返す。
	List(ctx context.Context, filter model.NewsFilter, limit, offset int) ([]*model.News, error)

	// Count はフィルタ条件に合致する記事数を返す。
	Count(ctx context.Context, filter model.NewsFilter) (int, error)

	// IncrementViewCount は記事の閲覧数を1増やす。
	IncrementViewCount(ctx context.Context, id string) error
}

// TagRepository はタグの永続化インターフェース。
// パイプラインはタグの透過的な付け替えのみを行い、タグ自体のロジックは持たない。
type TagRepository interface {
	// EnsureByName は指定名のタグを取得し、存在しなければ作成して返す。
	EnsureByName(ctx context.Context, name string) (*model.Tag, error)

	// AttachToNews は記事にタグを付与する。既に付与済みの場合は何もしない。
	AttachToNews(ctx context.Context, newsID, tagID string) error

	// ListByNews は記事に付与されたタグ一覧を返す。
	ListByNews(ctx context.Context, newsID string) ([]*model.Tag, error)
}
