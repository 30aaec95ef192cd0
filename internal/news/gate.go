// Package news はニュース記事の保存・翻訳・閲覧のビジネスロジックを提供する。
package news

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mavskr/newspipe/internal/model"
	"github.com/mavskr/newspipe/internal/security"
)

// SaveOutcome は候補記事1件の保存結果を表す。
type SaveOutcome int

const (
	// OutcomeSaved は新規保存されたことを示す。
	OutcomeSaved SaveOutcome = iota
	// OutcomeUpdated は既存記事が更新されたことを示す。
	OutcomeUpdated
	// OutcomeSkipped は重複のためスキップされたことを示す。
	OutcomeSkipped
)

// NewsRepository はGateが必要とする永続化操作。
type NewsRepository interface {
	FindBySourceURL(ctx context.Context, sourceURL string) (*model.News, error)
	Create(ctx context.Context, news *model.News) error
	UpdateMutable(ctx context.Context, news *model.News) error
}

// Tagger は保存済み記事へのタグ付与操作。
type Tagger interface {
	AttachTags(ctx context.Context, newsID string, names []string) error
}

// Gate は候補記事の保存ゲート。
// source_urlによる重複判定を行い、新規記事は作成、既存記事は
// 可変フィールドのみを更新する。保存前に全フィールドをサニタイズする。
type Gate struct {
	repo      NewsRepository
	sanitizer security.ContentSanitizer
	logger    *slog.Logger
	tagger    Tagger // nil可
	now       func() time.Time
}

// NewGate はGateの新しいインスタンスを生成する。
func NewGate(repo NewsRepository, sanitizer security.ContentSanitizer, logger *slog.Logger) *Gate {
	return &Gate{
		repo:      repo,
		sanitizer: sanitizer,
		logger:    logger,
		now:       time.Now,
	}
}

// SetTagger は新規保存時のタグ付与先を設定する。
func (g *Gate) SetTagger(tagger Tagger) {
	g.tagger = tagger
}

// Save は候補記事を保存する。
// 既存記事が見つかった場合、title/content/image_urlのみを更新する。
// 翻訳フィールドとcrawled_atは初回保存時の値が維持される。
// 内容に変化がない既存記事はスキップとして扱う。
func (g *Gate) Save(ctx context.Context, candidate model.Candidate) (SaveOutcome, error) {
	if candidate.SourceURL == "" {
		return OutcomeSkipped, fmt.Errorf("source_urlが空の候補は保存できません")
	}
	if !candidate.Source.Valid() {
		return OutcomeSkipped, fmt.Errorf("不正なソース: %s", candidate.Source)
	}

	title := g.sanitizer.SanitizeText(candidate.Title)
	if title == "" {
		return OutcomeSkipped, fmt.Errorf("サニタイズ後のタイトルが空です: %s", candidate.SourceURL)
	}
	content := g.sanitizer.SanitizeHTML(candidate.Content)
	author := g.sanitizer.SanitizeText(candidate.Author)

	existing, err := g.repo.FindBySourceURL(ctx, candidate.SourceURL)
	if err != nil {
		return OutcomeSkipped, fmt.Errorf("既存記事の検索に失敗: %w", err)
	}

	if existing != nil {
		if existing.Title == title && existing.Content == content && existing.ImageURL == candidate.ImageURL {
			return OutcomeSkipped, nil
		}
		existing.Title = title
		existing.Content = content
		existing.Author = author
		existing.ImageURL = candidate.ImageURL
		if err := g.repo.UpdateMutable(ctx, existing); err != nil {
			return OutcomeSkipped, fmt.Errorf("既存記事の更新に失敗: %w", err)
		}
		return OutcomeUpdated, nil
	}

	publishedAt := candidate.PublishedAt
	if publishedAt.IsZero() {
		publishedAt = g.now()
	}

	news := &model.News{
		ID:          uuid.New().String(),
		Title:       title,
		Content:     content,
		Source:      candidate.Source,
		SourceURL:   candidate.SourceURL,
		Author:      author,
		ImageURL:    candidate.ImageURL,
		PublishedAt: publishedAt,
		CrawledAt:   g.now(),
	}
	if err := g.repo.Create(ctx, news); err != nil {
		// 検索と作成の間に他のソース処理が同一URLを保存した場合
		if errors.Is(err, model.ErrDuplicateSourceURL) {
			g.logger.Debug("並行保存により重複を検出しました", "source_url", candidate.SourceURL)
			return OutcomeSkipped, nil
		}
		return OutcomeSkipped, fmt.Errorf("記事の作成に失敗: %w", err)
	}

	// タグ付与の失敗で保存自体を失敗扱いにはしない
	if g.tagger != nil {
		if err := g.tagger.AttachTags(ctx, news.ID, []string{string(candidate.Source)}); err != nil {
			g.logger.Warn("ソースタグの付与に失敗しました", "news_id", news.ID, "error", err)
		}
	}
	return OutcomeSaved, nil
}
