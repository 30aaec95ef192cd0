package news

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mavskr/newspipe/internal/model"
	"github.com/mavskr/newspipe/internal/translate"
)

// minContentLengthForTranslation は本文翻訳を行う最小文字数。
// これより短い本文はタイトルだけで内容が伝わるため翻訳しない。
const minContentLengthForTranslation = 50

// summaryMaxLength は韓国語要約の最大文字数。
const summaryMaxLength = 100

// TranslateRepository はTranslateServiceが必要とする永続化操作。
type TranslateRepository interface {
	FindByID(ctx context.Context, id string) (*model.News, error)
	ListUntranslated(ctx context.Context, limit int) ([]*model.News, error)
	UpdateTranslation(ctx context.Context, id string, titleKR string, contentKR, summaryKR *string) error
}

// TranslateService は未翻訳記事の翻訳と永続化を担う。
type TranslateService struct {
	repo       TranslateRepository
	translator translate.Translator
	logger     *slog.Logger
	// delay は記事間の待機時間。翻訳APIへの負荷を平準化する。
	delay time.Duration
	// sleep は待機処理。テスト時に差し替え可能。
	sleep func(ctx context.Context, d time.Duration) error
}

// NewTranslateService はTranslateServiceの新しいインスタンスを生成する。
func NewTranslateService(repo TranslateRepository, translator translate.Translator, delay time.Duration, logger *slog.Logger) *TranslateService {
	return &TranslateService{
		repo:       repo,
		translator: translator,
		logger:     logger,
		delay:      delay,
		sleep:      sleepContext,
	}
}

// sleepContext はコンテキストのキャンセルを尊重して待機する。
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// TranslateAndUpdateNews は未翻訳記事を最大limit件翻訳して保存する。
// 記事単位のエラーは集計して処理を継続し、全体としては
// (翻訳成功数, エラー数) を返す。コンテキストのキャンセル時のみ
// エラーを返して中断する。
func (s *TranslateService) TranslateAndUpdateNews(ctx context.Context, limit int) (int, int, error) {
	items, err := s.repo.ListUntranslated(ctx, limit)
	if err != nil {
		return 0, 0, fmt.Errorf("未翻訳記事の取得に失敗: %w", err)
	}
	if len(items) == 0 {
		return 0, 0, nil
	}

	s.logger.Info("翻訳処理を開始します", "count", len(items))

	translated := 0
	errorCount := 0
	for i, item := range items {
		if i > 0 {
			if err := s.sleep(ctx, s.delay); err != nil {
				return translated, errorCount, err
			}
		}

		if err := s.translateOne(ctx, item); err != nil {
			if ctx.Err() != nil {
				return translated, errorCount, ctx.Err()
			}
			errorCount++
			s.logger.Error("記事の翻訳に失敗しました",
				"news_id", item.ID,
				"error", err,
			)
			continue
		}
		translated++
	}

	s.logger.Info("翻訳処理が完了しました",
		"translated", translated,
		"errors", errorCount,
	)
	return translated, errorCount, nil
}

// TranslateNewsByID は指定IDの記事を翻訳して保存する。
// 結果は成功・失敗を問わずTranslateResultとして返される。
func (s *TranslateService) TranslateNewsByID(ctx context.Context, id string) (*model.TranslateResult, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("記事の取得に失敗: %w", err)
	}
	if item == nil {
		return nil, model.ErrNewsNotFound
	}

	if err := s.translateOne(ctx, item); err != nil {
		return &model.TranslateResult{
			Success: false,
			Error:   err.Error(),
		}, nil
	}
	return &model.TranslateResult{
		Success: true,
		TitleKR: item.TitleKR,
	}, nil
}

// translateOne は1記事の翻訳と保存を行う。
// 成功時はitemの翻訳フィールドを更新済みの値で書き換える。
func (s *TranslateService) translateOne(ctx context.Context, item *model.News) error {
	titleKR, err := s.translator.Translate(ctx, item.Title)
	if err != nil {
		return fmt.Errorf("タイトルの翻訳に失敗: %w", err)
	}
	if titleKR == "" {
		return fmt.Errorf("タイトルの翻訳結果が空です")
	}

	var contentKR *string
	var summaryKR *string
	content := strings.TrimSpace(item.Content)
	if len([]rune(content)) > minContentLengthForTranslation {
		translated, err := s.translator.Translate(ctx, content)
		if err != nil {
			return fmt.Errorf("本文の翻訳に失敗: %w", err)
		}
		if translated != "" {
			contentKR = &translated
		}

		summary, err := s.translator.Summarize(ctx, content, summaryMaxLength)
		if err != nil {
			// 要約は補助情報のため、失敗しても翻訳自体は成立させる
			s.logger.Warn("要約の生成に失敗しました", "news_id", item.ID, "error", err)
		} else if summary != "" {
			summaryKR = &summary
		}
	}

	if err := s.repo.UpdateTranslation(ctx, item.ID, titleKR, contentKR, summaryKR); err != nil {
		return fmt.Errorf("翻訳結果の保存に失敗: %w", err)
	}

	item.TitleKR = &titleKR
	item.ContentKR = contentKR
	item.SummaryKR = summaryKR
	return nil
}
