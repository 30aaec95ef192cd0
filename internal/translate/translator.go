package translate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Service は翻訳の主経路とフォールバックを束ねる翻訳サービス。
// 処理順序: ハングル判定 → キャッシュ照会 → Gemini API → 辞書フォールバック。
// キャッシュにはGemini APIの結果のみが書き込まれる。
// 辞書フォールバックの結果は品質が低いため、キャッシュに残すと
// APIが復旧した後も低品質な訳が返り続けてしまう。
// CacheObserver は翻訳キャッシュのヒット/ミスの通知先。
type CacheObserver interface {
	ObserveCacheHit()
	ObserveCacheMiss()
}

type Service struct {
	cache    *Cache
	primary  Translator // nilの場合はフォールバックのみで動作する
	fallback Translator
	logger   *slog.Logger
	observer CacheObserver // nil可
}

var _ Translator = (*Service)(nil)

// NewService はServiceの新しいインスタンスを生成する。
// primaryにnilを渡すと辞書フォールバックのみで動作する。
func NewService(cache *Cache, primary, fallback Translator, logger *slog.Logger) *Service {
	return &Service{
		cache:    cache,
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// SetCacheObserver はキャッシュのヒット/ミスの通知先を設定する。
func (s *Service) SetCacheObserver(observer CacheObserver) {
	s.observer = observer
}

func (s *Service) lookupCache(text string) (string, bool) {
	cached, ok := s.cache.Get(text)
	if s.observer != nil {
		if ok {
			s.observer.ObserveCacheHit()
		} else {
			s.observer.ObserveCacheMiss()
		}
	}
	return cached, ok
}

// Translate は単一テキストを韓国語に翻訳する。
// 既にハングルを含むテキストはそのまま返す。
func (s *Service) Translate(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", nil
	}
	if ContainsHangul(text) {
		return text, nil
	}

	if cached, ok := s.lookupCache(text); ok {
		return cached, nil
	}

	if s.primary != nil {
		translated, err := s.primary.Translate(ctx, text)
		if err == nil && translated != "" {
			s.cache.Set(text, translated)
			return translated, nil
		}
		if err != nil {
			s.logger.Warn("主翻訳経路が失敗したためフォールバックします", "error", err)
		}
	}

	translated, err := s.fallback.Translate(ctx, text)
	if err != nil {
		return "", fmt.Errorf("フォールバック翻訳に失敗: %w", err)
	}
	return translated, nil
}

// TranslateBatch は複数テキストをまとめて翻訳する。
// キャッシュ済みの項目はAPI呼び出しから除外され、未キャッシュ分のみが
// バッチ翻訳される。返却スライスは入力と同じ長さ・同じ順序。
func (s *Service) TranslateBatch(ctx context.Context, texts []string) ([]string, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	results := make([]string, len(texts))
	var missIndexes []int
	var missTexts []string

	for i, text := range texts {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" || ContainsHangul(trimmed) {
			results[i] = trimmed
			continue
		}
		if cached, ok := s.lookupCache(trimmed); ok {
			results[i] = cached
			continue
		}
		missIndexes = append(missIndexes, i)
		missTexts = append(missTexts, trimmed)
	}

	if len(missTexts) == 0 {
		return results, nil
	}

	translated, err := s.translateMisses(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	for j, idx := range missIndexes {
		results[idx] = translated[j]
	}
	return results, nil
}

// translateMisses はキャッシュ未ヒット分のテキストを翻訳する。
func (s *Service) translateMisses(ctx context.Context, texts []string) ([]string, error) {
	if s.primary != nil {
		translated, err := s.primary.TranslateBatch(ctx, texts)
		if err == nil && len(translated) == len(texts) {
			for i, text := range texts {
				// 原文のまま返された行はキャッシュしない
				if translated[i] != "" && translated[i] != text {
					s.cache.Set(text, translated[i])
				}
			}
			return translated, nil
		}
		if err != nil {
			s.logger.Warn("主翻訳経路のバッチ処理が失敗したためフォールバックします", "error", err)
		}
	}

	translated, err := s.fallback.TranslateBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("フォールバックバッチ翻訳に失敗: %w", err)
	}
	return translated, nil
}

// Summarize はテキストの韓国語要約を生成する。要約はキャッシュしない。
func (s *Service) Summarize(ctx context.Context, text string, maxLen int) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", nil
	}

	if s.primary != nil {
		summary, err := s.primary.Summarize(ctx, text, maxLen)
		if err == nil && summary != "" {
			return summary, nil
		}
		if err != nil {
			s.logger.Warn("主翻訳経路の要約が失敗したためフォールバックします", "error", err)
		}
	}

	summary, err := s.fallback.Summarize(ctx, text, maxLen)
	if err != nil {
		return "", fmt.Errorf("フォールバック要約に失敗: %w", err)
	}
	return summary, nil
}
