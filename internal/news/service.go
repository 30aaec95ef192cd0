package news

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mavskr/newspipe/internal/model"
	"github.com/mavskr/newspipe/internal/repository"
)

// Service はニュース記事の閲覧系ビジネスロジックを提供する。
type Service struct {
	newsRepo repository.NewsRepository
	tagRepo  repository.TagRepository
	logger   *slog.Logger
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(newsRepo repository.NewsRepository, tagRepo repository.TagRepository, logger *slog.Logger) *Service {
	return &Service{
		newsRepo: newsRepo,
		tagRepo:  tagRepo,
		logger:   logger,
	}
}

// ListResult は記事一覧の取得結果。
type ListResult struct {
	Items []*model.News
	Total int
}

// List はフィルタ条件に合致する記事一覧を総件数付きで返す。
func (s *Service) List(ctx context.Context, filter model.NewsFilter, limit, offset int) (*ListResult, error) {
	items, err := s.newsRepo.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("記事一覧の取得に失敗: %w", err)
	}

	total, err := s.newsRepo.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("記事件数の取得に失敗: %w", err)
	}

	return &ListResult{
		Items: items,
		Total: total,
	}, nil
}

// Get は指定IDの記事をタグ付きで取得し、閲覧数を非同期に加算する。
// 閲覧数の加算失敗はログに記録するのみで、記事の取得自体は成功させる。
func (s *Service) Get(ctx context.Context, id string) (*model.News, []*model.Tag, error) {
	item, err := s.newsRepo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("記事の取得に失敗: %w", err)
	}
	if item == nil {
		return nil, nil, model.ErrNewsNotFound
	}

	tags, err := s.tagRepo.ListByNews(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("タグの取得に失敗: %w", err)
	}

	// 閲覧数の加算はレスポンスを遅延させないため非同期で行う
	go func() {
		incCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.newsRepo.IncrementViewCount(incCtx, id); err != nil {
			s.logger.Warn("閲覧数の加算に失敗しました", "news_id", id, "error", err)
		}
	}()

	return item, tags, nil
}

// AttachTags は記事にタグ名のリストを付与する。
// 存在しないタグは作成される。空のタグ名は無視される。
func (s *Service) AttachTags(ctx context.Context, newsID string, names []string) error {
	for _, name := range names {
		if name == "" {
			continue
		}
		tag, err := s.tagRepo.EnsureByName(ctx, name)
		if err != nil {
			return fmt.Errorf("タグの作成に失敗 (name=%s): %w", name, err)
		}
		if err := s.tagRepo.AttachToNews(ctx, newsID, tag.ID); err != nil {
			return fmt.Errorf("タグの付与に失敗 (name=%s): %w", name, err)
		}
	}
	return nil
}
