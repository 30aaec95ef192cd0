package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mavskr/newspipe/internal/middleware"
	"github.com/mavskr/newspipe/internal/model"
	"github.com/mavskr/newspipe/internal/news"
)

// defaultListLimit は一覧取得のデフォルト件数。
const defaultListLimit = 20

// maxListLimit は一覧取得の最大件数。
const maxListLimit = 100

// NewsHandler は記事閲覧APIのハンドラ。
type NewsHandler struct {
	service *news.Service
	logger  *slog.Logger
}

// NewNewsHandler はNewsHandlerの新しいインスタンスを生成する。
func NewNewsHandler(service *news.Service, logger *slog.Logger) *NewsHandler {
	return &NewsHandler{
		service: service,
		logger:  logger,
	}
}

// newsItem は記事レスポンスのJSON構造。
type newsItem struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	TitleKR     *string   `json:"titleKr,omitempty"`
	Content     string    `json:"content,omitempty"`
	ContentKR   *string   `json:"contentKr,omitempty"`
	SummaryKR   *string   `json:"summaryKr,omitempty"`
	Source      string    `json:"source"`
	SourceURL   string    `json:"sourceUrl"`
	Author      string    `json:"author,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	PublishedAt time.Time `json:"publishedAt"`
	ViewCount   int       `json:"viewCount"`
	Translated  bool      `json:"translated"`
	Tags        []string  `json:"tags,omitempty"`
}

// toNewsItem はドメインモデルをレスポンス構造に変換する。
func toNewsItem(n *model.News, tags []*model.Tag) newsItem {
	item := newsItem{
		ID:          n.ID,
		Title:       n.Title,
		TitleKR:     n.TitleKR,
		Content:     n.Content,
		ContentKR:   n.ContentKR,
		SummaryKR:   n.SummaryKR,
		Source:      string(n.Source),
		SourceURL:   n.SourceURL,
		Author:      n.Author,
		ImageURL:    n.ImageURL,
		PublishedAt: n.PublishedAt,
		ViewCount:   n.ViewCount,
		Translated:  n.Translated(),
	}
	for _, tag := range tags {
		item.Tags = append(item.Tags, tag.Name)
	}
	return item
}

// listResponse は一覧取得のレスポンス構造。
type listResponse struct {
	Items  []newsItem `json:"items"`
	Total  int        `json:"total"`
	Limit  int        `json:"limit"`
	Offset int        `json:"offset"`
}

// List は記事一覧を返す。
// GET /api/news?source=&translated=&limit=&offset=
func (h *NewsHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var filter model.NewsFilter
	if raw := query.Get("source"); raw != "" {
		source, err := model.ParseSource(raw)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, model.NewInvalidSourceError(raw))
			return
		}
		filter.Source = &source
	}
	if query.Get("translated") == "true" {
		filter.OnlyTranslated = true
	}

	limit := defaultListLimit
	if raw := query.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxListLimit {
			middleware.WriteError(w, http.StatusBadRequest, model.NewInvalidParamError("limit"))
			return
		}
		limit = parsed
	}
	offset := 0
	if raw := query.Get("offset"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			middleware.WriteError(w, http.StatusBadRequest, model.NewInvalidParamError("offset"))
			return
		}
		offset = parsed
	}

	result, err := h.service.List(r.Context(), filter, limit, offset)
	if err != nil {
		h.logger.Error("記事一覧の取得に失敗しました", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	items := make([]newsItem, 0, len(result.Items))
	for _, n := range result.Items {
		// 一覧では本文を省いて転送量を抑える
		n.Content = ""
		n.ContentKR = nil
		items = append(items, toNewsItem(n, nil))
	}

	middleware.WriteJSON(w, http.StatusOK, listResponse{
		Items:  items,
		Total:  result.Total,
		Limit:  limit,
		Offset: offset,
	})
}

// Get は記事詳細を返す。
// GET /api/news/{id}
func (h *NewsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	item, tags, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, model.ErrNewsNotFound) {
			middleware.WriteError(w, http.StatusNotFound, model.NewNewsNotFoundError(id))
			return
		}
		h.logger.Error("記事の取得に失敗しました", "news_id", id, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, toNewsItem(item, tags))
}
