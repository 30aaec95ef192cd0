// Package handler はHTTP APIのハンドラを提供する。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/mavskr/newspipe/internal/middleware"
	"github.com/mavskr/newspipe/internal/model"
	"github.com/mavskr/newspipe/internal/worker/crawl"
)

// TranslateService はCronHandlerが必要とする翻訳操作。
type TranslateService interface {
	TranslateAndUpdateNews(ctx context.Context, limit int) (int, int, error)
	TranslateNewsByID(ctx context.Context, id string) (*model.TranslateResult, error)
}

// CronHandler は外部cronからトリガーされるパイプライン起動エンドポイント。
// 全エンドポイントはCronAuthミドルウェアによるBearer認証の背後に置かれる。
type CronHandler struct {
	runner         *crawl.Runner
	translator     TranslateService
	logger         *slog.Logger
	deadline       time.Duration
	translateBatch int
}

// NewCronHandler はCronHandlerの新しいインスタンスを生成する。
func NewCronHandler(runner *crawl.Runner, translator TranslateService, deadline time.Duration, translateBatch int, logger *slog.Logger) *CronHandler {
	return &CronHandler{
		runner:         runner,
		translator:     translator,
		logger:         logger,
		deadline:       deadline,
		translateBatch: translateBatch,
	}
}

// CrawlNews はクロール+翻訳サイクルを1回実行し、実行レポートを返す。
// GET/POST /api/cron/crawl-news
func (h *CronHandler) CrawlNews(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.deadline)
	defer cancel()

	report := h.runner.RunOnce(ctx)
	middleware.WriteJSON(w, http.StatusOK, report)
}

// translateBatchResponse は一括翻訳エンドポイントのレスポンス。
type translateBatchResponse struct {
	Translated int `json:"translated"`
	Errors     int `json:"errors"`
}

// TranslateNews は翻訳パスのみを実行する。
// idクエリパラメータ指定時は単一記事、未指定時は未翻訳記事の一括翻訳。
// GET /api/cron/translate-news?id=<uuid>&limit=<n>
func (h *CronHandler) TranslateNews(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.deadline)
	defer cancel()

	if id := r.URL.Query().Get("id"); id != "" {
		result, err := h.translator.TranslateNewsByID(ctx, id)
		if err != nil {
			if errors.Is(err, model.ErrNewsNotFound) {
				middleware.WriteError(w, http.StatusNotFound, model.NewNewsNotFoundError(id))
				return
			}
			h.logger.Error("単一記事の翻訳に失敗しました", "news_id", id, "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		middleware.WriteJSON(w, http.StatusOK, result)
		return
	}

	limit := h.translateBatch
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			middleware.WriteError(w, http.StatusBadRequest, model.NewInvalidParamError("limit"))
			return
		}
		limit = parsed
	}

	translated, errorCount, err := h.translator.TranslateAndUpdateNews(ctx, limit)
	if err != nil {
		h.logger.Error("一括翻訳が中断されました", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, translateBatchResponse{
		Translated: translated,
		Errors:     errorCount,
	})
}
