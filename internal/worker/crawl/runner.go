// Package crawl はニュースクロール+翻訳パイプラインの実行を担う。
package crawl

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mavskr/newspipe/internal/metrics"
	"github.com/mavskr/newspipe/internal/model"
	"github.com/mavskr/newspipe/internal/news"
	"github.com/mavskr/newspipe/internal/source"
)

// Translator はRunnerが必要とする翻訳パスの操作。
type Translator interface {
	TranslateAndUpdateNews(ctx context.Context, limit int) (int, int, error)
}

// Runner は全ソースのクロールと翻訳パスを1サイクル実行する。
// ソース毎の取得はセマフォで並行数を制限しながら並列実行され、
// 1ソースの失敗が他ソースの処理を妨げることはない。
type Runner struct {
	adapters       []source.Adapter
	gate           *news.Gate
	translator     Translator
	metrics        *metrics.PipelineMetrics
	logger         *slog.Logger
	perSourceLimit int
	maxConcurrent  int
	sourceTimeout  time.Duration
	translateBatch int
}

// Config はRunnerの動作設定。
type Config struct {
	// PerSourceLimit はソース毎の最大取得件数。
	PerSourceLimit int
	// MaxConcurrent はソース取得の最大並行数。
	MaxConcurrent int
	// SourceTimeout は1ソースの取得に許容する最大時間。
	SourceTimeout time.Duration
	// TranslateBatch は1サイクルで翻訳する最大記事数。
	TranslateBatch int
}

// NewRunner はRunnerの新しいインスタンスを生成する。
func NewRunner(
	adapters []source.Adapter,
	gate *news.Gate,
	translator Translator,
	m *metrics.PipelineMetrics,
	cfg Config,
	logger *slog.Logger,
) *Runner {
	return &Runner{
		adapters:       adapters,
		gate:           gate,
		translator:     translator,
		metrics:        m,
		logger:         logger,
		perSourceLimit: cfg.PerSourceLimit,
		maxConcurrent:  cfg.MaxConcurrent,
		sourceTimeout:  cfg.SourceTimeout,
		translateBatch: cfg.TranslateBatch,
	}
}

// RunOnce はクロール+翻訳サイクルを1回実行し、実行レポートを返す。
// クロールは全ソースを処理してから翻訳パスに進む。
// コンテキストのキャンセル時は途中までの集計を含むレポートを返す。
func (r *Runner) RunOnce(ctx context.Context) *model.RunReport {
	started := time.Now()
	report := &model.RunReport{
		ExecutedAt: started.UTC(),
	}

	r.logger.Info("クロールサイクルを開始します", "sources", len(r.adapters))

	sourceReports := r.crawlAll(ctx)
	for _, sr := range sourceReports {
		report.AddSource(sr)
	}

	if ctx.Err() == nil && r.translator != nil {
		translated, translationErrors, err := r.translator.TranslateAndUpdateNews(ctx, r.translateBatch)
		report.Translated = translated
		report.TranslationErrors = translationErrors
		if err != nil {
			r.logger.Error("翻訳パスが中断されました", "error", err)
		}
	}

	report.DurationMs = time.Since(started).Milliseconds()
	r.metrics.ObserveRun(report)

	r.logger.Info("クロールサイクルが完了しました",
		"saved", report.Saved,
		"updated", report.Updated,
		"skipped", report.Skipped,
		"errors", report.Errors,
		"translated", report.Translated,
		"translation_errors", report.TranslationErrors,
		"duration_ms", report.DurationMs,
	)
	return report
}

// crawlAll は全ソースをセマフォによる並行数制限付きで処理する。
// 返却順はアダプタの登録順で安定している。
func (r *Runner) crawlAll(ctx context.Context) []model.SourceReport {
	reports := make([]model.SourceReport, len(r.adapters))
	semaphore := make(chan struct{}, r.maxConcurrent)
	var wg sync.WaitGroup

	for i, adapter := range r.adapters {
		wg.Add(1)
		go func(i int, adapter source.Adapter) {
			defer wg.Done()

			select {
			case semaphore <- struct{}{}:
				defer func() { <-semaphore }()
			case <-ctx.Done():
				reports[i] = model.SourceReport{Source: adapter.Name(), Failed: true, Errors: 1}
				return
			}

			reports[i] = r.crawlSource(ctx, adapter)
		}(i, adapter)
	}
	wg.Wait()

	return reports
}

// crawlSource は1ソース分の取得と保存を行う。
// ソース自体の取得失敗はFailed=trueとして報告し、
// 候補単位の保存失敗はErrorsに加算して処理を継続する。
func (r *Runner) crawlSource(ctx context.Context, adapter source.Adapter) model.SourceReport {
	name := adapter.Name()
	report := model.SourceReport{Source: name}

	fetchCtx, cancel := context.WithTimeout(ctx, r.sourceTimeout)
	defer cancel()

	candidates, err := adapter.Fetch(fetchCtx, r.perSourceLimit)
	if err != nil {
		r.logger.Error("ソースの取得に失敗しました",
			"source", name,
			"error", err,
		)
		report.Failed = true
		report.Errors++
		r.metrics.ObserveSourceFailure(name)
		return report
	}
	report.Fetched = len(candidates)

	for _, candidate := range candidates {
		outcome, err := r.gate.Save(ctx, candidate)
		if err != nil {
			r.logger.Warn("候補記事の保存に失敗しました",
				"source", name,
				"source_url", candidate.SourceURL,
				"error", err,
			)
			report.Errors++
			continue
		}
		switch outcome {
		case news.OutcomeSaved:
			report.Saved++
		case news.OutcomeUpdated:
			report.Updated++
		case news.OutcomeSkipped:
			report.Skipped++
		}
	}

	r.logger.Info("ソースの処理が完了しました",
		"source", name,
		"fetched", report.Fetched,
		"saved", report.Saved,
		"updated", report.Updated,
		"skipped", report.Skipped,
		"errors", report.Errors,
	)
	return report
}
