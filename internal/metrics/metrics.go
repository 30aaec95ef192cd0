// Package metrics はパイプラインのPrometheusメトリクスを提供する。
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mavskr/newspipe/internal/model"
)

// PipelineMetrics はクロール+翻訳パイプラインのメトリクス集合。
type PipelineMetrics struct {
	runsTotal         prometheus.Counter
	runDuration       prometheus.Histogram
	newsOutcomes      *prometheus.CounterVec
	translationsTotal prometheus.Counter
	translationErrors prometheus.Counter
	sourceFailures    *prometheus.CounterVec
	cacheHits         prometheus.Counter
	cacheMisses       prometheus.Counter
}

// NewPipelineMetrics はメトリクスを生成してregに登録する。
func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	factory := promauto.With(reg)
	return &PipelineMetrics{
		runsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "newspipe_runs_total",
			Help: "実行されたクロールサイクルの総数",
		}),
		runDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "newspipe_run_duration_seconds",
			Help:    "クロールサイクル1回の実行時間",
			Buckets: []float64{1, 5, 10, 30, 60, 120},
		}),
		newsOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "newspipe_news_outcomes_total",
			Help: "保存ゲートの結果別の記事数",
		}, []string{"outcome"}),
		translationsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "newspipe_translations_total",
			Help: "翻訳に成功した記事の総数",
		}),
		translationErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "newspipe_translation_errors_total",
			Help: "翻訳に失敗した記事の総数",
		}),
		sourceFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "newspipe_source_failures_total",
			Help: "ソース単位の取得失敗の総数",
		}, []string{"source"}),
		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "newspipe_translation_cache_hits_total",
			Help: "翻訳キャッシュのヒット総数",
		}),
		cacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "newspipe_translation_cache_misses_total",
			Help: "翻訳キャッシュのミス総数",
		}),
	}
}

// ObserveRun は実行レポートをメトリクスに反映する。
func (m *PipelineMetrics) ObserveRun(report *model.RunReport) {
	m.runsTotal.Inc()
	m.runDuration.Observe(float64(report.DurationMs) / 1000)
	m.newsOutcomes.WithLabelValues("saved").Add(float64(report.Saved))
	m.newsOutcomes.WithLabelValues("updated").Add(float64(report.Updated))
	m.newsOutcomes.WithLabelValues("skipped").Add(float64(report.Skipped))
	m.newsOutcomes.WithLabelValues("error").Add(float64(report.Errors))
	m.translationsTotal.Add(float64(report.Translated))
	m.translationErrors.Add(float64(report.TranslationErrors))
}

// ObserveSourceFailure はソース単位の取得失敗を記録する。
func (m *PipelineMetrics) ObserveSourceFailure(source model.Source) {
	m.sourceFailures.WithLabelValues(string(source)).Inc()
}

// ObserveCacheHit は翻訳キャッシュのヒットを記録する。
func (m *PipelineMetrics) ObserveCacheHit() {
	m.cacheHits.Inc()
}

// ObserveCacheMiss は翻訳キャッシュのミスを記録する。
func (m *PipelineMetrics) ObserveCacheMiss() {
	m.cacheMisses.Inc()
}
