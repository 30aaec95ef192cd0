// Package app はアプリケーションの依存構築と起動を担う。
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/mavskr/newspipe/internal/config"
	"github.com/mavskr/newspipe/internal/database"
	"github.com/mavskr/newspipe/internal/handler"
	"github.com/mavskr/newspipe/internal/logger"
	"github.com/mavskr/newspipe/internal/metrics"
	"github.com/mavskr/newspipe/internal/middleware"
	"github.com/mavskr/newspipe/internal/news"
	"github.com/mavskr/newspipe/internal/repository"
	"github.com/mavskr/newspipe/internal/security"
	"github.com/mavskr/newspipe/internal/source"
	"github.com/mavskr/newspipe/internal/translate"
	"github.com/mavskr/newspipe/internal/worker/crawl"
)

// App はアプリケーションの全依存を保持する。
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	db          *sql.DB
	redisClient *redis.Client
	cache       *translate.Cache
	redisStore  *translate.RedisStore
	runner      *crawl.Runner
	scheduler   *crawl.Scheduler
	translator  *news.TranslateService
	router      http.Handler
}

// Init は設定を読み込み、全依存を構築してAppを返す。
func Init() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.SetupDefault(os.Stdout)
	log := slog.Default()

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Repository
	newsRepo := repository.NewPostgresNewsRepo(db)
	tagRepo := repository.NewPostgresTagRepo(db)

	// Security
	guard := security.NewSSRFGuard()
	sanitizer := security.NewContentSanitizer()
	safeClient := guard.NewSafeClient(cfg.FetchTimeout, cfg.FetchMaxSize)

	// 翻訳キャッシュ（Redis設定時はスナップショットを復元する）
	cache := translate.NewCache(cfg.CacheTTL, cfg.CacheCapacity)
	var redisClient *redis.Client
	var redisStore *translate.RedisStore
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse redis url: %w", err)
		}
		redisClient = redis.NewClient(opts)
		redisStore = translate.NewRedisStore(redisClient, log)

		hydrateCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisStore.Hydrate(hydrateCtx, cache)
		cancel()
	}

	// 翻訳サービス（APIキー未設定時は辞書フォールバックのみ）
	fallback := translate.NewDictionaryTranslator()
	var primary translate.Translator
	if cfg.GeminiAPIKey != "" {
		geminiHTTP := &http.Client{Timeout: 30 * time.Second}
		primary = translate.NewGeminiClient(geminiHTTP, cfg.GeminiAPIKey, cfg.GeminiModel, log)
	} else {
		log.Warn("GEMINI_API_KEYが未設定のため辞書フォールバックのみで動作します")
	}
	translatorSvc := translate.NewService(cache, primary, fallback, log)

	// ニュースサービス
	gate := news.NewGate(newsRepo, sanitizer, log)
	translateSvc := news.NewTranslateService(newsRepo, translatorSvc, cfg.TranslateDelay, log)
	newsSvc := news.NewService(newsRepo, tagRepo, log)
	gate.SetTagger(newsSvc)

	// パイプライン
	registry := prometheus.NewRegistry()
	pipelineMetrics := metrics.NewPipelineMetrics(registry)
	translatorSvc.SetCacheObserver(pipelineMetrics)

	adapters := []source.Adapter{
		source.NewESPNAdapter(safeClient, cfg.FetchMaxSize),
		source.NewMavsMoneyballAdapter(safeClient),
		source.NewSmokingCubanAdapter(safeClient, guard, cfg.FetchMaxSize),
		source.NewRedditAdapter(safeClient, cfg.FetchMaxSize),
	}
	runner := crawl.NewRunner(adapters, gate, translateSvc, pipelineMetrics, crawl.Config{
		PerSourceLimit: cfg.PerSourceLimit,
		MaxConcurrent:  cfg.CrawlMaxConcurrent,
		SourceTimeout:  cfg.FetchTimeout,
		TranslateBatch: cfg.TranslateBatch,
	}, log)
	scheduler := crawl.NewScheduler(runner, cfg.CrawlInterval, cfg.RunDeadline, nil, log)

	// HTTP
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitGeneral)
	router := handler.NewRouter(handler.RouterConfig{
		NewsHandler:   handler.NewNewsHandler(newsSvc, log),
		CronHandler:   handler.NewCronHandler(runner, translateSvc, cfg.RunDeadline, cfg.TranslateBatch, log),
		CronSecret:    cfg.CronSecret,
		RateLimiter:   rateLimiter,
		CORSOrigin:    cfg.CORSAllowedOrigin,
		MetricsGather: registry,
		Logger:        log,
	})

	return &App{
		cfg:         cfg,
		logger:      log,
		db:          db,
		redisClient: redisClient,
		cache:       cache,
		redisStore:  redisStore,
		runner:      runner,
		scheduler:   scheduler,
		translator:  translateSvc,
		router:      router,
	}, nil
}

// Run は指定されたコマンドでアプリケーションを実行する。
func (a *App) Run(command Command) error {
	defer a.close()

	switch command {
	case CommandServe:
		return a.runServe()
	case CommandWorker:
		return a.runWorker()
	case CommandMigrate:
		return a.runMigrate()
	case CommandHealthcheck:
		return a.runHealthcheck()
	default:
		return fmt.Errorf("未知のコマンドです: %s", command)
	}
}

// close は保持しているリソースを解放する。
// Redis設定時は翻訳キャッシュのスナップショットを書き出す。
func (a *App) close() {
	if a.redisStore != nil {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.redisStore.Flush(flushCtx, a.cache); err != nil {
			a.logger.Warn("翻訳キャッシュの書き出しに失敗しました", "error", err)
		}
		cancel()
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("Redis接続のクローズに失敗しました", "error", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("データベース接続のクローズに失敗しました", "error", err)
		}
	}
}

// runServe はHTTP APIサーバを起動する。
// SIGINT/SIGTERMでグレースフルシャットダウンする。
func (a *App) runServe() error {
	if err := a.pingDB(); err != nil {
		return err
	}

	server := &http.Server{
		Addr:              ":" + a.cfg.ServerPort,
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTPサーバを起動します", "port", a.cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTPサーバの起動に失敗: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("シャットダウンを開始します")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("シャットダウンに失敗: %w", err)
	}
	return nil
}

// runWorker は定期クロールワーカーを起動する。
// SIGINT/SIGTERMで停止する。
func (a *App) runWorker() error {
	if err := a.pingDB(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.scheduler.Start(ctx)
	return nil
}

// runMigrate はマイグレーションを適用して終了する。
func (a *App) runMigrate() error {
	a.logger.Info("マイグレーションを適用します")
	if err := database.RunMigrations(a.cfg.DatabaseURL); err != nil {
		return fmt.Errorf("マイグレーションの適用に失敗: %w", err)
	}
	a.logger.Info("マイグレーションの適用が完了しました")
	return nil
}

// runHealthcheck はヘルスエンドポイントを確認して終了する。
func (a *App) runHealthcheck() error {
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get("http://localhost:" + a.cfg.ServerPort + "/healthz")
	if err != nil {
		return fmt.Errorf("ヘルスチェックに失敗: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ヘルスチェックに失敗: status=%d", resp.StatusCode)
	}
	return nil
}

// pingDB はデータベースへの疎通を確認する。
func (a *App) pingDB() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}
