package crawl

import (
	"context"
	"log/slog"
	"time"
)

// ShouldRunFunc は現在時刻からサイクルを実行すべきかを判定する。
type ShouldRunFunc func(now time.Time) bool

// DefaultShouldRun は3時間毎の実行ウィンドウ判定。
// UTCの時が3の倍数かつ分が5未満の場合のみ実行する。
// チェック間隔とウィンドウ幅の組み合わせで同一ウィンドウ内の
// 重複実行は起こらない前提である。
func DefaultShouldRun(now time.Time) bool {
	utc := now.UTC()
	return utc.Hour()%3 == 0 && utc.Minute() < 5
}

// Scheduler はクロールサイクルの定期実行を担う。
// 一定間隔で時刻を確認し、実行ウィンドウ内であればRunnerを起動する。
type Scheduler struct {
	runner    *Runner
	logger    *slog.Logger
	interval  time.Duration
	deadline  time.Duration
	shouldRun ShouldRunFunc
}

// NewScheduler はSchedulerの新しいインスタンスを生成する。
// shouldRunにnilを渡すとDefaultShouldRunが使用される。
func NewScheduler(runner *Runner, interval, deadline time.Duration, shouldRun ShouldRunFunc, logger *slog.Logger) *Scheduler {
	if shouldRun == nil {
		shouldRun = DefaultShouldRun
	}
	return &Scheduler{
		runner:    runner,
		logger:    logger,
		interval:  interval,
		deadline:  deadline,
		shouldRun: shouldRun,
	}
}

// Start はスケジューラのメインループを開始する。
// コンテキストがキャンセルされるまでブロックする。
// 起動直後にも1回ウィンドウ判定を行う。
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("クロールスケジューラを開始します",
		"interval", s.interval,
		"deadline", s.deadline,
	)

	s.tick(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("クロールスケジューラを停止します")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick は実行ウィンドウ判定を行い、該当すればサイクルを実行する。
// サイクルにはdeadlineの実行時間上限が課される。
func (s *Scheduler) tick(ctx context.Context) {
	if !s.shouldRun(time.Now()) {
		return
	}

	runCtx, cancel := context.WithTimeout(ctx, s.deadline)
	defer cancel()

	s.runner.RunOnce(runCtx)
}
