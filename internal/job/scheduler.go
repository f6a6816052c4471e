package job

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"tutoros/backend/config"
)

// Sweeper 周期性归档已结束课程
type Sweeper interface {
	SweepCompleted(ctx context.Context, now time.Time) (int64, error)
}

// Scheduler 后台定时任务，基于 robfig/cron，按 UTC 触发
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger
	now    func() time.Time
}

// NewScheduler 创建 Scheduler；任务 panic 会被恢复并记录日志
func NewScheduler(logger *zap.Logger) *Scheduler {
	cl := cronLogger{logger: logger.Sugar()}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger: logger,
		now:    time.Now,
	}
}

// RegisterCompletion 按配置注册课程归档任务，completion_cron 为空时不注册
func (s *Scheduler) RegisterCompletion(cfg *config.JobsConfig, sweeper Sweeper) error {
	if cfg.CompletionCron == "" {
		s.logger.Info("课程归档任务已关闭")
		return nil
	}
	timeout := cfg.CompletionTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	_, err := s.cron.AddFunc(cfg.CompletionCron, func() {
		s.runCompletion(sweeper, timeout)
	})
	if err != nil {
		return fmt.Errorf("注册课程归档任务失败: %w", err)
	}
	s.logger.Info("课程归档任务已注册", zap.String("cron", cfg.CompletionCron))
	return nil
}

func (s *Scheduler) runCompletion(sweeper Sweeper, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	start := s.now()
	n, err := sweeper.SweepCompleted(ctx, start)
	if err != nil {
		s.logger.Warn("课程归档任务执行失败", zap.Error(err))
		return
	}
	s.logger.Debug("课程归档任务完成",
		zap.Int64("count", n),
		zap.Duration("latency", time.Since(start)),
	)
}

// Start 启动调度（非阻塞）
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop 停止调度并等待运行中的任务结束，ctx 到期则放弃等待
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("等待定时任务结束超时")
	}
}

// cronLogger 把 cron 内部日志转到 zap
type cronLogger struct {
	logger *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Errorw(msg, append(keysAndValues, "error", err)...)
}
