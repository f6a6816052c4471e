package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"tutoros/backend/internal/repository"
)

// CompletionService 课程结束后自动归档
type CompletionService interface {
	// SweepCompleted 把 now 之前已结束的 scheduled 课程标记为 completed，返回处理条数
	SweepCompleted(ctx context.Context, now time.Time) (int64, error)
}

type completionService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCompletionService 创建 CompletionService
func NewCompletionService(repo *repository.Repository, logger *zap.Logger) CompletionService {
	return &completionService{repo: repo, logger: logger}
}

func (s *completionService) SweepCompleted(ctx context.Context, now time.Time) (int64, error) {
	n, err := s.repo.Occurrence.CompleteEndedBefore(ctx, now.UTC())
	if err != nil {
		s.logger.Error("归档已结束课程失败", zap.Error(err))
		return 0, err
	}
	if n > 0 {
		s.logger.Info("已归档结束的课程", zap.Int64("count", n))
	}
	return n, nil
}
