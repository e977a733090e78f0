package service

import (
	"context"

	"go.uber.org/zap"

	"taskpulse/internal/model"
)

// UserLister supplies the users the digest iterates over.
type UserLister interface {
	GetAll(ctx context.Context) ([]model.User, error)
}

// DigestService periodically logs each user's completion numbers. It
// is read-only: routine rollover stays lazy and is never triggered from
// here.
type DigestService struct {
	users  UserLister
	stats  *StatsService
	logger *zap.Logger
}

func NewDigestService(users UserLister, stats *StatsService, logger *zap.Logger) *DigestService {
	return &DigestService{users: users, stats: stats, logger: logger}
}

// Run emits one digest entry per user.
func (s *DigestService) Run(ctx context.Context) error {
	users, err := s.users.GetAll(ctx)
	if err != nil {
		return storeErr("select", err)
	}

	for _, user := range users {
		summary, err := s.stats.Summarize(ctx, user.ID)
		if err != nil {
			s.logger.Warn("digest skipped", zap.Uint("user_id", user.ID), zap.Error(err))
			continue
		}
		routines, err := s.stats.Routines(ctx, user.ID)
		if err != nil {
			s.logger.Warn("digest skipped", zap.Uint("user_id", user.ID), zap.Error(err))
			continue
		}
		s.logger.Info("completion digest",
			zap.Uint("user_id", user.ID),
			zap.Int("total", summary.TotalTasks),
			zap.Int("completed", summary.CompletedTasks),
			zap.Int("pending", summary.PendingTasks),
			zap.Int("streak", summary.Streak),
			zap.Int("daily_routines_done", routines.DailyCompleted),
			zap.Int("daily_routines", routines.DailyTotal),
		)
	}
	return nil
}
