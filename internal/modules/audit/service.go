package audit

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Service appends and lists audit records.
type Service interface {
	// Record stamps the current time and appends an entry.
	Record(ctx context.Context, username, action, details string) error
	FindAll(ctx context.Context) ([]Record, error)
}

type service struct {
	repo Repository
	log  *zap.Logger
	now  func() time.Time
}

// NewService creates a new audit service. A nil logger disables the audit log lines.
func NewService(repo Repository, log *zap.Logger) Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &service{repo: repo, log: log.Named("audit"), now: time.Now}
}

func (s *service) Record(ctx context.Context, username, action, details string) error {
	rec := Record{
		Timestamp: s.now().UTC(),
		Username:  username,
		Action:    action,
		Details:   details,
	}
	if err := s.repo.Save(ctx, rec); err != nil {
		return err
	}
	s.log.Info("audit",
		zap.String("username", rec.Username),
		zap.String("action", rec.Action),
		zap.String("details", rec.Details),
	)
	return nil
}

func (s *service) FindAll(ctx context.Context) ([]Record, error) {
	return s.repo.FindAll(ctx)
}
