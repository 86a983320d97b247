package error_notificator

import (
	"context"

	"github.com/Vovarama1992/go-utils/logger"
)

// Service всегда пишет ошибку в лог и, если настроен, дублирует в Telegram.
type Service struct {
	infra Notificator
	log   *logger.ZapLogger
}

func NewService(infra Notificator, log *logger.ZapLogger) *Service {
	return &Service{infra: infra, log: log}
}

func (s *Service) Notify(ctx context.Context, err error, details string) error {
	s.log.Log(logger.LogEntry{Level: "error", Message: details, Error: err})

	if s.infra == nil {
		return nil
	}
	if nerr := s.infra.Notify(ctx, err, details); nerr != nil {
		s.log.Log(logger.LogEntry{Level: "warn", Message: "error notification not delivered", Error: nerr})
		return nerr
	}
	return nil
}
