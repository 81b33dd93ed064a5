package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/brandreg/crm-api/internal/api/metrics"
	"github.com/brandreg/crm-api/internal/core/domain"
	"github.com/brandreg/crm-api/internal/core/ports"
)

// NotificationService owns notification writes and the read/unread lifecycle.
// Unread counts are served from a short-TTL cache in front of the store.
type NotificationService struct {
	repo  ports.NotificationRepository
	cache ports.UnreadCache
	log   zerolog.Logger
	now   func() time.Time
}

func NewNotificationService(repo ports.NotificationRepository, cache ports.UnreadCache, log zerolog.Logger) *NotificationService {
	return &NotificationService{repo: repo, cache: cache, log: log, now: time.Now}
}

// Notify persists one notification. Exactly one of Recipient or Role must be
// set; a role-addressed notification is stored as a single record.
func (s *NotificationService) Notify(ctx context.Context, in ports.NotificationInput) error {
	if (in.Recipient == "") == (in.Role == "") {
		return fmt.Errorf("%w: notification needs exactly one of recipient or role", domain.ErrValidation)
	}

	n := &domain.Notification{
		Recipient: in.Recipient,
		Role:      in.Role,
		JobID:     in.JobID,
		Type:      in.Type,
		Message:   in.Message,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Insert(ctx, n); err != nil {
		return err
	}
	metrics.NotificationsCreatedTotal.WithLabelValues(string(in.Type)).Inc()

	// Role-addressed counters expire via the cache TTL; a direct recipient's
	// counter can be dropped precisely.
	if in.Recipient != "" {
		if err := s.cache.Invalidate(ctx, in.Recipient); err != nil {
			s.log.Warn().Err(err).Str("owner", in.Recipient).Msg("unread cache invalidation failed")
		}
	}
	return nil
}

func (s *NotificationService) List(ctx context.Context, filter ports.ListNotificationsFilter) ([]*domain.Notification, error) {
	return s.repo.List(ctx, filter)
}

// MarkRead flips the read flag. The store enforces that the notification is
// addressed to the caller or the caller's role.
func (s *NotificationService) MarkRead(ctx context.Context, id string, actor ports.Actor) error {
	if err := s.repo.MarkRead(ctx, id, actor.ID, actor.Role); err != nil {
		return err
	}
	if err := s.cache.Invalidate(ctx, actor.ID); err != nil {
		s.log.Warn().Err(err).Str("owner", actor.ID).Msg("unread cache invalidation failed")
	}
	return nil
}

// UnreadCount returns the number of unread notifications visible to the
// actor, cache first, store on miss. Cache errors degrade to a store count.
func (s *NotificationService) UnreadCount(ctx context.Context, actor ports.Actor) (int64, error) {
	if n, ok, err := s.cache.Get(ctx, actor.ID); err == nil && ok {
		return n, nil
	} else if err != nil {
		s.log.Warn().Err(err).Str("owner", actor.ID).Msg("unread cache read failed")
	}

	n, err := s.repo.CountUnread(ctx, actor.ID, actor.Role)
	if err != nil {
		return 0, err
	}
	if err := s.cache.Set(ctx, actor.ID, n); err != nil {
		s.log.Warn().Err(err).Str("owner", actor.ID).Msg("unread cache write failed")
	}
	return n, nil
}
