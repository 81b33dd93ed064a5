package ports

import (
	"context"

	"github.com/brandreg/crm-api/internal/core/domain"
)

// NotificationInput is one pending notification write. Exactly one of
// Recipient or Role is set.
type NotificationInput struct {
	Recipient string
	Role      string
	JobID     string
	Type      domain.NotificationType
	Message   string
}

// ListNotificationsFilter scopes a listing to its owner: notifications
// addressed to the user directly or to the user's role.
type ListNotificationsFilter struct {
	UserID     string
	Role       string
	UnreadOnly bool
	Limit      int
}

// NotificationRepository defines persistence for notifications.
type NotificationRepository interface {
	Insert(ctx context.Context, n *domain.Notification) error
	List(ctx context.Context, filter ListNotificationsFilter) ([]*domain.Notification, error)
	// MarkRead flips the read flag; the query itself enforces ownership and
	// returns domain.ErrNotFound when the id does not belong to the caller.
	MarkRead(ctx context.Context, id, userID, role string) error
	CountUnread(ctx context.Context, userID, role string) (int64, error)
	DeleteByJob(ctx context.Context, jobID string) error
}

// UnreadCache caches per-owner unread counters. Lookups are best effort:
// a miss or an error falls back to the repository count.
type UnreadCache interface {
	Get(ctx context.Context, owner string) (int64, bool, error)
	Set(ctx context.Context, owner string, n int64) error
	Invalidate(ctx context.Context, owners ...string) error
}

// NotificationService owns the notification lifecycle.
type NotificationService interface {
	// Notify persists a single notification. Callers in the transition path
	// treat failures as non-fatal.
	Notify(ctx context.Context, in NotificationInput) error
	List(ctx context.Context, filter ListNotificationsFilter) ([]*domain.Notification, error)
	MarkRead(ctx context.Context, id string, actor Actor) error
	UnreadCount(ctx context.Context, actor Actor) (int64, error)
}

// MessageRepository defines persistence for job comment threads.
type MessageRepository interface {
	Insert(ctx context.Context, m *domain.Message) error
	ListByJob(ctx context.Context, jobID string) ([]*domain.Message, error)
	DeleteByJob(ctx context.Context, jobID string) error
}
