package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/brandreg/crm-api/internal/core/domain"
	"github.com/brandreg/crm-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubUnreadCache struct {
	mu          sync.Mutex
	values      map[string]int64
	getErr      error
	invalidated []string
	sets        int
}

func newStubUnreadCache() *stubUnreadCache {
	return &stubUnreadCache{values: map[string]int64{}}
}

func (c *stubUnreadCache) Get(_ context.Context, owner string) (int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return 0, false, c.getErr
	}
	n, ok := c.values[owner]
	return n, ok, nil
}

func (c *stubUnreadCache) Set(_ context.Context, owner string, n int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[owner] = n
	c.sets++
	return nil
}

func (c *stubUnreadCache) Invalidate(_ context.Context, owners ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, owner := range owners {
		delete(c.values, owner)
		c.invalidated = append(c.invalidated, owner)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestNotificationService_Notify_ExactlyOneAddressee(t *testing.T) {
	svc := NewNotificationService(&stubNotificationRepo{}, newStubUnreadCache(), zerolog.Nop())

	err := svc.Notify(context.Background(), ports.NotificationInput{
		Type: domain.NotifyJobAssigned, Message: "hi",
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation with no addressee, got: %v", err)
	}

	err = svc.Notify(context.Background(), ports.NotificationInput{
		Recipient: "u1", Role: domain.RoleReviewer,
		Type: domain.NotifyJobAssigned, Message: "hi",
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation with both addressees, got: %v", err)
	}
}

func TestNotificationService_Notify_InvalidatesRecipientCounter(t *testing.T) {
	cache := newStubUnreadCache()
	cache.values["u1"] = 3
	svc := NewNotificationService(&stubNotificationRepo{}, cache, zerolog.Nop())

	err := svc.Notify(context.Background(), ports.NotificationInput{
		Recipient: "u1", Type: domain.NotifyJobAssigned, Message: "assigned",
	})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if _, ok := cache.values["u1"]; ok {
		t.Error("expected recipient counter dropped from the cache")
	}

	// Role-addressed notifications rely on the TTL, not an invalidation.
	cache.values["u2"] = 1
	err = svc.Notify(context.Background(), ports.NotificationInput{
		Role: domain.RoleReviewer, Type: domain.NotifyReviewRequested, Message: "review",
	})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if _, ok := cache.values["u2"]; !ok {
		t.Error("role-addressed notification must not invalidate unrelated counters")
	}
}

func TestNotificationService_UnreadCount_CacheFirst(t *testing.T) {
	repo := &stubNotificationRepo{}
	cache := newStubUnreadCache()
	svc := NewNotificationService(repo, cache, zerolog.Nop())
	actor := ports.Actor{ID: "u1", Role: domain.RoleOperator}

	if err := svc.Notify(context.Background(), ports.NotificationInput{
		Recipient: "u1", Type: domain.NotifyJobAssigned, Message: "a",
	}); err != nil {
		t.Fatalf("notify: %v", err)
	}

	// Miss: count comes from the store and is cached.
	n, err := svc.UnreadCount(context.Background(), actor)
	if err != nil {
		t.Fatalf("unread count: %v", err)
	}
	if n != 1 || cache.sets != 1 {
		t.Fatalf("expected count 1 cached once, got n=%d sets=%d", n, cache.sets)
	}

	// Hit: the stale cached value is served as-is.
	cache.values["u1"] = 42
	n, err = svc.UnreadCount(context.Background(), actor)
	if err != nil {
		t.Fatalf("unread count: %v", err)
	}
	if n != 42 {
		t.Fatalf("expected cached 42, got %d", n)
	}

	// Cache failure degrades to the store count.
	cache.getErr = errors.New("redis down")
	n, err = svc.UnreadCount(context.Background(), actor)
	if err != nil {
		t.Fatalf("unread count with broken cache: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected store fallback count 1, got %d", n)
	}
}

func TestNotificationService_MarkRead_OwnershipEnforced(t *testing.T) {
	repo := &stubNotificationRepo{}
	cache := newStubUnreadCache()
	svc := NewNotificationService(repo, cache, zerolog.Nop())

	if err := svc.Notify(context.Background(), ports.NotificationInput{
		Recipient: "u1", Type: domain.NotifyJobAssigned, Message: "a",
	}); err != nil {
		t.Fatalf("notify: %v", err)
	}
	id := repo.inserted[0].ID

	err := svc.MarkRead(context.Background(), id, ports.Actor{ID: "intruder", Role: domain.RoleLawyer})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign notification, got: %v", err)
	}

	if err := svc.MarkRead(context.Background(), id, ports.Actor{ID: "u1", Role: domain.RoleOperator}); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if !repo.inserted[0].Read {
		t.Error("expected notification flagged read")
	}
	if len(cache.invalidated) == 0 || cache.invalidated[len(cache.invalidated)-1] != "u1" {
		t.Errorf("expected reader's counter invalidated, got %v", cache.invalidated)
	}
}

func TestNotificationService_RoleAddressedVisibleToRoleMembers(t *testing.T) {
	repo := &stubNotificationRepo{}
	svc := NewNotificationService(repo, newStubUnreadCache(), zerolog.Nop())

	if err := svc.Notify(context.Background(), ports.NotificationInput{
		Role: domain.RoleReviewer, Type: domain.NotifyReviewRequested, Message: "review me",
	}); err != nil {
		t.Fatalf("notify: %v", err)
	}

	items, err := svc.List(context.Background(), ports.ListNotificationsFilter{
		UserID: "rev-1", Role: domain.RoleReviewer,
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected role notification visible to reviewer, got %d items", len(items))
	}

	items, err = svc.List(context.Background(), ports.ListNotificationsFilter{
		UserID: "op-1", Role: domain.RoleOperator,
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("operator must not see reviewer-role notifications, got %d items", len(items))
	}
}
