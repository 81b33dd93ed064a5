package ports

import (
	"context"

	"github.com/brandreg/crm-api/internal/core/domain"
)

// UserRepository defines persistence for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	ListByRole(ctx context.Context, role string) ([]*domain.User, error)
	// FirstByRole returns the earliest-created user holding the role.
	// Reviewer selection is first-available, not load-balanced.
	FirstByRole(ctx context.Context, role string) (*domain.User, error)
	CountByRole(ctx context.Context, role string) (int64, error)
	// CreditBalance atomically adds amount to the user's balance.
	CreditBalance(ctx context.Context, id string, amount float64) error
}
