package ports

import (
	"context"

	"github.com/brandreg/crm-api/internal/core/domain"
)

// RegisterInput carries the fields of a new account. ActorRole is the role
// of the authenticated creator, empty for anonymous calls: once an admin
// account exists, only admins may register further users.
type RegisterInput struct {
	Username  string
	Password  string
	FullName  string
	Phone     string
	Role      string
	ActorRole string
}

// AuthService implements registration and login.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	// Login verifies credentials and returns a signed bearer token encoding
	// {user_id, username, role}.
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
}
