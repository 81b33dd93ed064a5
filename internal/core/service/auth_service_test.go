package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/brandreg/crm-api/internal/core/domain"
	"github.com/brandreg/crm-api/internal/core/ports"
)

const testSecret = "test-secret"

func newAuthSvc(repo *stubUserRepo) *AuthService {
	return NewAuthService(repo, testSecret, time.Hour)
}

func TestAuthService_Register_BootstrapAdmin(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthSvc(repo)

	// With no accounts at all, an anonymous call may create the first admin.
	user, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: "root", Password: "s3cr3tpass", Role: domain.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("bootstrap register: %v", err)
	}
	if user.Role != domain.RoleAdmin || user.PasswordHash == "" {
		t.Fatalf("expected hashed admin account, got %+v", user)
	}
	if user.PasswordHash == "s3cr3tpass" {
		t.Error("password must not be stored in plaintext")
	}

	// Anonymous bootstrap may only create an admin.
	repo2 := newStubUserRepo()
	_, err = newAuthSvc(repo2).Register(context.Background(), ports.RegisterInput{
		Username: "op", Password: "s3cr3tpass", Role: domain.RoleOperator,
	})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-admin bootstrap, got: %v", err)
	}
}

func TestAuthService_Register_AdminGateAfterBootstrap(t *testing.T) {
	repo := newStubUserRepo(&domain.User{ID: "admin-1", Username: "root", Role: domain.RoleAdmin})
	svc := newAuthSvc(repo)

	// Anonymous registration is closed once an admin exists.
	_, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: "op", Password: "s3cr3tpass", Role: domain.RoleOperator,
	})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for anonymous register, got: %v", err)
	}

	// A non-admin token may not register either.
	_, err = svc.Register(context.Background(), ports.RegisterInput{
		Username: "op", Password: "s3cr3tpass", Role: domain.RoleOperator, ActorRole: domain.RoleOperator,
	})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for operator-created account, got: %v", err)
	}

	// An admin may.
	user, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: "op", Password: "s3cr3tpass", Role: domain.RoleOperator, ActorRole: domain.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("admin-created register: %v", err)
	}
	if user.Role != domain.RoleOperator {
		t.Fatalf("expected operator account, got %s", user.Role)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc := newAuthSvc(newStubUserRepo())

	_, err := svc.Register(context.Background(), ports.RegisterInput{Username: "x", Role: domain.RoleAdmin})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation for missing password, got: %v", err)
	}

	_, err = svc.Register(context.Background(), ports.RegisterInput{
		Username: "x", Password: "s3cr3tpass", Role: "superuser", ActorRole: domain.RoleAdmin,
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation for unknown role, got: %v", err)
	}
}

func TestAuthService_LoginRoundTrip(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthSvc(repo)

	if _, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: "root", Password: "s3cr3tpass", Role: domain.RoleAdmin,
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	token, user, err := svc.Login(context.Background(), "root", "s3cr3tpass")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.Username != "root" {
		t.Fatalf("expected root, got %s", user.Username)
	}

	// The token must carry user_id, username, and role under HS256.
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(tkn *jwt.Token) (interface{}, error) {
		if tkn.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(testSecret), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token does not verify: %v", err)
	}
	if claims["username"] != "root" || claims["role"] != domain.RoleAdmin {
		t.Errorf("unexpected claims: %+v", claims)
	}
	if claims["user_id"] == "" || claims["user_id"] == nil {
		t.Error("expected user_id claim")
	}

	// Wrong password and unknown user both fail closed.
	if _, _, err := svc.Login(context.Background(), "root", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for wrong password, got: %v", err)
	}
	if _, _, err := svc.Login(context.Background(), "ghost", "s3cr3tpass"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound for unknown user, got: %v", err)
	}
}
