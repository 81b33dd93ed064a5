package domain

import "time"

const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
	RoleReviewer = "reviewer"
	RoleLawyer   = "lawyer"
)

// ValidRole reports whether r is one of the four workflow roles.
func ValidRole(r string) bool {
	switch r {
	case RoleAdmin, RoleOperator, RoleReviewer, RoleLawyer:
		return true
	}
	return false
}

// User models an authenticated actor in the system. Users are referenced by
// jobs through the assignment fields, never embedded.
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	FullName     string `json:"full_name,omitempty"`
	Phone        string `json:"phone,omitempty"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"`
	// Balance tracks accrued compensation for reviewers and lawyers.
	Balance   float64   `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
