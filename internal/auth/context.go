package auth

import (
	"context"

	"github.com/straye-as/attendance-api/internal/domain"
)

// UserContext holds the authenticated user of a request
type UserContext struct {
	SessionID   string
	UserType    domain.UserType
	UserID      string
	DisplayName string
	Department  domain.Department
}

type contextKey string

const userContextKey contextKey = "userContext"

// WithUserContext adds user context to the context
func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// FromContext extracts user context from the context
func FromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	return user, ok
}

// MustFromContext extracts user context or panics
func MustFromContext(ctx context.Context) *UserContext {
	user, ok := FromContext(ctx)
	if !ok {
		panic("user context not found in context")
	}
	return user
}

// IsAdmin checks if the user is the admin
func (u *UserContext) IsAdmin() bool {
	return u.UserType == domain.UserTypeAdmin
}

// IsStudent checks if the user is a student
func (u *UserContext) IsStudent() bool {
	return u.UserType == domain.UserTypeStudent
}

// HasAnyType checks if the user is of one of the given types
func (u *UserContext) HasAnyType(types ...domain.UserType) bool {
	for _, t := range types {
		if u.UserType == t {
			return true
		}
	}
	return false
}

// User returns the client-facing view of the user
func (u *UserContext) User() domain.UserDTO {
	return domain.UserDTO{
		Type:       u.UserType,
		ID:         u.UserID,
		Name:       u.DisplayName,
		Department: u.Department,
	}
}
