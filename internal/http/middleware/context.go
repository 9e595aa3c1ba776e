package middleware

import (
	"context"

	"github.com/straye-as/attendance-api/internal/auth"
)

type contextKey string

const userHolderKey contextKey = "userHolder"

// userHolder lets outer middleware see the user resolved by inner middleware
type userHolder struct {
	user *auth.UserContext
}

func withUserHolder(ctx context.Context, h *userHolder) context.Context {
	return context.WithValue(ctx, userHolderKey, h)
}

func userHolderFrom(ctx context.Context) *userHolder {
	h, _ := ctx.Value(userHolderKey).(*userHolder)
	return h
}
