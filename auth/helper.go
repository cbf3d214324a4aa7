package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

var (
	ErrNoBearer     = errors.New("missing bearer token")
	ErrNoIdentity   = errors.New("no identity in context")
	ErrInvalidToken = errors.New("invalid token")
)

func ReadBearer(r *http.Request) (string, error) {
	h := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(h, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return "", ErrNoBearer
	}
	return strings.TrimSpace(token), nil
}

func RequireIdentity(ctx context.Context) (Identity, error) {
	id, ok := IdentityFrom(ctx)
	if !ok {
		return Identity{}, ErrNoIdentity
	}
	return id, nil
}
