package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/Tk21111/journal_board/config"
	"github.com/Tk21111/journal_board/session"
)

const maxDisplayName = 24

type Identity struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"name"`
}

// Resolver resolves the caller of a request, or reports false.
type Resolver interface {
	Resolve(r *http.Request) (Identity, bool)
}

// DisplayName is the local part of an email address cut to 24 runes. Two
// accounts may well share one.
func DisplayName(email string) string {
	local, _, _ := strings.Cut(email, "@")
	runes := []rune(local)
	if len(runes) > maxDisplayName {
		runes = runes[:maxDisplayName]
	}
	return string(runes)
}

func IdentityOf(u config.User) Identity {
	return Identity{ID: u.ID, Email: u.Email, DisplayName: DisplayName(u.Email)}
}

// SessionResolver accepts the session cookie first and falls back to a
// bearer token for clients that cannot keep cookies. A bearer only
// resolves while the session it was issued with is alive.
type SessionResolver struct {
	Sessions   *session.Manager
	CookieName string
	Tokens     *Tokens
}

func (s SessionResolver) Resolve(r *http.Request) (Identity, bool) {
	if token := session.TokenFromRequest(r, s.CookieName); token != "" {
		if u, ok := s.Sessions.Lookup(r.Context(), token); ok {
			return IdentityOf(u), true
		}
	}

	claims, ok := s.bearer(r)
	if !ok {
		return Identity{}, false
	}
	u, ok := s.Sessions.LookupHash(r.Context(), claims.ID)
	if !ok || u.ID != claims.UserID {
		return Identity{}, false
	}
	return IdentityOf(u), true
}

func (s SessionResolver) bearer(r *http.Request) (*Claims, bool) {
	if s.Tokens == nil {
		return nil, false
	}
	raw, err := ReadBearer(r)
	if err != nil {
		return nil, false
	}
	claims, err := s.Tokens.Parse(raw)
	if err != nil {
		return nil, false
	}
	return claims, true
}

// ResolverFunc adapts a plain function to Resolver.
type ResolverFunc func(r *http.Request) (Identity, bool)

func (f ResolverFunc) Resolve(r *http.Request) (Identity, bool) { return f(r) }

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, config.ContextIdentityKey, id)
}

func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(config.ContextIdentityKey).(Identity)
	return id, ok
}
