package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Tk21111/journal_board/config"
	"github.com/Tk21111/journal_board/internal/logx"
	"github.com/Tk21111/journal_board/session"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type UserStore interface {
	UserByEmail(ctx context.Context, email string) (config.User, error)
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	OK    bool   `json:"ok"`
	Token string `json:"token"`
}

type Handlers struct {
	Users        UserStore
	Sessions     *session.Manager
	Tokens       *Tokens
	CookieName   string
	CookieSecure bool

	validate *validator.Validate
}

func NewHandlers(users UserStore, sessions *session.Manager, tokens *Tokens, cookieName string, secure bool) *Handlers {
	return &Handlers{
		Users:        users,
		Sessions:     sessions,
		Tokens:       tokens,
		CookieName:   cookieName,
		CookieSecure: secure,
		validate:     validator.New(),
	}
}

// Login checks the password, stores a session and answers with the
// session cookie plus a bearer token.
func (h *Handlers) Login(ctx context.Context, req LoginRequest) (string, string, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := h.validate.Struct(req); err != nil {
		return "", "", err
	}

	u, err := h.Users.UserByEmail(ctx, req.Email)
	if err != nil {
		return "", "", ErrInvalidCredentials
	}
	ok, err := ComparePassword(req.Password, u.PasswordHash)
	if err != nil || !ok {
		return "", "", ErrInvalidCredentials
	}

	sid, err := h.Sessions.Create(ctx, u.ID)
	if err != nil {
		return "", "", err
	}
	bearer, err := h.Tokens.Create(u, session.HashToken(sid))
	if err != nil {
		return "", "", err
	}
	return sid, bearer, nil
}

func (h *Handlers) HandleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		sid, bearer, err := h.Login(r.Context(), req)
		var verrs validator.ValidationErrors
		switch {
		case errors.As(err, &verrs):
			writeError(w, http.StatusBadRequest, "missing")
			return
		case errors.Is(err, ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		case err != nil:
			logx.From(r.Context()).Error("login failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "server_error")
			return
		}

		session.SetCookie(w, h.CookieName, sid, h.CookieSecure, h.Sessions.TTL())
		writeJSON(w, http.StatusOK, LoginResponse{OK: true, Token: bearer})
	}
}

func (h *Handlers) HandleLogout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := session.TokenFromRequest(r, h.CookieName)
		if err := h.Sessions.Delete(r.Context(), token); err != nil {
			logx.From(r.Context()).Warn("logout", zap.Error(err))
		}
		if raw, err := ReadBearer(r); err == nil && h.Tokens != nil {
			if claims, err := h.Tokens.Parse(raw); err == nil {
				if err := h.Sessions.DeleteHash(r.Context(), claims.ID); err != nil {
					logx.From(r.Context()).Warn("logout bearer", zap.Error(err))
				}
			}
		}
		session.ClearCookie(w, h.CookieName, h.CookieSecure)
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

func (h *Handlers) HandleMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := RequireIdentity(r.Context())
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "user": id})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
