package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Tk21111/journal_board/auth"
	"github.com/Tk21111/journal_board/internal/logx"
)

func TestRequireSession(t *testing.T) {
	ann := auth.Identity{ID: "u1", Email: "ann@example.com", DisplayName: "ann"}
	resolver := auth.ResolverFunc(func(r *http.Request) (auth.Identity, bool) {
		return ann, r.Header.Get("X-Test") == "ok"
	})
	var seen auth.Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = auth.IdentityFrom(r.Context())
	})
	h := RequireSession(resolver, next)

	t.Run("should reject anonymous callers", func(t *testing.T) {
		req := require.New(t)
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/me", nil))

		req.Equal(http.StatusUnauthorized, rec.Code)
	})

	t.Run("should pass the identity on", func(t *testing.T) {
		req := require.New(t)
		rec := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		r.Header.Set("X-Test", "ok")

		h.ServeHTTP(rec, r)

		req.Equal(http.StatusOK, rec.Code)
		req.Equal(ann, seen)
	})
}

func TestCORSMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	t.Run("should answer preflight", func(t *testing.T) {
		req := require.New(t)
		rec := httptest.NewRecorder()

		CORSMiddleware("http://board.local", next).
			ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/photos", nil))

		req.Equal(http.StatusNoContent, rec.Code)
		req.Equal("http://board.local", rec.Header().Get("Access-Control-Allow-Origin"))
		req.Equal("true", rec.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("should step aside without an origin", func(t *testing.T) {
		req := require.New(t)
		rec := httptest.NewRecorder()

		CORSMiddleware("", next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		req.Equal(http.StatusTeapot, rec.Code)
		req.Empty(rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestLogging(t *testing.T) {
	req := require.New(t)
	core, logs := observer.New(zap.InfoLevel)
	prev := logx.L
	logx.L = zap.New(core)
	t.Cleanup(func() { logx.L = prev })

	h := Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/photos", nil))

	entries := logs.FilterMessage("http_request").All()
	req.Len(entries, 1)
	fields := entries[0].ContextMap()
	req.Equal(int64(http.StatusCreated), fields["status"])
	req.Equal("/api/photos", fields["path"])
	req.Equal("POST", fields["method"])
}
