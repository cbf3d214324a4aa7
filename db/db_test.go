package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Tk21111/journal_board/config"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	d, err := Open(filepath.Join(t.TempDir(), "journal.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func TestUsers(t *testing.T) {
	ctx := context.Background()

	t.Run("should keep the id when the password changes", func(t *testing.T) {
		req := require.New(t)
		d := openTestDB(t)

		first, err := d.UpsertUser(ctx, config.User{Email: "ann@example.com", PasswordHash: "h1"})
		req.NoError(err)
		req.NotEmpty(first.ID)

		second, err := d.UpsertUser(ctx, config.User{Email: "ann@example.com", PasswordHash: "h2"})
		req.NoError(err)
		req.Equal(first.ID, second.ID)

		got, err := d.UserByEmail(ctx, "ann@example.com")
		req.NoError(err)
		req.Equal("h2", got.PasswordHash)

		byID, err := d.UserByID(ctx, first.ID)
		req.NoError(err)
		req.Equal("ann@example.com", byID.Email)
	})

	t.Run("should list users oldest first", func(t *testing.T) {
		req := require.New(t)
		d := openTestDB(t)
		base := time.Now()
		_, err := d.UpsertUser(ctx, config.User{Email: "b@example.com", PasswordHash: "x", CreatedAt: base.Add(time.Minute)})
		req.NoError(err)
		_, err = d.UpsertUser(ctx, config.User{Email: "a@example.com", PasswordHash: "x", CreatedAt: base})
		req.NoError(err)

		users, err := d.ListUsers(ctx)

		req.NoError(err)
		req.Len(users, 2)
		req.Equal("a@example.com", users[0].Email)
	})

	t.Run("should report unknown users as not found", func(t *testing.T) {
		req := require.New(t)
		d := openTestDB(t)

		_, err := d.UserByEmail(ctx, "nobody@example.com")

		req.ErrorIs(err, ErrNotFound)
	})
}

func TestSessions(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	d := openTestDB(t)
	u, err := d.UpsertUser(ctx, config.User{Email: "ann@example.com", PasswordHash: "x"})
	req.NoError(err)
	now := time.Now()

	// Given one live and one expired session
	req.NoError(d.CreateSession(ctx, config.SessionRecord{TokenHash: "live", UserID: u.ID, ExpiresAt: now.Add(time.Hour)}))
	req.NoError(d.CreateSession(ctx, config.SessionRecord{TokenHash: "old", UserID: u.ID, ExpiresAt: now.Add(-time.Hour)}))

	// Then only the live one resolves
	got, err := d.SessionUser(ctx, "live", now)
	req.NoError(err)
	req.Equal(u.ID, got.ID)
	_, err = d.SessionUser(ctx, "old", now)
	req.ErrorIs(err, ErrNotFound)

	// When it is deleted
	req.NoError(d.DeleteSession(ctx, "live"))
	_, err = d.SessionUser(ctx, "live", now)
	req.ErrorIs(err, ErrNotFound)

	// And purge runs through the same writer
	d.PurgeSessions(now)
	req.NoError(d.CreateSession(ctx, config.SessionRecord{TokenHash: "old", UserID: u.ID, ExpiresAt: now.Add(time.Hour)}))
}

func TestPhotos(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	d := openTestDB(t)
	base := time.Now()

	photos := []config.Photo{
		{ID: "p1", CreatedBy: "u1", TakenDate: "2026-01-02", FileName: "a.png", MimeType: "image/png", Bytes: 10, CreatedAt: base},
		{ID: "p2", CreatedBy: "u1", TakenDate: "2026-03-04", FileName: "b.png", MimeType: "image/png", Bytes: 20, CreatedAt: base},
		{ID: "p3", CreatedBy: "u1", TakenDate: "2026-03-04", Caption: "later", FileName: "c.jpg", MimeType: "image/jpeg", Bytes: 30, CreatedAt: base.Add(time.Second)},
	}
	for _, p := range photos {
		req.NoError(d.InsertPhoto(ctx, p))
	}

	t.Run("should page newest first", func(t *testing.T) {
		req := require.New(t)

		page, err := d.ListPhotos(ctx, 0, 2)
		req.NoError(err)
		req.Equal([]string{"p3", "p2"}, []string{page[0].ID, page[1].ID})

		page, err = d.ListPhotos(ctx, 2, 2)
		req.NoError(err)
		req.Len(page, 1)
		req.Equal("p1", page[0].ID)
	})

	t.Run("should find a photo by file name", func(t *testing.T) {
		req := require.New(t)

		p, err := d.PhotoByFileName(ctx, "c.jpg")

		req.NoError(err)
		req.Equal("later", p.Caption)
		req.Equal(int64(30), p.Bytes)
		req.Equal(base.Add(time.Second).UnixMilli(), p.CreatedAt.UnixMilli())

		_, err = d.PhotoByFileName(ctx, "missing.png")
		req.ErrorIs(err, ErrNotFound)
	})

	t.Run("should refuse a duplicate file name", func(t *testing.T) {
		req := require.New(t)

		err := d.InsertPhoto(ctx, config.Photo{ID: "p4", CreatedBy: "u1", TakenDate: "2026-01-01", FileName: "a.png", MimeType: "image/png"})

		req.Error(err)
	})
}

func TestClose(t *testing.T) {
	req := require.New(t)
	d, err := Open(filepath.Join(t.TempDir(), "journal.db"), zap.NewNop())
	req.NoError(err)

	req.NoError(d.Close())
	req.NoError(d.Close())

	_, err = d.UpsertUser(context.Background(), config.User{Email: "x@example.com"})
	req.ErrorIs(err, ErrClosed)
}
