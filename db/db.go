package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/Tk21111/journal_board/config"
)

// Operation Types
const (
	OpUserUpsert = iota
	OpSessionCreate
	OpSessionDelete
	OpSessionPurge
	OpPhotoInsert
)

var (
	ErrNotFound = errors.New("not found")
	ErrClosed   = errors.New("writer closed")
)

type DbJob struct {
	Type    int
	User    config.User
	Session config.SessionRecord
	Photo   config.Photo
	Now     time.Time

	UserOut *config.User
	Result  chan error
}

// DB serialises every write through one goroutine; reads go straight to
// the pool.
type DB struct {
	db   *sql.DB
	log  *zap.Logger
	opCh chan DbJob
	done chan struct{}

	mu     sync.RWMutex
	closed bool
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS sessions (
		token_hash TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		expires_at INTEGER NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_expires
		ON sessions(expires_at);`,
	`CREATE TABLE IF NOT EXISTS photos (
		id TEXT PRIMARY KEY,
		created_by TEXT NOT NULL,
		taken_date TEXT NOT NULL,
		caption TEXT NOT NULL DEFAULT '',
		file_name TEXT NOT NULL UNIQUE,
		mime_type TEXT NOT NULL,
		bytes INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_photos_taken
		ON photos(taken_date, created_at);`,
}

func Open(dbPath string, log *zap.Logger) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dbPath, err)
	}

	if _, err := conn.Exec(`
        PRAGMA journal_mode = WAL;
        PRAGMA synchronous = NORMAL;
        PRAGMA busy_timeout = 5000; -- Wait 5s if db is locked
    `); err != nil {
		conn.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}

	for _, stmt := range schema {
		if _, err := conn.Exec(stmt); err != nil {
			conn.Close()
			return nil, fmt.Errorf("schema: %w", err)
		}
	}

	d := &DB{
		db:   conn,
		log:  log.Named("db"),
		opCh: make(chan DbJob, 1024),
		done: make(chan struct{}),
	}

	loop, err := d.prepare()
	if err != nil {
		conn.Close()
		return nil, err
	}
	go loop()

	return d, nil
}

// prepare compiles the write statements and returns the writer loop that
// owns them.
func (d *DB) prepare() (func(), error) {
	stmtUser, err := d.db.Prepare(`
		INSERT INTO users (id, email, password_hash, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(email)
		DO UPDATE SET
			password_hash = excluded.password_hash
		RETURNING id, created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("prepare user: %w", err)
	}

	stmtSession, err := d.db.Prepare(`
		INSERT INTO sessions (token_hash, user_id, expires_at)
		VALUES (?, ?, ?)
	`)
	if err != nil {
		return nil, fmt.Errorf("prepare session: %w", err)
	}

	stmtSessionDelete, err := d.db.Prepare(`
		DELETE FROM sessions WHERE token_hash = ?
	`)
	if err != nil {
		return nil, fmt.Errorf("prepare session delete: %w", err)
	}

	stmtSessionPurge, err := d.db.Prepare(`
		DELETE FROM sessions WHERE expires_at < ?
	`)
	if err != nil {
		return nil, fmt.Errorf("prepare session purge: %w", err)
	}

	stmtPhoto, err := d.db.Prepare(`
		INSERT INTO photos
		(id, created_by, taken_date, caption, file_name, mime_type, bytes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, fmt.Errorf("prepare photo: %w", err)
	}

	return func() {
		defer close(d.done)
		defer stmtUser.Close()
		defer stmtSession.Close()
		defer stmtSessionDelete.Close()
		defer stmtSessionPurge.Close()
		defer stmtPhoto.Close()

		for job := range d.opCh {
			var err error

			switch job.Type {
			case OpUserUpsert:
				u := job.User
				var createdAt int64
				err = stmtUser.QueryRow(
					u.ID, u.Email, u.PasswordHash, millis(u.CreatedAt),
				).Scan(&u.ID, &createdAt)
				if err == nil && job.UserOut != nil {
					u.CreatedAt = time.UnixMilli(createdAt)
					*job.UserOut = u
				}

			case OpSessionCreate:
				s := job.Session
				_, err = stmtSession.Exec(s.TokenHash, s.UserID, millis(s.ExpiresAt))

			case OpSessionDelete:
				_, err = stmtSessionDelete.Exec(job.Session.TokenHash)

			case OpSessionPurge:
				_, err = stmtSessionPurge.Exec(millis(job.Now))

			case OpPhotoInsert:
				p := job.Photo
				_, err = stmtPhoto.Exec(
					p.ID, p.CreatedBy, p.TakenDate, p.Caption,
					p.FileName, p.MimeType, p.Bytes, millis(p.CreatedAt),
				)

			default:
				err = fmt.Errorf("unknown job type %d", job.Type)
			}

			if err != nil {
				d.log.Error("write failed", zap.Int("op", job.Type), zap.Error(err))
			}
			if job.Result != nil {
				job.Result <- err
			}
		}
	}, nil
}

func (d *DB) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.opCh)
	d.mu.Unlock()

	<-d.done
	return d.db.Close()
}

// --- Write Methods ---

func (d *DB) submit(job DbJob) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrClosed
	}
	d.opCh <- job
	return nil
}

// exec submits a job and waits for the writer to report back.
func (d *DB) exec(ctx context.Context, job DbJob) error {
	job.Result = make(chan error, 1)
	if err := d.submit(job); err != nil {
		return err
	}

	select {
	case err := <-job.Result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// UpsertUser creates the user or replaces its password hash. The stored
// row is returned, so an existing user keeps its id.
func (d *DB) UpsertUser(ctx context.Context, u config.User) (config.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	var out config.User
	err := d.exec(ctx, DbJob{Type: OpUserUpsert, User: u, UserOut: &out})
	if err != nil {
		return config.User{}, fmt.Errorf("upsert user: %w", err)
	}
	return out, nil
}

func (d *DB) CreateSession(ctx context.Context, s config.SessionRecord) error {
	if err := d.exec(ctx, DbJob{Type: OpSessionCreate, Session: s}); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (d *DB) DeleteSession(ctx context.Context, tokenHash string) error {
	job := DbJob{Type: OpSessionDelete, Session: config.SessionRecord{TokenHash: tokenHash}}
	if err := d.exec(ctx, job); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// PurgeSessions drops expired sessions in the background.
func (d *DB) PurgeSessions(now time.Time) {
	if err := d.submit(DbJob{Type: OpSessionPurge, Now: now}); err != nil {
		d.log.Debug("purge skipped", zap.Error(err))
	}
}

func (d *DB) InsertPhoto(ctx context.Context, p config.Photo) error {
	if err := d.exec(ctx, DbJob{Type: OpPhotoInsert, Photo: p}); err != nil {
		return fmt.Errorf("insert photo: %w", err)
	}
	return nil
}

// --- Read Methods ---

func (d *DB) UserByEmail(ctx context.Context, email string) (config.User, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, created_at
		FROM users
		WHERE email = ?
	`, email)
	return scanUser(row)
}

func (d *DB) UserByID(ctx context.Context, id string) (config.User, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, created_at
		FROM users
		WHERE id = ?
	`, id)
	return scanUser(row)
}

// SessionUser resolves a session that has not expired at now.
func (d *DB) SessionUser(ctx context.Context, tokenHash string, now time.Time) (config.User, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT u.id, u.email, u.password_hash, u.created_at
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.token_hash = ? AND s.expires_at > ?
		LIMIT 1
	`, tokenHash, millis(now))
	return scanUser(row)
}

func (d *DB) ListUsers(ctx context.Context) ([]config.User, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, email, password_hash, created_at
		FROM users
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []config.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (d *DB) PhotoByFileName(ctx context.Context, name string) (config.Photo, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT id, created_by, taken_date, caption, file_name, mime_type, bytes, created_at
		FROM photos
		WHERE file_name = ?
		LIMIT 1
	`, name)
	return scanPhoto(row)
}

// ListPhotos pages through photos, newest taken date first.
func (d *DB) ListPhotos(ctx context.Context, offset, limit int) ([]config.Photo, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, created_by, taken_date, caption, file_name, mime_type, bytes, created_at
		FROM photos
		ORDER BY taken_date DESC, created_at DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	photos := make([]config.Photo, 0, limit)
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, err
		}
		photos = append(photos, p)
	}
	return photos, rows.Err()
}
