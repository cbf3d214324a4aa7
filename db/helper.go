package db

import (
	"database/sql"
	"errors"
	"time"

	"github.com/Tk21111/journal_board/config"
)

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (config.User, error) {
	var (
		u         config.User
		createdAt int64
	)

	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return config.User{}, ErrNotFound
	}
	if err != nil {
		return config.User{}, err
	}

	u.CreatedAt = time.UnixMilli(createdAt)
	return u, nil
}

func scanPhoto(row scanner) (config.Photo, error) {
	var (
		p         config.Photo
		createdAt int64
	)

	err := row.Scan(
		&p.ID, &p.CreatedBy, &p.TakenDate, &p.Caption,
		&p.FileName, &p.MimeType, &p.Bytes, &createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return config.Photo{}, ErrNotFound
	}
	if err != nil {
		return config.Photo{}, err
	}

	p.CreatedAt = time.UnixMilli(createdAt)
	return p, nil
}

func millis(t time.Time) int64 {
	if t.IsZero() {
		return time.Now().UnixMilli()
	}
	return t.UnixMilli()
}
