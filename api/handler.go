package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Tk21111/journal_board/auth"
	"github.com/Tk21111/journal_board/config"
	"github.com/Tk21111/journal_board/db"
	"github.com/Tk21111/journal_board/internal/logx"
	"github.com/Tk21111/journal_board/media"
)

const (
	maxFilesPerUpload = 12
	multipartMemory   = 8 << 20
	presignTTL        = time.Hour
)

type PhotoStore interface {
	InsertPhoto(ctx context.Context, p config.Photo) error
	PhotoByFileName(ctx context.Context, name string) (config.Photo, error)
	ListPhotos(ctx context.Context, offset, limit int) ([]config.Photo, error)
}

// Photos serves the journal's photo album. Live board snapshots arrive
// here as image/png uploads.
type Photos struct {
	Store     PhotoStore
	Blobs     media.Store
	MaxUpload int64
}

func (p *Photos) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		offset := clampInt(r.URL.Query().Get("offset"), 0, 0, 1<<30)
		limit := clampInt(r.URL.Query().Get("limit"), 18, 1, 50)

		photos, err := p.Store.ListPhotos(r.Context(), offset, limit)
		if err != nil {
			logx.From(r.Context()).Error("list photos", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "server_error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "photos": photos})
	}
}

func (p *Photos) Upload() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := auth.RequireIdentity(r.Context())
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		if p.MaxUpload > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, p.MaxUpload*maxFilesPerUpload)
		}
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			writeError(w, http.StatusBadRequest, "invalid form")
			return
		}
		defer r.MultipartForm.RemoveAll()

		takenDate := strings.TrimSpace(r.FormValue("taken_date"))
		if takenDate == "" {
			writeError(w, http.StatusBadRequest, "missing_date")
			return
		}
		caption := r.FormValue("caption")

		files := r.MultipartForm.File["photos"]
		if len(files) == 0 {
			writeError(w, http.StatusBadRequest, "no_files")
			return
		}
		if len(files) > maxFilesPerUpload {
			writeError(w, http.StatusBadRequest, "too_many_files")
			return
		}

		// Every file is checked before the first one is stored.
		sniffed := make([]*mimetype.MIME, len(files))
		for i, fh := range files {
			mt, err := p.checkOne(fh)
			switch {
			case errors.Is(err, errTooLarge):
				writeError(w, http.StatusRequestEntityTooLarge, "file too large")
				return
			case errors.Is(err, errNotImage):
				writeError(w, http.StatusUnsupportedMediaType, "not an image")
				return
			case err != nil:
				logx.From(r.Context()).Error("read upload", zap.String("file", fh.Filename), zap.Error(err))
				writeError(w, http.StatusInternalServerError, "server_error")
				return
			}
			sniffed[i] = mt
		}

		inserted := make([]config.Photo, 0, len(files))
		for i, fh := range files {
			photo, err := p.storeOne(r.Context(), fh, sniffed[i])
			if err == nil {
				photo.CreatedBy = id.ID
				photo.TakenDate = takenDate
				photo.Caption = caption
				photo.CreatedAt = time.Now()
				err = p.Store.InsertPhoto(r.Context(), photo)
			}
			if err != nil {
				logx.From(r.Context()).Error("store upload",
					zap.String("file", fh.Filename),
					zap.Int("stored", len(inserted)),
					zap.Error(err),
				)
				writeJSON(w, http.StatusInternalServerError, map[string]any{
					"error":  "server_error",
					"photos": inserted,
				})
				return
			}
			inserted = append(inserted, photo)
		}

		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "photos": inserted})
	}
}

var (
	errTooLarge = errors.New("upload too large")
	errNotImage = errors.New("upload is not an image")
)

// checkOne enforces the size cap and sniffs the content type.
func (p *Photos) checkOne(fh *multipart.FileHeader) (*mimetype.MIME, error) {
	if p.MaxUpload > 0 && fh.Size > p.MaxUpload {
		return nil, errTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	mt, err := mimetype.DetectReader(f)
	if err != nil {
		return nil, fmt.Errorf("sniff: %w", err)
	}
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, errNotImage
	}
	return mt, nil
}

func (p *Photos) storeOne(ctx context.Context, fh *multipart.FileHeader, mt *mimetype.MIME) (config.Photo, error) {
	f, err := fh.Open()
	if err != nil {
		return config.Photo{}, err
	}
	defer f.Close()

	name := uuid.NewString() + fileExt(fh.Filename, mt.Extension())
	contentType := mt.String()
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}

	if err := p.Blobs.Put(ctx, name, contentType, f, fh.Size); err != nil {
		return config.Photo{}, err
	}

	logx.From(ctx).Info("photo stored",
		zap.String("file", name),
		zap.String("mime", contentType),
		zap.String("size", humanize.Bytes(uint64(fh.Size))),
	)

	return config.Photo{
		ID:       uuid.NewString(),
		FileName: name,
		MimeType: contentType,
		Bytes:    fh.Size,
	}, nil
}

// Media streams a stored photo. File names are unique so responses are
// cached privately for a month.
func (p *Photos) Media() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")
		photo, err := p.Store.PhotoByFileName(r.Context(), name)
		if errors.Is(err, db.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if err != nil {
			logx.From(r.Context()).Error("photo lookup", zap.Error(err))
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		if signer, ok := p.Blobs.(media.Presigner); ok {
			url, err := signer.PresignGet(r.Context(), photo.FileName, presignTTL)
			if err == nil {
				http.Redirect(w, r, url, http.StatusFound)
				return
			}
			logx.From(r.Context()).Warn("presign failed, streaming", zap.Error(err))
		}

		rc, err := p.Blobs.Open(r.Context(), photo.FileName)
		if errors.Is(err, media.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if err != nil {
			logx.From(r.Context()).Error("open media", zap.Error(err))
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		defer rc.Close()

		w.Header().Set("Content-Type", photo.MimeType)
		w.Header().Set("Cache-Control", "private, max-age=2592000, immutable")
		if photo.Bytes > 0 {
			w.Header().Set("Content-Length", strconv.FormatInt(photo.Bytes, 10))
		}
		_, _ = io.Copy(w, rc)
	}
}

func fileExt(original, sniffed string) string {
	ext := strings.ToLower(filepath.Ext(original))
	if ext == "" || len(ext) > 10 {
		return sniffed
	}
	return ext
}
