package client

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

const DefaultCaption = "Live drawing"

// UploadPNG stores a board snapshot in the journal album, dated today.
func UploadPNG(ctx context.Context, hc *http.Client, baseURL string, creds Credentials, png []byte, caption string) error {
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	if strings.TrimSpace(caption) == "" {
		caption = DefaultCaption
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	_ = mw.WriteField("taken_date", time.Now().Format(time.DateOnly))
	_ = mw.WriteField("caption", strings.TrimSpace(caption))

	part := textproto.MIMEHeader{}
	part.Set("Content-Disposition", fmt.Sprintf(`form-data; name="photos"; filename="live-%d.png"`, time.Now().UnixMilli()))
	part.Set("Content-Type", "image/png")
	w, err := mw.CreatePart(part)
	if err != nil {
		return err
	}
	if _, err := w.Write(png); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(baseURL, "/")+"/api/photos", &body)
	if err != nil {
		return err
	}
	req.Header = creds.header()
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("upload: status %d", resp.StatusCode)
	}
	return nil
}
