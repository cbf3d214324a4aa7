package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

var ErrUnauthorized = errors.New("unauthorized")

// Credentials carry whatever the hub accepts: the session cookie from a
// browser login, or the bearer token returned next to it.
type Credentials struct {
	CookieName string
	SessionID  string
	Token      string
}

func (c Credentials) header() http.Header {
	h := http.Header{}
	if c.Token != "" {
		h.Set("Authorization", "Bearer "+c.Token)
	}
	if c.SessionID != "" {
		name := c.CookieName
		if name == "" {
			name = "sid"
		}
		h.Add("Cookie", (&http.Cookie{Name: name, Value: c.SessionID}).String())
	}
	return h
}

// Login posts email and password and keeps both credentials the server
// hands back.
func Login(ctx context.Context, hc *http.Client, baseURL, email, password string) (Credentials, error) {
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}

	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return Credentials{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(baseURL, "/")+"/api/login", bytes.NewReader(body))
	if err != nil {
		return Credentials{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := hc.Do(req)
	if err != nil {
		return Credentials{}, fmt.Errorf("login: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return Credentials{}, ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return Credentials{}, fmt.Errorf("login: status %d", resp.StatusCode)
	}

	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Credentials{}, fmt.Errorf("login response: %w", err)
	}

	creds := Credentials{Token: out.Token}
	for _, c := range resp.Cookies() {
		if c.HttpOnly && c.Value != "" {
			creds.CookieName, creds.SessionID = c.Name, c.Value
			break
		}
	}
	return creds, nil
}

// Dial opens the board websocket at baseURL (http or https).
func Dial(ctx context.Context, baseURL string, creds Credentials) (*websocket.Conn, error) {
	u, err := WSURL(baseURL)
	if err != nil {
		return nil, err
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u, creds.header())
	if resp != nil && resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", u, err)
	}
	return conn, nil
}

func WSURL(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https", "wss":
		u.Scheme = "wss"
	case "http", "ws", "":
		u.Scheme = "ws"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	return u.String(), nil
}
