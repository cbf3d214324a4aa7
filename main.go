package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Tk21111/journal_board/api"
	"github.com/Tk21111/journal_board/auth"
	"github.com/Tk21111/journal_board/config"
	"github.com/Tk21111/journal_board/db"
	"github.com/Tk21111/journal_board/discovery"
	"github.com/Tk21111/journal_board/internal/logx"
	"github.com/Tk21111/journal_board/media"
	"github.com/Tk21111/journal_board/middleware"
	"github.com/Tk21111/journal_board/session"
	"github.com/Tk21111/journal_board/ws"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() (err error) {
	cfg, err := config.LoadServer()
	if err != nil {
		return err
	}
	if err := logx.Init(cfg.Env); err != nil {
		return err
	}
	log := logx.L
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := db.Open(cfg.DBPath, log)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, store.Close()) }()

	blobs, err := openMedia(ctx, cfg)
	if err != nil {
		return err
	}

	sessions := session.NewManager(store, cfg.SessionTTL())
	tokens := auth.NewTokens(cfg.JWTSecret, cfg.SessionTTL())
	resolver := auth.SessionResolver{Sessions: sessions, CookieName: cfg.CookieName, Tokens: tokens}
	authHandlers := auth.NewHandlers(store, sessions, tokens, cfg.CookieName, cfg.CookieSecure)
	photos := &api.Photos{Store: store, Blobs: blobs, MaxUpload: cfg.MaxUploadBytes}

	hub := ws.NewHub(log, ws.NewRegistry())
	go hub.Run(ctx)

	requireSession := func(h http.Handler) http.Handler {
		return middleware.RequireSession(resolver, h)
	}

	mux := http.NewServeMux()
	mux.Handle("GET /ws", ws.HandleWS(hub, resolver, ws.Options{
		MaxMessageBytes: cfg.MaxMessageBytes,
		AllowedOrigin:   cfg.AllowedOrigin,
	}))
	mux.Handle("POST /api/login", authHandlers.HandleLogin())
	mux.Handle("POST /api/logout", authHandlers.HandleLogout())
	mux.Handle("GET /api/me", requireSession(authHandlers.HandleMe()))
	mux.Handle("GET /api/health", api.Health())
	mux.Handle("GET /api/photos", requireSession(photos.List()))
	mux.Handle("POST /api/photos", requireSession(photos.Upload()))
	mux.Handle("GET /media/{name}", requireSession(photos.Media()))
	if cfg.PublicDir != "" {
		mux.Handle("GET /", http.FileServer(http.Dir(cfg.PublicDir)))
	}

	handler := otelhttp.NewHandler(
		middleware.Logging(middleware.CORSMiddleware(cfg.AllowedOrigin, mux)),
		"journal-board",
	)

	srv := &http.Server{Addr: cfg.Addr(), Handler: handler}

	if cfg.MDNSEnabled {
		adv, aerr := discovery.Advertise(cfg.Port)
		if aerr != nil {
			log.Warn("mdns advertise failed", zap.Error(aerr))
		} else {
			defer func() { err = multierr.Append(err, adv.Shutdown()) }()
		}
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", cfg.Addr()), zap.String("env", cfg.Env))
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	// Hijacked websocket connections are not tracked by Shutdown; the hub
	// closes them when ctx ends.
	err = srv.Shutdown(shutdownCtx)
	select {
	case <-hub.Done():
	case <-shutdownCtx.Done():
	}
	return err
}

func openMedia(ctx context.Context, cfg config.Server) (media.Store, error) {
	if cfg.S3Bucket != "" {
		return media.NewS3Store(ctx, cfg.S3Bucket, cfg.S3Endpoint, cfg.S3Region)
	}
	return media.NewDiskStore(cfg.UploadsDir)
}
