// Command boardbot joins the live board as a regular participant and
// scribbles on it, to exercise the hub under load or demo the board.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"os/signal"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"

	"github.com/Tk21111/journal_board/board"
	"github.com/Tk21111/journal_board/client"
	"github.com/Tk21111/journal_board/config"
	"github.com/Tk21111/journal_board/discovery"
	"github.com/Tk21111/journal_board/internal/logx"
	"github.com/Tk21111/journal_board/middleware"
)

type Config struct {
	URL      string        `envconfig:"URL"`
	Email    string        `envconfig:"EMAIL"`
	Password string        `envconfig:"PASSWORD"`
	Rate     int           `envconfig:"RATE" default:"120"`
	Duration time.Duration `envconfig:"DURATION" default:"10s"`
	Width    float64       `envconfig:"WIDTH" default:"1280"`
	Height   float64       `envconfig:"HEIGHT" default:"720"`
	Save     bool          `envconfig:"SAVE" default:"false"`
	PDF      string        `envconfig:"PDF"`
	Env      string        `envconfig:"ENV" default:"dev"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "boardbot:", err)
		os.Exit(1)
	}
}

func run() error {
	var cfg Config
	if err := envconfig.Process("BOARD", &cfg); err != nil {
		return err
	}

	flag.StringVar(&cfg.URL, "url", cfg.URL, "server base url; empty browses mDNS")
	flag.StringVar(&cfg.Email, "email", cfg.Email, "account email")
	flag.StringVar(&cfg.Password, "password", cfg.Password, "account password")
	flag.IntVar(&cfg.Rate, "rate", cfg.Rate, "pointer samples per second")
	flag.DurationVar(&cfg.Duration, "duration", cfg.Duration, "how long to draw")
	flag.BoolVar(&cfg.Save, "save", cfg.Save, "upload the board to the album when done")
	flag.StringVar(&cfg.PDF, "pdf", cfg.PDF, "write a PDF export to this path when done")
	flag.Parse()

	if err := logx.Init(cfg.Env); err != nil {
		return err
	}
	log := logx.L
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if cfg.URL == "" {
		addr, err := discovery.Browse(3 * time.Second)
		if err != nil {
			return err
		}
		cfg.URL = "http://" + addr
	}
	if cfg.Rate <= 0 {
		return errors.New("rate must be positive")
	}

	creds, err := client.Login(ctx, nil, cfg.URL, cfg.Email, cfg.Password)
	if err != nil {
		return err
	}
	conn, err := client.Dial(ctx, cfg.URL, creds)
	if err != nil {
		return err
	}
	log.Info("connected", zap.String("url", cfg.URL))

	sess := client.NewSession(log, cfg.Width, cfg.Height, 1)
	ticker := time.NewTicker(client.FrameInterval)
	defer ticker.Stop()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	runErr := make(chan error, 1)
	go func() { runErr <- sess.Run(runCtx, conn, ticker.C) }()

	self, err := waitForHello(ctx, sess)
	if err != nil {
		return err
	}
	if err := sess.SetStyle(board.Style{
		Mode:  config.ModePen,
		Color: middleware.ColorFromName(self),
		Size:  board.DefaultSize,
	}); err != nil {
		return err
	}

	samples := scribble(ctx, sess, cfg)
	log.Info("drawing finished", zap.Int("samples", samples))

	if cfg.Save {
		png, err := sess.Snapshot()
		if err != nil {
			return err
		}
		if err := client.UploadPNG(ctx, nil, cfg.URL, creds, png, ""); err != nil {
			return err
		}
		log.Info("board saved to album")
	}
	if cfg.PDF != "" {
		pdf, err := sess.ExportPDF()
		if err != nil {
			return err
		}
		if err := os.WriteFile(cfg.PDF, pdf, 0o644); err != nil {
			return err
		}
	}

	cancel()
	if err := <-runErr; err != nil && !errors.Is(err, context.Canceled) {
		log.Debug("session ended", zap.Error(err))
	}
	return nil
}

func waitForHello(ctx context.Context, sess *client.Session) (string, error) {
	deadline := time.After(5 * time.Second)
	for {
		v, err := sess.View()
		if err != nil {
			return "", err
		}
		if v.Self != "" {
			return v.Self, nil
		}
		select {
		case <-time.After(20 * time.Millisecond):
		case <-deadline:
			return "", errors.New("no hello from server")
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}

// scribble walks a wobbling pen across the board, lifting it every so
// often. It returns the number of samples fed in.
func scribble(ctx context.Context, sess *client.Session, cfg Config) int {
	ticker := time.NewTicker(time.Second / time.Duration(cfg.Rate))
	defer ticker.Stop()
	end := time.After(cfg.Duration)

	var (
		samples int
		down    bool
		left    int
		p       config.Point
		heading float64
	)
	for {
		select {
		case <-ctx.Done():
			return samples
		case <-end:
			if down {
				_ = sess.PointerUp()
			}
			return samples
		case <-ticker.C:
		}

		if !down {
			p = config.Point{rand.Float64() * cfg.Width, rand.Float64() * cfg.Height}
			heading = rand.Float64() * 2 * math.Pi
			left = 20 + rand.IntN(80)
			down = true
			if sess.PointerDown(p) != nil {
				return samples
			}
			samples++
			continue
		}

		heading += (rand.Float64() - 0.5) * 0.6
		step := 4 + rand.Float64()*6
		p = config.Point{
			clampF(p.X()+math.Cos(heading)*step, 0, cfg.Width),
			clampF(p.Y()+math.Sin(heading)*step, 0, cfg.Height),
		}
		if sess.PointerMove(p) != nil {
			return samples
		}
		samples++

		if left--; left <= 0 {
			down = false
			if sess.PointerUp() != nil {
				return samples
			}
		}
	}
}

func clampF(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}
