package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Server struct {
	Env  string `env:"ENV,default=dev"`
	Host string `env:"HOST,default=0.0.0.0"`
	Port int    `env:"PORT,default=3000" validate:"min=1,max=65535"`

	DBPath       string `env:"DB_PATH,default=journal.db" validate:"required"`
	JWTSecret    string `env:"JWT_SECRET,required=true" validate:"required,min=32"`
	CookieName   string `env:"COOKIE_NAME,default=sid" validate:"required"`
	CookieSecure bool   `env:"COOKIE_SECURE,default=false"`
	SessionDays  int    `env:"SESSION_DAYS,default=30" validate:"min=1"`

	UploadsDir     string `env:"UPLOADS_DIR,default=uploads"`
	PublicDir      string `env:"PUBLIC_DIR"`
	MaxUploadBytes int64  `env:"MAX_UPLOAD_BYTES,default=15728640" validate:"min=1"`

	MaxMessageBytes int64  `env:"MAX_MESSAGE_BYTES,default=1048576" validate:"min=1"`
	AllowedOrigin   string `env:"ALLOWED_ORIGIN"`
	MDNSEnabled     bool   `env:"MDNS_ENABLED,default=false"`

	S3Bucket   string `env:"S3_BUCKET"`
	S3Endpoint string `env:"S3_ENDPOINT"`
	S3Region   string `env:"S3_REGION,default=auto"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
}

func (c Server) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c Server) SessionTTL() time.Duration {
	return time.Duration(c.SessionDays) * 24 * time.Hour
}

// LoadServer reads an optional .env file then the process environment.
func LoadServer() (Server, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Server{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Server
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return Server{}, fmt.Errorf("config error: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return Server{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
