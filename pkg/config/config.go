package config

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	App struct {
		Env       string `env:"APP_ENV" env-default:"development"`
		Port      int    `env:"APP_PORT" env-default:"8080"`
		SentryUrl string `env:"SENTRY_URL"`
	}
	Postgres struct {
		Port          int    `env:"POSTGRES_PORT" env-default:"5432"`
		Host          string `env:"POSTGRES_HOST" env-default:"localhost"`
		User          string `env:"POSTGRES_USER"`
		Pass          string `env:"POSTGRES_PASS"`
		Name          string `env:"POSTGRES_NAME"`
		SslMode       string `env:"POSTGRES_SSL_MODE" env-default:"disable"`
		// MigrationsDir is where migrate create writes new Go migrations.
		MigrationsDir string `env:"POSTGRES_MIGRATIONS_DIR" env-default:"internal/migrations"`
	}
	Telegram struct {
		User    int64  `env:"TELEGRAM_USER"`
		Token   string `env:"TELEGRAM_TOKEN"`
		Channel string `env:"TELEGRAM_CHANNEL"`
	}
	Studio struct {
		CaptureFPS         int           `env:"STUDIO_CAPTURE_FPS" env-default:"24"`
		ExportFPS          int           `env:"STUDIO_EXPORT_FPS" env-default:"30"`
		MaxDuration        time.Duration `env:"STUDIO_MAX_DURATION" env-default:"15s"`
		ResyncTolerance    time.Duration `env:"STUDIO_RESYNC_TOLERANCE" env-default:"300ms"`
		NarrationTolerance time.Duration `env:"STUDIO_NARRATION_TOLERANCE" env-default:"100ms"`
		FallbackDuration   time.Duration `env:"STUDIO_FALLBACK_DURATION" env-default:"3s"`
		SlideDuration      time.Duration `env:"STUDIO_SLIDE_DURATION" env-default:"3s"`
		Codecs             []string      `env:"STUDIO_CODECS" env-separator:"," env-default:"mp4/h264,webm/vp9,jpegseq"`
		FFmpegPath         string        `env:"STUDIO_FFMPEG_PATH" env-default:"ffmpeg"`
		FFprobePath        string        `env:"STUDIO_FFPROBE_PATH" env-default:"ffprobe"`
		Filter             string        `env:"STUDIO_FILTER" env-default:"normal"`
		OutputWidth        int           `env:"STUDIO_OUTPUT_WIDTH" env-default:"720"`
		OutputHeight       int           `env:"STUDIO_OUTPUT_HEIGHT" env-default:"1280"`
		RenderWorkers      int           `env:"STUDIO_RENDER_WORKERS" env-default:"2"`
	}
	Generative struct {
		BaseURL           string `env:"GENERATIVE_BASE_URL"`
		APIKey            string `env:"GENERATIVE_API_KEY"`
		RequestsPerMinute int    `env:"GENERATIVE_RPM" env-default:"30"`
		Burst             int    `env:"GENERATIVE_BURST" env-default:"3"`
		Workers           int    `env:"GENERATIVE_WORKERS" env-default:"4"`
	}
	Storage struct {
		Root      string        `env:"STORAGE_ROOT" env-default:"./data"`
		Retention time.Duration `env:"STORAGE_RETENTION" env-default:"120h"`
		// PublishedRetention keeps published artifacts and their records.
		PublishedRetention time.Duration `env:"STORAGE_PUBLISHED_RETENTION" env-default:"720h"`
		SweepInterval      time.Duration `env:"STORAGE_SWEEP_INTERVAL" env-default:"1h"`
	}
}

var (
	once sync.Once
	cfg  *Config
)

func New() (*Config, error) {
	once.Do(func() {
		cfg = &Config{}
		if err := cleanenv.ReadEnv(cfg); err != nil {
			help, _ := cleanenv.GetDescription(cfg, nil)
			log.Fatalf("Failed to read configuration: %v\n%v", err, help)
		}
	})
	return cfg, nil
}

// GetDSN returns the postgres connection string used by both pgx and goose.
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Postgres.User,
		c.Postgres.Pass,
		c.Postgres.Host,
		c.Postgres.Port,
		c.Postgres.Name,
		c.Postgres.SslMode,
	)
}
