package app

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jackson951/flexileave-app-sub001/internal/attachment"
	"github.com/jackson951/flexileave-app-sub001/internal/auth"
	"github.com/jackson951/flexileave-app-sub001/internal/mailer"
	"github.com/jackson951/flexileave-app-sub001/internal/messaging/kafka/producer"
	"github.com/jackson951/flexileave-app-sub001/internal/shared/connection"
)

type DBConfig struct {
	Host     string
	User     string
	Password string
	Name     string
	Port     string
	SSLMode  string
}

type AdminSeed struct {
	Name     string
	Email    string
	Password string
}

// Config is read from the environment; cmd mains load .env first.
type Config struct {
	Env         string
	Port        string
	DB          DBConfig
	RedisAddr   string
	KafkaBroker string
	CORSOrigins []string
	JWTSecret   string
	TokenTTL    time.Duration
	PolicyPath  string
	Admin       AdminSeed

	Storage     attachment.StorageConfig
	Upload      attachment.Config
	SweepEvery  time.Duration
	OrphanAfter time.Duration

	Outbox producer.Config
	SMTP   mailer.Config
}

func LoadConfig() (Config, error) {
	smtpHost, smtpPort := connection.HostPort(os.Getenv("SMTP_ADDR"), 587)

	upload := attachment.DefaultConfig()
	upload.MaxBytes = envInt64("UPLOAD_MAX_BYTES", attachment.DefaultMaxBytes)

	cfg := Config{
		Env:  envOr("APP_ENV", "development"),
		Port: envOr("PORT", "3000"),
		DB: DBConfig{
			Host:     os.Getenv("DB_HOST"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     os.Getenv("DB_NAME"),
			Port:     envOr("DB_PORT", "5432"),
			SSLMode:  envOr("DB_SSLMODE", "disable"),
		},
		RedisAddr:   envOr("REDIS_ADDR", "localhost:6379"),
		KafkaBroker: os.Getenv("KAFKA_BROKER"),
		CORSOrigins: splitList(envOr("CORS_ORIGINS", "http://localhost:5173")),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		TokenTTL:    envDuration("JWT_TTL", auth.DefaultTokenTTL),
		PolicyPath:  os.Getenv("LEAVE_POLICY_PATH"),
		Admin: AdminSeed{
			Name:     envOr("ADMIN_NAME", "Administrator"),
			Email:    os.Getenv("ADMIN_EMAIL"),
			Password: os.Getenv("ADMIN_PASSWORD"),
		},
		Storage: attachment.StorageConfig{
			Driver:         envOr("STORAGE_DRIVER", attachment.DriverDisk),
			BasePath:       envOr("UPLOAD_DIR", "uploads"),
			MinioEndpoint:  os.Getenv("MINIO_ENDPOINT"),
			MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
			MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
			MinioBucket:    envOr("MINIO_BUCKET", "leave-attachments"),
			MinioUseSSL:    envBool("MINIO_USE_SSL", false),
		},
		Upload:      upload,
		SweepEvery:  envDuration("ORPHAN_SWEEP_INTERVAL", attachment.DefaultSweepInterval),
		OrphanAfter: envDuration("ORPHAN_MIN_AGE", attachment.DefaultOrphanMinAge),
		Outbox: producer.Config{
			PollInterval: envDuration("OUTBOX_POLL_INTERVAL", 3*time.Second),
			BatchSize:    int(envInt64("OUTBOX_BATCH_SIZE", 50)),
			MaxAttempts:  int(envInt64("OUTBOX_MAX_ATTEMPTS", 10)),
			Retention:    envDuration("OUTBOX_RETENTION", 72*time.Hour),
		},
		SMTP: mailer.Config{
			Host:     smtpHost,
			Port:     smtpPort,
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("SMTP_FROM"),
		},
	}
	if smtpHost == "" {
		cfg.SMTP.Port = 0
	}
	if cfg.Storage.Driver == attachment.DriverMinio && cfg.Storage.MinioEndpoint == "" {
		return Config{}, errors.New("MINIO_ENDPOINT is required when STORAGE_DRIVER=minio")
	}
	return cfg, nil
}

func (c Config) Production() bool {
	return c.Env == "production"
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(os.Getenv(key)), 10, 64)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func envBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return v
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key)))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
