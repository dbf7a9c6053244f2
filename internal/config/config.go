package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

const dateLayout = "2006-01-02"

// Config holds all service settings, populated from environment variables.
type Config struct {
	DataRoot      string
	OutRoot       string
	StationID     string
	StartDate     string
	MirrorDir     string
	ProgressEvery int

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	IngestInterval  time.Duration

	// Optional sinks; empty values disable them.
	KafkaBrokers []string
	KafkaTopic   string
	DatabaseURL  string

	// Optional object-store mirror; enabled when MirrorBucket is set.
	MirrorBucket   string
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioSecure    bool
	MinioPrefix    string
}

// Load reads configuration from environment variables (and a .env file when
// present), applying defaults where unset.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	ingestInterval, err := time.ParseDuration(sharedcfg.EnvOrDefault("INGEST_INTERVAL", "24h"))
	if err != nil || ingestInterval <= 0 {
		return nil, errors.New("invalid INGEST_INTERVAL")
	}

	progressEvery, err := strconv.Atoi(sharedcfg.EnvOrDefault("PROGRESS_EVERY", "100000"))
	if err != nil || progressEvery <= 0 {
		return nil, errors.New("invalid PROGRESS_EVERY")
	}

	cfg := &Config{
		DataRoot:      sharedcfg.EnvOrDefault("DATA_ROOT", "data"),
		OutRoot:       sharedcfg.EnvOrDefault("OUT_ROOT", "data/parquet"),
		StationID:     sharedcfg.EnvOrDefault("STATION_ID", "16005701"),
		StartDate:     sharedcfg.EnvOrDefault("START_DATE", "1975-01-01"),
		MirrorDir:     strings.TrimSpace(os.Getenv("MIRROR_DIR")),
		ProgressEvery: progressEvery,

		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		IngestInterval:  ingestInterval,

		KafkaTopic:  sharedcfg.EnvOrDefault("KAFKA_TOPIC", "river-daily-aggregates"),
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),

		MirrorBucket:   strings.TrimSpace(os.Getenv("MIRROR_BUCKET")),
		MinioEndpoint:  sharedcfg.EnvOrDefault("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioSecure:    strings.EqualFold(os.Getenv("MINIO_SECURE"), "true"),
		MinioPrefix:    strings.Trim(os.Getenv("MINIO_PREFIX"), "/"),
	}

	if brokers := strings.TrimSpace(os.Getenv("KAFKA_BROKERS")); brokers != "" {
		cfg.KafkaBrokers = sharedcfg.ParseBrokers(brokers)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the run parameters. It is called by Load and again after
// command-line overrides are applied.
func (c *Config) Validate() error {
	if c.StationID == "" || strings.Trim(c.StationID, "0123456789") != "" {
		return fmt.Errorf("invalid STATION_ID %q: must be numeric", c.StationID)
	}
	if _, err := time.Parse(dateLayout, c.StartDate); err != nil {
		return fmt.Errorf("invalid START_DATE %q: want YYYY-MM-DD", c.StartDate)
	}
	if c.DataRoot == "" {
		return errors.New("DATA_ROOT is required")
	}
	if c.OutRoot == "" {
		return errors.New("OUT_ROOT is required")
	}
	if c.KafkaEnabled() && c.KafkaTopic == "" {
		return errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}
	if c.MirrorBucket != "" && (c.MinioAccessKey == "" || c.MinioSecretKey == "") {
		return errors.New("MIRROR_BUCKET is set but MINIO_ACCESS_KEY or MINIO_SECRET_KEY is not")
	}
	return nil
}

// KafkaEnabled reports whether daily records are published to Kafka.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// PostgresEnabled reports whether daily records are upserted into Postgres.
func (c *Config) PostgresEnabled() bool {
	return c.DatabaseURL != ""
}
