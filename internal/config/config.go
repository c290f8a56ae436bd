package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"bikeplan/internal/archive"
	"bikeplan/internal/gbfs"
)

// Config holds application configuration from environment variables.
type Config struct {
	Port     int
	DBPath   string
	LogLevel slog.Level

	GBFSURL      string
	FeedCacheTTL time.Duration // 0 disables the merged-station cache
	HTTPTimeout  time.Duration
	Candidates   int // stations proposed per trip endpoint

	GeocoderURL     string
	GeocoderViewbox string // "minLon,minLat,maxLon,maxLat"

	Archive *archive.Config // nil when archiving is not configured
}

// Load reads configuration from environment variables with defaults.
// A .env file in the working directory is applied first when present;
// variables already set in the environment take precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:            envInt("BIKEPLAN_PORT", 8080),
		DBPath:          envStr("BIKEPLAN_DB_PATH", "./bikeplan.db"),
		LogLevel:        envLevel("BIKEPLAN_LOG_LEVEL", slog.LevelInfo),
		GBFSURL:         envStr("BIKEPLAN_GBFS_URL", gbfs.DefaultIndexURL),
		FeedCacheTTL:    envDuration("BIKEPLAN_FEED_CACHE_TTL", 15*time.Second),
		HTTPTimeout:     envDuration("BIKEPLAN_HTTP_TIMEOUT", 10*time.Second),
		Candidates:      envInt("BIKEPLAN_CANDIDATES", 3),
		GeocoderURL:     envStr("BIKEPLAN_GEOCODER_URL", "https://nominatim.openstreetmap.org"),
		GeocoderViewbox: envStr("BIKEPLAN_GEOCODER_VIEWBOX", "-73.98,45.40,-73.47,45.71"), // Island of Montréal
	}

	a, err := loadArchive()
	if err != nil {
		return nil, err
	}
	cfg.Archive = a
	return cfg, nil
}

// loadArchive returns nil when no S3 variable is set, and an error when
// only some of the required ones are.
func loadArchive() (*archive.Config, error) {
	a := &archive.Config{
		AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
		Endpoint:        os.Getenv("S3_ENDPOINT"),
		Bucket:          os.Getenv("S3_BUCKET_NAME"),
		Region:          envStr("S3_REGION", "auto"), // R2 ignores it but the SDK requires one
		Prefix:          envStr("S3_PREFIX", "plans/"),
	}

	required := map[string]string{
		"S3_ACCESS_KEY_ID":     a.AccessKeyID,
		"S3_SECRET_ACCESS_KEY": a.SecretAccessKey,
		"S3_ENDPOINT":          a.Endpoint,
		"S3_BUCKET_NAME":       a.Bucket,
	}
	var missing []string
	for _, key := range []string{"S3_ACCESS_KEY_ID", "S3_SECRET_ACCESS_KEY", "S3_ENDPOINT", "S3_BUCKET_NAME"} {
		if required[key] == "" {
			missing = append(missing, key)
		}
	}
	switch len(missing) {
	case 0:
		return a, nil
	case len(required):
		return nil, nil
	default:
		return nil, fmt.Errorf("incomplete archive configuration, missing %s", strings.Join(missing, ", "))
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// envDuration accepts Go durations ("15s") or a bare number of seconds.
func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}

func envLevel(key string, fallback slog.Level) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(os.Getenv(key))); err != nil {
		return fallback
	}
	return l
}
