package config

import "time"

// Image host kinds.
const (
	ImageHostImgBB = "imgbb"
	ImageHostS3    = "s3"
)

// Store backends for the local identity entry.
const (
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

// Config holds runtime settings for the skincare CLI.
//
// Units: durations are time.Duration values. An empty MetricsAddr disables
// the metrics listener; empty TokenSecret and OIDCIssuer leave sign-in
// without a verifier, which the CLI refuses.
type Config struct {
	BackendURL  string
	HTTPTimeout time.Duration

	ImageHost        string
	ImgBBURL         string
	ImgBBAPIKey      string
	UploadsPerMinute int

	S3Bucket        string
	S3Region        string
	S3Endpoint      string
	S3AccessKey     string
	S3SecretKey     string
	S3PresignExpiry time.Duration

	IdentityTTL  time.Duration
	StoreBackend string
	DBPath       string
	RedisAddr    string
	// StoreSecret, when set, encrypts the saved provider session.
	StoreSecret string

	TokenSecret  string
	OIDCIssuer   string
	OIDCClientID string

	MetricsAddr string
	LogLevel    string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BackendURL = "http://127.0.0.1:5000"
	c.HTTPTimeout = 30 * time.Second

	c.ImageHost = ImageHostImgBB
	c.ImgBBURL = "https://api.imgbb.com/1/upload"
	c.UploadsPerMinute = 10

	c.S3Region = "us-east-1"
	c.S3PresignExpiry = 7 * 24 * time.Hour

	c.IdentityTTL = 10 * time.Minute
	c.StoreBackend = StoreSQLite
	c.DBPath = "skincare.db"
	c.RedisAddr = "127.0.0.1:6379"

	c.LogLevel = "info"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
