package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/skincare/internal/flagx"
	"github.com/dmitrijs2005/skincare/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations use
// timex.Duration so they can be written as "10m" or as integer nanoseconds.
type JsonConfig struct {
	BackendURL  string         `json:"backend_url"`
	HTTPTimeout timex.Duration `json:"http_timeout"`

	ImageHost        string `json:"image_host"`
	ImgBBURL         string `json:"imgbb_url"`
	ImgBBAPIKey      string `json:"imgbb_api_key"`
	UploadsPerMinute int    `json:"uploads_per_minute"`

	S3Bucket        string         `json:"s3_bucket"`
	S3Region        string         `json:"s3_region"`
	S3Endpoint      string         `json:"s3_endpoint"`
	S3AccessKey     string         `json:"s3_access_key"`
	S3SecretKey     string         `json:"s3_secret_key"`
	S3PresignExpiry timex.Duration `json:"s3_presign_expiry"`

	IdentityTTL  timex.Duration `json:"identity_ttl"`
	StoreBackend string         `json:"store_backend"`
	DBPath       string         `json:"db_path"`
	RedisAddr    string         `json:"redis_addr"`
	StoreSecret  string         `json:"store_secret"`

	TokenSecret  string `json:"token_secret"`
	OIDCIssuer   string `json:"oidc_issuer"`
	OIDCClientID string `json:"oidc_client_id"`

	MetricsAddr string `json:"metrics_addr"`
	LogLevel    string `json:"log_level"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// -c or -config. Keys missing from the file keep their current value.
// Panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigPath(os.Args[1:])
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.BackendURL, jc.BackendURL)
	setDuration(&cfg.HTTPTimeout, jc.HTTPTimeout)

	setString(&cfg.ImageHost, jc.ImageHost)
	setString(&cfg.ImgBBURL, jc.ImgBBURL)
	setString(&cfg.ImgBBAPIKey, jc.ImgBBAPIKey)
	if jc.UploadsPerMinute != 0 {
		cfg.UploadsPerMinute = jc.UploadsPerMinute
	}

	setString(&cfg.S3Bucket, jc.S3Bucket)
	setString(&cfg.S3Region, jc.S3Region)
	setString(&cfg.S3Endpoint, jc.S3Endpoint)
	setString(&cfg.S3AccessKey, jc.S3AccessKey)
	setString(&cfg.S3SecretKey, jc.S3SecretKey)
	setDuration(&cfg.S3PresignExpiry, jc.S3PresignExpiry)

	setDuration(&cfg.IdentityTTL, jc.IdentityTTL)
	setString(&cfg.StoreBackend, jc.StoreBackend)
	setString(&cfg.DBPath, jc.DBPath)
	setString(&cfg.RedisAddr, jc.RedisAddr)
	setString(&cfg.StoreSecret, jc.StoreSecret)

	setString(&cfg.TokenSecret, jc.TokenSecret)
	setString(&cfg.OIDCIssuer, jc.OIDCIssuer)
	setString(&cfg.OIDCClientID, jc.OIDCClientID)

	setString(&cfg.MetricsAddr, jc.MetricsAddr)
	setString(&cfg.LogLevel, jc.LogLevel)
}
