package config

import "time"

// Config is the root client configuration.
type Config struct {
	API       APIConfig       `yaml:"api"`
	Session   SessionConfig   `yaml:"session"`
	Scan      ScanConfig      `yaml:"scan"`
	Downloads DownloadsConfig `yaml:"downloads"`
	Camera    CameraConfig    `yaml:"camera"`
	Log       LogConfig       `yaml:"log"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// APIConfig holds remote service settings.
type APIConfig struct {
	BaseURL   string        `yaml:"base_url"   env:"STUDYBUDDY_API_URL"        env-default:"https://studybuddy-back.onrender.com"`
	Timeout   time.Duration `yaml:"timeout"    env:"STUDYBUDDY_API_TIMEOUT"    env-default:"30s"`
	UserAgent string        `yaml:"user_agent" env:"STUDYBUDDY_API_USER_AGENT" env-default:"studybuddy-cli"`
}

// Session persistence backends.
const (
	SessionBackendFile  = "file"
	SessionBackendRedis = "redis"
)

// SessionConfig holds settings for the persisted identity blob.
type SessionConfig struct {
	Backend     string `yaml:"backend"      env:"SESSION_BACKEND"      env-default:"file"`
	StorageName string `yaml:"storage_name" env:"SESSION_STORAGE_NAME" env-default:"user"`
	Dir         string `yaml:"dir"          env:"SESSION_DIR"          env-default:".studybuddy"`

	RedisAddr     string        `yaml:"redis_addr"     env:"SESSION_REDIS_ADDR"`
	RedisPassword string        `yaml:"redis_password" env:"SESSION_REDIS_PASSWORD"`
	RedisDB       int           `yaml:"redis_db"       env:"SESSION_REDIS_DB"       env-default:"0"`
	RedisPrefix   string        `yaml:"redis_prefix"   env:"SESSION_REDIS_PREFIX"   env-default:"studybuddy"`
	RedisTTL      time.Duration `yaml:"redis_ttl"      env:"SESSION_REDIS_TTL"      env-default:"0s"`
}

// ScanConfig holds scan pipeline settings.
type ScanConfig struct {
	DefaultIdentityHint string `yaml:"default_identity_hint" env:"SCAN_DEFAULT_IDENTITY_HINT" env-default:"a@a.com"`
}

// DownloadsConfig controls where downloaded materials and notes are written.
type DownloadsConfig struct {
	Dir string `yaml:"dir" env:"DOWNLOADS_DIR" env-default:"downloads"`
}

// CameraConfig selects the image source used by the file-backed camera.
type CameraConfig struct {
	SourcePath string `yaml:"source_path" env:"CAMERA_SOURCE_PATH"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
	// File receives log records instead of stderr when set.
	File string `yaml:"file" env:"LOG_FILE"`
}

// MetricsConfig holds the optional Prometheus listener. An empty Addr disables it.
type MetricsConfig struct {
	Addr string `yaml:"addr" env:"METRICS_ADDR"`
}
