package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Snapshot SnapshotConfig `mapstructure:"snapshot"`
	Audit    AuditConfig    `mapstructure:"audit"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Runner   RunnerConfig   `mapstructure:"runner"`
	Drift    DriftConfig    `mapstructure:"drift"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port"`
	Mode string     `mapstructure:"mode"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	AllowAllOrigins bool     `mapstructure:"allow_all_origins"`
}

// SnapshotConfig locates the JSON snapshot file the entity store
// persists to on every mutation.
type SnapshotConfig struct {
	Path string `mapstructure:"path"`
}

type AuditConfig struct {
	Driver          string        `mapstructure:"driver"`
	Path            string        `mapstructure:"path"`
	DSN             string        `mapstructure:"dsn"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type StorageConfig struct {
	Type      string `mapstructure:"type"` // "local" or "s3"
	LocalDir  string `mapstructure:"local_dir"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	PublicURL string `mapstructure:"public_url"`
}

// RunnerConfig bounds the random delay simulated jobs take to complete.
type RunnerConfig struct {
	MinDelayMs int   `mapstructure:"min_delay_ms"`
	MaxDelayMs int   `mapstructure:"max_delay_ms"`
	Seed       int64 `mapstructure:"seed"`
}

type DriftConfig struct {
	Threshold        float64 `mapstructure:"threshold"`
	BaselineAccuracy float64 `mapstructure:"baseline_accuracy"`
}

func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	// Enable environment variable override
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors.allow_all_origins", true)
	v.SetDefault("server.cors.allowed_origins", []string{})
	v.SetDefault("snapshot.path", "./data/store.json")
	v.SetDefault("audit.driver", "sqlite")
	v.SetDefault("audit.path", "./data/audit.db")
	v.SetDefault("audit.auto_migrate", true)
	v.SetDefault("audit.max_idle_conns", 2)
	v.SetDefault("audit.max_open_conns", 10)
	v.SetDefault("audit.conn_max_lifetime", time.Hour)
	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local_dir", "./data/uploads")
	v.SetDefault("storage.use_ssl", false)
	v.SetDefault("storage.bucket", "mlstage-datasets")
	v.SetDefault("runner.min_delay_ms", 500)
	v.SetDefault("runner.max_delay_ms", 3000)
	v.SetDefault("drift.threshold", 0.1)
	v.SetDefault("drift.baseline_accuracy", 0.95)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Bind environment variables explicitly for sensitive data
	v.BindEnv("storage.endpoint", "STORAGE_ENDPOINT")
	v.BindEnv("storage.access_key", "STORAGE_ACCESS_KEY")
	v.BindEnv("storage.secret_key", "STORAGE_SECRET_KEY")
	v.BindEnv("storage.bucket", "STORAGE_BUCKET")
	v.BindEnv("audit.driver", "AUDIT_DRIVER")
	v.BindEnv("audit.dsn", "AUDIT_DSN")
	v.BindEnv("snapshot.path", "SNAPSHOT_PATH")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
