package storage

import "fmt"

// Config selects and configures a storage backend.
type Config struct {
	Type      string // "local" or "s3"
	LocalDir  string
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	Region    string
	PublicURL string
}

// New creates an ObjectStorage backend from the configuration. The local
// backend is the demo default; "s3" covers AWS and S3-compatible
// services (MinIO and friends) through a custom endpoint.
func New(cfg *Config) (ObjectStorage, error) {
	switch cfg.Type {
	case "", "local":
		return NewLocalStorage(cfg.LocalDir)
	case "s3":
		return NewS3Storage(cfg)
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}
