package config

import "fmt"

// Validate reports the first setting that makes the server unable to start.
func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("missing required env %s", "DATABASE_URL")
	}
	if len(c.JWTAccessSecret) == 0 {
		return fmt.Errorf("missing required env %s", "JWT_SECRET")
	}
	if len(c.JWTRefreshSecret) == 0 {
		return fmt.Errorf("missing required env %s", "JWT_REFRESH_SECRET")
	}
	switch c.DBDriver {
	case "postgres", "pq", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	switch c.Storage.Disk {
	case "local":
	case "s3":
		if c.Storage.S3Bucket == "" {
			return fmt.Errorf("missing required env %s", "S3_BUCKET")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_DISK %q", c.Storage.Disk)
	}
	return nil
}
