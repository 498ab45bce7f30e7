//go:build e2e

package e2e

import (
	"time"

	"github.com/spf13/viper"
	"github.com/tonimelisma/box-client/pkg/box"
)

// Config holds the configuration for E2E tests.
type Config struct {
	ParentID    string
	Timeout     time.Duration
	Cleanup     bool
	MaxFileSize int64
}

// LoadConfig reads BOX_E2E_* environment variables.
func LoadConfig() *Config {
	v := viper.New()
	v.SetEnvPrefix("BOX_E2E")
	v.AutomaticEnv()
	v.SetDefault("parent_id", box.RootFolderID)
	v.SetDefault("timeout", 300*time.Second)
	v.SetDefault("cleanup", true)
	v.SetDefault("max_file_size", 20*1024*1024)

	return &Config{
		ParentID:    v.GetString("parent_id"),
		Timeout:     v.GetDuration("timeout"),
		Cleanup:     v.GetBool("cleanup"),
		MaxFileSize: v.GetInt64("max_file_size"),
	}
}
