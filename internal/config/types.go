package config

import (
	"file-cache/internal/logs"
	"file-cache/internal/store"
	"file-cache/internal/ttl"
)

// Config is the cachectl configuration after defaults, file and environment
// have been merged.
type Config struct {
	Dir        string  `mapstructure:"Dir"`
	Name       string  `mapstructure:"Name"`
	Persist    bool    `mapstructure:"Persist"`
	TTL        ttl.TTL `mapstructure:"TTL"`
	AutoCommit bool    `mapstructure:"AutoCommit"`

	LogLevel      string `mapstructure:"LogLevel"`
	LogFilePath   string `mapstructure:"LogFilePath"`
	LogMaxSize    int    `mapstructure:"LogMaxSize"`
	LogMaxBackups int    `mapstructure:"LogMaxBackups"`
	LogCompress   bool   `mapstructure:"LogCompress"`
}

// StoreOptions translates the persistence settings into store options.
// An empty Dir keeps the store's own default directory.
func (c *Config) StoreOptions() []store.Option {
	opts := []store.Option{
		store.WithDefaultTTL(c.TTL),
		store.WithAutoCommit(c.AutoCommit),
	}
	if !c.Persist {
		return append(opts, store.WithoutDir())
	}
	if c.Dir != "" {
		opts = append(opts, store.WithDir(c.Dir))
	}
	return append(opts, store.WithName(c.Name))
}

// LogOptions returns the logger settings.
func (c *Config) LogOptions() logs.Options {
	return logs.Options{
		Level:      c.LogLevel,
		FilePath:   c.LogFilePath,
		MaxSize:    c.LogMaxSize,
		MaxBackups: c.LogMaxBackups,
		Compress:   c.LogCompress,
	}
}
