package config

import (
	"strings"

	"github.com/jmgilman/go/errors"
	"github.com/sirupsen/logrus"
)

// Validate rejects settings the store or logger could not honor.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New(errors.CodeInvalidConfig, "config is nil")
	}

	if c.Persist && strings.TrimSpace(c.Name) == "" {
		return invalid(newFieldError("Name", "must not be empty when Persist is enabled"))
	}
	if strings.ContainsAny(c.Name, `/\`) {
		return invalid(newFieldError("Name", "must be a file name, not a path"))
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return invalid(newFieldError("LogLevel", "unknown level "+c.LogLevel))
	}
	if c.LogMaxSize < 0 {
		return invalid(newFieldError("LogMaxSize", "must not be negative"))
	}
	if c.LogMaxBackups < 0 {
		return invalid(newFieldError("LogMaxBackups", "must not be negative"))
	}

	return nil
}

func invalid(err error) error {
	return errors.Wrap(err, errors.CodeInvalidConfig, "invalid configuration")
}
