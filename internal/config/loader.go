package config

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/jmgilman/go/errors"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"file-cache/internal/store"
	"file-cache/internal/ttl"
)

// EnvPrefix prefixes environment overrides, e.g. CACHECTL_TTL=90m.
const EnvPrefix = "CACHECTL"

// Load merges defaults, the optional config file at path and the environment.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, errors.CodeInvalidConfig, "read config %s", path)
		}
	}

	var cfg Config
	hooks := mapstructure.ComposeDecodeHookFunc(
		ttlDecodeHook(),
		mapstructure.StringToTimeDurationHookFunc(),
	)
	if err := v.Unmarshal(&cfg, viper.DecodeHook(hooks)); err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidConfig, "decode config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("Dir", "")
	v.SetDefault("Name", store.DefaultName)
	v.SetDefault("Persist", true)
	v.SetDefault("TTL", store.DefaultTTL)
	v.SetDefault("AutoCommit", true)
	v.SetDefault("LogLevel", "warn")
	v.SetDefault("LogFilePath", "")
	v.SetDefault("LogMaxSize", 100)
	v.SetDefault("LogMaxBackups", 10)
	v.SetDefault("LogCompress", true)
}

// ttlDecodeHook accepts seconds, Go duration strings, "never" and false.
func ttlDecodeHook() mapstructure.DecodeHookFunc {
	targetType := reflect.TypeOf(ttl.TTL{})

	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != targetType {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return ttl.Parse(v)
		case bool:
			if v {
				return nil, fmt.Errorf("ttl true is not a lifetime; use seconds, a duration or false")
			}
			return ttl.Never, nil
		case int:
			return ttl.Seconds(int64(v)), nil
		case int64:
			return ttl.Seconds(v), nil
		case float64:
			return ttl.FloatSeconds(v), nil
		case time.Duration:
			return ttl.Of(v), nil
		case ttl.TTL:
			return v, nil
		default:
			return nil, fmt.Errorf("unsupported ttl type: %T", v)
		}
	}
}
