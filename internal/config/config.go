// Package config handles input from etc/*.toml files
package config

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvConfigJSON names the environment variable holding a JSON config override.
const EnvConfigJSON = "CONFSTORE_CONFIG_JSON"

const (
	defaultShutDownTime  = 5
	defaultKeyMinLength  = 3
	defaultOwnerHeader   = "X-Config-Owner"
	defaultDefaultLimit  = 10
	defaultMaxLimit      = 100
	defaultMaxMultiplex  = 500
	defaultCheckAliveURI = "/checkalive"
	defaultQueueGroup    = "confstore"
	defaultSetSubject    = "config.set"
	defaultUnsetSubject  = "config.unset"
)

// ReadConfig from config file.
func ReadConfig(path string) (Config, error) {
	var (
		c             Config
		JSONConfigEnv string
		err           error
	)

	// Read main configuration
	if path == "" {
		path = "./etc/"
	}

	v := viper.New()
	v.SetConfigFile(path + "main.toml")
	v.SetConfigType("toml")

	if err = v.ReadInConfig(); err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	if err = v.Unmarshal(&c); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode main config file")
	}

	// override it from env
	JSONConfigEnv = os.Getenv(EnvConfigJSON)

	if JSONConfigEnv != "" {
		c, err = decodeAndMergeConfig(c, JSONConfigEnv)
		if err != nil {
			return c, err
		}
	}

	setDefaults(&c)

	return c, validate(&c)
}

func decodeAndMergeConfig(c Config, configAsJSON string) (Config, error) {
	err := json.Unmarshal([]byte(configAsJSON), &c)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to read json config override")
	}

	return c, nil
}

// DumpConfig config as TOML String.
func DumpConfig(c *Config) (string, error) {
	var buffer bytes.Buffer
	t := toml.NewEncoder(&buffer)

	if err := t.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// DumpConfigJSON config as JSON String.
func DumpConfigJSON(c *Config) (string, error) {
	var buffer bytes.Buffer
	j := json.NewEncoder(&buffer)
	j.SetIndent("", "  ")

	if err := j.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// setDefaults fills settings that may be omitted from main.toml.
func setDefaults(c *Config) {
	if c.Webserver.ShutDownTime == 0 {
		c.Webserver.ShutDownTime = defaultShutDownTime
	}

	if c.Webserver.CheckAliveURI == "" {
		c.Webserver.CheckAliveURI = defaultCheckAliveURI
	}

	if c.DB.GormEngine == "" {
		c.DB.GormEngine = EngineMySQL
	}

	if c.Store.KeyMinLength == 0 {
		c.Store.KeyMinLength = defaultKeyMinLength
	}

	if c.Store.OwnerHeader == "" {
		c.Store.OwnerHeader = defaultOwnerHeader
	}

	if c.Store.DefaultLimit == 0 {
		c.Store.DefaultLimit = defaultDefaultLimit
	}

	if c.Store.MaxLimit == 0 {
		c.Store.MaxLimit = defaultMaxLimit
	}

	if c.Store.MaxMultiplexKeys == 0 {
		c.Store.MaxMultiplexKeys = defaultMaxMultiplex
	}

	if c.Events.SetSubject == "" {
		c.Events.SetSubject = defaultSetSubject
	}

	if c.Events.UnsetSubject == "" {
		c.Events.UnsetSubject = defaultUnsetSubject
	}

	if c.Events.QueueGroup == "" {
		c.Events.QueueGroup = defaultQueueGroup
	}
}

// validate minimal config settings.
// Validates only the params needed to start the service.
func validate(c *Config) error {
	invalidErrMessage := "invalid config"

	// validate webserver listening port
	if c.Webserver.Port == 0 {
		return errors.Wrap(ErrWebServerPortCanNotBeZero, invalidErrMessage)
	}

	if c.Webserver.URL == "" {
		return errors.Wrap(ErrEmptyURL, invalidErrMessage)
	}

	switch c.DB.GormEngine {
	case EngineMySQL, EnginePostgres:
	case EngineSQLite:
		if c.DB.Path == "" {
			return errors.Wrap(ErrSQLitePathEmpty, invalidErrMessage)
		}
	default:
		return errors.Wrap(ErrUnknownGormEngine, invalidErrMessage)
	}

	if c.Store.OwnerHeader == "" {
		return errors.Wrap(ErrOwnerHeaderEmpty, invalidErrMessage)
	}

	if c.Store.MaxLimit > 0 && c.Store.DefaultLimit > c.Store.MaxLimit {
		return errors.Wrap(ErrDefaultLimitAboveMax, invalidErrMessage)
	}

	if c.Events.Enabled && c.Events.URL == "" {
		return errors.Wrap(ErrEventsURLEmpty, invalidErrMessage)
	}

	return nil
}
