package config

import (
	"errors"
)

var (
	// ErrEmptyURL error if config webserver.URL is empty.
	ErrEmptyURL = errors.New("toml config webserver.url can not be empty")

	// ErrWebServerPortCanNotBeZero error if config webserver listening port is 0.
	ErrWebServerPortCanNotBeZero = errors.New("toml config webserver.port listening port can not be 0")

	// ErrUnknownGormEngine error if config db.gormEngine is not supported.
	ErrUnknownGormEngine = errors.New("toml config db.gormEngine must be mysql, postgres or sqlite")

	// ErrSQLitePathEmpty error if the sqlite engine has no database path.
	ErrSQLitePathEmpty = errors.New("toml config db.path can not be empty for sqlite")

	// ErrEventsURLEmpty error if events are enabled without a NATS url.
	ErrEventsURLEmpty = errors.New("toml config events.url can not be empty if events are enabled")

	// ErrOwnerHeaderEmpty error if config store.ownerHeader is empty.
	ErrOwnerHeaderEmpty = errors.New("toml config store.ownerHeader can not be empty")

	// ErrDefaultLimitAboveMax error if config store.defaultLimit is above store.maxLimit.
	ErrDefaultLimitAboveMax = errors.New("toml config store.defaultLimit can not exceed store.maxLimit")
)
