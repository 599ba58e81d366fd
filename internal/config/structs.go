package config

import (
	"time"

	"github.com/confstore/confstore/internal/logger"
)

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Webserver Webserver
	Store     Store
	Events    Events
}

// Webserver implement webserver settings.
type Webserver struct {
	Port          int    // listening port for the webserver
	URL           string // base url for the webserver
	ShutDownTime  int    // wait time for shutdown in seconds
	FastShutDown  bool   // skip the graceful 503 phase on shutdown
	CheckAliveURI string // health endpoint, excluded from the access log if Log.DisableCheckAlive
	MetricsURI    string // prometheus endpoint, empty disables it
	BodyLimit     int    // max request body size in bytes
}

// Store implements the config store engine settings.
type Store struct {
	KeyMinLength     int    // minimum key length after trimming
	OwnerHeader      string // request header carrying the owner (createdBy)
	DefaultLimit     int    // search page size if none is requested
	MaxLimit         int    // max search page size
	MaxBulkKeys      int    // max pairs per bulk write, 0 = unlimited
	MaxMultiplexKeys int    // max keys per multiplex lookup
}

// Events implements the replication event consumer settings.
type Events struct {
	Enabled       bool
	URL           string        // NATS server url
	SetSubject    string        // subject of config.set events
	UnsetSubject  string        // subject of config.unset events
	QueueGroup    string        // queue group shared by all instances
	HandleTimeout time.Duration // max storage time per event
}
