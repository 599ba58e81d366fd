// Package daemon wires storage, the http api and the event consumer into one process.
package daemon

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/confstore/confstore/internal/config"
	"github.com/confstore/confstore/internal/configstore"
	"github.com/confstore/confstore/internal/db"
	"github.com/confstore/confstore/internal/events"
	"github.com/confstore/confstore/internal/web"
)

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	db         *gorm.DB
	store      *configstore.Store
	webService *web.Service
	consumer   *events.Consumer
}

// New opens the database and builds the services described by cfg.
func New(cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	gdb, err := db.Open(cfg)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return NewWithDB(cfg, gdb)
}

// NewWithDB builds the daemon on an already opened database.
func NewWithDB(cfg *config.Config, gdb *gorm.DB) (*Daemon, error) {
	store := configstore.New(gdb, configstore.Options{
		KeyMinLength:     cfg.Store.KeyMinLength,
		MaxBulkKeys:      cfg.Store.MaxBulkKeys,
		MaxMultiplexKeys: cfg.Store.MaxMultiplexKeys,
		MaxSearchLimit:   cfg.Store.MaxLimit,
	})

	webService, err := web.New(cfg, store)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create web service")
	}

	d := &Daemon{
		cfg:        cfg,
		db:         gdb,
		store:      store,
		webService: webService,
	}

	if cfg.Events.Enabled {
		sub, err := events.NewNATSSubscriber(cfg.Events.URL)
		if err != nil {
			return nil, errors.Wrap(err, "failed to connect event bus")
		}

		d.consumer = events.NewConsumer(sub, events.NewAdapter(store), events.ConsumerConfig{
			SetSubject:    cfg.Events.SetSubject,
			UnsetSubject:  cfg.Events.UnsetSubject,
			QueueGroup:    cfg.Events.QueueGroup,
			HandleTimeout: cfg.Events.HandleTimeout,
		})
	}

	return d, nil
}

// Start runs the event consumer and the http server until SIGINT or SIGTERM.
func (d *Daemon) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if d.consumer != nil {
		if err := d.consumer.Start(ctx); err != nil {
			return errors.Wrap(err, "failed to start event consumer")
		}
	}

	go func() {
		d.webService.WaitShutdown()
		cancel()
	}()

	err := d.webService.Start()

	d.Close()

	return err //nolint:wrapcheck
}

// Close stops the consumer and releases the database.
func (d *Daemon) Close() {
	if d.consumer != nil {
		if err := d.consumer.Close(); err != nil {
			log.Warn().Err(err).Msg("event consumer close failed")
		}
	}

	sqlDB, err := d.db.DB()
	if err != nil {
		return
	}

	if err = sqlDB.Close(); err != nil {
		log.Warn().Err(err).Msg("database close failed")
	}
}

// Web returns the http service.
func (d *Daemon) Web() *web.Service {
	return d.webService
}
