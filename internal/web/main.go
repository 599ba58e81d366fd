// Package web serves the config api over http.
package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/confstore/confstore/internal/config"
	fiberlogger "github.com/confstore/confstore/internal/logger/adapter/fiber"
	"github.com/confstore/confstore/internal/web/handler"
	"github.com/confstore/confstore/internal/web/handler/configuration"
	"github.com/confstore/confstore/internal/web/middleware/owner"
)

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
}

// Start listens on the configured port and blocks until the server stopped.
func (s *Service) Start() error {
	addr := ":" + strconv.Itoa(s.cfg.Webserver.Port)

	log.Info().Str("addr", addr).Str("url", s.cfg.Webserver.URL).Msg("starting http server")

	err := s.App.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true})
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err //nolint:wrapcheck
	}

	return nil
}

// WaitShutdown blocks until SIGINT or SIGTERM and stops the http server.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	s.Shutdown()
}

// Shutdown stops the http server. Unless FastShutDown is set, checkalive
// answers 503 for ShutDownTime seconds first so load balancers drain this instance.
func (s *Service) Shutdown() {
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	log.Info().Msg("stopping http server ...")

	if err := s.App.Shutdown(); err != nil {
		log.Error().Err(err).Msg("http server shutdown failed")
	}

	log.Info().Msg("http server was stopped ... good bye...")
}

// Alive reports whether checkalive answers 200.
func (s *Service) Alive() bool {
	return s.alive.Load()
}

// checkAlive answers the load balancer health check.
func (s *Service) checkAlive(c fiber.Ctx) error {
	if !s.alive.Load() {
		return handler.Send(c, fiber.StatusServiceUnavailable, handler.I18nUnavailable, nil, nil)
	}

	return c.SendString("OK")
}

// New creates the web service and registers every route.
func New(cfg *config.Config, store handler.ConfigStore) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil") //nolint:err113
	}

	if store == nil {
		return nil, errors.New("store cannot be nil") //nolint:err113
	}

	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        cfg.Title,
			CaseSensitive:  true,
			Immutable:      true,
			UnescapePath:   true,
			BodyLimit:      cfg.Webserver.BodyLimit,
			ErrorHandler:   handler.ErrorHandler,
		},
	)

	service := &Service{
		App:          app,
		cfg:          cfg,
		fastShutDown: cfg.Webserver.FastShutDown,
	}
	service.alive.Store(true)

	app.Use(fiberlogger.New(fiberlogger.Config{
		Config:        cfg.Log,
		ErrorHandler:  handler.ErrorHandler,
		CheckAliveURI: cfg.Webserver.CheckAliveURI,
	}))

	// request scoped logger for the store and the gorm adapter
	app.Use(func(c fiber.Ctx) error {
		l := log.With().Str("requestID", fiberlogger.RequestID(c)).Logger()
		c.SetContext(l.WithContext(c.Context()))

		return c.Next()
	})

	app.Get(cfg.Webserver.CheckAliveURI, service.checkAlive)

	if cfg.Webserver.MetricsURI != "" {
		app.Get(cfg.Webserver.MetricsURI, adaptor.HTTPHandler(promhttp.Handler()))
	}

	app.Use(handler.APIPath, owner.New(cfg.Store.OwnerHeader))

	var services = []handler.Service{
		&configuration.Service{},
	}

	for _, svc := range services {
		if err := svc.Init(app, cfg, store); err != nil {
			return nil, err //nolint:wrapcheck
		}
	}

	return service, nil
}
