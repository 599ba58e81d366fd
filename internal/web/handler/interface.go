package handler

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"github.com/confstore/confstore/internal/config"
	"github.com/confstore/confstore/internal/configstore"
)

// ConfigStore is the config engine used by the http handlers.
type ConfigStore interface {
	Set(ctx context.Context, key, owner string, value configstore.Value) (*configstore.Record, error)
	Bulk(ctx context.Context, owner string, pairs []configstore.KeyValue) ([]string, error)
	Get(ctx context.Context, key, owner string) (*configstore.Record, error)
	Multiplex(ctx context.Context, keys []string, owner string) (map[string]configstore.Entry, error)
	Search(ctx context.Context, q configstore.SearchQuery, owner string) (*configstore.SearchResult, error)
	Unset(ctx context.Context, key, owner string) (int64, error)
}

// Service is the interface for a web handler service.
type Service interface {
	Init(router fiber.Router, cfg *config.Config, store ConfigStore) error
}

// Owner returns the request owner stored by the owner middleware.
func Owner(c fiber.Ctx) string {
	owner, _ := c.Locals(LocalsOwner).(string)

	return owner
}
