// Package owner resolves the owner (createdBy) of api requests.
package owner

import (
	"github.com/gofiber/fiber/v3"

	"github.com/confstore/confstore/internal/configstore"
	"github.com/confstore/confstore/internal/web/handler"
)

// New returns a middleware storing the normalized value of header as request owner.
// A missing header yields the empty owner, which reads across all owners.
func New(header string) fiber.Handler {
	return func(c fiber.Ctx) error {
		c.Locals(handler.LocalsOwner, configstore.CanonicalOwner(c.Get(header)))

		return c.Next()
	}
}
