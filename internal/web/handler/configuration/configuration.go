// Package configuration implements the /api/v1/config endpoints.
package configuration

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/confstore/confstore/internal/config"
	"github.com/confstore/confstore/internal/configstore"
	"github.com/confstore/confstore/internal/web/handler"
)

const (
	// Path is the route group of the config api.
	Path = handler.APIPath + "/config"

	// PermissionPrefix prefixes the route names. An external authorizer can match them.
	PermissionPrefix = "api.v1.config."
)

type (
	searchRequest struct {
		Key   string `json:"key"   validate:"omitempty,min=3"`
		Page  *int   `json:"page"  validate:"omitempty,min=1"`
		Limit *int   `json:"limit" validate:"omitempty,min=1"`
		Sort  string `json:"sort"  validate:"omitempty,oneof=desc:createdBy asc:createdBy desc:key asc:key"`
	}

	multiplexRequest struct {
		Keys []string `json:"keys" validate:"required,min=1"`
	}

	setRequest struct {
		Key   string             `json:"key"   validate:"required,min=3"`
		Value *configstore.Value `json:"value" validate:"required"`
	}

	unsetRequest struct {
		Key *string `json:"key" validate:"omitempty,min=3"`
	}

	bulkResponse struct {
		Keys []string `json:"keys"`
	}
)

// Service is the config api handler service.
type Service struct {
	cfg       *config.Config
	store     handler.ConfigStore
	validator *handler.XValidator
}

// Init registers the config routes on router.
func (s *Service) Init(router fiber.Router, cfg *config.Config, store handler.ConfigStore) error {
	if router == nil || cfg == nil || store == nil {
		log.Error().Msg(handler.ErrNilACSFatalLogMsg)

		return errors.New(handler.ErrNilACSFatalLogMsg) //nolint:err113
	}

	s.cfg = cfg
	s.store = store
	s.validator = handler.NewValidator()

	group := router.Group(Path)
	group.Post("/search", s.Search).Name(PermissionPrefix + "search")
	group.Post("/get", s.Multiplex).Name(PermissionPrefix + "multiplex")
	group.Get("/get/:key", s.Get).Name(PermissionPrefix + "get")
	group.Post("/set", s.Set).Name(PermissionPrefix + "set")
	group.Post("/bulk", s.Bulk).Name(PermissionPrefix + "bulk")
	group.Delete("/unset", s.Unset).Name(PermissionPrefix + "unset")

	return nil
}

// Search handles POST /search.
func (s *Service) Search(c fiber.Ctx) error {
	var req searchRequest
	if err := s.validator.Bind(c, &req); err != nil {
		return err
	}

	q := configstore.SearchQuery{
		Key:   req.Key,
		Page:  1,
		Limit: s.cfg.Store.DefaultLimit,
		Sort:  req.Sort,
	}

	if req.Page != nil {
		q.Page = *req.Page
	}

	if req.Limit != nil {
		q.Limit = *req.Limit
	}

	result, err := s.store.Search(c.Context(), q, handler.Owner(c))
	if err != nil {
		return err //nolint:wrapcheck
	}

	return handler.Send(c, fiber.StatusOK, handler.I18nConfigsFound, result.Data, result.Meta)
}

// Multiplex handles POST /get.
func (s *Service) Multiplex(c fiber.Ctx) error {
	var req multiplexRequest
	if err := s.validator.Bind(c, &req); err != nil {
		return err
	}

	entries, err := s.store.Multiplex(c.Context(), req.Keys, handler.Owner(c))
	if err != nil {
		return err //nolint:wrapcheck
	}

	return handler.OK(c, handler.I18nConfigsFound, entries)
}

// Get handles GET /get/:key.
func (s *Service) Get(c fiber.Ctx) error {
	key := c.Params("key")

	record, err := s.store.Get(c.Context(), key, handler.Owner(c))
	if err != nil {
		if errors.Is(err, configstore.ErrNotFound) {
			return &handler.NotFoundError{Key: configstore.CanonicalKey(key)}
		}

		return err //nolint:wrapcheck
	}

	return handler.OK(c, handler.I18nConfigFound, record)
}

// Set handles POST /set.
func (s *Service) Set(c fiber.Ctx) error {
	var req setRequest
	if err := s.validator.Bind(c, &req); err != nil {
		return err
	}

	record, err := s.store.Set(c.Context(), req.Key, handler.Owner(c), *req.Value)
	if err != nil {
		return err //nolint:wrapcheck
	}

	return handler.OK(c, handler.I18nConfigSet, record)
}

// Bulk handles POST /bulk. The body is a json object of key to value,
// written in document order.
func (s *Service) Bulk(c fiber.Ctx) error {
	pairs, err := decodePairs(c.Body())
	if err != nil {
		return &handler.FieldErrors{Fields: []handler.FieldError{{
			Field:   "body",
			Code:    handler.I18nInvalidBody,
			Message: err.Error(),
		}}}
	}

	keys, err := s.store.Bulk(c.Context(), handler.Owner(c), pairs)
	if err != nil {
		return err //nolint:wrapcheck
	}

	return handler.OK(c, handler.I18nConfigsSet, bulkResponse{Keys: keys})
}

// Unset handles DELETE /unset. The key is read from the json body or the
// key query parameter, the body wins. Without key every config of the owner is removed.
func (s *Service) Unset(c fiber.Ctx) error {
	var req unsetRequest
	if c.Request().URI().QueryArgs().Has("key") {
		key := c.Query("key")
		req.Key = &key
	}

	if err := s.validator.Bind(c, &req); err != nil {
		return err
	}

	var key string
	if req.Key != nil {
		key = *req.Key
	}

	deleted, err := s.store.Unset(c.Context(), key, handler.Owner(c))
	if err != nil {
		return err //nolint:wrapcheck
	}

	return handler.OK(c, handler.I18nConfigUnset, fiber.Map{"deleted": deleted})
}

var errBodyNotObject = errors.New("body must be a json object")

// decodePairs reads a json object keeping the member order.
func decodePairs(body []byte) ([]configstore.KeyValue, error) {
	dec := json.NewDecoder(bytes.NewReader(body))

	tok, err := dec.Token()
	if err != nil {
		return nil, errBodyNotObject
	}

	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errBodyNotObject
	}

	var pairs []configstore.KeyValue

	for dec.More() {
		tok, err = dec.Token()
		if err != nil {
			return nil, err //nolint:wrapcheck
		}

		key, _ := tok.(string)

		var value configstore.Value
		if err = dec.Decode(&value); err != nil {
			return nil, err //nolint:wrapcheck
		}

		pairs = append(pairs, configstore.KeyValue{Key: key, Value: value})
	}

	if _, err = dec.Token(); err != nil {
		return nil, err //nolint:wrapcheck
	}

	if dec.More() {
		return nil, errBodyNotObject
	}

	return pairs, nil
}
