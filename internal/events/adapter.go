package events

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/confstore/confstore/internal/configstore"
)

// Adapter validates replication events and applies them to the Store.
// Handle methods never return errors; they report whether the event was applied.
type Adapter struct {
	store Store
}

// NewAdapter creates an Adapter writing to store.
func NewAdapter(store Store) *Adapter {
	return &Adapter{store: store}
}

// HandleSet applies a config.set payload. It requires a non-empty string createdBy,
// a non-empty string key and a non-empty object or array value.
func (a *Adapter) HandleSet(ctx context.Context, data []byte) bool {
	received.WithLabelValues(SubjectSet).Inc()

	fields, ok := decodeFields(data)
	if !ok {
		return drop(ctx, SubjectSet, ReasonMalformed, nil)
	}

	owner, ok := stringField(fields, "createdBy")
	if !ok || strings.TrimSpace(owner) == "" {
		return drop(ctx, SubjectSet, ReasonOwner, nil)
	}

	key, ok := stringField(fields, "key")
	if !ok || key == "" {
		return drop(ctx, SubjectSet, ReasonKey, nil)
	}

	raw, present := fields["value"]
	if !present {
		return drop(ctx, SubjectSet, ReasonValue, nil)
	}

	value, err := configstore.ParseValue(raw)
	if err != nil || !value.IsStructured() || value.Len() == 0 {
		return drop(ctx, SubjectSet, ReasonValue, nil)
	}

	if _, err = a.store.Set(ctx, key, owner, value); err != nil {
		return drop(ctx, SubjectSet, reasonOf(err), err)
	}

	loggerFrom(ctx).Debug().
		Str("key", configstore.CanonicalKey(key)).
		Str("createdBy", configstore.CanonicalOwner(owner)).
		Msg("applied config.set event")

	return true
}

// HandleUnset applies a config.unset payload. It requires a non-empty string createdBy.
// A missing, null or empty key deletes every record of createdBy; a key of any other
// non-string type drops the event.
func (a *Adapter) HandleUnset(ctx context.Context, data []byte) bool {
	received.WithLabelValues(SubjectUnset).Inc()

	fields, ok := decodeFields(data)
	if !ok {
		return drop(ctx, SubjectUnset, ReasonMalformed, nil)
	}

	owner, ok := stringField(fields, "createdBy")
	if !ok || strings.TrimSpace(owner) == "" {
		return drop(ctx, SubjectUnset, ReasonOwner, nil)
	}

	var key string
	if raw, present := fields["key"]; present && !isNull(raw) {
		if key, ok = stringField(fields, "key"); !ok {
			return drop(ctx, SubjectUnset, ReasonKey, nil)
		}
	}

	deleted, err := a.store.Unset(ctx, key, owner)
	if err != nil {
		return drop(ctx, SubjectUnset, reasonOf(err), err)
	}

	loggerFrom(ctx).Debug().
		Str("key", configstore.CanonicalKey(key)).
		Str("createdBy", configstore.CanonicalOwner(owner)).
		Int64("deleted", deleted).
		Msg("applied config.unset event")

	return true
}

func decodeFields(data []byte) (map[string]json.RawMessage, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return nil, false
	}
	return fields, true
}

func stringField(fields map[string]json.RawMessage, name string) (string, bool) {
	raw, ok := fields[name]
	if !ok {
		return "", false
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func isNull(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}

func reasonOf(err error) string {
	if errors.Is(err, configstore.ErrValidation) {
		return ReasonRejected
	}
	return ReasonStorage
}

func drop(ctx context.Context, event, reason string, err error) bool {
	dropped.WithLabelValues(event, reason).Inc()

	loggerFrom(ctx).Warn().Err(err).Str("event", event).Str("reason", reason).Msg("dropped replication event")

	return false
}

// loggerFrom returns the logger attached to ctx, or the global logger.
func loggerFrom(ctx context.Context) *zerolog.Logger {
	if logger := zerolog.Ctx(ctx); logger.GetLevel() != zerolog.Disabled {
		return logger
	}
	return &log.Logger
}
