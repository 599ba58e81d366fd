// Package events consumes the config.set and config.unset replication events.
//
// Other services publish these events to request the same write or delete a direct call
// would perform. Delivery is best effort: a malformed event or a failing write is logged,
// counted and dropped, and the sender never hears about it.
package events

import (
	"context"

	"github.com/confstore/confstore/internal/configstore"
)

// Default subjects of the replication events.
const (
	SubjectSet   = "config.set"
	SubjectUnset = "config.unset"
)

// Drop reasons reported in logs and metrics.
const (
	ReasonMalformed = "malformed"
	ReasonOwner     = "invalid_owner"
	ReasonKey       = "invalid_key"
	ReasonValue     = "invalid_value"
	ReasonRejected  = "rejected"
	ReasonStorage   = "storage"
)

type (
	// SetEvent asks for value to be written under (key, createdBy).
	SetEvent struct {
		Key       string            `json:"key"`
		Value     configstore.Value `json:"value"`
		CreatedBy string            `json:"createdBy"`
	}

	// UnsetEvent asks for (key, createdBy) to be deleted, or every record of createdBy when key is empty.
	UnsetEvent struct {
		Key       string `json:"key,omitempty"`
		CreatedBy string `json:"createdBy"`
	}

	// Store is the part of the configuration store the events write to.
	Store interface {
		Set(ctx context.Context, key, owner string, value configstore.Value) (*configstore.Record, error)
		Unset(ctx context.Context, key, owner string) (int64, error)
	}

	// Publisher emits replication events.
	Publisher interface {
		Publish(ctx context.Context, subject string, event any) error
		Close() error
	}
)
