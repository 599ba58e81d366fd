package configstore

import (
	"context"
	"errors"
	"math"
	"strconv"

	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/confstore/confstore/internal/db/controller/configrecord"
	"github.com/confstore/confstore/internal/db/models"
)

// Options tunes the Store.
type Options struct {
	// KeyMinLength is the minimum key length after trimming. Zero selects DefaultKeyMinLength.
	KeyMinLength int
	// MaxBulkKeys limits the pairs of one bulk write. Zero means unlimited.
	MaxBulkKeys int
	// MaxMultiplexKeys limits the keys of one multiplex lookup. Zero means unlimited.
	MaxMultiplexKeys int
	// MaxSearchLimit caps the page size of Search. Zero means unlimited.
	MaxSearchLimit int
}

// Store implements set, bulk, get, multiplex, search and unset on top of gorm.
type Store struct {
	db   *gorm.DB
	opts Options
}

// New creates a Store.
func New(db *gorm.DB, opts Options) *Store {
	if opts.KeyMinLength <= 0 {
		opts.KeyMinLength = DefaultKeyMinLength
	}

	return &Store{db: db, opts: opts}
}

// Set writes value for (key, owner), creating or updating the only record of that pair.
// The returned record carries the value as supplied.
func (s *Store) Set(ctx context.Context, key, owner string, value Value) (*Record, error) {
	key, err := NormalizeKey(key, s.opts.KeyMinLength)
	if err != nil {
		return nil, err
	}
	owner = CanonicalOwner(owner)

	stored, err := configrecord.Upsert(ctx, s.db, key, owner, value.Encode())
	if err != nil {
		return nil, storageError(ctx, "set", err)
	}

	return &Record{
		Key:       stored.Key,
		Value:     value,
		CreatedBy: stored.CreatedBy,
		CreatedAt: stored.CreatedAt,
		UpdatedAt: stored.UpdatedAt,
	}, nil
}

// Bulk writes every pair under owner atomically and returns the normalized keys in input order.
// A key repeated after normalization is written once with its last value.
func (s *Store) Bulk(ctx context.Context, owner string, pairs []KeyValue) ([]string, error) {
	if s.opts.MaxBulkKeys > 0 && len(pairs) > s.opts.MaxBulkKeys {
		return nil, &ValidationError{
			Code:    CodeTooManyKeys,
			Field:   "keys",
			Message: "bulk write exceeds the configured maximum of keys",
		}
	}

	owner = CanonicalOwner(owner)

	var (
		keys    = make([]string, 0, len(pairs))
		index   = make(map[string]int, len(pairs))
		records = make([]configrecord.Pair, 0, len(pairs))
	)

	for _, p := range pairs {
		key, err := NormalizeKey(p.Key, s.opts.KeyMinLength)
		if err != nil {
			return nil, err
		}

		if i, seen := index[key]; seen {
			records[i].Value = p.Value.Encode()
			continue
		}

		index[key] = len(records)
		keys = append(keys, key)
		records = append(records, configrecord.Pair{Key: key, Value: p.Value.Encode()})
	}

	if len(records) == 0 {
		return keys, nil
	}

	if err := configrecord.UpsertMany(ctx, s.db, owner, records); err != nil {
		return nil, storageError(ctx, "bulk", err)
	}

	return keys, nil
}

// Get returns the record for key. An empty owner looks across every owner.
func (s *Store) Get(ctx context.Context, key, owner string) (*Record, error) {
	key, err := NormalizeKey(key, s.opts.KeyMinLength)
	if err != nil {
		return nil, err
	}

	stored, err := configrecord.Get(ctx, s.db, key, CanonicalOwner(owner))
	if err != nil {
		if errors.Is(err, configrecord.ErrRecordNotFound) {
			return nil, pkgerrors.WithMessage(ErrNotFound, key)
		}
		return nil, storageError(ctx, "get", err)
	}

	return toRecord(stored), nil
}

// Multiplex looks up every key in one batch. Each normalized input key appears exactly once
// in the result, flagged with whether a record exists.
func (s *Store) Multiplex(ctx context.Context, keys []string, owner string) (map[string]Entry, error) {
	if len(keys) == 0 {
		return nil, &ValidationError{Code: CodeKeysEmpty, Field: "keys", Message: "at least one key is required"}
	}
	if s.opts.MaxMultiplexKeys > 0 && len(keys) > s.opts.MaxMultiplexKeys {
		return nil, &ValidationError{
			Code:    CodeTooManyKeys,
			Field:   "keys",
			Message: "lookup exceeds the configured maximum of keys",
		}
	}

	var (
		wanted = make([]string, 0, len(keys))
		result = make(map[string]Entry, len(keys))
	)

	for _, k := range keys {
		key := CanonicalKey(k)
		if _, dup := result[key]; dup {
			continue
		}
		result[key] = Entry{Key: key}
		wanted = append(wanted, key)
	}

	stored, err := configrecord.GetMany(ctx, s.db, wanted, CanonicalOwner(owner))
	if err != nil {
		return nil, storageError(ctx, "multiplex", err)
	}

	for i := range stored {
		if result[stored[i].Key].Exists {
			continue
		}

		r := toRecord(&stored[i])
		result[r.Key] = Entry{
			Exists:    true,
			Key:       r.Key,
			Value:     r.Value,
			CreatedBy: r.CreatedBy,
			CreatedAt: &r.CreatedAt,
			UpdatedAt: &r.UpdatedAt,
		}
	}

	return result, nil
}

// Search returns a page of records whose key contains q.Key. An empty owner searches every owner.
func (s *Store) Search(ctx context.Context, q SearchQuery, owner string) (*SearchResult, error) {
	if q.Page < 1 {
		return nil, &ValidationError{Code: CodeInvalidPage, Field: "page", Message: "page must be at least 1"}
	}
	if q.Limit < 1 {
		return nil, &ValidationError{Code: CodeInvalidLimit, Field: "limit", Message: "limit must be at least 1"}
	}
	if s.opts.MaxSearchLimit > 0 && q.Limit > s.opts.MaxSearchLimit {
		return nil, &ValidationError{
			Code:    CodeInvalidLimit,
			Field:   "limit",
			Message: "limit exceeds the maximum of " + strconv.Itoa(s.opts.MaxSearchLimit),
		}
	}
	// the offset (page-1)*limit must fit into an int
	if q.Page-1 > math.MaxInt/q.Limit {
		return nil, &ValidationError{Code: CodeInvalidPage, Field: "page", Message: "page is out of range"}
	}

	order, err := parseSort(q.Sort)
	if err != nil {
		return nil, err
	}

	stored, total, err := configrecord.Search(ctx, s.db, configrecord.Query{
		KeyContains: CanonicalKey(q.Key),
		Owner:       CanonicalOwner(owner),
		Offset:      (q.Page - 1) * q.Limit,
		Limit:       q.Limit,
		Order:       order,
	})
	if err != nil {
		return nil, storageError(ctx, "search", err)
	}

	data := make([]Summary, len(stored))
	for i, r := range stored {
		data[i] = Summary{
			Key:       r.Key,
			CreatedBy: r.CreatedBy,
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
		}
	}

	return &SearchResult{
		Meta: PageMeta{
			Page:  q.Page,
			Limit: q.Limit,
			Total: total,
			Last:  LastPage(total, q.Limit),
		},
		Data: data,
	}, nil
}

// Unset deletes the record for (key, owner), or every record of owner when key is empty.
// It returns the number of deleted records.
func (s *Store) Unset(ctx context.Context, key, owner string) (int64, error) {
	owner = CanonicalOwner(owner)

	if key == "" {
		n, err := configrecord.DeleteByOwner(ctx, s.db, owner)
		if err != nil {
			return 0, storageError(ctx, "unset", err)
		}
		return n, nil
	}

	key, err := NormalizeKey(key, s.opts.KeyMinLength)
	if err != nil {
		return 0, err
	}

	n, err := configrecord.DeleteByKey(ctx, s.db, key, owner)
	if err != nil {
		return 0, storageError(ctx, "unset", err)
	}

	return n, nil
}

// LastPage is max(ceil(total/limit), 1).
func LastPage(total int64, limit int) int {
	if limit < 1 || total <= 0 {
		return 1
	}

	last := int((total + int64(limit) - 1) / int64(limit))
	if last < 1 {
		return 1
	}
	return last
}

func parseSort(sort string) (*configrecord.Order, error) {
	switch sort {
	case "":
		return nil, nil //nolint:nilnil
	case SortKeyAsc:
		return &configrecord.Order{Field: "key"}, nil
	case SortKeyDesc:
		return &configrecord.Order{Field: "key", Desc: true}, nil
	case SortCreatedByAsc:
		return &configrecord.Order{Field: "createdBy"}, nil
	case SortCreatedByDesc:
		return &configrecord.Order{Field: "createdBy", Desc: true}, nil
	default:
		return nil, &ValidationError{Code: CodeInvalidSort, Field: "sort", Message: "unsupported sort " + sort}
	}
}

func toRecord(m *models.ConfigRecord) *Record {
	return &Record{
		Key:       m.Key,
		Value:     DecodeValue(m.Value),
		CreatedBy: m.CreatedBy,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// storageError logs the backend failure and hides it behind ErrStorage.
func storageError(ctx context.Context, op string, err error) error {
	logger := zerolog.Ctx(ctx)
	if logger.GetLevel() == zerolog.Disabled {
		logger = &log.Logger
	}

	logger.Error().Err(err).Str("operation", op).Msg("config storage operation failed")

	return pkgerrors.WithMessage(ErrStorage, op)
}
