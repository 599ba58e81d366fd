// Package configrecord provides the storage operations behind the configuration store:
// point lookups, batch lookups, predicate scans, atomic upserts and predicate deletes.
package configrecord

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/confstore/confstore/internal/db/models"
)

const (
	columnID        = "id"
	columnKey       = "config_key"
	columnOwner     = "created_by"
	columnValue     = "value"
	columnCreatedAt = "created_at"
	columnUpdatedAt = "updated_at"

	pairQueryPattern  = "config_key = ? AND created_by = ?"
	keyQueryPattern   = "config_key = ?"
	ownerQueryPattern = "created_by = ?"
	likeQueryPattern  = "config_key LIKE ? ESCAPE '!'"

	likeEscape = "!"
)

var (
	// ErrRecordNotFound is returned when no record matches a point lookup.
	ErrRecordNotFound = errors.New("config record not found")
	// ErrKeyEmpty is returned when a key is required but empty.
	ErrKeyEmpty = errors.New("config key cannot be empty")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrUnknownSortField is returned for an order column outside the allowed set.
	ErrUnknownSortField = errors.New("unknown sort field")
)

// sortColumns maps the public field names to table columns.
var sortColumns = map[string]string{ //nolint:gochecknoglobals
	"key":       columnKey,
	"createdBy": columnOwner,
}

// summaryColumns are returned by Search. Values are never part of a scan result.
var summaryColumns = []string{ //nolint:gochecknoglobals
	columnID, columnKey, columnOwner, columnCreatedAt, columnUpdatedAt,
}

type (
	// Pair is one key/value to be written.
	Pair struct {
		Key   string
		Value string
	}

	// Order sorts a scan by a public field name ("key" or "createdBy").
	Order struct {
		Field string
		Desc  bool
	}

	// Query describes a predicate scan.
	Query struct {
		// KeyContains matches keys containing this substring. Empty matches all.
		KeyContains string
		// Owner restricts the scan to one owner. Empty means every owner.
		Owner  string
		Offset int
		Limit  int
		Order  *Order
	}
)

// Get retrieves the record for key. An empty owner matches any owner, preferring the
// shared record and then the lowest owner name.
func Get(ctx context.Context, db *gorm.DB, key, owner string) (*models.ConfigRecord, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if key == "" {
		return nil, ErrKeyEmpty
	}

	var record models.ConfigRecord
	result := db.WithContext(ctx).
		Scopes(ownedBy(owner)).
		Where(keyQueryPattern, key).
		Order(columnOwner).
		Order(columnID).
		First(&record)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, result.Error
	}

	return &record, nil
}

// GetMany retrieves every record whose key is in keys in one query.
// An empty owner matches any owner. Rows are ordered by owner so callers that keep
// the first row per key get the same preference as Get.
func GetMany(ctx context.Context, db *gorm.DB, keys []string, owner string) ([]models.ConfigRecord, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	records := make([]models.ConfigRecord, 0, len(keys))
	if len(keys) == 0 {
		return records, nil
	}

	result := db.WithContext(ctx).
		Scopes(ownedBy(owner)).
		Where(clause.IN{Column: clause.Column{Name: columnKey}, Values: toValues(keys)}).
		Order(columnOwner).
		Order(columnID).
		Find(&records)
	if result.Error != nil {
		return nil, result.Error
	}

	return records, nil
}

// Search runs a paginated predicate scan and returns the page plus the total match count.
func Search(ctx context.Context, db *gorm.DB, q Query) ([]models.ConfigRecord, int64, error) {
	if db == nil {
		return nil, 0, ErrDBNil
	}

	var (
		total   int64
		records = []models.ConfigRecord{}
		filter  = func(tx *gorm.DB) *gorm.DB {
			if q.KeyContains != "" {
				tx = tx.Where(likeQueryPattern, "%"+escapeLike(q.KeyContains)+"%")
			}
			return tx.Scopes(ownedBy(q.Owner))
		}
	)

	result := db.WithContext(ctx).Model(&models.ConfigRecord{}).Scopes(filter).Count(&total)
	if result.Error != nil {
		return nil, 0, result.Error
	}

	page := db.WithContext(ctx).Select(summaryColumns).Scopes(filter)
	if q.Order != nil {
		column, ok := sortColumns[q.Order.Field]
		if !ok {
			return nil, 0, ErrUnknownSortField
		}
		page = page.Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: q.Order.Desc})
	}

	result = page.Order(columnID).Offset(q.Offset).Limit(q.Limit).Find(&records)
	if result.Error != nil {
		return nil, 0, result.Error
	}

	return records, total, nil
}

// Upsert inserts the record for (key, owner) or updates its value in one statement.
// The unique index on (config_key, created_by) resolves concurrent writers.
func Upsert(ctx context.Context, db *gorm.DB, key, owner, value string) (*models.ConfigRecord, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if key == "" {
		return nil, ErrKeyEmpty
	}

	var stored models.ConfigRecord
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := upsert(tx, key, owner, value); err != nil {
			return err
		}
		return tx.Where(pairQueryPattern, key, owner).First(&stored).Error
	})
	if err != nil {
		return nil, err
	}

	return &stored, nil
}

// UpsertMany writes all pairs for owner in one transaction. Either every pair is
// written or none is.
func UpsertMany(ctx context.Context, db *gorm.DB, owner string, pairs []Pair) error {
	if db == nil {
		return ErrDBNil
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, p := range pairs {
			if p.Key == "" {
				return ErrKeyEmpty
			}
			if err := upsert(tx, p.Key, owner, p.Value); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteByKey deletes the record for (key, owner) and reports how many rows went away.
func DeleteByKey(ctx context.Context, db *gorm.DB, key, owner string) (int64, error) {
	if db == nil {
		return 0, ErrDBNil
	}
	if key == "" {
		return 0, ErrKeyEmpty
	}

	result := db.WithContext(ctx).Where(pairQueryPattern, key, owner).Delete(&models.ConfigRecord{})
	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}

// DeleteByOwner deletes every record of owner. The empty owner addresses the shared records.
func DeleteByOwner(ctx context.Context, db *gorm.DB, owner string) (int64, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	result := db.WithContext(ctx).Where(ownerQueryPattern, owner).Delete(&models.ConfigRecord{})
	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}

func upsert(tx *gorm.DB, key, owner, value string) error {
	record := &models.ConfigRecord{
		Key:       key,
		CreatedBy: owner,
		Value:     value,
	}

	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: columnKey}, {Name: columnOwner}},
		DoUpdates: clause.AssignmentColumns([]string{columnValue, columnUpdatedAt}),
	}).Create(record).Error
}

// ownedBy filters by owner unless owner is empty.
func ownedBy(owner string) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if owner == "" {
			return tx
		}
		return tx.Where(ownerQueryPattern, owner)
	}
}

func escapeLike(s string) string {
	return strings.NewReplacer(
		likeEscape, likeEscape+likeEscape,
		"%", likeEscape+"%",
		"_", likeEscape+"_",
	).Replace(s)
}

func toValues(keys []string) []any {
	values := make([]any, len(keys))
	for i, k := range keys {
		values[i] = k
	}
	return values
}
