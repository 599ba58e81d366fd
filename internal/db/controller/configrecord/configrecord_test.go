package configrecord

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/confstore/confstore/internal/db/models"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	// every pooled connection would get its own in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&models.ConfigRecord{})
	require.NoError(t, err, "failed to migrate test database")

	return db
}

// seedRecords inserts test data into the database.
func seedRecords(t *testing.T, db *gorm.DB, records []models.ConfigRecord) {
	t.Helper()
	for _, record := range records {
		err := db.Create(&record).Error
		require.NoError(t, err, "failed to seed test data")
	}
}

func TestGet(t *testing.T) {
	db := setupTestDB(t)

	testCases := []struct {
		name          string
		dbParam       *gorm.DB
		key           string
		owner         string
		seedData      []models.ConfigRecord
		expectedError error
		expectedValue string
		expectedOwner string
	}{
		{
			name:          "nil database",
			dbParam:       nil,
			key:           "SITE",
			expectedError: ErrDBNil,
		},
		{
			name:          "empty key",
			dbParam:       db,
			key:           "",
			expectedError: ErrKeyEmpty,
		},
		{
			name:          "record not found",
			dbParam:       db,
			key:           "MISSING",
			owner:         "alice",
			expectedError: ErrRecordNotFound,
		},
		{
			name:    "owner scoped",
			dbParam: db,
			key:     "SITE",
			owner:   "bob",
			seedData: []models.ConfigRecord{
				{Key: "SITE", CreatedBy: "alice", Value: "a"},
				{Key: "SITE", CreatedBy: "bob", Value: "b"},
			},
			expectedValue: "b",
			expectedOwner: "bob",
		},
		{
			name:    "other owner is invisible",
			dbParam: db,
			key:     "SITE",
			owner:   "carol",
			seedData: []models.ConfigRecord{
				{Key: "SITE", CreatedBy: "alice", Value: "a"},
			},
			expectedError: ErrRecordNotFound,
		},
		{
			name:    "unscoped prefers shared record",
			dbParam: db,
			key:     "SITE",
			owner:   "",
			seedData: []models.ConfigRecord{
				{Key: "SITE", CreatedBy: "alice", Value: "a"},
				{Key: "SITE", CreatedBy: "", Value: "shared"},
			},
			expectedValue: "shared",
			expectedOwner: "",
		},
		{
			name:    "unscoped falls back to lowest owner",
			dbParam: db,
			key:     "SITE",
			owner:   "",
			seedData: []models.ConfigRecord{
				{Key: "SITE", CreatedBy: "zed", Value: "z"},
				{Key: "SITE", CreatedBy: "alice", Value: "a"},
			},
			expectedValue: "a",
			expectedOwner: "alice",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.dbParam != nil {
				tc.dbParam.Exec("DELETE FROM configs")
			}

			if tc.seedData != nil {
				seedRecords(t, tc.dbParam, tc.seedData)
			}

			record, err := Get(context.Background(), tc.dbParam, tc.key, tc.owner)

			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
				assert.Nil(t, record)
			} else {
				require.NoError(t, err)
				require.NotNil(t, record)
				assert.Equal(t, tc.key, record.Key)
				assert.Equal(t, tc.expectedValue, record.Value)
				assert.Equal(t, tc.expectedOwner, record.CreatedBy)
			}
		})
	}
}

func TestGetMany(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	seedRecords(t, db, []models.ConfigRecord{
		{Key: "A", CreatedBy: "alice", Value: "1"},
		{Key: "B", CreatedBy: "alice", Value: "2"},
		{Key: "B", CreatedBy: "bob", Value: "3"},
		{Key: "C", CreatedBy: "bob", Value: "4"},
	})

	records, err := GetMany(ctx, nil, []string{"A"}, "alice")
	require.ErrorIs(t, err, ErrDBNil)
	assert.Nil(t, records)

	records, err = GetMany(ctx, db, nil, "alice")
	require.NoError(t, err)
	assert.Empty(t, records)

	records, err = GetMany(ctx, db, []string{"A", "B", "C", "D"}, "alice")
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, r := range records {
		assert.Equal(t, "alice", r.CreatedBy)
	}

	records, err = GetMany(ctx, db, []string{"B"}, "")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "alice", records[0].CreatedBy)
	assert.Equal(t, "bob", records[1].CreatedBy)
}

func TestSearch(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	seedRecords(t, db, []models.ConfigRecord{
		{Key: "APP_COLOR", CreatedBy: "alice", Value: "red"},
		{Key: "APP_SIZE", CreatedBy: "alice", Value: "10"},
		{Key: "DB_HOST", CreatedBy: "alice", Value: "localhost"},
		{Key: "APP_COLOR", CreatedBy: "bob", Value: "blue"},
		{Key: "100%_SURE", CreatedBy: "bob", Value: "yes"},
	})

	testCases := []struct {
		name          string
		query         Query
		expectedError error
		expectedTotal int64
		expectedKeys  []string
	}{
		{
			name:          "all records",
			query:         Query{Limit: 10},
			expectedTotal: 5,
			expectedKeys:  []string{"APP_COLOR", "APP_SIZE", "DB_HOST", "APP_COLOR", "100%_SURE"},
		},
		{
			name:          "substring filter scoped to owner",
			query:         Query{KeyContains: "APP", Owner: "alice", Limit: 10},
			expectedTotal: 2,
			expectedKeys:  []string{"APP_COLOR", "APP_SIZE"},
		},
		{
			name:          "wildcards are literal",
			query:         Query{KeyContains: "%_", Limit: 10},
			expectedTotal: 1,
			expectedKeys:  []string{"100%_SURE"},
		},
		{
			name:          "pagination",
			query:         Query{Owner: "alice", Offset: 2, Limit: 2},
			expectedTotal: 3,
			expectedKeys:  []string{"DB_HOST"},
		},
		{
			name:          "ascending key order",
			query:         Query{Owner: "alice", Limit: 10, Order: &Order{Field: "key"}},
			expectedTotal: 3,
			expectedKeys:  []string{"APP_COLOR", "APP_SIZE", "DB_HOST"},
		},
		{
			name:          "descending key order",
			query:         Query{Owner: "alice", Limit: 10, Order: &Order{Field: "key", Desc: true}},
			expectedTotal: 3,
			expectedKeys:  []string{"DB_HOST", "APP_SIZE", "APP_COLOR"},
		},
		{
			name:          "unknown sort field",
			query:         Query{Limit: 10, Order: &Order{Field: "value"}},
			expectedError: ErrUnknownSortField,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			records, total, err := Search(ctx, db, tc.query)

			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expectedTotal, total)

			keys := make([]string, len(records))
			for i, r := range records {
				keys[i] = r.Key
				assert.Empty(t, r.Value, "search must not load values")
			}
			assert.Equal(t, tc.expectedKeys, keys)
		})
	}
}

func TestUpsert(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, err := Upsert(ctx, nil, "KEY", "alice", "v")
	require.ErrorIs(t, err, ErrDBNil)

	_, err = Upsert(ctx, db, "", "alice", "v")
	require.ErrorIs(t, err, ErrKeyEmpty)

	created, err := Upsert(ctx, db, "KEY", "alice", "first")
	require.NoError(t, err)
	assert.Equal(t, "first", created.Value)
	assert.NotZero(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	updated, err := Upsert(ctx, db, "KEY", "alice", "second")
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "second", updated.Value)
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))

	_, err = Upsert(ctx, db, "KEY", "bob", "other")
	require.NoError(t, err)

	var count int64
	db.Model(&models.ConfigRecord{}).Where("config_key = ? AND created_by = ?", "KEY", "alice").Count(&count)
	assert.Equal(t, int64(1), count)

	db.Model(&models.ConfigRecord{}).Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestUniqueIndex(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, db.Create(&models.ConfigRecord{Key: "KEY", CreatedBy: "alice"}).Error)
	require.Error(t, db.Create(&models.ConfigRecord{Key: "KEY", CreatedBy: "alice"}).Error)
}

func TestUpsertMany(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	seedRecords(t, db, []models.ConfigRecord{
		{Key: "A", CreatedBy: "alice", Value: "old"},
	})

	err := UpsertMany(ctx, db, "alice", []Pair{{Key: "A", Value: "new"}, {Key: "B", Value: "b"}})
	require.NoError(t, err)

	record, err := Get(ctx, db, "A", "alice")
	require.NoError(t, err)
	assert.Equal(t, "new", record.Value)

	record, err = Get(ctx, db, "B", "alice")
	require.NoError(t, err)
	assert.Equal(t, "b", record.Value)

	// an invalid pair rolls back the whole batch
	err = UpsertMany(ctx, db, "alice", []Pair{{Key: "C", Value: "c"}, {Key: "", Value: "x"}})
	require.ErrorIs(t, err, ErrKeyEmpty)

	_, err = Get(ctx, db, "C", "alice")
	require.ErrorIs(t, err, ErrRecordNotFound)
}

func TestDeleteByKey(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	seedRecords(t, db, []models.ConfigRecord{
		{Key: "A", CreatedBy: "alice"},
		{Key: "A", CreatedBy: "bob"},
	})

	_, err := DeleteByKey(ctx, db, "", "alice")
	require.ErrorIs(t, err, ErrKeyEmpty)

	n, err := DeleteByKey(ctx, db, "A", "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = DeleteByKey(ctx, db, "A", "alice")
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = Get(ctx, db, "A", "bob")
	require.NoError(t, err)
}

func TestDeleteByOwner(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	seedRecords(t, db, []models.ConfigRecord{
		{Key: "A", CreatedBy: "alice"},
		{Key: "B", CreatedBy: "alice"},
		{Key: "A", CreatedBy: "bob"},
		{Key: "S", CreatedBy: ""},
	})

	_, err := DeleteByOwner(ctx, nil, "alice")
	require.ErrorIs(t, err, ErrDBNil)

	n, err := DeleteByOwner(ctx, db, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	var count int64
	db.Model(&models.ConfigRecord{}).Count(&count)
	assert.Equal(t, int64(2), count)

	n, err = DeleteByOwner(ctx, db, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = Get(ctx, db, "A", "bob")
	require.NoError(t, err)
}
