package configstore

import (
	"time"
)

type (
	// Record is a configuration value with its metadata.
	Record struct {
		Key       string    `json:"key"`
		Value     Value     `json:"value"`
		CreatedBy string    `json:"createdBy"`
		CreatedAt time.Time `json:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt"`
	}

	// Entry is one result of a multiplex lookup. Missing keys have Exists false and a null Value.
	Entry struct {
		Exists    bool       `json:"exists"`
		Key       string     `json:"key"`
		Value     Value      `json:"value"`
		CreatedBy string     `json:"createdBy,omitempty"`
		CreatedAt *time.Time `json:"createdAt,omitempty"`
		UpdatedAt *time.Time `json:"updatedAt,omitempty"`
	}

	// Summary is a search hit. Search never returns values.
	Summary struct {
		Key       string    `json:"key"`
		CreatedBy string    `json:"createdBy"`
		CreatedAt time.Time `json:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt"`
	}

	// KeyValue is one pair of a bulk write.
	KeyValue struct {
		Key   string
		Value Value
	}

	// SearchQuery selects a page of records.
	SearchQuery struct {
		// Key is a substring filter, matched after normalization. Empty matches all.
		Key   string
		Page  int
		Limit int
		// Sort is one of "asc:key", "desc:key", "asc:createdBy", "desc:createdBy" or empty.
		Sort string
	}

	// PageMeta describes the returned page.
	PageMeta struct {
		Page  int   `json:"page"`
		Limit int   `json:"limit"`
		Total int64 `json:"total"`
		Last  int   `json:"last"`
	}

	// SearchResult is a page of summaries.
	SearchResult struct {
		Meta PageMeta  `json:"meta"`
		Data []Summary `json:"data"`
	}
)

// Sort values accepted by Search.
const (
	SortKeyAsc        = "asc:key"
	SortKeyDesc       = "desc:key"
	SortCreatedByAsc  = "asc:createdBy"
	SortCreatedByDesc = "desc:createdBy"
)
