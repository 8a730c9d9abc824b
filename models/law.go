package models

import (
	"errors"
	"time"
)

// LawCategory is the registry's law type code
type LawCategory string

const (
	CategoryAll             LawCategory = "1"
	CategoryConstitutionLaw LawCategory = "2"
	CategoryCabinetOrder    LawCategory = "3"
	CategoryMinisterialRule LawCategory = "4"
)

// SpecificCategories are the concrete codes the umbrella category fans out to, in fetch order
var SpecificCategories = []LawCategory{
	CategoryConstitutionLaw,
	CategoryCabinetOrder,
	CategoryMinisterialRule,
}

var categoryLabels = map[LawCategory]string{
	CategoryAll:             "すべて (All)",
	CategoryConstitutionLaw: "憲法・法律 (Constitution/Law)",
	CategoryCabinetOrder:    "政令・勅令 (Cabinet/Imperial Order)",
	CategoryMinisterialRule: "府省令・規則 (Ministerial Ordinance/Rule)",
}

var categoryRanks = map[LawCategory]int{
	CategoryConstitutionLaw: 1,
	CategoryCabinetOrder:    2,
	CategoryMinisterialRule: 3,
}

// UnknownCategoryRank sorts unrecognized codes after every known category
const UnknownCategoryRank = 99

// Label returns the display label, "不明" for unknown codes
func (c LawCategory) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return "不明"
}

// SortRank returns the grouping rank used by the umbrella search
func (c LawCategory) SortRank() int {
	if rank, ok := categoryRanks[c]; ok {
		return rank
	}
	return UnknownCategoryRank
}

// IsSpecific reports whether c is one of the concrete categories
func (c LawCategory) IsSpecific() bool {
	_, ok := categoryRanks[c]
	return ok
}

// IsValid reports whether c is a known code, including the umbrella one
func (c LawCategory) IsValid() bool {
	return c == CategoryAll || c.IsSpecific()
}

// LawRecord represents one entry of a law list
type LawRecord struct {
	ID               string      `json:"law_id"`
	Name             string      `json:"law_name"`
	Number           string      `json:"law_number"`
	PromulgationDate *time.Time  `json:"promulgation_date,omitempty"`
	Category         LawCategory `json:"category"`
	CategorySortRank int         `json:"category_sort_rank"`
}

// ErrInvalidDateRange is returned when DateFrom is after DateTo
var ErrInvalidDateRange = errors.New("'from' date cannot be after 'to' date")

// SearchFilters holds the optional predicates of a search
type SearchFilters struct {
	NameQuery   string     `json:"name,omitempty"`
	NumberQuery string     `json:"number,omitempty"`
	Keyword     string     `json:"keyword,omitempty"`
	DateFrom    *time.Time `json:"date_from,omitempty"`
	DateTo      *time.Time `json:"date_to,omitempty"`
}

// Validate checks the date range before a search is allowed to run
func (f SearchFilters) Validate() error {
	if f.DateFrom != nil && f.DateTo != nil && f.DateFrom.After(*f.DateTo) {
		return ErrInvalidDateRange
	}
	return nil
}

// HasDateFilter reports whether any date bound is active
func (f SearchFilters) HasDateFilter() bool {
	return f.DateFrom != nil || f.DateTo != nil
}

// SortKey names a sortable column of the result table
type SortKey string

const (
	SortByCategory SortKey = "category"
	SortByName     SortKey = "name"
	SortByNumber   SortKey = "number"
	SortByDate     SortKey = "date"
)

// IsValid reports whether k is a known sort key
func (k SortKey) IsValid() bool {
	switch k {
	case SortByCategory, SortByName, SortByNumber, SortByDate:
		return true
	}
	return false
}

// SortState is the current sort column and direction
type SortState struct {
	Key       SortKey `json:"key"`
	Ascending bool    `json:"ascending"`
}

// DefaultSort returns the initial ordering for a search of the given category.
// The umbrella search groups by category, a single category orders by law number.
func DefaultSort(category LawCategory) SortState {
	if category == CategoryAll {
		return SortState{Key: SortByCategory, Ascending: true}
	}
	return SortState{Key: SortByNumber, Ascending: true}
}

// Toggle returns the state after the user selects key.
// Re-selecting the active key flips the direction; a new key starts ascending,
// except the date key which starts newest first.
func (s SortState) Toggle(key SortKey) SortState {
	if s.Key == key {
		return SortState{Key: key, Ascending: !s.Ascending}
	}
	return SortState{Key: key, Ascending: key != SortByDate}
}

// LawRow is a display-ready table row
type LawRow struct {
	LawRecord
	CategoryLabel string `json:"category_label"`
	ViewerURL     string `json:"viewer_url"`
}

// FilteredTable is the ordered result table
type FilteredTable struct {
	Rows []LawRow  `json:"rows"`
	Sort SortState `json:"sort"`
}
