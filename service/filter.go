package service

import (
	"cmp"
	"net/url"
	"slices"
	"strings"
	"time"

	"egovlaw-backend/models"
)

// FilterLaws applies the search filters to records, keeping their order.
// Text filters are trimmed, then matched as case-insensitive substrings; a
// blank filter imposes nothing. Once any date bound is set, records without
// a known promulgation date are excluded.
func FilterLaws(records []models.LawRecord, f models.SearchFilters) []models.LawRecord {
	name := strings.ToLower(strings.TrimSpace(f.NameQuery))
	number := strings.ToLower(strings.TrimSpace(f.NumberQuery))
	keyword := strings.ToLower(strings.TrimSpace(f.Keyword))

	out := make([]models.LawRecord, 0, len(records))
	for _, r := range records {
		lowerName := strings.ToLower(r.Name)
		lowerNumber := strings.ToLower(r.Number)

		if name != "" && !strings.Contains(lowerName, name) {
			continue
		}
		if number != "" && !strings.Contains(lowerNumber, number) {
			continue
		}
		if keyword != "" && !strings.Contains(lowerName, keyword) && !strings.Contains(lowerNumber, keyword) {
			continue
		}
		if f.HasDateFilter() && !inDateRange(r.PromulgationDate, f.DateFrom, f.DateTo) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func inDateRange(d, from, to *time.Time) bool {
	if d == nil {
		return false
	}
	if from != nil && d.Before(*from) {
		return false
	}
	if to != nil && d.After(*to) {
		return false
	}
	return true
}

// SortLaws returns a stably sorted copy of records.
// Unknown dates sort last in both directions.
func SortLaws(records []models.LawRecord, s models.SortState) []models.LawRecord {
	out := slices.Clone(records)
	slices.SortStableFunc(out, func(a, b models.LawRecord) int {
		if s.Key == models.SortByDate {
			switch {
			case a.PromulgationDate == nil && b.PromulgationDate == nil:
				return 0
			case a.PromulgationDate == nil:
				return 1
			case b.PromulgationDate == nil:
				return -1
			}
		}
		c := compareBy(a, b, s.Key)
		if !s.Ascending {
			c = -c
		}
		return c
	})
	return out
}

func compareBy(a, b models.LawRecord, key models.SortKey) int {
	switch key {
	case models.SortByName:
		return cmp.Compare(a.Name, b.Name)
	case models.SortByNumber:
		return cmp.Compare(a.Number, b.Number)
	case models.SortByDate:
		return a.PromulgationDate.Compare(*b.PromulgationDate)
	default:
		return cmp.Compare(a.CategorySortRank, b.CategorySortRank)
	}
}

// BuildTable sorts records and decorates them for display
func BuildTable(records []models.LawRecord, s models.SortState, viewerBase string) models.FilteredTable {
	sorted := SortLaws(records, s)
	rows := make([]models.LawRow, 0, len(sorted))
	for _, r := range sorted {
		rows = append(rows, models.LawRow{
			LawRecord:     r,
			CategoryLabel: r.Category.Label(),
			ViewerURL:     ViewerURL(viewerBase, r.ID),
		})
	}
	return models.FilteredTable{Rows: rows, Sort: s}
}

// ViewerURL builds the registry viewer link for a law
func ViewerURL(base, lawID string) string {
	if base == "" || lawID == "" {
		return ""
	}
	return base + "?lawid=" + url.QueryEscape(lawID)
}
