package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"egovlaw-backend/models"
	"egovlaw-backend/pkg/logger"

	"github.com/beevik/etree"
	"go.uber.org/zap"
)

const promulgationDateLayout = "20060102"

// LawListResult is the outcome of a list search.
// Partial is set when the umbrella search lost some, but not all, categories.
type LawListResult struct {
	Records  []models.LawRecord
	Partial  bool
	Warnings []string
}

// LawListRepository fetches law listings per category
type LawListRepository struct {
	client  *RegistryClient
	timeout time.Duration
}

// NewLawListRepository creates a new law list repository
func NewLawListRepository(client *RegistryClient, timeout time.Duration) *LawListRepository {
	return &LawListRepository{client: client, timeout: timeout}
}

// FetchCategory fetches one concrete category. Failures are logged and
// returned alongside an empty slice; records are tagged with code.
func (r *LawListRepository) FetchCategory(ctx context.Context, code models.LawCategory) ([]models.LawRecord, error) {
	log := logger.WithContext(ctx).With(zap.String("category", string(code)))

	if !code.IsSpecific() {
		return []models.LawRecord{}, fmt.Errorf("%w: %q", ErrInvalidCategory, code)
	}

	body, err := r.client.get(ctx, "/lawlists/"+string(code), r.timeout)
	if err != nil {
		log.Warn("law list request failed", zap.Error(err))
		if errors.Is(err, ErrNetwork) {
			return []models.LawRecord{}, fmt.Errorf("failed to fetch law list for category %s: %w", code, err)
		}
		return []models.LawRecord{}, fmt.Errorf("failed to fetch law list for category %s: %w: %v", code, ErrAPI, err)
	}

	envelope := DecodeEnvelope(body)
	if envelope.Payload == nil {
		err := envelope.Err()
		log.Warn("law list response rejected", zap.String("code", envelope.Code), zap.Error(err))
		return []models.LawRecord{}, fmt.Errorf("law list for category %s: %w", code, err)
	}

	records := parseLawList(envelope.Payload, code)
	log.Debug("law list fetched", zap.Int("count", len(records)))
	return records, nil
}

// FetchList fetches one category, or every concrete category in order when
// code is the umbrella category.
func (r *LawListRepository) FetchList(ctx context.Context, code models.LawCategory) (*LawListResult, error) {
	switch {
	case code == models.CategoryAll:
		return r.fetchAll(ctx)
	case code.IsSpecific():
		records, err := r.FetchCategory(ctx, code)
		if err != nil {
			return nil, err
		}
		if len(records) == 0 {
			return nil, fmt.Errorf("%w: category %s returned no laws", ErrAPI, code)
		}
		return &LawListResult{Records: records}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, code)
	}
}

func (r *LawListRepository) fetchAll(ctx context.Context) (*LawListResult, error) {
	result := &LawListResult{Records: []models.LawRecord{}}
	var failures []string

	for _, code := range models.SpecificCategories {
		records, err := r.FetchCategory(ctx, code)
		if len(records) == 0 {
			reason := "no laws returned"
			if err != nil {
				reason = err.Error()
			}
			failures = append(failures, fmt.Sprintf("%s: %s", code.Label(), reason))
			continue
		}
		result.Records = append(result.Records, records...)
	}

	if len(result.Records) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrAllCategoriesFailed, strings.Join(failures, "; "))
	}
	if len(failures) > 0 {
		result.Partial = true
		result.Warnings = failures
		logger.WithContext(ctx).Warn("some law categories failed", zap.Strings("failures", failures))
	}
	return result, nil
}

func parseLawList(payload *etree.Element, code models.LawCategory) []models.LawRecord {
	entries := payload.SelectElements("LawNameListInfo")
	records := make([]models.LawRecord, 0, len(entries))
	for _, entry := range entries {
		records = append(records, models.LawRecord{
			ID:               childText(entry, "LawId"),
			Name:             childText(entry, "LawName"),
			Number:           childText(entry, "LawNo"),
			PromulgationDate: parsePromulgationDate(childText(entry, "PromulgationDate")),
			Category:         code,
			CategorySortRank: code.SortRank(),
		})
	}
	return records
}

// parsePromulgationDate reads a YYYYMMDD date; anything else is unknown
func parsePromulgationDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, err := time.Parse(promulgationDateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}

func childText(el *etree.Element, tag string) string {
	child := el.SelectElement(tag)
	if child == nil {
		return ""
	}
	return strings.TrimSpace(child.Text())
}
