package service

import (
	"context"
	"errors"
	"fmt"

	"egovlaw-backend/models"
	"egovlaw-backend/pkg/logger"
	"egovlaw-backend/repository"

	"go.uber.org/zap"
)

// LawService runs one-shot searches that keep no session state
type LawService struct {
	lister    LawLister
	viewerURL string
}

// LawServiceOption is a functional option for LawService
type LawServiceOption func(*LawService)

// LawWithLister sets the law list source
func LawWithLister(l LawLister) LawServiceOption {
	return func(s *LawService) {
		s.lister = l
	}
}

// LawWithViewerURL sets the base of the statute viewer links
func LawWithViewerURL(base string) LawServiceOption {
	return func(s *LawService) {
		s.viewerURL = base
	}
}

// NewLawService creates a new law service
func NewLawService(opts ...LawServiceOption) *LawService {
	s := &LawService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LawSearchResult is the table produced by a one-shot search
type LawSearchResult struct {
	Table    models.FilteredTable `json:"table"`
	Total    int                  `json:"total"`
	Partial  bool                 `json:"partial"`
	Warnings []string             `json:"warnings"`
	Message  string               `json:"message,omitempty"`
}

// Search fetches, filters and sorts in one call. A nil sort selects the
// category's default order.
func (s *LawService) Search(ctx context.Context, req SearchRequest, sort *models.SortState) (*LawSearchResult, error) {
	if s.lister == nil {
		return nil, errors.New("law lister not set")
	}
	if !req.Category.IsValid() {
		return nil, fmt.Errorf("%w: %q", repository.ErrInvalidCategory, req.Category)
	}
	if err := req.Filters.Validate(); err != nil {
		return nil, err
	}

	order := models.DefaultSort(req.Category)
	if sort != nil {
		if !sort.Key.IsValid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidSortKey, sort.Key)
		}
		order = *sort
	}

	listing, err := s.lister.FetchList(ctx, req.Category)
	if err != nil {
		logger.WithContext(ctx).Warn("law search failed", zap.String("category", string(req.Category)), zap.Error(err))
		return nil, err
	}

	records := FilterLaws(listing.Records, req.Filters)
	result := &LawSearchResult{
		Table:    BuildTable(records, order, s.viewerURL),
		Total:    len(listing.Records),
		Partial:  listing.Partial,
		Warnings: append([]string{}, listing.Warnings...),
	}
	if len(records) == 0 {
		result.Message = MsgNoMatches
	}
	return result, nil
}
