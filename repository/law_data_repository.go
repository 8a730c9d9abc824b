package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"egovlaw-backend/models"
	"egovlaw-backend/pkg/logger"
	"egovlaw-backend/storage"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// LawDataRepository fetches and extracts full statute text
type LawDataRepository struct {
	client  *RegistryClient
	cache   storage.TextCache
	timeout time.Duration
	group   singleflight.Group
	now     func() time.Time
}

// NewLawDataRepository creates a new law data repository
func NewLawDataRepository(client *RegistryClient, cache storage.TextCache, timeout time.Duration) *LawDataRepository {
	return &LawDataRepository{
		client:  client,
		cache:   cache,
		timeout: timeout,
		now:     time.Now,
	}
}

// FetchText returns the extracted text of lawID, served from the cache while
// fresh. Concurrent requests for the same law share one registry call.
func (r *LawDataRepository) FetchText(ctx context.Context, lawID string) (*models.StatuteText, error) {
	if lawID == "" {
		return nil, ErrMissingLawID
	}

	if cached, ok := r.cache.Get(lawID); ok {
		return cached, nil
	}

	// the shared fetch outlives any one caller; client.get still bounds it
	// with the data timeout
	fetchCtx := context.WithoutCancel(ctx)
	ch := r.group.DoChan(lawID, func() (interface{}, error) {
		if cached, ok := r.cache.Get(lawID); ok {
			return cached, nil
		}
		text, err := r.fetch(fetchCtx, lawID)
		if err != nil {
			return nil, err
		}
		r.cache.Put(text)
		return text, nil
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("failed to fetch law data for %s: %w: %w", lawID, ErrNetwork, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		text := *res.Val.(*models.StatuteText)
		return &text, nil
	}
}

func (r *LawDataRepository) fetch(ctx context.Context, lawID string) (*models.StatuteText, error) {
	log := logger.WithContext(ctx).With(zap.String("law_id", lawID))

	body, err := r.client.get(ctx, "/lawdata/"+url.PathEscape(lawID), r.timeout)
	if err != nil {
		log.Warn("law data request failed", zap.Error(err))
		return nil, translateStatusError(lawID, err)
	}

	envelope := DecodeEnvelope(body)
	if envelope.Payload == nil {
		return nil, fmt.Errorf("law data for %s: %w", lawID, envelope.Err())
	}

	text, fallback, err := ExtractText(envelope.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to extract text for %s: %w", lawID, err)
	}
	if fallback {
		log.Warn("could not extract structured text, using LawFullText fallback")
	}

	return &models.StatuteText{
		LawID:             lawID,
		Text:              text,
		SourceWasFallback: fallback,
		FetchedAt:         r.now(),
	}, nil
}

func translateStatusError(lawID string, err error) error {
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		return fmt.Errorf("failed to fetch law data for %s: %w", lawID, err)
	}
	switch statusErr.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: law ID %s was not found (HTTP 404)", ErrLawNotFound, lawID)
	case http.StatusNotAcceptable:
		return fmt.Errorf("%w: problem fetching data for law ID %s (HTTP 406)", ErrNotAcceptable, lawID)
	default:
		return fmt.Errorf("%w: HTTP %d fetching law data for %s", ErrAPI, statusErr.StatusCode, lawID)
	}
}
