package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"egovlaw-backend/llm"
	"egovlaw-backend/models"
	"egovlaw-backend/repository"
	"egovlaw-backend/storage"
)

// fakeGenerator records every prompt and replays a fixed result
type fakeGenerator struct {
	mu     sync.Mutex
	calls  [][]llm.Message
	result *llm.Result
	err    error
}

func (g *fakeGenerator) Generate(_ context.Context, messages []llm.Message) (*llm.Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, messages)
	if g.err != nil {
		return nil, g.err
	}
	if g.result != nil {
		return g.result, nil
	}
	return &llm.Result{Text: "ok"}, nil
}

func (g *fakeGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

// fakeLister serves canned listings per category
type fakeLister struct {
	results map[models.LawCategory]*repository.LawListResult
	err     error
	calls   int
}

func (l *fakeLister) FetchList(_ context.Context, code models.LawCategory) (*repository.LawListResult, error) {
	l.calls++
	if l.err != nil {
		return nil, l.err
	}
	if res, ok := l.results[code]; ok {
		return res, nil
	}
	return &repository.LawListResult{Records: []models.LawRecord{}}, nil
}

// fakeFetcher serves statute texts through a real memory cache so cache
// hits can be observed as a lower upstream count
type fakeFetcher struct {
	texts    map[string]string
	errs     map[string]error
	cache    *storage.MemoryCache
	upstream int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		texts: map[string]string{},
		errs:  map[string]error{},
		cache: storage.NewMemoryCache(time.Hour),
	}
}

func (f *fakeFetcher) FetchText(_ context.Context, lawID string) (*models.StatuteText, error) {
	if cached, ok := f.cache.Get(lawID); ok {
		return cached, nil
	}
	f.upstream++
	if err, ok := f.errs[lawID]; ok {
		return nil, err
	}
	text, ok := f.texts[lawID]
	if !ok {
		return nil, repository.ErrLawNotFound
	}
	if text == "" {
		return nil, repository.ErrNoExtractableText
	}
	st := &models.StatuteText{LawID: lawID, Text: text}
	f.cache.Put(st)
	return st, nil
}

var errUpstream = errors.New("connection reset")

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func record(id, name, number string, cat models.LawCategory, d *time.Time) models.LawRecord {
	return models.LawRecord{
		ID:               id,
		Name:             name,
		Number:           number,
		PromulgationDate: d,
		Category:         cat,
		CategorySortRank: cat.SortRank(),
	}
}
