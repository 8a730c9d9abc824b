package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"egovlaw-backend/llm"
	"egovlaw-backend/models"
	"egovlaw-backend/repository"
	"egovlaw-backend/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher map[string]string

func (s stubFetcher) FetchText(_ context.Context, lawID string) (*models.StatuteText, error) {
	text, ok := s[lawID]
	if !ok {
		return nil, repository.ErrLawNotFound
	}
	return &models.StatuteText{LawID: lawID, Text: text}, nil
}

type scriptedGenerator struct {
	answers []string
	calls   int
}

func (g *scriptedGenerator) Generate(context.Context, []llm.Message) (*llm.Result, error) {
	answer := g.answers[g.calls%len(g.answers)]
	g.calls++
	return &llm.Result{Text: answer}, nil
}

func newAskSession(gen llm.Generator) *service.SessionService {
	return service.NewSessionService(
		service.SessionWithTextFetcher(stubFetcher{
			"322AC0000000049": "第一条 労働条件は人たるに値する生活を営むためのものである。 第二条 労働条件は対等の立場において決定する。",
		}),
		service.SessionWithAssistant(service.NewAssistantService(service.AssistantWithGenerator(gen))),
	)
}

func TestAskLoop(t *testing.T) {
	gen := &scriptedGenerator{answers: []string{
		"生活のためです。[Source: 第一条, 第九条]",
		"対等です。[Source: none]",
	}}
	session := newAskSession(gen)

	in := strings.NewReader("目的は?\n\n決定方法は?\n/quit\nignored\n")
	var out bytes.Buffer
	err := askLoop(context.Background(), in, &out, session, "322AC0000000049", "労働基準法")
	require.NoError(t, err)

	text := out.String()
	assert.Equal(t, 2, gen.calls)
	assert.Contains(t, text, "労働基準法 (322AC0000000049)")
	assert.Contains(t, text, "生活のためです。[Source: 第一条, 第九条]")
	assert.Contains(t, text, "--- 第一条 ---\n第一条 労働条件は人たるに値する生活を営むためのものである。\n")
	assert.Contains(t, text, "第九条: not found in the statute text")
	assert.Contains(t, text, service.CitationDisclaimer)
	assert.Contains(t, text, "対等です。")

	assert.Equal(t, models.PhaseIdle, session.State().Phase, "leaving the loop closes the panel")
}

func TestAskLoopEndOfInput(t *testing.T) {
	gen := &scriptedGenerator{answers: []string{"答え"}}
	var out bytes.Buffer
	err := askLoop(context.Background(), strings.NewReader("質問"), &out, newAskSession(gen), "322AC0000000049", "")
	require.NoError(t, err)
	assert.Equal(t, 1, gen.calls)
}

func TestAskLoopUnknownLaw(t *testing.T) {
	gen := &scriptedGenerator{answers: []string{"unused"}}
	var out bytes.Buffer
	err := askLoop(context.Background(), strings.NewReader("q\n"), &out, newAskSession(gen), "MISSING", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MISSING")
	assert.Equal(t, 0, gen.calls)
}

func TestAskLoopAIDisabled(t *testing.T) {
	session := service.NewSessionService(service.SessionWithAssistant(service.NewAssistantService()))
	err := askLoop(context.Background(), strings.NewReader(""), &bytes.Buffer{}, session, "322AC0000000049", "")
	assert.ErrorIs(t, err, service.ErrAIDisabled)
}

func TestRenderSearchResult(t *testing.T) {
	d := time.Date(1947, 4, 7, 0, 0, 0, 0, time.UTC)
	result := &service.LawSearchResult{
		Table: models.FilteredTable{
			Rows: []models.LawRow{{
				LawRecord: models.LawRecord{
					ID: "322AC0000000049", Name: "労働基準法", Number: "昭和二十二年法律第四十九号",
					PromulgationDate: &d, Category: models.CategoryConstitutionLaw,
				},
				CategoryLabel: "憲法・法律 (Constitution/Law)",
				ViewerURL:     "https://elaws.e-gov.go.jp/document?lawid=322AC0000000049",
			}},
			Sort: models.SortState{Key: models.SortByNumber, Ascending: true},
		},
		Total:    3,
		Warnings: []string{"政令・勅令 (Cabinet/Imperial Order): network error"},
	}

	var out bytes.Buffer
	renderSearchResult(&out, result, true)
	text := out.String()
	assert.Contains(t, text, "warning: 政令・勅令 (Cabinet/Imperial Order): network error")
	assert.Contains(t, text, "労働基準法")
	assert.Contains(t, text, "1947-04-07")
	assert.Contains(t, text, "lawid=322AC0000000049")
	assert.Contains(t, text, "1 of 3 laws, sorted by number (ascending)")
}

func TestRenderSearchResultEmpty(t *testing.T) {
	var out bytes.Buffer
	renderSearchResult(&out, &service.LawSearchResult{Message: service.MsgNoMatches}, false)
	assert.Contains(t, out.String(), service.MsgNoMatches)
}

func TestRenderSummaryRaw(t *testing.T) {
	var out bytes.Buffer
	err := renderSummary(&out, models.SessionState{SummaryTarget: "322AC0000000049", Summary: "**要約**"}, true)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Summary of 322AC0000000049")
	assert.Contains(t, out.String(), "**要約**")
}

func TestBuildSearchRequest(t *testing.T) {
	searchOpts.category = "3"
	searchOpts.from = "1990-01-01"
	searchOpts.to = ""
	t.Cleanup(func() {
		searchOpts.category = string(models.CategoryAll)
		searchOpts.from = ""
	})

	req, err := buildSearchRequest()
	require.NoError(t, err)
	assert.Equal(t, models.CategoryCabinetOrder, req.Category)
	require.NotNil(t, req.Filters.DateFrom)
	assert.Equal(t, 1990, req.Filters.DateFrom.Year())
	assert.Nil(t, req.Filters.DateTo)

	searchOpts.from = "01/01/1990"
	_, err = buildSearchRequest()
	assert.Error(t, err)
}
