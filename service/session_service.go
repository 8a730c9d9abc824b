package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"egovlaw-backend/models"
	"egovlaw-backend/pkg/logger"
	"egovlaw-backend/repository"

	"go.uber.org/zap"
)

var (
	ErrAIDisabled         = errors.New("AI features are disabled")
	ErrInvalidSortKey     = errors.New("invalid sort key")
	ErrNoActiveQA         = errors.New("no active Q&A panel")
	ErrQuestionPending    = errors.New("previous question is still being answered")
	ErrEmptyQuestion      = errors.New("question must not be empty")
	ErrSessionNotSearched = errors.New("no search has been run in this session")
)

// MsgNoMatches is shown when a search succeeds with an empty table
const MsgNoMatches = "No laws matched the given criteria."

// LawLister fetches law listings
type LawLister interface {
	FetchList(ctx context.Context, code models.LawCategory) (*repository.LawListResult, error)
}

// TextFetcher fetches the extracted text of one law
type TextFetcher interface {
	FetchText(ctx context.Context, lawID string) (*models.StatuteText, error)
}

// Assistant produces summaries and chat answers as display text
type Assistant interface {
	Enabled() bool
	Summarize(ctx context.Context, text string) string
	Chat(ctx context.Context, statuteContext string, history []models.ChatTurn, question string) string
}

// SearchRequest is one top-level search
type SearchRequest struct {
	Category models.LawCategory
	Filters  models.SearchFilters
}

// BrowseState is the result table side of a session
type BrowseState struct {
	Searched bool                 `json:"searched"`
	Category models.LawCategory   `json:"category,omitempty"`
	Filters  models.SearchFilters `json:"filters"`
	Sort     models.SortState     `json:"sort"`
	Partial  bool                 `json:"partial"`
	Warnings []string             `json:"warnings"`
	Message  string               `json:"message,omitempty"`
	records  []models.LawRecord
}

// Snapshot is a consistent copy of a session for display
type Snapshot struct {
	Browse    BrowseState          `json:"browse"`
	Table     models.FilteredTable `json:"table"`
	Panel     models.SessionState  `json:"panel"`
	AIEnabled bool                 `json:"ai_enabled"`
}

// SessionService drives one user session: the browse table and the AI
// panel reducer. Actions are serialized, one in flight at a time.
type SessionService struct {
	mu        sync.Mutex
	lister    LawLister
	fetcher   TextFetcher
	assistant Assistant
	viewerURL string

	browse BrowseState
	panel  models.SessionState
}

// SessionServiceOption is a functional option for SessionService
type SessionServiceOption func(*SessionService)

// SessionWithLawLister sets the law list source
func SessionWithLawLister(l LawLister) SessionServiceOption {
	return func(s *SessionService) {
		s.lister = l
	}
}

// SessionWithTextFetcher sets the statute text source
func SessionWithTextFetcher(f TextFetcher) SessionServiceOption {
	return func(s *SessionService) {
		s.fetcher = f
	}
}

// SessionWithAssistant sets the AI assistant
func SessionWithAssistant(a Assistant) SessionServiceOption {
	return func(s *SessionService) {
		s.assistant = a
	}
}

// SessionWithViewerURL sets the base of the statute viewer links
func SessionWithViewerURL(base string) SessionServiceOption {
	return func(s *SessionService) {
		s.viewerURL = base
	}
}

// NewSessionService creates a new session service
func NewSessionService(opts ...SessionServiceOption) *SessionService {
	s := &SessionService{
		panel:  models.NewSessionState(),
		browse: BrowseState{Warnings: []string{}},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AIEnabled reports whether summary and Q&A are offered
func (s *SessionService) AIEnabled() bool {
	return s.assistant != nil && s.assistant.Enabled()
}

// Search validates the request, resets the AI panel, fetches the listing
// and applies the filters with the category's default sort. On a fetch
// failure the table is emptied and the error returned.
func (s *SessionService) Search(ctx context.Context, req SearchRequest) (*Snapshot, error) {
	if !req.Category.IsValid() {
		return nil, fmt.Errorf("%w: %q", repository.ErrInvalidCategory, req.Category)
	}
	if err := req.Filters.Validate(); err != nil {
		return nil, err
	}
	if s.lister == nil {
		return nil, errors.New("law lister not set")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.dispatch(ctx, SearchStarted{})
	s.browse = BrowseState{
		Searched: true,
		Category: req.Category,
		Filters:  req.Filters,
		Sort:     models.DefaultSort(req.Category),
		Warnings: []string{},
	}

	log := logger.WithContext(ctx)
	result, err := s.lister.FetchList(ctx, req.Category)
	if err != nil {
		log.Warn("law search failed", zap.String("category", string(req.Category)), zap.Error(err))
		s.browse.Message = fmt.Sprintf("Failed to fetch law list: %v", err)
		snap := s.snapshotLocked()
		return &snap, err
	}

	s.browse.records = FilterLaws(result.Records, req.Filters)
	s.browse.Partial = result.Partial
	if len(result.Warnings) > 0 {
		s.browse.Warnings = append(s.browse.Warnings, result.Warnings...)
	}
	if len(s.browse.records) == 0 {
		s.browse.Message = MsgNoMatches
	}
	log.Info("law search completed",
		zap.String("category", string(req.Category)),
		zap.Int("fetched", len(result.Records)),
		zap.Int("matched", len(s.browse.records)),
		zap.Bool("partial", result.Partial),
	)
	snap := s.snapshotLocked()
	return &snap, nil
}

// Sort selects a sort column, toggling direction when it is already active
func (s *SessionService) Sort(key models.SortKey) (models.FilteredTable, error) {
	if !key.IsValid() {
		return models.FilteredTable{}, fmt.Errorf("%w: %q", ErrInvalidSortKey, key)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.browse.Searched {
		return models.FilteredTable{}, ErrSessionNotSearched
	}
	s.browse.Sort = s.browse.Sort.Toggle(key)
	return s.tableLocked(), nil
}

// ResetSort restores the category's default order
func (s *SessionService) ResetSort() (models.FilteredTable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.browse.Searched {
		return models.FilteredTable{}, ErrSessionNotSearched
	}
	s.browse.Sort = models.DefaultSort(s.browse.Category)
	return s.tableLocked(), nil
}

// Table returns the current result table
func (s *SessionService) Table() models.FilteredTable {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tableLocked()
}

// Summarize opens the summary panel for lawID and runs it to completion
func (s *SessionService) Summarize(ctx context.Context, lawID string) (models.SessionState, error) {
	if !s.AIEnabled() {
		return models.SessionState{}, ErrAIDisabled
	}
	lawID = strings.TrimSpace(lawID)
	if lawID == "" {
		return models.SessionState{}, repository.ErrMissingLawID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dispatch(ctx, SummarizeRequested{LawID: lawID})
	return s.panelLocked(), nil
}

// Ask opens the Q&A panel for lawID and loads its statute text as context
func (s *SessionService) Ask(ctx context.Context, lawID, lawName string) (models.SessionState, error) {
	if !s.AIEnabled() {
		return models.SessionState{}, ErrAIDisabled
	}
	lawID = strings.TrimSpace(lawID)
	if lawID == "" {
		return models.SessionState{}, repository.ErrMissingLawID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dispatch(ctx, AskRequested{LawID: lawID, LawName: lawName})
	return s.panelLocked(), nil
}

// SubmitQuestion asks a question in the active Q&A panel
func (s *SessionService) SubmitQuestion(ctx context.Context, question string) (models.SessionState, error) {
	if strings.TrimSpace(question) == "" {
		return models.SessionState{}, ErrEmptyQuestion
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.panel.Phase != models.PhaseQAActive {
		return models.SessionState{}, ErrNoActiveQA
	}
	if s.panel.Loading {
		return models.SessionState{}, ErrQuestionPending
	}
	s.dispatch(ctx, QuestionSubmitted{Question: question})
	return s.panelLocked(), nil
}

// ClosePanel closes the summary or Q&A panel, discarding its state
func (s *SessionService) ClosePanel(ctx context.Context) models.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dispatch(ctx, PanelClosed{})
	return s.panelLocked()
}

// State returns a copy of the AI panel state
func (s *SessionService) State() models.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.panelLocked()
}

// Snapshot returns a consistent copy of the whole session
func (s *SessionService) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Citations resolves the citations of an assistant answer against the
// active Q&A context
func (s *SessionService) Citations(answer string) []Citation {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.panel.QAContext == nil {
		return nil
	}
	return ResolveCitations(s.panel.QAContext.Text, answer)
}

// dispatch feeds ev to the reducer and executes the resulting commands
// until none remain. Must be called with mu held.
func (s *SessionService) dispatch(ctx context.Context, ev Event) {
	queue := []Event{ev}
	for len(queue) > 0 {
		var cmds []Command
		s.panel, cmds = Reduce(s.panel, queue[0])
		queue = queue[1:]
		for _, cmd := range cmds {
			if next := s.execute(ctx, cmd); next != nil {
				queue = append(queue, next)
			}
		}
	}
}

func (s *SessionService) execute(ctx context.Context, cmd Command) Event {
	log := logger.WithContext(ctx)

	switch c := cmd.(type) {
	case FetchText:
		if s.fetcher == nil {
			return TextLoaded{Epoch: c.Epoch, LawID: c.LawID, Err: errors.New("text fetcher not set")}
		}
		text, err := s.fetcher.FetchText(ctx, c.LawID)
		if errors.Is(err, repository.ErrNoExtractableText) {
			log.Info("statute has no extractable text", zap.String("law_id", c.LawID))
			return TextLoaded{Epoch: c.Epoch, LawID: c.LawID}
		}
		if err != nil {
			log.Warn("statute text fetch failed", zap.String("law_id", c.LawID), zap.Error(err))
		}
		return TextLoaded{Epoch: c.Epoch, LawID: c.LawID, Text: text, Err: err}

	case Summarize:
		return SummaryReady{Epoch: c.Epoch, LawID: c.LawID, Summary: s.assistant.Summarize(ctx, c.Text)}

	case Chat:
		answer := s.assistant.Chat(ctx, c.Context, c.History, c.Question)
		return AnswerReady{Epoch: c.Epoch, LawID: c.LawID, Answer: answer}
	}
	log.Error("unhandled session command", zap.String("command", fmt.Sprintf("%T", cmd)))
	return nil
}

func (s *SessionService) tableLocked() models.FilteredTable {
	return BuildTable(s.browse.records, s.browse.Sort, s.viewerURL)
}

func (s *SessionService) panelLocked() models.SessionState {
	out := s.panel
	out.History = append([]models.ChatTurn{}, s.panel.History...)
	return out
}

func (s *SessionService) snapshotLocked() Snapshot {
	browse := s.browse
	browse.Warnings = append([]string{}, s.browse.Warnings...)
	browse.records = nil
	return Snapshot{
		Browse:    browse,
		Table:     s.tableLocked(),
		Panel:     s.panelLocked(),
		AIEnabled: s.AIEnabled(),
	}
}
