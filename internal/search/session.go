// Package search drives the smart search box on the server. A Session holds
// the interaction state for one browser search widget: the browser posts
// actions (keystrokes, suggestion picks, filter edits, voice outcomes) and
// receives state snapshots as they change.
package search

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/ffacttt-hash/frontend/internal/catalog"
	"github.com/ffacttt-hash/frontend/internal/logger"
)

const (
	// MinQueryLength is the trimmed length below which input clears results
	// instead of querying.
	MinQueryLength  = 2
	SuggestionLimit = 8
	ResultLimit     = 20
	DefaultDebounce = 300 * time.Millisecond
)

// Backend is the part of the catalog client a session uses.
type Backend interface {
	Autocomplete(ctx context.Context, q string, limit int) (catalog.Response[[]catalog.Suggestion], error)
	SmartSearch(ctx context.Context, sq catalog.SmartQuery) (catalog.Response[catalog.SearchPage], error)
}

type Filters struct {
	Genres     []string `json:"genres"`
	Categories []string `json:"categories"`
	Year       int      `json:"year,omitempty"`
	MinRating  float64  `json:"rating,omitempty"`
}

func (f Filters) clone() Filters {
	f.Genres = slices.Clone(f.Genres)
	f.Categories = slices.Clone(f.Categories)
	return f
}

func (f Filters) Empty() bool {
	return len(f.Genres) == 0 && len(f.Categories) == 0 && f.Year == 0 && f.MinRating == 0
}

// normalize drops blank and duplicate entries and out of range numbers.
func (f Filters) normalize() Filters {
	f.Genres = uniqueNonBlank(f.Genres)
	f.Categories = uniqueNonBlank(f.Categories)
	if f.Year < 0 {
		f.Year = 0
	}
	if f.MinRating < 0 || f.MinRating > 10 {
		f.MinRating = 0
	}
	return f
}

func uniqueNonBlank(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s != "" && !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}

// Snapshot is the full state of a session at one point in time. Version
// increases with every change.
type Snapshot struct {
	Version         uint64                 `json:"version"`
	Query           string                 `json:"query"`
	Suggestions     []catalog.Suggestion   `json:"suggestions"`
	Results         []catalog.SearchResult `json:"results"`
	Filters         Filters                `json:"filters"`
	SuggestionsOpen bool                   `json:"suggestionsOpen"`
	ResultsOpen     bool                   `json:"resultsOpen"`
	FiltersOpen     bool                   `json:"filtersOpen"`
	Searching       bool                   `json:"searching"`
	Listening       bool                   `json:"listening"`
	SpeechSupported bool                   `json:"speechSupported"`
	Notice          string                 `json:"notice,omitempty"`
}

func (s Snapshot) clone() Snapshot {
	s.Suggestions = slices.Clone(s.Suggestions)
	s.Results = slices.Clone(s.Results)
	s.Filters = s.Filters.clone()
	return s
}

// Config carries the dependencies shared by every session.
type Config struct {
	Backend  Backend
	Clock    Clock
	Debounce time.Duration
	Logger   *slog.Logger
}

type Session struct {
	id      string
	backend Backend
	speech  SpeechProvider
	clock   Clock
	log     *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	debounce *Debouncer

	mu          sync.Mutex
	state       Snapshot
	suggestSeq  Sequence
	searchSeq   Sequence
	subs        map[int]chan Snapshot
	nextSub     int
	lastActive  time.Time
	closed      bool
	voiceActive bool
	// debounceGen identifies the latest scheduled search. A timer callback
	// can be past the debouncer's own check when a newer input cancels it.
	debounceGen uint64
}

func NewSession(id string, speech SpeechProvider, cfg Config) *Session {
	if cfg.Clock == nil {
		cfg.Clock = RealClock
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if speech == nil {
		speech = Unavailable
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		id:         id,
		backend:    cfg.Backend,
		speech:     speech,
		clock:      cfg.Clock,
		log:        cfg.Logger.With(slog.String("search_session", id)),
		ctx:        ctx,
		cancel:     cancel,
		debounce:   NewDebouncer(cfg.Clock, cfg.Debounce),
		state:      Snapshot{SpeechSupported: speech.Supported()},
		subs:       make(map[int]chan Snapshot),
		lastActive: cfg.Clock.Now(),
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) Speech() SpeechProvider { return s.speech }

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Input handles a change to the search text. Short input clears suggestions
// and results without touching the network and discards anything in flight.
// Longer input fetches suggestions right away and schedules a debounced
// search for the latest text.
func (s *Session) Input(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.touch()

	s.state.Query = text
	s.state.Notice = ""
	if len([]rune(strings.TrimSpace(text))) < MinQueryLength {
		s.cancelDebounce()
		s.suggestSeq.Invalidate()
		s.searchSeq.Invalidate()
		s.state.Suggestions = nil
		s.state.Results = nil
		s.state.SuggestionsOpen = false
		s.state.ResultsOpen = false
		s.state.Searching = false
		s.publish()
		return
	}

	s.autocomplete(text)
	s.debounceGen++
	gen := s.debounceGen
	s.debounce.Trigger(func() { s.debouncedSearch(gen, text) })
	s.publish()
}

func (s *Session) debouncedSearch(gen uint64, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen != s.debounceGen || text != s.state.Query {
		return
	}
	q := strings.TrimSpace(text)
	if len([]rune(q)) < MinQueryLength {
		return
	}
	s.search(q)
	s.publish()
}

// cancelDebounce drops the scheduled search, including one whose timer
// already fired. Must hold s.mu.
func (s *Session) cancelDebounce() {
	s.debounce.Cancel()
	s.debounceGen++
}

// SelectSuggestion replaces the query with the suggestion text and searches
// immediately.
func (s *Session) SelectSuggestion(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.touch()

	s.state.Query = text
	s.closeSuggestions()
	s.cancelDebounce()
	if q := strings.TrimSpace(text); q != "" {
		s.search(q)
	}
	s.publish()
}

// Submit searches the current query immediately. Blank queries are ignored.
func (s *Session) Submit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.touch()

	q := strings.TrimSpace(s.state.Query)
	if q == "" {
		return
	}
	s.cancelDebounce()
	s.closeSuggestions()
	s.search(q)
	s.publish()
}

// SetFilters replaces the advanced filters. The search is not re-run until
// ApplyFilters.
func (s *Session) SetFilters(f Filters) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.touch()

	s.state.Filters = f.normalize()
	s.publish()
}

func (s *Session) ClearFilters() {
	s.SetFilters(Filters{})
}

func (s *Session) ToggleFilters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.touch()

	s.state.FiltersOpen = !s.state.FiltersOpen
	s.publish()
}

// ApplyFilters closes the filter panel and re-runs the search for the
// current query, if any.
func (s *Session) ApplyFilters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.touch()

	s.state.FiltersOpen = false
	if q := strings.TrimSpace(s.state.Query); q != "" {
		s.cancelDebounce()
		s.search(q)
	}
	s.publish()
}

// Clear empties the query and both panels. Filters are kept.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.touch()

	s.cancelDebounce()
	s.suggestSeq.Invalidate()
	s.searchSeq.Invalidate()
	s.state.Query = ""
	s.state.Notice = ""
	s.state.Suggestions = nil
	s.state.Results = nil
	s.state.SuggestionsOpen = false
	s.state.ResultsOpen = false
	s.state.Searching = false
	s.publish()
}

// Dismiss closes the suggestion list, as on a click outside the widget.
func (s *Session) Dismiss() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.state.SuggestionsOpen {
		return
	}
	s.touch()

	s.state.SuggestionsOpen = false
	s.publish()
}

// CloseResults hides the results panel without clearing the query.
func (s *Session) CloseResults() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.state.ResultsOpen {
		return
	}
	s.touch()

	s.state.ResultsOpen = false
	s.publish()
}

// StartVoice begins a single-shot recognition. Without a capable provider
// the session shows a notice and returns ErrSpeechUnsupported. A second
// start while listening is a no-op.
func (s *Session) StartVoice() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.touch()

	if !s.speech.Supported() {
		s.state.Notice = SpeechUnsupportedNotice
		s.publish()
		return ErrSpeechUnsupported
	}
	if s.voiceActive {
		return nil
	}

	results, err := s.speech.Listen(s.ctx)
	if err != nil {
		s.log.Warn("search: start voice failed", logger.Error(err))
		return err
	}
	s.voiceActive = true
	s.state.Listening = true
	s.state.Notice = ""
	s.publish()

	s.wg.Add(1)
	go s.consumeSpeech(results)
	return nil
}

func (s *Session) consumeSpeech(results <-chan SpeechResult) {
	defer s.wg.Done()

	for res := range results {
		if res.Err != nil {
			s.log.Warn("search: voice recognition failed", logger.Error(res.Err))
			continue
		}
		s.mu.Lock()
		if !s.closed {
			s.touch()
			s.state.Query = res.Transcript
			s.cancelDebounce()
			s.closeSuggestions()
			if q := strings.TrimSpace(res.Transcript); q != "" {
				s.search(q)
			}
			s.publish()
		}
		s.mu.Unlock()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.voiceActive = false
	if !s.closed {
		s.state.Listening = false
		s.publish()
	}
}

// autocomplete fetches suggestions for text. Must hold s.mu.
func (s *Session) autocomplete(text string) {
	ticket := s.suggestSeq.Next()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		resp, err := s.backend.Autocomplete(s.ctx, text, SuggestionLimit)

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed || !s.suggestSeq.Current(ticket) {
			return
		}
		if err != nil {
			s.log.Warn("search: autocomplete failed", logger.Error(err), slog.String("query", text))
			return
		}
		if !resp.Success {
			s.log.Debug("search: autocomplete unsuccessful", slog.String("message", resp.Failure("")))
			return
		}
		s.state.Suggestions = resp.Data
		s.state.SuggestionsOpen = true
		s.publish()
	}()
}

// search runs the smart search for q with a snapshot of the current
// filters. Must hold s.mu.
func (s *Session) search(q string) {
	ticket := s.searchSeq.Next()
	f := s.state.Filters.clone()
	s.state.Searching = true

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		resp, err := s.backend.SmartSearch(s.ctx, catalog.SmartQuery{
			Query:      q,
			Page:       1,
			Limit:      ResultLimit,
			Genres:     f.Genres,
			Categories: f.Categories,
			Year:       f.Year,
			MinRating:  f.MinRating,
		})

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed || !s.searchSeq.Current(ticket) {
			return
		}
		s.state.Searching = false
		switch {
		case err != nil:
			s.log.Warn("search: smart search failed", logger.Error(err), slog.String("query", q))
		case !resp.Success:
			s.log.Debug("search: smart search unsuccessful", slog.String("message", resp.Failure("")))
		default:
			s.state.Results = resp.Data.Results
			s.state.ResultsOpen = true
			// suggestions for older text must not reopen over the results
			s.closeSuggestions()
		}
		s.publish()
	}()
}

// closeSuggestions hides suggestions and drops any in flight. Must hold s.mu.
func (s *Session) closeSuggestions() {
	s.suggestSeq.Invalidate()
	s.state.SuggestionsOpen = false
}

// Subscribe returns a channel of snapshots, starting with the current one.
// Slow readers only ever see the latest snapshot. The returned func
// unsubscribes and closes the channel.
func (s *Session) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	ch <- s.state.clone()
	s.touch()
	s.mu.Unlock()

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
}

// publish bumps the version and hands the new snapshot to subscribers,
// replacing any snapshot they have not read yet. Must hold s.mu.
func (s *Session) publish() {
	s.state.Version++
	snap := s.state.clone()
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}

func (s *Session) touch() {
	s.lastActive = s.clock.Now()
}

// Idle reports whether the session has no subscribers and has seen no
// activity for at least d.
func (s *Session) Idle(d time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs) == 0 && s.clock.Now().Sub(s.lastActive) >= d
}

// Close cancels pending work, drops late responses, and closes every
// subscriber channel. It waits for in-flight requests to return.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.cancelDebounce()
	s.cancel()
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
	s.mu.Unlock()

	s.wg.Wait()
}
