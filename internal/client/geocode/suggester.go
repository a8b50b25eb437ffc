package geocode

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// DefaultDebounce is the quiet period after the last keystroke before a
// lookup is sent.
const DefaultDebounce = 300 * time.Millisecond

type Searcher interface {
	Search(ctx context.Context, query string) ([]Suggestion, error)
}

// Result is one delivered lookup. Token identifies the Update it answers.
type Result struct {
	Token       ulid.ULID
	Query       string
	Suggestions []Suggestion
	Err         error
}

// Suggester debounces queries and delivers only the answer to the newest
// one. Every Update gets a monotonically increasing ULID; a result whose
// token is older than the newest issued token is dropped.
type Suggester struct {
	search  Searcher
	deliver func(Result)
	delay   time.Duration

	mu       sync.Mutex
	entropy  *ulid.MonotonicEntropy
	latest   ulid.ULID
	timer    *time.Timer
	cancel   context.CancelFunc
	closed   bool
	inflight sync.WaitGroup
}

type Option func(*Suggester)

func WithDebounce(d time.Duration) Option {
	return func(s *Suggester) { s.delay = d }
}

// NewSuggester calls deliver from a background goroutine.
func NewSuggester(search Searcher, deliver func(Result), opts ...Option) *Suggester {
	s := &Suggester{
		search:  search,
		deliver: deliver,
		delay:   DefaultDebounce,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Update restarts the debounce window for query and returns its token.
func (s *Suggester) Update(query string) ulid.ULID {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ulid.ULID{}
	}
	s.stopTimerLocked()

	token := ulid.MustNew(ulid.Now(), s.entropy)
	s.latest = token

	s.inflight.Add(1)
	s.timer = time.AfterFunc(s.delay, func() { s.run(token, query) })
	return token
}

// Close cancels pending and in-flight lookups and waits for them to end.
// Nothing is delivered afterwards.
func (s *Suggester) Close() {
	s.mu.Lock()
	s.closed = true
	s.stopTimerLocked()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()

	s.inflight.Wait()
}

func (s *Suggester) stopTimerLocked() {
	if s.timer != nil && s.timer.Stop() {
		s.inflight.Done()
	}
	s.timer = nil
}

func (s *Suggester) run(token ulid.ULID, query string) {
	defer s.inflight.Done()

	s.mu.Lock()
	if s.closed || s.isStaleLocked(token) {
		s.mu.Unlock()
		return
	}
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.mu.Unlock()

	defer cancel()

	var res []Suggestion
	var err error
	if query != "" {
		res, err = s.search.Search(ctx, query)
	}

	s.mu.Lock()
	drop := s.closed || s.isStaleLocked(token)
	s.mu.Unlock()
	if drop {
		return
	}

	s.deliver(Result{Token: token, Query: query, Suggestions: res, Err: err})
}

func (s *Suggester) isStaleLocked(token ulid.ULID) bool {
	return token.Compare(s.latest) < 0
}
