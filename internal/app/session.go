package app

import (
	"context"
	"io"
	"log"
	"sync"

	"github.com/htlin222/gkahoot/internal/catalog"
	"github.com/htlin222/gkahoot/internal/domain"
	"github.com/htlin222/gkahoot/internal/feed"
	"github.com/htlin222/gkahoot/internal/scoring"
)

// QuizSession owns all mutable state for one quiz run: the catalog, the
// active position, per-question stats, and leaderboard subscribers. Every
// mutation goes through a method here; there is no ambient state.
type QuizSession struct {
	feeds      feed.Source
	normalizer *feed.Normalizer
	engine     *scoring.Engine

	mu          sync.RWMutex
	questions   []domain.Question
	position    int
	stats       map[int]domain.Stats
	generation  uint64
	busy        bool
	subscribers map[chan domain.Leaderboard]struct{}
}

func NewQuizSession(feeds feed.Source, normalizer *feed.Normalizer, engine *scoring.Engine) *QuizSession {
	return &QuizSession{
		feeds:       feeds,
		normalizer:  normalizer,
		engine:      engine,
		stats:       make(map[int]domain.Stats),
		subscribers: make(map[chan domain.Leaderboard]struct{}),
	}
}

// LoadCatalog parses an uploaded catalog CSV and replaces the current one
// wholesale. On parse failure the existing catalog is left untouched. A
// successful replace resets the position to the first question and discards
// every previously computed Stats entry: after a reload the same index may
// mean a different question.
func (s *QuizSession) LoadCatalog(r io.Reader) ([]domain.Question, error) {
	questions, err := catalog.Parse(r)
	if err != nil {
		return nil, err
	}
	s.ReplaceQuestions(questions)
	return questions, nil
}

// ReplaceQuestions installs an already-parsed catalog. Used by LoadCatalog
// and by infrastructure that sources questions elsewhere (e.g. Postgres).
func (s *QuizSession) ReplaceQuestions(questions []domain.Question) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.questions = questions
	s.position = 0
	s.stats = make(map[int]domain.Stats)
	s.generation++
	s.broadcastLocked()
}

// CurrentQuestion returns the active question.
func (s *QuizSession) CurrentQuestion() (domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.position < 0 || s.position >= len(s.questions) {
		return domain.Question{}, domain.ErrNoQuestion
	}
	return s.questions[s.position], nil
}

// Position reports the current zero-based position and the catalog size.
func (s *QuizSession) Position() (int, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.position, len(s.questions)
}

// SetPosition jumps to an explicit zero-based position.
func (s *QuizSession) SetPosition(pos int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if pos < 0 || pos >= len(s.questions) {
		return domain.ErrNoQuestion
	}
	s.position = pos
	return nil
}

// Next advances to the following question, clamped at the last one.
func (s *QuizSession) Next() (domain.Question, error) {
	return s.step(1)
}

// Prev steps back to the preceding question, clamped at the first one.
func (s *QuizSession) Prev() (domain.Question, error) {
	return s.step(-1)
}

func (s *QuizSession) step(delta int) (domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.questions) == 0 {
		return domain.Question{}, domain.ErrNoQuestion
	}
	pos := s.position + delta
	if pos < 0 {
		pos = 0
	}
	if pos >= len(s.questions) {
		pos = len(s.questions) - 1
	}
	s.position = pos
	return s.questions[pos], nil
}

// ScoreCurrent fetches the active question's feed, normalizes it, scores it,
// and stores the result keyed by question index. On any failure the
// question's prior Stats entry is left untouched. Overlapping triggers are
// rejected rather than interleaved, and a result whose catalog was replaced
// mid-fetch is discarded.
func (s *QuizSession) ScoreCurrent(ctx context.Context) (domain.Stats, error) {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return domain.Stats{}, domain.ErrScoringInFlight
	}
	if s.position < 0 || s.position >= len(s.questions) {
		s.mu.Unlock()
		return domain.Stats{}, domain.ErrNoQuestion
	}
	question := s.questions[s.position]
	generation := s.generation
	s.busy = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
	}()

	rows, err := s.feeds.Fetch(ctx, question.Link)
	if err != nil {
		return domain.Stats{}, err
	}
	submissions := s.normalizer.NormalizeAll(rows)

	stats, err := s.engine.Score(question, submissions)
	if err != nil {
		return domain.Stats{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != generation {
		log.Printf("session: dropping stale result for question %d", question.Index)
		return domain.Stats{}, domain.ErrCatalogReloaded
	}
	s.stats[question.Index] = stats
	s.broadcastLocked()
	return stats, nil
}

// CurrentStats returns the active question's stats, or the unloaded zero
// value when it has not been scored.
func (s *QuizSession) CurrentStats() domain.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.position < 0 || s.position >= len(s.questions) {
		return domain.Stats{}
	}
	return s.stats[s.questions[s.position].Index]
}

// StatsFor returns the stats stored for a question index.
func (s *QuizSession) StatsFor(index int) (domain.Stats, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats, ok := s.stats[index]
	return stats, ok
}

// Rankings recomputes the cumulative leaderboard from every question scored
// so far. Always derived fresh; never cached.
func (s *QuizSession) Rankings() []domain.Ranking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return scoring.Rank(s.stats)
}

// Leaderboard returns the ranking snapshot pushed to subscribers.
func (s *QuizSession) Leaderboard() domain.Leaderboard {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.leaderboardLocked()
}

// Subscribe returns a channel receiving a leaderboard snapshot immediately
// and again after every successful scoring pass or catalog reload. The
// caller must invoke the returned cancel function to avoid leaks.
func (s *QuizSession) Subscribe() (<-chan domain.Leaderboard, func()) {
	ch := make(chan domain.Leaderboard, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	initial := s.leaderboardLocked()
	s.mu.Unlock()

	ch <- initial

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *QuizSession) broadcastLocked() {
	lb := s.leaderboardLocked()
	for ch := range s.subscribers {
		select {
		case ch <- lb:
		default:
			// Drop the oldest snapshot so a slow reader never blocks scoring.
			select {
			case <-ch:
			default:
			}
			ch <- lb
		}
	}
}

func (s *QuizSession) leaderboardLocked() domain.Leaderboard {
	return domain.Leaderboard{
		Rankings:        scoring.Rank(s.stats),
		QuestionsScored: len(s.stats),
	}
}
