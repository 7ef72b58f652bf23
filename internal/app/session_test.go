package app_test

import (
	"context"
	"strings"
	"testing"

	"github.com/htlin222/gkahoot/internal/app"
	"github.com/htlin222/gkahoot/internal/domain"
	"github.com/htlin222/gkahoot/internal/feed"
	"github.com/htlin222/gkahoot/internal/scoring"
)

type stubSource struct {
	fetch func(ctx context.Context, link string) ([]feed.RawRow, error)
}

func (s *stubSource) Fetch(ctx context.Context, link string) ([]feed.RawRow, error) {
	return s.fetch(ctx, link)
}

func newTestSession(source feed.Source) *app.QuizSession {
	normalizer := feed.NewNormalizer(feed.Columns{Timestamp: "ts", Participant: "id", Answer: "ans"})
	return app.NewQuizSession(source, normalizer, scoring.NewEngine(scoring.DefaultPolicy()))
}

const testCatalog = "index,link,ans\n1,http://feed/q1,A\n2,http://feed/q2,B\n"

func TestScoreCurrentStoresStats(t *testing.T) {
	source := &stubSource{fetch: func(_ context.Context, link string) ([]feed.RawRow, error) {
		return []feed.RawRow{
			{"ts": "2024/1/15 09:00:00", "id": "101", "ans": "a"},
			{"ts": "2024/1/15 09:00:30", "id": "102", "ans": "A"},
			{"ts": "2024/1/15 09:01:00", "id": "103", "ans": "B"},
		}, nil
	}}
	session := newTestSession(source)
	if _, err := session.LoadCatalog(strings.NewReader(testCatalog)); err != nil {
		t.Fatalf("load catalog: %v", err)
	}

	stats, err := session.ScoreCurrent(context.Background())
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if stats.CorrectSubmissions != 2 || stats.TotalSubmissions != 3 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.Scores[0].ParticipantID != "101" || stats.Scores[0].Points != 130 {
		t.Fatalf("unexpected first score: %+v", stats.Scores[0])
	}

	stored, ok := session.StatsFor(1)
	if !ok || !stored.Loaded {
		t.Fatalf("expected stats stored for question 1")
	}
	rankings := session.Rankings()
	if len(rankings) != 2 || rankings[0].ParticipantID != "101" {
		t.Fatalf("unexpected rankings: %+v", rankings)
	}
}

func TestScoreCurrentEmptyFeedLeavesStatsUnset(t *testing.T) {
	source := &stubSource{fetch: func(context.Context, string) ([]feed.RawRow, error) {
		return nil, nil
	}}
	session := newTestSession(source)
	if _, err := session.LoadCatalog(strings.NewReader(testCatalog)); err != nil {
		t.Fatalf("load catalog: %v", err)
	}

	if _, err := session.ScoreCurrent(context.Background()); err != domain.ErrEmptyFeed {
		t.Fatalf("expected ErrEmptyFeed, got %v", err)
	}
	if _, ok := session.StatsFor(1); ok {
		t.Fatalf("stats must stay unset after a failed pass")
	}
	if stats := session.CurrentStats(); stats.Loaded {
		t.Fatalf("current stats must report not loaded")
	}
}

func TestScoreCurrentFetchErrorPropagates(t *testing.T) {
	source := &stubSource{fetch: func(_ context.Context, link string) ([]feed.RawRow, error) {
		return nil, &domain.FetchError{Link: link, Status: "404 Not Found"}
	}}
	session := newTestSession(source)
	if _, err := session.LoadCatalog(strings.NewReader(testCatalog)); err != nil {
		t.Fatalf("load catalog: %v", err)
	}

	_, err := session.ScoreCurrent(context.Background())
	if _, ok := err.(*domain.FetchError); !ok {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if _, ok := session.StatsFor(1); ok {
		t.Fatalf("stats must stay unset after fetch failure")
	}
}

func TestReloadDiscardsStatsAndResetsPosition(t *testing.T) {
	source := &stubSource{fetch: func(context.Context, string) ([]feed.RawRow, error) {
		return []feed.RawRow{{"ts": "t1", "id": "1", "ans": "A"}}, nil
	}}
	session := newTestSession(source)
	if _, err := session.LoadCatalog(strings.NewReader(testCatalog)); err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	if _, err := session.ScoreCurrent(context.Background()); err != nil {
		t.Fatalf("score: %v", err)
	}
	if _, err := session.Next(); err != nil {
		t.Fatalf("next: %v", err)
	}

	if _, err := session.LoadCatalog(strings.NewReader(testCatalog)); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if _, ok := session.StatsFor(1); ok {
		t.Fatalf("reload must discard previous stats")
	}
	if pos, _ := session.Position(); pos != 0 {
		t.Fatalf("reload must reset position, got %d", pos)
	}
	if len(session.Rankings()) != 0 {
		t.Fatalf("rankings must be empty after reload")
	}
}

func TestStaleResultDiscardedAfterMidFetchReload(t *testing.T) {
	var session *app.QuizSession
	source := &stubSource{fetch: func(context.Context, string) ([]feed.RawRow, error) {
		// Simulate the operator re-uploading the catalog while the fetch
		// for the old catalog is still in flight.
		if _, err := session.LoadCatalog(strings.NewReader(testCatalog)); err != nil {
			t.Fatalf("mid-fetch reload: %v", err)
		}
		return []feed.RawRow{{"ts": "t1", "id": "1", "ans": "A"}}, nil
	}}
	session = newTestSession(source)
	if _, err := session.LoadCatalog(strings.NewReader(testCatalog)); err != nil {
		t.Fatalf("load catalog: %v", err)
	}

	if _, err := session.ScoreCurrent(context.Background()); err != domain.ErrCatalogReloaded {
		t.Fatalf("expected ErrCatalogReloaded, got %v", err)
	}
	if _, ok := session.StatsFor(1); ok {
		t.Fatalf("stale result must not be stored")
	}
}

func TestNavigationClamps(t *testing.T) {
	source := &stubSource{fetch: func(context.Context, string) ([]feed.RawRow, error) { return nil, nil }}
	session := newTestSession(source)
	if _, err := session.LoadCatalog(strings.NewReader(testCatalog)); err != nil {
		t.Fatalf("load catalog: %v", err)
	}

	if q, err := session.Prev(); err != nil || q.Index != 1 {
		t.Fatalf("prev at start must clamp to first, got %+v %v", q, err)
	}
	if q, err := session.Next(); err != nil || q.Index != 2 {
		t.Fatalf("next: got %+v %v", q, err)
	}
	if q, err := session.Next(); err != nil || q.Index != 2 {
		t.Fatalf("next at end must clamp to last, got %+v %v", q, err)
	}
	if err := session.SetPosition(5); err != domain.ErrNoQuestion {
		t.Fatalf("expected ErrNoQuestion for out-of-range position, got %v", err)
	}
}

func TestSubscribeReceivesUpdates(t *testing.T) {
	source := &stubSource{fetch: func(context.Context, string) ([]feed.RawRow, error) {
		return []feed.RawRow{{"ts": "t1", "id": "1", "ans": "A"}}, nil
	}}
	session := newTestSession(source)
	if _, err := session.LoadCatalog(strings.NewReader(testCatalog)); err != nil {
		t.Fatalf("load catalog: %v", err)
	}

	updates, cancel := session.Subscribe()
	defer cancel()

	initial := <-updates
	if initial.QuestionsScored != 0 {
		t.Fatalf("expected empty initial snapshot, got %+v", initial)
	}

	if _, err := session.ScoreCurrent(context.Background()); err != nil {
		t.Fatalf("score: %v", err)
	}
	update := <-updates
	if update.QuestionsScored != 1 || len(update.Rankings) != 1 {
		t.Fatalf("expected leaderboard update, got %+v", update)
	}
	if update.Rankings[0].TotalPoints != 130 {
		t.Fatalf("expected 130 points, got %+v", update.Rankings[0])
	}
}

func TestScoreCurrentWithoutCatalog(t *testing.T) {
	source := &stubSource{fetch: func(context.Context, string) ([]feed.RawRow, error) { return nil, nil }}
	session := newTestSession(source)
	if _, err := session.ScoreCurrent(context.Background()); err != domain.ErrNoQuestion {
		t.Fatalf("expected ErrNoQuestion, got %v", err)
	}
}
