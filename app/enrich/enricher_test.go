package enrich

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/datkv/itch-creators/app/database"
	"github.com/datkv/itch-creators/app/scrape"
)

type fakeFetcher struct {
	pages map[string]string
	errs  map[string]error

	// cancelOn aborts the surrounding context when this URL is requested,
	// simulating shutdown arriving mid-fetch
	cancelOn string
	cancel   context.CancelFunc
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.cancelOn != "" && url == f.cancelOn {
		f.cancel()
		return "", ctx.Err()
	}
	if err, ok := f.errs[url]; ok {
		return "", err
	}
	if page, ok := f.pages[url]; ok {
		return page, nil
	}
	return "", errors.New("no page registered for " + url)
}

type fakeParser struct {
	details map[string]*scrape.GameDetails
	err     error
}

func (p *fakeParser) Run(html string) (*scrape.GameDetails, error) {
	if p.err != nil {
		return nil, p.err
	}
	if details, ok := p.details[html]; ok {
		return details, nil
	}
	return nil, errors.New("no details registered for page")
}

type fakeGameStore struct {
	candidates []database.Game
	stale      []database.Game

	selectErr error
	updateErr error

	updated        []int64
	hidden         []int64
	failed         []int64
	hiddenCooldown int
	failedCooldown int
	hiddenDetails  map[int64]*scrape.GameDetails
	staleDaysSeen  int
	limitSeen      int
}

func (s *fakeGameStore) GetEnrichmentCandidates(limit int) ([]database.Game, error) {
	s.limitSeen = limit
	if s.selectErr != nil {
		return nil, s.selectErr
	}
	return s.candidates, nil
}

func (s *fakeGameStore) GetStaleGames(staleDays int, limit int) ([]database.Game, error) {
	s.staleDaysSeen = staleDays
	s.limitSeen = limit
	if s.selectErr != nil {
		return nil, s.selectErr
	}
	return s.stale, nil
}

func (s *fakeGameStore) UpdateGameRatings(gameID int64, details *scrape.GameDetails) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updated = append(s.updated, gameID)
	return nil
}

func (s *fakeGameStore) MarkRatingsHidden(gameID int64, details *scrape.GameDetails, cooldownDays int) error {
	s.hidden = append(s.hidden, gameID)
	s.hiddenCooldown = cooldownDays
	if s.hiddenDetails == nil {
		s.hiddenDetails = make(map[int64]*scrape.GameDetails)
	}
	s.hiddenDetails[gameID] = details
	return nil
}

func (s *fakeGameStore) MarkGameFailed(gameID int64, cooldownDays int) error {
	s.failed = append(s.failed, gameID)
	s.failedCooldown = cooldownDays
	return nil
}

func ratedDetails(rating float64, count int) *scrape.GameDetails {
	return &scrape.GameDetails{
		Title:       "Some Game",
		Rating:      &rating,
		RatingCount: count,
	}
}

func testGame(id int64, url string) database.Game {
	return database.Game{ID: id, Title: "Game", URL: url}
}

func TestEnricher_EnrichGame_UpdatesRatings(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{"https://dev.itch.io/cave": "page-a"}}
	parser := &fakeParser{details: map[string]*scrape.GameDetails{"page-a": ratedDetails(4.5, 150)}}
	store := &fakeGameStore{}
	enricher := NewEnricher(fetcher, parser, store, 1, 7)

	err := enricher.EnrichGame(context.Background(), testGame(42, "https://dev.itch.io/cave"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(store.updated) != 1 || store.updated[0] != 42 {
		t.Errorf("Expected game 42 updated, got %v", store.updated)
	}
	if len(store.hidden) != 0 || len(store.failed) != 0 {
		t.Errorf("Expected no hidden or failed marks, got hidden=%v failed=%v", store.hidden, store.failed)
	}
}

func TestEnricher_EnrichGame_HiddenRatings(t *testing.T) {
	details := &scrape.GameDetails{Title: "Quiet Game", CommentCount: 3}
	fetcher := &fakeFetcher{pages: map[string]string{"https://dev.itch.io/quiet": "page-b"}}
	parser := &fakeParser{details: map[string]*scrape.GameDetails{"page-b": details}}
	store := &fakeGameStore{}
	enricher := NewEnricher(fetcher, parser, store, 1, 7)

	err := enricher.EnrichGame(context.Background(), testGame(7, "https://dev.itch.io/quiet"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(store.hidden) != 1 || store.hidden[0] != 7 {
		t.Errorf("Expected game 7 marked hidden, got %v", store.hidden)
	}
	if store.hiddenCooldown != 7 {
		t.Errorf("Expected hidden cooldown 7 days, got %d", store.hiddenCooldown)
	}
	if store.hiddenDetails[7] != details {
		t.Error("Expected parsed metadata passed through for hidden game")
	}
	if len(store.updated) != 0 {
		t.Errorf("Expected no rating update for hidden game, got %v", store.updated)
	}
}

func TestEnricher_EnrichGame_FetchError(t *testing.T) {
	fetcher := &fakeFetcher{errs: map[string]error{"https://dev.itch.io/gone": errors.New("HTTP error: 500")}}
	store := &fakeGameStore{}
	enricher := NewEnricher(fetcher, &fakeParser{}, store, 1, 7)

	err := enricher.EnrichGame(context.Background(), testGame(9, "https://dev.itch.io/gone"))
	if err == nil {
		t.Fatal("Expected error for failed fetch, got nil")
	}
	if !strings.Contains(err.Error(), "failed to fetch game page") {
		t.Errorf("Expected fetch error context, got %v", err)
	}

	if len(store.updated) != 0 || len(store.hidden) != 0 {
		t.Errorf("Expected no writes after fetch failure, got updated=%v hidden=%v", store.updated, store.hidden)
	}
}

func TestEnricher_EnrichPending_BatchIsolation(t *testing.T) {
	fetcher := &fakeFetcher{
		pages: map[string]string{
			"https://a.itch.io/one":   "page-1",
			"https://c.itch.io/three": "page-3",
		},
		errs: map[string]error{"https://b.itch.io/two": errors.New("HTTP error: 503")},
	}
	parser := &fakeParser{details: map[string]*scrape.GameDetails{
		"page-1": ratedDetails(4.0, 10),
		"page-3": ratedDetails(3.5, 20),
	}}
	store := &fakeGameStore{candidates: []database.Game{
		testGame(1, "https://a.itch.io/one"),
		testGame(2, "https://b.itch.io/two"),
		testGame(3, "https://c.itch.io/three"),
	}}
	enricher := NewEnricher(fetcher, parser, store, 1, 7)

	stats, err := enricher.EnrichPending(context.Background(), 50)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if stats.Processed != 2 || stats.Errors != 1 {
		t.Errorf("Expected 2 processed and 1 error, got %+v", stats)
	}
	if len(store.failed) != 1 || store.failed[0] != 2 {
		t.Errorf("Expected only game 2 marked failed, got %v", store.failed)
	}
	if store.failedCooldown != 1 {
		t.Errorf("Expected failure cooldown 1 day, got %d", store.failedCooldown)
	}
	if len(store.updated) != 2 {
		t.Errorf("Expected games 1 and 3 updated, got %v", store.updated)
	}
	if store.limitSeen != 50 {
		t.Errorf("Expected candidate limit 50, got %d", store.limitSeen)
	}
}

func TestEnricher_EnrichPending_ParseFailureSetsCooldown(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{"https://a.itch.io/bad": "garbage"}}
	parser := &fakeParser{err: errors.New("unexpected EOF")}
	store := &fakeGameStore{candidates: []database.Game{testGame(5, "https://a.itch.io/bad")}}
	enricher := NewEnricher(fetcher, parser, store, 2, 7)

	stats, err := enricher.EnrichPending(context.Background(), 10)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if stats.Errors != 1 || stats.Processed != 0 {
		t.Errorf("Expected 1 error and 0 processed, got %+v", stats)
	}
	if len(store.failed) != 1 || store.failed[0] != 5 {
		t.Errorf("Expected game 5 marked failed, got %v", store.failed)
	}
	if store.failedCooldown != 2 {
		t.Errorf("Expected failure cooldown 2 days, got %d", store.failedCooldown)
	}
}

func TestEnricher_EnrichPending_SelectError(t *testing.T) {
	store := &fakeGameStore{selectErr: errors.New("connection refused")}
	enricher := NewEnricher(&fakeFetcher{}, &fakeParser{}, store, 1, 7)

	_, err := enricher.EnrichPending(context.Background(), 10)
	if err == nil {
		t.Fatal("Expected error when candidate selection fails, got nil")
	}
	if !strings.Contains(err.Error(), "failed to select enrichment candidates") {
		t.Errorf("Expected selection error context, got %v", err)
	}
}

func TestEnricher_RefreshStale_UsesStaleList(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{"https://a.itch.io/old": "page-old"}}
	parser := &fakeParser{details: map[string]*scrape.GameDetails{"page-old": ratedDetails(4.2, 80)}}
	store := &fakeGameStore{
		candidates: []database.Game{testGame(99, "https://never.itch.io/used")},
		stale:      []database.Game{testGame(11, "https://a.itch.io/old")},
	}
	enricher := NewEnricher(fetcher, parser, store, 1, 7)

	stats, err := enricher.RefreshStale(context.Background(), 30, 25)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if stats.Processed != 1 || stats.Errors != 0 {
		t.Errorf("Expected 1 processed and 0 errors, got %+v", stats)
	}
	if len(store.updated) != 1 || store.updated[0] != 11 {
		t.Errorf("Expected stale game 11 refreshed, got %v", store.updated)
	}
	if store.staleDaysSeen != 30 {
		t.Errorf("Expected staleness threshold 30 days, got %d", store.staleDaysSeen)
	}
	if store.limitSeen != 25 {
		t.Errorf("Expected stale limit 25, got %d", store.limitSeen)
	}
}

func TestEnricher_EnrichPending_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	fetcher := &fakeFetcher{
		pages:    map[string]string{"https://a.itch.io/one": "page-1"},
		cancelOn: "https://b.itch.io/two",
		cancel:   cancel,
	}
	parser := &fakeParser{details: map[string]*scrape.GameDetails{"page-1": ratedDetails(4.0, 10)}}
	store := &fakeGameStore{candidates: []database.Game{
		testGame(1, "https://a.itch.io/one"),
		testGame(2, "https://b.itch.io/two"),
		testGame(3, "https://c.itch.io/three"),
	}}
	enricher := NewEnricher(fetcher, parser, store, 1, 7)

	stats, err := enricher.EnrichPending(ctx, 10)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if stats.Processed != 1 {
		t.Errorf("Expected 1 game processed before cancellation, got %d", stats.Processed)
	}
	// Cancellation is not a page failure, so no cooldown is recorded
	if len(store.failed) != 0 {
		t.Errorf("Expected no failure marks after cancellation, got %v", store.failed)
	}
	if len(store.updated) != 1 || store.updated[0] != 1 {
		t.Errorf("Expected only game 1 updated, got %v", store.updated)
	}
}
