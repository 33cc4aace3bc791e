package discover

import (
	"context"
	"errors"
	"testing"

	"github.com/datkv/itch-creators/app/scrape"
	"github.com/datkv/itch-creators/app/sources"
)

type fakeBrowseParser struct {
	pages map[string]*scrape.BrowsePage
}

func (p *fakeBrowseParser) Run(html string, baseURL string) (*scrape.BrowsePage, error) {
	if page, ok := p.pages[html]; ok {
		return page, nil
	}
	return nil, errors.New("no listing registered for page")
}

func browseGame(creator, slug string) scrape.DiscoveredGame {
	return scrape.DiscoveredGame{
		Title:       slug,
		URL:         "https://" + creator + ".itch.io/" + slug,
		CreatorName: creator,
	}
}

func TestBrowseCrawler_CrawlSource(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{
		"https://itch.io/games/top-rated":        "listing-1",
		"https://itch.io/games/top-rated?page=2": "listing-2",
	}}
	parser := &fakeBrowseParser{pages: map[string]*scrape.BrowsePage{
		"listing-1": {
			Games:    []scrape.DiscoveredGame{browseGame("alice", "one"), browseGame("bob", "two")},
			NextPage: "https://itch.io/games/top-rated?page=2",
		},
		"listing-2": {
			Games: []scrape.DiscoveredGame{browseGame("bob", "two"), browseGame("carol", "three")},
		},
	}}
	crawler := NewBrowseCrawler(fetcher, parser, NewIngestor(&fakeCreatorStore{}, &fakeGameStore{}))

	source := sources.BrowsePage{Name: "top-rated", URL: "https://itch.io/games/top-rated", MaxPages: 5}
	games, err := crawler.CrawlSource(context.Background(), source)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(games) != 3 {
		t.Errorf("Expected 3 unique games across pages, got %d", len(games))
	}
	if len(fetcher.fetched) != 2 {
		t.Errorf("Expected 2 pages fetched, got %d", len(fetcher.fetched))
	}
}

func TestBrowseCrawler_CrawlSource_RespectsPageCap(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]string{"https://itch.io/games": "listing-1"}}
	parser := &fakeBrowseParser{pages: map[string]*scrape.BrowsePage{
		"listing-1": {
			Games:    []scrape.DiscoveredGame{browseGame("alice", "one")},
			NextPage: "https://itch.io/games?page=2",
		},
	}}
	crawler := NewBrowseCrawler(fetcher, parser, NewIngestor(&fakeCreatorStore{}, &fakeGameStore{}))

	source := sources.BrowsePage{Name: "popular", URL: "https://itch.io/games", MaxPages: 1}
	games, err := crawler.CrawlSource(context.Background(), source)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(games) != 1 {
		t.Errorf("Expected 1 game from the capped walk, got %d", len(games))
	}
	if len(fetcher.fetched) != 1 {
		t.Errorf("Expected walk to stop at the page cap, got %d fetches", len(fetcher.fetched))
	}
}

func TestBrowseCrawler_CrawlAll_IsolatesFailingSource(t *testing.T) {
	fetcher := &fakeFetcher{
		pages: map[string]string{
			"https://itch.io/games/top-rated": "listing-a",
			"https://itch.io/games/newest":    "listing-c",
		},
		errs: map[string]error{"https://itch.io/games": errors.New("HTTP error: 503")},
	}
	parser := &fakeBrowseParser{pages: map[string]*scrape.BrowsePage{
		"listing-a": {Games: []scrape.DiscoveredGame{browseGame("alice", "one"), browseGame("bob", "two")}},
		"listing-c": {Games: []scrape.DiscoveredGame{browseGame("bob", "two"), browseGame("carol", "three")}},
	}}
	creators := &fakeCreatorStore{}
	games := &fakeGameStore{}
	crawler := NewBrowseCrawler(fetcher, parser, NewIngestor(creators, games))

	stats, err := crawler.CrawlAll(context.Background(), []sources.BrowsePage{
		{Name: "top-rated", URL: "https://itch.io/games/top-rated", MaxPages: 1},
		{Name: "popular", URL: "https://itch.io/games", MaxPages: 1},
		{Name: "newest", URL: "https://itch.io/games/newest", MaxPages: 1},
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if stats.Games != 3 {
		t.Errorf("Expected 3 unique games ingested across sources, got %d", stats.Games)
	}
	if stats.Creators != 3 {
		t.Errorf("Expected 3 creators, got %d", stats.Creators)
	}
	if stats.Errors != 1 {
		t.Errorf("Expected the failing source counted once, got %d", stats.Errors)
	}
	if len(games.upserts) != 3 {
		t.Errorf("Expected cross-source duplicates collapsed, got %d upserts", len(games.upserts))
	}
}
