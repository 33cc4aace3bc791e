package discover

import (
	"errors"
	"testing"

	"github.com/datkv/itch-creators/app/database"
	"github.com/datkv/itch-creators/app/scrape"
)

type upsertedCreator struct {
	name       string
	profileURL string
}

type fakeCreatorStore struct {
	existing     map[string]*database.Creator
	unbackfilled []database.Creator

	upsertErrs map[string]error
	lookupErr  error
	selectErr  error

	nextID     int64
	ids        map[string]int64
	upserted   []upsertedCreator
	backfilled []int64
}

func (s *fakeCreatorStore) UpsertCreator(name, profileURL string) (int64, error) {
	if err, ok := s.upsertErrs[name]; ok {
		return 0, err
	}
	if s.ids == nil {
		s.ids = make(map[string]int64)
	}
	id, ok := s.ids[name]
	if !ok {
		s.nextID++
		id = s.nextID
		s.ids[name] = id
	}
	s.upserted = append(s.upserted, upsertedCreator{name: name, profileURL: profileURL})
	return id, nil
}

func (s *fakeCreatorStore) GetCreatorByName(name string) (*database.Creator, error) {
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	return s.existing[name], nil
}

func (s *fakeCreatorStore) GetUnbackfilledCreators(limit int) ([]database.Creator, error) {
	if s.selectErr != nil {
		return nil, s.selectErr
	}
	return s.unbackfilled, nil
}

func (s *fakeCreatorStore) MarkCreatorBackfilled(creatorID int64) error {
	s.backfilled = append(s.backfilled, creatorID)
	return nil
}

type gameUpsert struct {
	creatorID  int64
	platformID string
	game       scrape.DiscoveredGame
}

type fakeGameStore struct {
	failURLs map[string]error
	upserts  []gameUpsert
}

func (s *fakeGameStore) UpsertGame(creatorID *int64, platformID string, game scrape.DiscoveredGame) (int64, error) {
	if err, ok := s.failURLs[game.URL]; ok {
		return 0, err
	}
	var id int64
	if creatorID != nil {
		id = *creatorID
	}
	s.upserts = append(s.upserts, gameUpsert{creatorID: id, platformID: platformID, game: game})
	return int64(len(s.upserts)), nil
}

func TestIngestor_IngestGames(t *testing.T) {
	creators := &fakeCreatorStore{}
	games := &fakeGameStore{}
	ingestor := NewIngestor(creators, games)

	stats := ingestor.IngestGames([]scrape.DiscoveredGame{
		{Title: "Cave Story", URL: "https://alice.itch.io/cave-story", CreatorName: "alice"},
		{Title: "Sky Garden", URL: "https://alice.itch.io/sky-garden", CreatorName: "alice"},
		{Title: "Dust", URL: "https://bob.itch.io/dust", CreatorName: "bob"},
	})

	if stats.Creators != 2 || stats.Games != 3 || stats.Errors != 0 {
		t.Errorf("Expected 2 creators, 3 games, 0 errors, got %+v", stats)
	}

	if len(creators.upserted) != 2 {
		t.Fatalf("Expected one upsert per distinct creator, got %d", len(creators.upserted))
	}
	if creators.upserted[0].profileURL != "https://alice.itch.io" {
		t.Errorf("Expected profile URL derived from game URL, got %q", creators.upserted[0].profileURL)
	}

	if len(games.upserts) != 3 {
		t.Fatalf("Expected 3 game upserts, got %d", len(games.upserts))
	}
	first := games.upserts[0]
	if first.platformID != "cave-story" {
		t.Errorf("Expected platform id cave-story, got %q", first.platformID)
	}
	if first.creatorID != creators.ids["alice"] {
		t.Errorf("Expected game attributed to creator %d, got %d", creators.ids["alice"], first.creatorID)
	}
}

func TestIngestor_IngestGames_SkipsUnresolvableEntries(t *testing.T) {
	creators := &fakeCreatorStore{}
	games := &fakeGameStore{}
	ingestor := NewIngestor(creators, games)

	stats := ingestor.IngestGames([]scrape.DiscoveredGame{
		{Title: "Jam Entry", URL: "https://itch.io/jam/entry/123", CreatorName: ""},
		{Title: "No URL", URL: "", CreatorName: "carol"},
	})

	if stats.Creators != 0 || stats.Games != 0 || stats.Errors != 0 {
		t.Errorf("Expected nothing ingested, got %+v", stats)
	}
	if len(creators.upserted) != 0 || len(games.upserts) != 0 {
		t.Errorf("Expected no upserts, got creators=%v games=%v", creators.upserted, games.upserts)
	}
}

func TestIngestor_IngestGames_CreatorFailureIsolated(t *testing.T) {
	creators := &fakeCreatorStore{upsertErrs: map[string]error{"broken": errors.New("connection reset")}}
	games := &fakeGameStore{}
	ingestor := NewIngestor(creators, games)

	stats := ingestor.IngestGames([]scrape.DiscoveredGame{
		{Title: "Lost Game", URL: "https://broken.itch.io/lost-game", CreatorName: "broken"},
		{Title: "Fine Game", URL: "https://alice.itch.io/fine-game", CreatorName: "alice"},
	})

	if stats.Creators != 1 || stats.Games != 1 || stats.Errors != 1 {
		t.Errorf("Expected 1 creator, 1 game, 1 error, got %+v", stats)
	}
	if len(games.upserts) != 1 || games.upserts[0].game.Title != "Fine Game" {
		t.Errorf("Expected only the healthy creator's game ingested, got %v", games.upserts)
	}
}

func TestIngestor_IngestGames_GameFailureIsolated(t *testing.T) {
	creators := &fakeCreatorStore{}
	games := &fakeGameStore{failURLs: map[string]error{"https://alice.itch.io/bad": errors.New("constraint violation")}}
	ingestor := NewIngestor(creators, games)

	stats := ingestor.IngestGames([]scrape.DiscoveredGame{
		{Title: "Bad Game", URL: "https://alice.itch.io/bad", CreatorName: "alice"},
		{Title: "Good Game", URL: "https://alice.itch.io/good", CreatorName: "alice"},
	})

	if stats.Creators != 1 || stats.Games != 1 || stats.Errors != 1 {
		t.Errorf("Expected 1 creator, 1 game, 1 error, got %+v", stats)
	}
	if len(games.upserts) != 1 || games.upserts[0].platformID != "good" {
		t.Errorf("Expected only the good game ingested, got %v", games.upserts)
	}
}
