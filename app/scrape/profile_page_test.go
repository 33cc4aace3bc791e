package scrape

import (
	"testing"
	"time"
)

const sampleProfileHTML = `<!DOCTYPE html>
<html>
<body>
<div class="game_grid_widget">
	<div class="game_cell">
		<a class="thumb_link game_link" href="https://testdev.itch.io/cool-adventure"><img src="thumb1.png"></a>
		<a class="title game_link" href="https://testdev.itch.io/cool-adventure">Cool Adventure Game</a>
		<div class="published_at">Published Jan 15, 2024</div>
	</div>
	<div class="game_cell">
		<a class="title game_link" href="https://testdev.itch.io/puzzle-master">Puzzle Master</a>
		<div class="published_at">Feb 20, 2024</div>
	</div>
	<div class="game_cell">
		<a class="title game_link" href="https://testdev.itch.io/space-game">Space Game</a>
		<div class="published_at">March 10, 2024</div>
	</div>
</div>
<div class="game_grid_widget">
	<div class="game_cell">
		<a class="title game_link" href="https://testdev.itch.io/old-game">Old Game</a>
	</div>
</div>
</body>
</html>`

func TestProfileParser_Run(t *testing.T) {
	parser := NewProfileParser()

	page, err := parser.Run(sampleProfileHTML, "https://testdev.itch.io")
	if err != nil {
		t.Fatalf("Failed to parse profile page: %v", err)
	}

	if len(page.Games) != 4 {
		t.Fatalf("Expected 4 games, got %d", len(page.Games))
	}

	first := page.Games[0]
	if first.Title != "Cool Adventure Game" {
		t.Errorf("Expected title 'Cool Adventure Game', got '%s'", first.Title)
	}
	if first.URL != "https://testdev.itch.io/cool-adventure" {
		t.Errorf("Expected game URL, got '%s'", first.URL)
	}
	wantDate := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	if first.PublishDate == nil || !first.PublishDate.Equal(wantDate) {
		t.Errorf("Expected publish date %v, got %v", wantDate, first.PublishDate)
	}

	second := page.Games[1]
	if second.Title != "Puzzle Master" {
		t.Errorf("Expected title 'Puzzle Master', got '%s'", second.Title)
	}
	if second.PublishDate == nil || !second.PublishDate.Equal(time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected publish date 2024-02-20, got %v", second.PublishDate)
	}

	third := page.Games[2]
	if third.PublishDate == nil || !third.PublishDate.Equal(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected publish date 2024-03-10, got %v", third.PublishDate)
	}

	// Games from the second grid are included, dateless games stay dateless
	fourth := page.Games[3]
	if fourth.Title != "Old Game" {
		t.Errorf("Expected title 'Old Game', got '%s'", fourth.Title)
	}
	if fourth.PublishDate != nil {
		t.Errorf("Expected no publish date, got %v", fourth.PublishDate)
	}

	if page.NextPage != "" {
		t.Errorf("Expected no next page, got '%s'", page.NextPage)
	}
}

func TestProfileParser_Run_EmptyPage(t *testing.T) {
	parser := NewProfileParser()

	page, err := parser.Run("<html><body></body></html>", "https://testdev.itch.io")
	if err != nil {
		t.Fatalf("Failed to parse profile page: %v", err)
	}

	if len(page.Games) != 0 {
		t.Errorf("Expected no games, got %d", len(page.Games))
	}
	if page.NextPage != "" {
		t.Errorf("Expected no next page, got '%s'", page.NextPage)
	}
}

func TestProfileParser_Run_FallbackTitleLink(t *testing.T) {
	html := `<html><body>
	<div class="game_cell">
		<a href="https://testdev.itch.io/game1" class="game_link">Game 1</a>
	</div>
	<div class="game_cell">
		<a href="https://testdev.itch.io/game2" class="game_link">Game 2</a>
	</div>
	</body></html>`

	parser := NewProfileParser()

	page, err := parser.Run(html, "https://testdev.itch.io")
	if err != nil {
		t.Fatalf("Failed to parse profile page: %v", err)
	}

	if len(page.Games) != 2 {
		t.Fatalf("Expected 2 games, got %d", len(page.Games))
	}
	if page.Games[0].Title != "Game 1" || page.Games[1].Title != "Game 2" {
		t.Errorf("Expected titles from game_link fallback, got '%s' and '%s'",
			page.Games[0].Title, page.Games[1].Title)
	}
}

func TestProfileParser_Run_SkipsCellsWithoutGameLink(t *testing.T) {
	html := `<html><body>
	<div class="game_cell">
		<a href="https://testdev.itch.io/game1">Game 1</a>
	</div>
	<div class="game_cell">
		<a href="https://testdev.itch.io/game2" class="game_link">Game 2</a>
	</div>
	</body></html>`

	parser := NewProfileParser()

	page, err := parser.Run(html, "https://testdev.itch.io")
	if err != nil {
		t.Fatalf("Failed to parse profile page: %v", err)
	}

	if len(page.Games) != 1 {
		t.Fatalf("Expected 1 game, got %d", len(page.Games))
	}
	if page.Games[0].Title != "Game 2" {
		t.Errorf("Expected 'Game 2', got '%s'", page.Games[0].Title)
	}
}

func TestProfileParser_Run_Pagination(t *testing.T) {
	html := `<html><body>
	<div class="game_cell">
		<a class="title game_link" href="https://testdev.itch.io/game1">Game 1</a>
	</div>
	<a class="next_page" href="?page=2">Next page</a>
	</body></html>`

	parser := NewProfileParser()

	page, err := parser.Run(html, "https://testdev.itch.io")
	if err != nil {
		t.Fatalf("Failed to parse profile page: %v", err)
	}

	if page.NextPage != "https://testdev.itch.io?page=2" {
		t.Errorf("Expected resolved next page URL, got '%s'", page.NextPage)
	}
}
