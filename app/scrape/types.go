package scrape

import "time"

// GameDetails holds everything the game page parser extracts. Rating nil
// means the ratings block is absent from the page; 0.0 is a real observed
// rating and is never collapsed into nil.
type GameDetails struct {
	Title        string
	Rating       *float64
	RatingCount  int
	CommentCount int
	Description  string
	PublishDate  *time.Time
	Tags         []string
}

// DiscoveredGame is the shape produced by profile, browse and feed
// discovery: enough to register a game for later enrichment.
type DiscoveredGame struct {
	Title       string
	URL         string
	CreatorName string
	PublishDate *time.Time
}

// ProfilePage is the parsed form of a creator's public profile: the game
// grid plus the next pagination link, empty when on the last page.
type ProfilePage struct {
	Games    []DiscoveredGame
	NextPage string
}

// BrowsePage is the parsed form of a browse/category listing.
type BrowsePage struct {
	Games    []DiscoveredGame
	NextPage string
}
