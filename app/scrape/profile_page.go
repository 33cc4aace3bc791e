package scrape

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ProfileParser extracts a creator's game list from their profile page.
type ProfileParser struct{}

func NewProfileParser() *ProfileParser {
	return &ProfileParser{}
}

// Run parses a profile page. baseURL anchors relative game and pagination
// links.
func (p *ProfileParser) Run(html string, baseURL string) (*ProfilePage, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse profile page: %w", err)
	}

	page := &ProfilePage{}

	doc.Find("div.game_cell").Each(func(_ int, cell *goquery.Selection) {
		// The title link carries "title game_link", the thumbnail only
		// "thumb_link game_link"; prefer the former, fall back to any
		// game_link with readable text
		titleLink := cell.Find("a.title").First()
		if normalizeText(titleLink.Text()) == "" {
			cell.Find("a.game_link").EachWithBreak(func(_ int, link *goquery.Selection) bool {
				if normalizeText(link.Text()) != "" {
					titleLink = link
					return false
				}
				return true
			})
		}

		title := normalizeText(titleLink.Text())
		if title == "" {
			return
		}

		href, _ := titleLink.Attr("href")

		game := DiscoveredGame{
			Title: title,
			URL:   resolveURL(baseURL, href),
		}

		if dateText := cell.Find("div.published_at").First().Text(); dateText != "" {
			game.PublishDate = parseDateText(dateText)
		}

		page.Games = append(page.Games, game)
	})

	if href, ok := doc.Find("a.next_page").First().Attr("href"); ok {
		page.NextPage = resolveURL(baseURL, href)
	}

	return page, nil
}
