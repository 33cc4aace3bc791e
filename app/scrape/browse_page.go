package scrape

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// BrowseParser extracts games and their creators from a catalog browse
// page. Only links following the creator subdomain format are kept.
type BrowseParser struct{}

func NewBrowseParser() *BrowseParser {
	return &BrowseParser{}
}

func (p *BrowseParser) Run(html string, baseURL string) (*BrowsePage, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse browse page: %w", err)
	}

	page := &BrowsePage{}
	seen := make(map[string]bool)

	doc.Find("a.game_link").Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		if href == "" || seen[href] {
			return
		}

		creator := CreatorFromURL(href)
		if creator == "" {
			return
		}

		title := normalizeText(link.Text())
		if title == "" {
			title = normalizeText(link.Closest("div.game_cell").Find("a.title").First().Text())
		}
		if title == "" {
			title = GameSlug(href)
		}

		seen[href] = true
		page.Games = append(page.Games, DiscoveredGame{
			Title:       title,
			URL:         href,
			CreatorName: creator,
		})
	})

	if href, ok := doc.Find("a.next_page").First().Attr("href"); ok {
		page.NextPage = resolveURL(baseURL, href)
	}

	return page, nil
}
