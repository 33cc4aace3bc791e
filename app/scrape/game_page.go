package scrape

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

// GameParser extracts rating and metadata signals from a game page.
type GameParser struct{}

func NewGameParser() *GameParser {
	return &GameParser{}
}

// Run parses a game page. A missing aggregate rating widget yields a nil
// Rating with RatingCount 0; a Rating of 0.0 is only reported when the page
// actually shows that value.
func (p *GameParser) Run(html string) (*GameDetails, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse game page: %w", err)
	}

	details := &GameDetails{
		Title:        p.extractTitle(doc),
		CommentCount: doc.Find("div.community_post").Length(),
		Description:  p.extractDescription(doc, html),
		PublishDate:  p.extractPublishDate(doc),
		Tags:         p.extractTags(doc),
	}

	widget := doc.Find(`div.aggregate_rating[itemprop="aggregateRating"]`).First()
	if widget.Length() == 0 {
		return details, nil
	}

	if text := elementValue(widget.Find(`span[itemprop="ratingValue"]`).First()); text != "" {
		if rating, err := strconv.ParseFloat(text, 64); err == nil {
			details.Rating = &rating
		}
	}

	if text := elementValue(widget.Find(`span[itemprop="ratingCount"]`).First()); text != "" {
		if count, err := strconv.Atoi(text); err == nil {
			details.RatingCount = count
		}
	}

	return details, nil
}

func (p *GameParser) extractTitle(doc *goquery.Document) string {
	if title := normalizeText(doc.Find("h1.game_title").First().Text()); title != "" {
		return title
	}

	content, _ := doc.Find(`meta[property="og:title"]`).Attr("content")
	return normalizeText(content)
}

func (p *GameParser) extractDescription(doc *goquery.Document, html string) string {
	if desc := normalizeText(doc.Find("div.formatted_description").First().Text()); desc != "" {
		return desc
	}

	// Pages without the standard description block still have readable body
	// content worth keeping
	article, err := readability.FromReader(strings.NewReader(html), nil)
	if err != nil {
		return ""
	}

	return normalizeText(article.TextContent)
}

func (p *GameParser) extractPublishDate(doc *goquery.Document) *time.Time {
	var result *time.Time

	doc.Find("table tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return true
		}

		label := strings.TrimSpace(cells.First().Text())
		if label != "Published" && label != "Release date" {
			return true
		}

		value := cells.Eq(1)
		if title, ok := value.Find("abbr").Attr("title"); ok {
			if parsed := parseDateText(title); parsed != nil {
				result = parsed
				return false
			}
		}
		if parsed := parseDateText(value.Text()); parsed != nil {
			result = parsed
			return false
		}

		return true
	})

	return result
}

func (p *GameParser) extractTags(doc *goquery.Document) []string {
	var tags []string
	seen := make(map[string]bool)

	doc.Find(`a[href*="/games/tag-"]`).Each(func(_ int, link *goquery.Selection) {
		tag := normalizeText(link.Text())
		if tag == "" || seen[tag] {
			return
		}
		seen[tag] = true
		tags = append(tags, tag)
	})

	return tags
}

// elementValue returns the element's trimmed text, falling back to its
// content attribute for microdata markup that carries the value there.
func elementValue(sel *goquery.Selection) string {
	if text := strings.TrimSpace(sel.Text()); text != "" {
		return text
	}

	content, _ := sel.Attr("content")
	return strings.TrimSpace(content)
}
