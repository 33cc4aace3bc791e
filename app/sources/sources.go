package sources

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const defaultMaxPages = 5

type Feed struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

type BrowsePage struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	MaxPages int    `yaml:"max_pages"`
}

// Sources describes where discovery looks for new creators and games.
type Sources struct {
	Feeds        []Feed       `yaml:"feeds"`
	Browse       []BrowsePage `yaml:"browse"`
	SeedCreators []string     `yaml:"seed_creators"`
}

// Load reads and validates the discovery sources file. Environment
// variables in the file are expanded before parsing.
func Load(path string) (*Sources, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sources file: %w", err)
	}

	var s Sources
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &s); err != nil {
		return nil, fmt.Errorf("failed to parse sources file: %w", err)
	}

	for i := range s.Browse {
		if s.Browse[i].MaxPages == 0 {
			s.Browse[i].MaxPages = defaultMaxPages
		}
	}

	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("invalid sources file %s: %w", path, err)
	}

	return &s, nil
}

func (s *Sources) validate() error {
	for i, feed := range s.Feeds {
		if feed.Name == "" {
			return fmt.Errorf("feed at index %d has no name", i)
		}
		if !isHTTPURL(feed.URL) {
			return fmt.Errorf("feed %s has an invalid URL: %s", feed.Name, feed.URL)
		}
	}

	for i, page := range s.Browse {
		if page.Name == "" {
			return fmt.Errorf("browse page at index %d has no name", i)
		}
		if !isHTTPURL(page.URL) {
			return fmt.Errorf("browse page %s has an invalid URL: %s", page.Name, page.URL)
		}
		if page.MaxPages < 0 {
			return fmt.Errorf("browse page %s has a negative max_pages", page.Name)
		}
	}

	for i, name := range s.SeedCreators {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("seed creator at index %d is empty", i)
		}
	}

	return nil
}

// FeedURLs returns the configured feed URLs in file order.
func (s *Sources) FeedURLs() []string {
	urls := make([]string, 0, len(s.Feeds))
	for _, feed := range s.Feeds {
		urls = append(urls, feed.URL)
	}

	return urls
}

func isHTTPURL(raw string) bool {
	return strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://")
}
