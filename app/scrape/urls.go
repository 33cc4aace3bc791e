package scrape

import (
	"net/url"
	"strings"
)

// CreatorFromURL extracts the creator handle from an itch.io subdomain URL,
// e.g. https://testdev.itch.io/cool-game -> "testdev". Returns "" when the
// URL does not follow the creator subdomain format.
func CreatorFromURL(rawURL string) string {
	host := rawURL
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	if i := strings.IndexAny(host, "/?#"); i >= 0 {
		host = host[:i]
	}

	parts := strings.Split(host, ".")
	if len(parts) < 3 || parts[1] != "itch" || !strings.HasPrefix(parts[2], "io") {
		return ""
	}

	sub := parts[0]
	if sub == "" || sub == "www" || sub == "itch" || sub == "static" {
		return ""
	}

	return sub
}

// GameSlug extracts the trailing game slug from a game URL, dropping query
// parameters and trailing slashes. Falls back to "unknown" when the URL has
// no path segment.
func GameSlug(rawURL string) string {
	slug := rawURL
	if i := strings.IndexAny(slug, "?#"); i >= 0 {
		slug = slug[:i]
	}
	slug = strings.TrimRight(slug, "/")

	if i := strings.LastIndex(slug, "/"); i >= 0 {
		slug = slug[i+1:]
	}
	if slug == "" {
		return "unknown"
	}

	return slug
}

// CreatorProfileURL builds the canonical profile URL for a creator handle.
func CreatorProfileURL(name string) string {
	return "https://" + name + ".itch.io"
}

// ProfileURL derives the creator's profile root from a game URL,
// e.g. https://testdev.itch.io/cool-game -> https://testdev.itch.io.
func ProfileURL(gameURL string) string {
	parts := strings.SplitN(gameURL, "/", 4)
	if len(parts) >= 3 {
		return parts[0] + "//" + parts[2]
	}

	return gameURL
}

// resolveURL resolves href against base, returning href unchanged when it
// is already absolute or cannot be parsed.
func resolveURL(base, href string) string {
	if href == "" {
		return ""
	}

	hrefURL, err := url.Parse(href)
	if err != nil || hrefURL.IsAbs() {
		return href
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}

	return baseURL.ResolveReference(hrefURL).String()
}
