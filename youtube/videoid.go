package youtube

import "regexp"

// videoIDRegex matches an 11-character video ID preceded by "v=" or "/".
// This covers watch, youtu.be, embed and shorts URLs.
var videoIDRegex = regexp.MustCompile(`(?:v=|/)([0-9A-Za-z_-]{11})`)

// ExtractVideoID returns the first video ID found in rawURL.
// The URL is not otherwise validated.
func ExtractVideoID(rawURL string) (string, bool) {
	m := videoIDRegex.FindStringSubmatch(rawURL)
	if m == nil {
		return "", false
	}
	return m[1], true
}
