package innertube

import (
	"encoding/xml"
	"fmt"
	"html"
	"regexp"
	"strconv"

	"ytscribe/youtube"
)

// markupRegex matches inline formatting tags such as <i> or <font color="...">.
var markupRegex = regexp.MustCompile(`<[^>]*>`)

// timedText is the XML document served by caption base URLs.
type timedText struct {
	XMLName xml.Name       `xml:"transcript"`
	Cues    []timedTextCue `xml:"text"`
}

// timedTextCue is one <text start="" dur=""> element.
type timedTextCue struct {
	Start string `xml:"start,attr"`
	Dur   string `xml:"dur,attr"`
	Text  string `xml:",chardata"`
}

// ParseTimedText parses a timedtext XML document into segments. Cue text is
// HTML-unescaped and stripped of markup; empty cues are dropped.
func ParseTimedText(data []byte) ([]youtube.Segment, error) {
	var doc timedText
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal timedtext XML: %w", err)
	}

	segments := make([]youtube.Segment, 0, len(doc.Cues))
	for _, cue := range doc.Cues {
		if cue.Text == "" {
			continue
		}

		start, err := parseSeconds(cue.Start)
		if err != nil {
			return nil, fmt.Errorf("cue start %q: %w", cue.Start, err)
		}
		dur, err := parseSeconds(cue.Dur)
		if err != nil {
			return nil, fmt.Errorf("cue duration %q: %w", cue.Dur, err)
		}

		segments = append(segments, youtube.Segment{
			Text:     markupRegex.ReplaceAllString(html.UnescapeString(cue.Text), ""),
			Start:    start,
			Duration: dur,
		})
	}

	return segments, nil
}

// parseSeconds parses a decimal seconds attribute; empty means zero.
func parseSeconds(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
