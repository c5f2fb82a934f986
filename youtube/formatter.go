package youtube

import "strings"

// Formatter renders caption segments as plain text.
type Formatter interface {
	Format(segments []Segment) string
}

// TextFormatter joins segment texts in order with Separator.
// The zero value concatenates segments verbatim.
type TextFormatter struct {
	Separator string
}

// NewTextFormatter returns a formatter that puts each cue on its own line.
func NewTextFormatter() TextFormatter {
	return TextFormatter{Separator: "\n"}
}

// Format implements Formatter.
func (f TextFormatter) Format(segments []Segment) string {
	var b strings.Builder
	for i, seg := range segments {
		if i > 0 {
			b.WriteString(f.Separator)
		}
		b.WriteString(seg.Text)
	}
	return b.String()
}
