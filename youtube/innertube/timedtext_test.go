package innertube

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"ytscribe/youtube"
)

func TestParseTimedText(t *testing.T) {
	tests := []struct {
		name string
		xml  string
		want []youtube.Segment
	}{
		{
			name: "plain cues",
			xml:  `<transcript><text start="0" dur="1">one</text><text start="1" dur="2">two</text></transcript>`,
			want: []youtube.Segment{
				{Text: "one", Start: 0, Duration: 1},
				{Text: "two", Start: 1, Duration: 2},
			},
		},
		{
			name: "double escaped entities",
			xml:  `<transcript><text start="0.5" dur="1">it&amp;#39;s &amp;quot;fine&amp;quot;</text></transcript>`,
			want: []youtube.Segment{
				{Text: `it's "fine"`, Start: 0.5, Duration: 1},
			},
		},
		{
			name: "markup stripped",
			xml:  `<transcript><text start="0" dur="1">&lt;i&gt;music&lt;/i&gt; plays</text></transcript>`,
			want: []youtube.Segment{
				{Text: "music plays", Start: 0, Duration: 1},
			},
		},
		{
			name: "empty cue dropped and missing dur",
			xml:  `<transcript><text start="0" dur="1"></text><text start="3">last</text></transcript>`,
			want: []youtube.Segment{
				{Text: "last", Start: 3, Duration: 0},
			},
		},
		{
			name: "empty transcript",
			xml:  `<transcript></transcript>`,
			want: []youtube.Segment{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimedText([]byte(tt.xml))
			if err != nil {
				t.Fatalf("ParseTimedText() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseTimedText() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseTimedTextErrors(t *testing.T) {
	tests := []struct {
		name string
		xml  string
	}{
		{"not xml", `{"events": []}`},
		{"bad start", `<transcript><text start="soon" dur="1">x</text></transcript>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseTimedText([]byte(tt.xml)); err == nil {
				t.Error("expected error")
			}
		})
	}
}
