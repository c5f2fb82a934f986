package youtube

import (
	"bytes"
	"context"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	httpclient "ytscribe/http"
)

// FallbackTitle is used whenever no title can be resolved.
const FallbackTitle = "transcript"

// titleSuffix is appended by YouTube to every <title>.
const titleSuffix = " - YouTube"

// TitleResolver scrapes a display title from a video page.
type TitleResolver struct {
	httpClient *httpclient.Client
	logger     zerolog.Logger
}

// NewTitleResolver creates a resolver using httpClient. The client is expected
// to send a desktop browser User-Agent.
func NewTitleResolver(httpClient *httpclient.Client, logger zerolog.Logger) *TitleResolver {
	return &TitleResolver{
		httpClient: httpClient,
		logger:     logger.With().Str("component", "title").Logger(),
	}
}

// Resolve returns the page title for pageURL. It never fails: any error,
// non-200 status or missing markup yields FallbackTitle.
func (r *TitleResolver) Resolve(ctx context.Context, pageURL string) string {
	resp, err := r.httpClient.Get(ctx, pageURL)
	if err != nil {
		r.logger.Debug().Err(err).Str("url", pageURL).Msg("title page fetch failed")
		return FallbackTitle
	}
	if resp.StatusCode != http.StatusOK {
		r.logger.Debug().Int("status", resp.StatusCode).Msg("title page returned non-200")
		return FallbackTitle
	}

	title, ok := ParseTitle(resp.Body)
	if !ok {
		r.logger.Debug().Str("url", pageURL).Msg("no title markup found")
		return FallbackTitle
	}
	return title
}

// ParseTitle extracts the og:title meta content, falling back to the first
// <title> element with the " - YouTube" suffix removed. Empty values count as
// missing.
func ParseTitle(page []byte) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return "", false
	}

	if content, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok && content != "" {
		return content, true
	}

	if sel := doc.Find("title").First(); sel.Length() > 0 {
		if title := strings.TrimSuffix(sel.Text(), titleSuffix); title != "" {
			return title, true
		}
	}

	return "", false
}
