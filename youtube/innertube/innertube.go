// Package innertube provides access to YouTube's internal Innertube API
// for discovering and downloading caption tracks.
package innertube

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	ythttp "ytscribe/http"
	"ytscribe/youtube"
)

const (
	// defaultBaseURL is the YouTube origin serving watch pages and the API.
	defaultBaseURL = "https://www.youtube.com"

	// defaultClientName is the client identifier sent to the player endpoint.
	// The ANDROID client returns caption URLs that do not require a PO token.
	defaultClientName = "ANDROID"
	// defaultClientVersion is the client version for player requests.
	defaultClientVersion = "20.10.38"
)

var (
	apiKeyRegex       = regexp.MustCompile(`"INNERTUBE_API_KEY":\s*"([a-zA-Z0-9_-]+)"`)
	consentValueRegex = regexp.MustCompile(`name="v" value="(.*?)"`)
)

// Client handles Innertube API interactions.
type Client struct {
	httpClient *ythttp.Client
	baseURL    string
	logger     zerolog.Logger
}

// ClientOption configures the Innertube client.
type ClientOption func(*Client)

// WithBaseURL points the client at a different origin (used by tests).
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger.With().Str("component", "innertube").Logger()
	}
}

// NewClient creates a new Innertube API client.
func NewClient(httpClient *ythttp.Client, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: httpClient,
		baseURL:    defaultBaseURL,
		logger:     zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

var _ youtube.CaptionSource = (*Client)(nil)

// PlayerRequest represents a request to the player endpoint.
type PlayerRequest struct {
	Context ClientContext `json:"context"`
	VideoID string        `json:"videoId"`
}

// ClientContext contains client identification for the API request.
type ClientContext struct {
	Client InnertubeClient `json:"client"`
}

// InnertubeClient identifies the client making the request.
type InnertubeClient struct {
	ClientName    string `json:"clientName"`
	ClientVersion string `json:"clientVersion"`
}

// PlayerResponse is the subset of the player response used for captions.
type PlayerResponse struct {
	PlayabilityStatus PlayabilityStatus `json:"playabilityStatus"`
	Captions          *Captions         `json:"captions,omitempty"`
}

// PlayabilityStatus reports whether the video can be played.
type PlayabilityStatus struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// Captions wraps the caption track list.
type Captions struct {
	PlayerCaptionsTracklistRenderer *TracklistRenderer `json:"playerCaptionsTracklistRenderer,omitempty"`
}

// TracklistRenderer lists caption tracks.
type TracklistRenderer struct {
	CaptionTracks []CaptionTrack `json:"captionTracks,omitempty"`
}

// CaptionTrack is one caption track as returned by the API.
type CaptionTrack struct {
	BaseURL      string `json:"baseUrl"`
	Name         Text   `json:"name"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind,omitempty"`
}

// Text is a localized string, either simple or split into runs.
type Text struct {
	SimpleText string `json:"simpleText,omitempty"`
	Runs       []struct {
		Text string `json:"text"`
	} `json:"runs,omitempty"`
}

// String returns the first run or the simple text.
func (t Text) String() string {
	if len(t.Runs) > 0 {
		return t.Runs[0].Text
	}
	return t.SimpleText
}

// ListTracks implements youtube.CaptionSource.
func (c *Client) ListTracks(ctx context.Context, videoID string) ([]youtube.CaptionTrack, error) {
	page, err := c.fetchWatchPage(ctx, videoID)
	if err != nil {
		return nil, err
	}

	apiKey, err := extractAPIKey(page)
	if err != nil {
		return nil, err
	}

	player, err := c.fetchPlayer(ctx, videoID, apiKey)
	if err != nil {
		return nil, err
	}

	if err := checkPlayability(player.PlayabilityStatus); err != nil {
		return nil, err
	}

	if player.Captions == nil || player.Captions.PlayerCaptionsTracklistRenderer == nil ||
		len(player.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks) == 0 {
		return nil, youtube.ErrTranscriptsDisabled
	}

	raw := player.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	tracks := make([]youtube.CaptionTrack, 0, len(raw))
	for _, t := range raw {
		tracks = append(tracks, youtube.CaptionTrack{
			BaseURL:      strings.Replace(t.BaseURL, "&fmt=srv3", "", 1),
			Language:     t.Name.String(),
			LanguageCode: t.LanguageCode,
			IsGenerated:  t.Kind == "asr",
		})
	}
	c.logger.Debug().Str("video_id", videoID).Int("tracks", len(tracks)).Msg("caption tracks listed")

	return tracks, nil
}

// FetchTrack implements youtube.CaptionSource.
func (c *Client) FetchTrack(ctx context.Context, track youtube.CaptionTrack) ([]youtube.Segment, error) {
	if strings.Contains(track.BaseURL, "&exp=xpe") {
		return nil, fmt.Errorf("%w: caption track requires a PO token", youtube.ErrRequestBlocked)
	}

	resp, err := c.httpClient.Get(ctx, track.BaseURL)
	if err != nil {
		return nil, classifyHTTPError("fetch caption track", err)
	}

	segments, err := ParseTimedText(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse caption track: %w", err)
	}
	return segments, nil
}

// fetchWatchPage downloads the watch page, accepting the EU consent form once.
func (c *Client) fetchWatchPage(ctx context.Context, videoID string) (string, error) {
	watchURL := c.baseURL + "/watch?v=" + url.QueryEscape(videoID)

	resp, err := c.httpClient.Get(ctx, watchURL)
	if err != nil {
		return "", classifyHTTPError("fetch watch page", err)
	}
	page := string(resp.Body)

	if !strings.Contains(page, `action="https://consent.youtube.com/s"`) {
		return page, nil
	}

	m := consentValueRegex.FindStringSubmatch(page)
	if m == nil {
		return "", fmt.Errorf("%w: could not accept cookie consent", youtube.ErrRequestBlocked)
	}
	c.logger.Debug().Msg("accepting cookie consent")

	headers := map[string]string{"Cookie": "CONSENT=YES+" + m[1]}
	resp, err = c.httpClient.Do(ctx, "GET", watchURL, nil, headers)
	if err != nil {
		return "", classifyHTTPError("fetch watch page", err)
	}
	page = string(resp.Body)
	if strings.Contains(page, `action="https://consent.youtube.com/s"`) {
		return "", fmt.Errorf("%w: could not accept cookie consent", youtube.ErrRequestBlocked)
	}
	return page, nil
}

// fetchPlayer calls the player endpoint.
func (c *Client) fetchPlayer(ctx context.Context, videoID, apiKey string) (*PlayerResponse, error) {
	req := PlayerRequest{
		Context: ClientContext{
			Client: InnertubeClient{
				ClientName:    defaultClientName,
				ClientVersion: defaultClientVersion,
			},
		},
		VideoID: videoID,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal player request: %w", err)
	}

	playerURL := c.baseURL + "/youtubei/v1/player?key=" + url.QueryEscape(apiKey)
	headers := map[string]string{"Content-Type": "application/json"}

	resp, err := c.httpClient.Do(ctx, "POST", playerURL, bytes.NewReader(body), headers)
	if err != nil {
		return nil, classifyHTTPError("player request", err)
	}

	var player PlayerResponse
	if err := json.Unmarshal(resp.Body, &player); err != nil {
		return nil, fmt.Errorf("parse player response: %w", err)
	}

	return &player, nil
}

// extractAPIKey finds the Innertube API key embedded in the watch page.
func extractAPIKey(page string) (string, error) {
	if m := apiKeyRegex.FindStringSubmatch(page); m != nil {
		return m[1], nil
	}
	if strings.Contains(page, `class="g-recaptcha"`) {
		return "", fmt.Errorf("%w: captcha challenge served", youtube.ErrRequestBlocked)
	}
	return "", fmt.Errorf("%w: API key not found in watch page", youtube.ErrVideoUnavailable)
}

// checkPlayability maps a non-OK playability status to a sentinel error.
func checkPlayability(status PlayabilityStatus) error {
	switch status.Status {
	case "OK", "":
		return nil
	case "LOGIN_REQUIRED":
		if strings.Contains(status.Reason, "not a bot") {
			return fmt.Errorf("%w: %s", youtube.ErrRequestBlocked, status.Reason)
		}
		if strings.Contains(status.Reason, "inappropriate") || strings.Contains(status.Reason, "confirm your age") {
			return fmt.Errorf("%w: %s", youtube.ErrAgeRestricted, status.Reason)
		}
		return fmt.Errorf("%w: %s", youtube.ErrVideoUnplayable, status.Reason)
	case "ERROR":
		if status.Reason == "This video is unavailable" || status.Reason == "Video unavailable" {
			return youtube.ErrVideoUnavailable
		}
		return fmt.Errorf("%w: %s", youtube.ErrVideoUnplayable, status.Reason)
	default:
		if status.Reason == "" {
			return fmt.Errorf("%w: status %s", youtube.ErrVideoUnplayable, status.Status)
		}
		return fmt.Errorf("%w: %s", youtube.ErrVideoUnplayable, status.Reason)
	}
}

// classifyHTTPError turns HTTP 429 into ErrRequestBlocked and wraps the rest.
func classifyHTTPError(op string, err error) error {
	if ythttp.IsTooManyRequests(err) {
		return fmt.Errorf("%s: %w: too many requests", op, youtube.ErrRequestBlocked)
	}
	return fmt.Errorf("%s: %w", op, err)
}
