package innertube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	ythttp "ytscribe/http"
	"ytscribe/youtube"
)

const (
	testVideoID = "abc12345678"
	testAPIKey  = "AIzaTestKey_123"
	watchPage   = `<html><script>ytcfg.set({"INNERTUBE_API_KEY": "AIzaTestKey_123"});</script></html>`
	captionXML  = `<?xml version="1.0" encoding="utf-8" ?><transcript>` +
		`<text start="0.0" dur="1.5">Hello </text>` +
		`<text start="1.5" dur="2.25">world</text>` +
		`</transcript>`
)

// fakeYouTube serves the watch page, player endpoint and caption tracks.
type fakeYouTube struct {
	server     *httptest.Server
	watchPage  string
	player     func(baseURL string) any
	playerCode int
	captions   string
	playerReq  PlayerRequest
	playerKey  string
	watchCalls int
}

func newFakeYouTube(t *testing.T) *fakeYouTube {
	t.Helper()
	f := &fakeYouTube{
		watchPage:  watchPage,
		playerCode: http.StatusOK,
		captions:   captionXML,
	}
	f.player = func(baseURL string) any {
		return map[string]any{
			"playabilityStatus": map[string]any{"status": "OK"},
			"captions": map[string]any{
				"playerCaptionsTracklistRenderer": map[string]any{
					"captionTracks": []map[string]any{
						{
							"baseUrl":      baseURL + "/api/timedtext?v=" + testVideoID + "&lang=en&fmt=srv3",
							"name":         map[string]any{"runs": []map[string]any{{"text": "English"}}},
							"languageCode": "en",
						},
						{
							"baseUrl":      baseURL + "/api/timedtext?v=" + testVideoID + "&lang=en&kind=asr",
							"name":         map[string]any{"simpleText": "English (auto-generated)"},
							"languageCode": "en",
							"kind":         "asr",
						},
					},
				},
			},
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		f.watchCalls++
		if r.URL.Query().Get("v") != testVideoID {
			t.Errorf("watch page requested for %q", r.URL.Query().Get("v"))
		}
		if strings.Contains(f.watchPage, "consent.youtube.com") && strings.HasPrefix(r.Header.Get("Cookie"), "CONSENT=YES+") {
			w.Write([]byte(watchPage))
			return
		}
		w.Write([]byte(f.watchPage))
	})
	mux.HandleFunc("/youtubei/v1/player", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("player: expected POST, got %s", r.Method)
		}
		f.playerKey = r.URL.Query().Get("key")
		if err := json.NewDecoder(r.Body).Decode(&f.playerReq); err != nil {
			t.Errorf("player: decode request: %v", err)
		}
		w.WriteHeader(f.playerCode)
		json.NewEncoder(w).Encode(f.player(f.server.URL))
	})
	mux.HandleFunc("/api/timedtext", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("fmt") != "" {
			t.Errorf("timedtext: fmt parameter should be stripped, got %q", r.URL.RawQuery)
		}
		w.Write([]byte(f.captions))
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeYouTube) client() *Client {
	return NewClient(ythttp.New(nil), WithBaseURL(f.server.URL))
}

func TestListTracks(t *testing.T) {
	yt := newFakeYouTube(t)

	tracks, err := yt.client().ListTracks(context.Background(), testVideoID)
	if err != nil {
		t.Fatalf("ListTracks() error = %v", err)
	}

	want := []youtube.CaptionTrack{
		{
			BaseURL:      yt.server.URL + "/api/timedtext?v=" + testVideoID + "&lang=en",
			Language:     "English",
			LanguageCode: "en",
		},
		{
			BaseURL:      yt.server.URL + "/api/timedtext?v=" + testVideoID + "&lang=en&kind=asr",
			Language:     "English (auto-generated)",
			LanguageCode: "en",
			IsGenerated:  true,
		},
	}
	if diff := cmp.Diff(want, tracks); diff != "" {
		t.Errorf("ListTracks() mismatch (-want +got):\n%s", diff)
	}

	if yt.playerKey != testAPIKey {
		t.Errorf("player key = %q, want %q", yt.playerKey, testAPIKey)
	}
	if yt.playerReq.VideoID != testVideoID {
		t.Errorf("player videoId = %q, want %q", yt.playerReq.VideoID, testVideoID)
	}
	if yt.playerReq.Context.Client.ClientName != defaultClientName {
		t.Errorf("clientName = %q, want %q", yt.playerReq.Context.Client.ClientName, defaultClientName)
	}
}

func TestListTracksAcceptsConsent(t *testing.T) {
	yt := newFakeYouTube(t)
	yt.watchPage = `<form action="https://consent.youtube.com/s"><input type="hidden" name="v" value="cb.20240101"></form>`

	if _, err := yt.client().ListTracks(context.Background(), testVideoID); err != nil {
		t.Fatalf("ListTracks() error = %v", err)
	}
	if yt.watchCalls != 2 {
		t.Errorf("watch page fetched %d times, want 2", yt.watchCalls)
	}
}

func TestListTracksErrors(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(*fakeYouTube)
		wantErr   error
		wantInMsg string
	}{
		{
			name:    "captcha page",
			setup:   func(f *fakeYouTube) { f.watchPage = `<div class="g-recaptcha"></div>` },
			wantErr: youtube.ErrRequestBlocked,
		},
		{
			name:    "no api key",
			setup:   func(f *fakeYouTube) { f.watchPage = `<html></html>` },
			wantErr: youtube.ErrVideoUnavailable,
		},
		{
			name: "player rate limited",
			setup: func(f *fakeYouTube) {
				f.playerCode = http.StatusTooManyRequests
			},
			wantErr: youtube.ErrRequestBlocked,
		},
		{
			name: "video unavailable",
			setup: func(f *fakeYouTube) {
				f.player = func(string) any {
					return map[string]any{"playabilityStatus": map[string]any{"status": "ERROR", "reason": "This video is unavailable"}}
				}
			},
			wantErr: youtube.ErrVideoUnavailable,
		},
		{
			name: "age restricted",
			setup: func(f *fakeYouTube) {
				f.player = func(string) any {
					return map[string]any{"playabilityStatus": map[string]any{
						"status": "LOGIN_REQUIRED", "reason": "Sign in to confirm your age"}}
				}
			},
			wantErr: youtube.ErrAgeRestricted,
		},
		{
			name: "bot check",
			setup: func(f *fakeYouTube) {
				f.player = func(string) any {
					return map[string]any{"playabilityStatus": map[string]any{
						"status": "LOGIN_REQUIRED", "reason": "Sign in to confirm you're not a bot"}}
				}
			},
			wantErr: youtube.ErrRequestBlocked,
		},
		{
			name: "unplayable",
			setup: func(f *fakeYouTube) {
				f.player = func(string) any {
					return map[string]any{"playabilityStatus": map[string]any{
						"status": "UNPLAYABLE", "reason": "Private video"}}
				}
			},
			wantErr:   youtube.ErrVideoUnplayable,
			wantInMsg: "Private video",
		},
		{
			name: "captions disabled",
			setup: func(f *fakeYouTube) {
				f.player = func(string) any {
					return map[string]any{"playabilityStatus": map[string]any{"status": "OK"}}
				}
			},
			wantErr: youtube.ErrTranscriptsDisabled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			yt := newFakeYouTube(t)
			tt.setup(yt)

			_, err := yt.client().ListTracks(context.Background(), testVideoID)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ListTracks() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantInMsg != "" && !strings.Contains(err.Error(), tt.wantInMsg) {
				t.Errorf("error %q should contain %q", err.Error(), tt.wantInMsg)
			}
		})
	}
}

func TestFetchTrack(t *testing.T) {
	yt := newFakeYouTube(t)
	client := yt.client()

	segments, err := client.FetchTrack(context.Background(), youtube.CaptionTrack{
		BaseURL: yt.server.URL + "/api/timedtext?v=" + testVideoID,
	})
	if err != nil {
		t.Fatalf("FetchTrack() error = %v", err)
	}

	want := []youtube.Segment{
		{Text: "Hello ", Start: 0, Duration: 1.5},
		{Text: "world", Start: 1.5, Duration: 2.25},
	}
	if diff := cmp.Diff(want, segments); diff != "" {
		t.Errorf("FetchTrack() mismatch (-want +got):\n%s", diff)
	}
}

func TestFetchTrackPOToken(t *testing.T) {
	client := NewClient(ythttp.New(nil))
	_, err := client.FetchTrack(context.Background(), youtube.CaptionTrack{
		BaseURL: "https://www.youtube.com/api/timedtext?v=x&exp=xpe",
	})
	if !errors.Is(err, youtube.ErrRequestBlocked) {
		t.Errorf("FetchTrack() error = %v, want ErrRequestBlocked", err)
	}
}

func TestFetcherEndToEnd(t *testing.T) {
	yt := newFakeYouTube(t)

	fetcher := youtube.NewFetcher(yt.client())
	text, err := fetcher.FetchText(context.Background(), testVideoID)
	if err != nil {
		t.Fatalf("FetchText() error = %v", err)
	}
	if text != "Hello world" {
		t.Errorf("FetchText() = %q, want %q", text, "Hello world")
	}
}

func TestCheckPlayability(t *testing.T) {
	for _, status := range []string{"OK", ""} {
		if err := checkPlayability(PlayabilityStatus{Status: status}); err != nil {
			t.Errorf("checkPlayability(%q) = %v, want nil", status, err)
		}
	}

	err := checkPlayability(PlayabilityStatus{Status: "LIVE_STREAM_OFFLINE"})
	if !errors.Is(err, youtube.ErrVideoUnplayable) {
		t.Errorf("checkPlayability() = %v, want ErrVideoUnplayable", err)
	}
	if !strings.Contains(fmt.Sprint(err), "LIVE_STREAM_OFFLINE") {
		t.Errorf("error should mention status, got %v", err)
	}
}
