package youtube

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	httpclient "ytscribe/http"
)

func TestParseTitle(t *testing.T) {
	tests := []struct {
		name   string
		page   string
		want   string
		wantOK bool
	}{
		{
			name:   "og:title preferred",
			page:   `<html><head><title>Page - YouTube</title><meta property="og:title" content="Open Graph Title"></head></html>`,
			want:   "Open Graph Title",
			wantOK: true,
		},
		{
			name:   "title suffix stripped",
			page:   `<html><head><title>Test Video - YouTube</title></head></html>`,
			want:   "Test Video",
			wantOK: true,
		},
		{
			name:   "title without suffix",
			page:   `<html><head><title>Plain</title></head></html>`,
			want:   "Plain",
			wantOK: true,
		},
		{
			name:   "only trailing suffix removed",
			page:   `<title>A - YouTube - YouTube review - YouTube</title>`,
			want:   "A - YouTube - YouTube review",
			wantOK: true,
		},
		{
			name:   "entities decoded",
			page:   `<meta property="og:title" content="Tom &amp; Jerry">`,
			want:   "Tom & Jerry",
			wantOK: true,
		},
		{
			name:   "empty og:title falls back to title",
			page:   `<head><meta property="og:title" content=""><title>Backup - YouTube</title></head>`,
			want:   "Backup",
			wantOK: true,
		},
		{
			name:   "no markup",
			page:   `<html><body>nothing here</body></html>`,
			wantOK: false,
		},
		{
			name:   "suffix only",
			page:   `<title> - YouTube</title>`,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseTitle([]byte(tt.page))
			if ok != tt.wantOK {
				t.Fatalf("ParseTitle() ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("ParseTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTitleResolverResolve(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(`<html><head><title>Test Video - YouTube</title></head></html>`))
	}))
	defer server.Close()

	client := httpclient.New(nil)
	defer client.Close()

	resolver := NewTitleResolver(client, zerolog.Nop())
	if got := resolver.Resolve(context.Background(), server.URL+"/watch?v=abc12345678"); got != "Test Video" {
		t.Errorf("Resolve() = %q, want %q", got, "Test Video")
	}
	if !strings.Contains(gotUA, "Mozilla/5.0") {
		t.Errorf("User-Agent = %q, want browser-like", gotUA)
	}
}

func TestTitleResolverFallback(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "non-200 status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				w.Write([]byte(`<title>Not Found - YouTube</title>`))
			},
		},
		{
			name: "non-200 success status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			},
		},
		{
			name: "no title markup",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`<html><body></body></html>`))
			},
		},
	}

	client := httpclient.New(nil)
	defer client.Close()
	resolver := NewTitleResolver(client, zerolog.Nop())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			if got := resolver.Resolve(context.Background(), server.URL); got != FallbackTitle {
				t.Errorf("Resolve() = %q, want %q", got, FallbackTitle)
			}
		})
	}
}

func TestTitleResolverUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := httpclient.New(nil)
	defer client.Close()

	resolver := NewTitleResolver(client, zerolog.Nop())
	if got := resolver.Resolve(context.Background(), url); got != FallbackTitle {
		t.Errorf("Resolve() = %q, want %q", got, FallbackTitle)
	}
	if got := resolver.Resolve(context.Background(), "not a url"); got != FallbackTitle {
		t.Errorf("Resolve(invalid) = %q, want %q", got, FallbackTitle)
	}
}
