package encyclopedia

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *WikipediaClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewWikipediaClient(srv.URL+"/api/rest_v1/", srv.Client(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSummary_Success(t *testing.T) {
	var gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		fmt.Fprint(w, `{
			"title": "İstanbul",
			"extract": "İstanbul, Türkiye'nin en kalabalık şehridir.",
			"thumbnail": {"source": "https://upload.example/ist.jpg", "width": 320},
			"content_urls": {"desktop": {"page": "https://tr.wikipedia.org/wiki/%C4%B0stanbul"}}
		}`)
	})

	got := c.Summary(context.Background(), "İstanbul")
	require.NotNil(t, got)
	assert.Equal(t, "/api/rest_v1/page/summary/%C4%B0stanbul", gotPath)
	assert.Equal(t, "İstanbul, Türkiye'nin en kalabalık şehridir.", got.Extract)
	assert.Equal(t, "https://upload.example/ist.jpg", got.Thumbnail)
	assert.Equal(t, "https://tr.wikipedia.org/wiki/%C4%B0stanbul", got.URL)
}

func TestSummary_OptionalFieldsMissing(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"extract": "Bir köy."}`)
	})

	got := c.Summary(context.Background(), "Köy")
	require.NotNil(t, got)
	assert.Equal(t, "Bir köy.", got.Extract)
	assert.Empty(t, got.Thumbnail)
	assert.Empty(t, got.URL)
}

func TestSummary_ExtractHTMLFallback(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"extract": "", "extract_html": "<p><b>Ankara</b>,\n Türkiye'nin <i>başkentidir</i>.</p>"}`)
	})

	got := c.Summary(context.Background(), "Ankara")
	require.NotNil(t, got)
	assert.Equal(t, "Ankara, Türkiye'nin başkentidir.", got.Extract)
}

func TestSummary_AbsentOnFailure(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "no article",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				fmt.Fprint(w, `{"type":"https://mediawiki.org/wiki/HyperSwitch/errors/not_found","title":"Not found."}`)
			},
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			},
		},
		{
			name: "invalid json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `<html>maintenance</html>`)
			},
		},
		{
			name: "empty extract",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"extract": "   ", "thumbnail": {"source": "https://x/y.jpg"}}`)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.handler)
			assert.Nil(t, c.Summary(context.Background(), "Xyzzy"))
		})
	}
}

func TestSummary_UnreachableUpstream(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := NewWikipediaClient(srv.URL, http.DefaultClient, slog.New(slog.NewTextHandler(io.Discard, nil)))

	assert.NotPanics(t, func() {
		assert.Nil(t, c.Summary(context.Background(), "Paris"))
	})
}
