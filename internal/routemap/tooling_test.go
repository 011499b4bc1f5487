package routemap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedFromSitemap(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>https://aex.design/typeplayground</loc></url>
  <url><loc>https://aex.design/about/</loc></url>
  <url><loc>https://aex.design/about</loc></url>
</urlset>`))
	}))
	defer server.Close()

	entries, err := SeedFromSitemap(context.Background(), server.Client(), server.URL+"/sitemap.xml")
	require.NoError(t, err)
	assert.Equal(t, []Entry{{Slug: "/"}, {Slug: "/about"}, {Slug: "/typeplayground"}}, entries)
}

func TestSeedFromSitemapHTTPFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := SeedFromSitemap(context.Background(), server.Client(), server.URL)
	assert.Error(t, err)
}

func TestFillFromLiveSite(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			_, _ = w.Write([]byte(`<html><body><main><article id="block-0123456789ABCDEF0123456789abcdef"><p>hi</p></article></main></body></html>`))
		case "/props":
			_, _ = w.Write([]byte(`<script>self.__next_f.push("{\"blockId\":\"fedcba98-7654-3210-fedc-ba9876543210\"}")</script>`))
		case "/plain":
			_, _ = w.Write([]byte(`<html><body>nothing here</body></html>`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	entries := []Entry{{Slug: "/"}, {Slug: "/props"}, {Slug: "/plain"}, {Slug: "/gone"}, {Slug: "relative"}}
	results := FillFromLiveSite(context.Background(), server.Client(), server.URL+"/", entries)

	require.Len(t, results, len(entries))
	assert.Equal(t, FillStatusOK, results[0].Status)
	assert.Equal(t, "0123456789abcdef0123456789abcdef", entries[0].PageID)
	assert.Equal(t, FillStatusOK, results[1].Status)
	assert.Equal(t, "fedcba9876543210fedcba9876543210", entries[1].PageID)
	assert.Equal(t, FillStatusNoMatch, results[2].Status)
	assert.Equal(t, "http_404", results[3].Status)
	assert.Equal(t, FillStatusInvalid, results[4].Status)
	assert.Empty(t, entries[2].PageID)
}

func TestFillFromLiveSiteFetchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	address := server.URL
	server.Close()

	results := FillFromLiveSite(context.Background(), http.DefaultClient, address, []Entry{{Slug: "/"}})
	require.Len(t, results, 1)
	assert.Equal(t, FillStatusFetchError, results[0].Status)
	assert.Error(t, results[0].Err)
}
