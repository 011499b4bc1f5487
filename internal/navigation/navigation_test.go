package navigation

import (
	"encoding/xml"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarcoPoloResearchLab/aexsite/internal/content"
)

func TestBuildMenuGroupsByFirstSegment(t *testing.T) {
	routes := []content.Route{
		{Slug: "/", Title: "Home"},
		{Slug: "/onchain/zeta", Title: "Zeta"},
		{Slug: "/onchain", Title: "On-chain Work"},
		{Slug: "/onchain/alpha-one"},
		{Slug: "/digital-design-assets/pack_two"},
		{Slug: "/onchain/tester-type-tester", Hidden: true},
		{Slug: "/secret", Hidden: true},
	}

	menu := BuildMenu(routes)
	require.Len(t, menu, 2)

	assert.Equal(t, MenuGroup{
		Label: "Digital Design Assets",
		Slug:  "/digital-design-assets",
		Items: []MenuItem{{Label: "Pack Two", Slug: "/digital-design-assets/pack_two"}},
	}, menu[0])
	assert.Equal(t, MenuGroup{
		Label: "On-chain Work",
		Slug:  "/onchain",
		Items: []MenuItem{
			{Label: "Alpha One", Slug: "/onchain/alpha-one"},
			{Label: "Zeta", Slug: "/onchain/zeta"},
		},
	}, menu[1])
}

func TestBuildMenuEmpty(t *testing.T) {
	assert.Empty(t, BuildMenu(nil))
	assert.Empty(t, BuildMenu([]content.Route{{Slug: "/"}}))
}

func TestBuildSitemap(t *testing.T) {
	body, err := BuildSitemap("https://aex.design", []string{"/about", "/", "/about/", "/typeplayground"}, DefaultStaticPaths)
	require.NoError(t, err)

	var document struct {
		Namespace string `xml:"xmlns,attr"`
		URLs      []struct {
			Location        string `xml:"loc"`
			ChangeFrequency string `xml:"changefreq"`
			Priority        string `xml:"priority"`
		} `xml:"url"`
	}
	require.NoError(t, xml.Unmarshal(body, &document))
	assert.Equal(t, sitemapNamespace, document.Namespace)
	require.Len(t, document.URLs, 3)

	assert.Equal(t, "https://aex.design/", document.URLs[0].Location)
	assert.Equal(t, "1.0", document.URLs[0].Priority)
	assert.Equal(t, "https://aex.design/about", document.URLs[1].Location)
	assert.Equal(t, "0.7", document.URLs[1].Priority)
	assert.Equal(t, "https://aex.design/typeplayground", document.URLs[2].Location)
	for _, entry := range document.URLs {
		assert.Equal(t, "weekly", entry.ChangeFrequency)
	}
}

func TestBuildSitemapRejectsRelativeSiteURL(t *testing.T) {
	_, err := BuildSitemap("aex.design", nil, nil)
	assert.True(t, errors.Is(err, ErrInvalidSiteURL))
}
