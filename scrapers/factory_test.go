package scrapers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raushankrgupta/price-list-crawler/scrapers/base"
)

func TestRegistryMappingsValid(t *testing.T) {
	b := base.NewBaseScraper(base.Options{})
	for _, r := range Registry {
		t.Run(r.Chain, func(t *testing.T) {
			c := r.New(b)
			assert.Equal(t, r.Chain, c.Chain())
			assert.NoError(t, c.Mapping().Validate())
		})
	}
}

func TestGetCrawler(t *testing.T) {
	b := base.NewBaseScraper(base.Options{})

	c, err := GetCrawler(" Konzum ", b)
	require.NoError(t, err)
	assert.Equal(t, "konzum", c.Chain())

	c, err = GetCrawler("spar", b)
	require.NoError(t, err)
	assert.Equal(t, "spar", c.Chain())

	_, err = GetCrawler("mercator", b)
	assert.Error(t, err)
}

func TestSelectChains(t *testing.T) {
	all, err := SelectChains(nil)
	require.NoError(t, err)
	assert.Equal(t, Chains(), all)
	assert.Equal(t, []string{
		"konzum", "lidl", "tommy", "kaufland", "eurospin", "dm", "ntl", "ribola",
		"spar", "studenac", "plodine", "ktc", "metro", "trgocentar", "zabac", "vrutak",
	}, all)

	got, err := SelectChains([]string{"lidl", " DM", "lidl", ""})
	require.NoError(t, err)
	assert.Equal(t, []string{"lidl", "dm"}, got)

	got, err = SelectChains([]string{"spar", "Plodine", "ktc", "metro", "studenac", "trgocentar", "zabac", "vrutak"})
	require.NoError(t, err)
	assert.Len(t, got, 8)

	_, err = SelectChains([]string{"lidl", "mercator"})
	assert.ErrorContains(t, err, `unknown chain "mercator"`)
}
