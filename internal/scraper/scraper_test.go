package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"maple-boss-api/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pricePage = `<html><body>
<table class="wikitable">
  <tr><th>Boss</th><th>Difficulty</th><th>Crystal</th></tr>
  <tr><td><a href="/wiki/Lotus">Lotus</a></td><td>Hard</td><td>444,675,000</td></tr>
  <tr><td>Pink  Bean</td><td>chaos</td><td>64.000.000</td></tr>
  <tr><td>Horntail</td><td>Chaos</td><td>1,000</td></tr>
  <tr><td>Will</td><td>Impossible</td><td>1,000</td></tr>
  <tr><td>Gloom</td><td>Chaos</td><td>TBD</td></tr>
  <tr><td>Lotus</td><td>Hard</td><td>450,000,000</td></tr>
  <tr><td>only two</td><td>cells</td></tr>
</table>
</body></html>`

func TestParsePriceTable(t *testing.T) {
	entries, err := ParsePriceTable(strings.NewReader(pricePage))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "Lotus", entries[0].BossName)
	assert.Equal(t, "Hard", entries[0].Difficulty)
	assert.Equal(t, 450000000, entries[0].CrystalValue, "later rows win")

	assert.Equal(t, "Pink Bean", entries[1].BossName)
	assert.Equal(t, "Chaos", entries[1].Difficulty)
	assert.Equal(t, 64000000, entries[1].CrystalValue)
	assert.False(t, entries[1].UpdatedAt.IsZero())
}

func TestParsePrice(t *testing.T) {
	v, ok := parsePrice("1 234 567")
	assert.True(t, ok)
	assert.Equal(t, 1234567, v)

	_, ok = parsePrice("")
	assert.False(t, ok)
	_, ok = parsePrice("-5")
	assert.False(t, ok)
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "MapleBossAPI/1.0", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(pricePage))
	}))
	defer srv.Close()

	s := New(config.Config{PriceSourceURL: srv.URL, HTTPTimeout: time.Second})
	entries, err := s.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestFetchErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(config.Config{PriceSourceURL: srv.URL}).Fetch(context.Background())
	assert.ErrorContains(t, err, "HTTP 502")

	_, err = New(config.Config{}).Fetch(context.Background())
	assert.Error(t, err)
}
