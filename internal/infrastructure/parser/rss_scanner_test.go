package parser

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ApagonScanner/internal/scanner"
)

const feedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/">
<channel>
<title>Cubadebate - Economía</title>
<item>
  <title>Apagón por déficit de generación</title>
  <link>https://example.cu/apagon-deficit</link>
  <description>La Unión Eléctrica reporta afectaciones.</description>
  <content:encoded><![CDATA[<p>Texto completo del informe con afectaciones de 900 MW.</p>]]></content:encoded>
  <pubDate>Thu, 07 Mar 2024 10:15:00 -0400</pubDate>
</item>
<item>
  <title>Apagón de archivo</title>
  <link>https://example.cu/apagon-viejo</link>
  <description>Cobertura antigua del apagón.</description>
  <pubDate>Sun, 05 Jan 2020 08:00:00 -0500</pubDate>
</item>
<item>
  <title>Resultados del béisbol</title>
  <link>https://example.cu/beisbol</link>
  <description>Serie nacional, sin relación.</description>
  <pubDate>Thu, 07 Mar 2024 12:00:00 -0400</pubDate>
</item>
<item>
  <title>Apagón ya procesado</title>
  <link>https://example.cu/apagon-conocido</link>
  <description>Nota previa sobre el apagón.</description>
  <pubDate>Thu, 07 Mar 2024 14:00:00 -0400</pubDate>
</item>
</channel>
</rss>`

func TestRSSScanFiltersItems(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, feedXML)
	}))
	defer server.Close()

	req := scanner.Request{
		SiteName:   "cubadebate-rss",
		URL:        server.URL,
		MinDate:    "2024-03-01",
		Keywords:   []string{"apagón"},
		KnownLinks: map[string]bool{"https://example.cu/apagon-conocido": true},
	}

	articles, err := NewRSSScanner(nil).Scan(context.Background(), req)

	require.NoError(t, err)
	require.Len(t, articles, 1)

	got := articles[0]
	assert.Equal(t, "https://example.cu/apagon-deficit", got.URL)
	assert.Equal(t, "Apagón por déficit de generación", got.Title)
	assert.Equal(t, "2024-03-07", got.ReportDate)
	assert.Equal(t, "cubadebate-rss", got.Source)
	assert.Contains(t, got.Body, "900 MW")
}

func TestRSSScanFallsBackToDescription(t *testing.T) {
	t.Parallel()

	feed := `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>t</title>
<item>
  <title>Apagón breve</title>
  <link>https://example.cu/apagon-breve</link>
  <description>Solo la descripción del apagón.</description>
  <pubDate>Thu, 07 Mar 2024 10:15:00 -0400</pubDate>
</item>
</channel></rss>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, feed)
	}))
	defer server.Close()

	req := scanner.Request{
		SiteName: "cubadebate-rss",
		URL:      server.URL,
		MinDate:  "2024-03-01",
		Keywords: []string{"apagón"},
	}

	articles, err := NewRSSScanner(nil).Scan(context.Background(), req)

	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "Solo la descripción del apagón.", articles[0].Body)
}

func TestRSSScanRejectsEmptyURL(t *testing.T) {
	t.Parallel()

	_, err := NewRSSScanner(nil).Scan(context.Background(), scanner.Request{SiteName: "x"})
	assert.Error(t, err)
}
