package parser

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ApagonScanner/internal/config"
	"ApagonScanner/internal/scanner"
)

func listingHTML(host string) string {
	base := "http://" + host
	return fmt.Sprintf(`<html><body>
<div class="bigimage_post">
  <div class="title"><a href="%s/articulo/apagon">Reportan apagón en varias provincias</a></div>
  <div class="excerpt">La Unión Eléctrica informa afectaciones.</div>
</div>
<div class="image_post">
  <div class="title"><a href="%s/articulo/conocido">Apagón ya procesado</a></div>
  <div class="excerpt">Nota previa sobre el apagón.</div>
</div>
<div class="image_post">
  <div class="title"><a href="%s/articulo/beisbol">Resultados del béisbol</a></div>
  <div class="excerpt">Serie nacional, sin relación.</div>
</div>
<div class="image_post">
  <div class="title"><a href="%s/articulo/viejo">Apagón de hace años</a></div>
  <div class="excerpt">Cobertura antigua del apagón.</div>
</div>
</body></html>`, base, base, base, base)
}

func articleHTML(published string) string {
	return fmt.Sprintf(`<html><head>
<meta property="article:published_time" content="%s"/>
<title>Reportan apagón</title>
</head><body><article>
<p>La Unión Eléctrica informó afectaciones al servicio por déficit de generación durante el horario pico.</p>
<p>Se reportan interrupciones en varias provincias del país mientras continúan los trabajos de mantenimiento.</p>
<p>La entidad estima una afectación superior a los 900 MW en el sistema electroenergético nacional.</p>
</article></body></html>`, published)
}

func newListingServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/categoria/economia/page/1/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, listingHTML(r.Host))
	})
	mux.HandleFunc("/categoria/economia/page/2/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("/articulo/apagon", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, articleHTML("2024-03-07T10:15:00-04:00"))
	})
	mux.HandleFunc("/articulo/viejo", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, articleHTML("2020-01-05T08:00:00-05:00"))
	})
	mux.HandleFunc("/articulo/conocido", func(w http.ResponseWriter, r *http.Request) {
		t.Error("known article must not be fetched")
	})
	return httptest.NewServer(mux)
}

func newFastScanner(maxPages int) *CubadebateScanner {
	sc := NewCubadebateScanner(nil, config.ScraperConfig{MaxPages: maxPages}, nil)
	sc.fetchDelay = 0
	sc.pageDelay = 0
	return sc
}

func TestScanCollectsMatchingRecentArticles(t *testing.T) {
	t.Parallel()

	server := newListingServer(t)
	defer server.Close()

	req := scanner.Request{
		SiteName:   "cubadebate-economia",
		URL:        server.URL + "/categoria/economia/",
		MinDate:    "2024-03-01",
		Keywords:   []string{"apagón", "Unión Eléctrica"},
		KnownLinks: map[string]bool{server.URL + "/articulo/conocido": true},
	}

	articles, err := newFastScanner(1).Scan(context.Background(), req)

	require.NoError(t, err)
	require.Len(t, articles, 1)

	got := articles[0]
	assert.Equal(t, server.URL+"/articulo/apagon", got.URL)
	assert.Equal(t, "Reportan apagón en varias provincias", got.Title)
	assert.Equal(t, "2024-03-07", got.ReportDate)
	assert.Equal(t, "cubadebate-economia", got.Source)
	assert.Contains(t, got.Body, "déficit de generación")
}

func TestScanSkipsFailingListingPage(t *testing.T) {
	t.Parallel()

	server := newListingServer(t)
	defer server.Close()

	req := scanner.Request{
		SiteName: "cubadebate-economia",
		URL:      server.URL + "/categoria/economia/",
		MinDate:  "2024-03-01",
		Keywords: []string{"apagón"},
	}

	// Page 2 responds 404; the crawl keeps what page 1 produced.
	articles, err := newFastScanner(2).Scan(context.Background(), req)

	require.NoError(t, err)
	assert.Len(t, articles, 1)
}

func TestScanRejectsEmptyURL(t *testing.T) {
	t.Parallel()

	_, err := newFastScanner(1).Scan(context.Background(), scanner.Request{SiteName: "x"})
	assert.Error(t, err)
}

func TestPublishedDateFallsBackToReadability(t *testing.T) {
	t.Parallel()

	raw := []byte("<html><head></head><body><p>sin metadatos</p></body></html>")
	assert.Equal(t, "", publishedDate(raw, nil))
}
