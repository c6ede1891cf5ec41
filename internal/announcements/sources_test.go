package announcements

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-news-analysis/internal/datasource"
)

const screenerPage = `<html><body>
<div class="card card-medium">
  <div><h2>Latest announcements</h2></div>
  <div>
    <a href="/company/ACME/">ACME Ltd</a>
    <div><a href="/announcement/101/">Outcome of Board Meeting <span>7m ago</span></a></div>
  </div>
  <div>
    <a href="/company/GLOBEX/">Globex Corp</a>
    <div><a href="https://www.bseindia.com/xml-data/corpfiling/AttachLive/g.pdf">Dividend declared <span>2h ago</span></a></div>
  </div>
  <div>
    <a href="/company/INITECH/">Initech</a>
    <div><a href="/announcement/103/">Order win <span>1d ago</span></a></div>
  </div>
</div>
<div class="card card-medium"><div><a href="/x">Other</a><a href="/y">Card 1m ago</a></div></div>
</body></html>`

func TestScreenerScraper_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "unit-test-agent", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(screenerPage))
	}))
	defer srv.Close()

	s := NewScreenerScraper(srv.URL+"/announcements/all/", 2, "unit-test-agent", 5*time.Second)
	scraped := time.Date(2025, 5, 15, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return scraped }

	got, err := s.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "ACME Ltd", got[0].Company)
	assert.Equal(t, "Outcome of Board Meeting", got[0].Headline)
	assert.Equal(t, "7m ago", got[0].Time)
	assert.Equal(t, srv.URL+"/announcement/101/", got[0].Link)
	assert.Equal(t, got[0].Link, got[0].PDFLink)
	assert.True(t, got[0].AnnouncedAt.Equal(scraped.Add(-7*time.Minute)))

	assert.Equal(t, "Globex Corp", got[1].Company)
	assert.True(t, strings.HasSuffix(got[1].PDFLink, "/g.pdf"))
}

func TestScreenerScraper_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewScreenerScraper(srv.URL, 5, "ua", time.Second).Fetch(context.Background())
	assert.Error(t, err)
}

func TestBSEClient_FetchDay(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/BseIndiaAPI/api/AnnSubCategoryGetData/w", r.URL.Path)
		assert.Equal(t, "20250514", r.URL.Query().Get("strPrevDate"))
		assert.Equal(t, "Result", r.URL.Query().Get("strCat"))
		assert.Equal(t, "Financial Results", r.URL.Query().Get("subcategory"))
		assert.Equal(t, "https://www.bseindia.com/", r.Header.Get("Referer"))

		if r.URL.Query().Get("pageno") != "1" {
			w.Write([]byte(`{"Table":[],"Table1":[{"ROWCNT":2}]}`))
			return
		}
		w.Write([]byte(`{"Table":[
			{"NEWSSUB":"ACME LTD - 500001 - Financial Results","HEADLINE":"Audited results for Q4","DT_TM":"2025-05-14T18:30:12.37","ATTACHMENTNAME":"a1.pdf"},
			{"NEWSSUB":"GLOBEX - 500002 - Financial Results","HEADLINE":"No file","DT_TM":"2025-05-14T19:00:00","ATTACHMENTNAME":""}
		],"Table1":[{"ROWCNT":2}]}`))
	}))
	defer srv.Close()

	b := NewBSEClient(srv.URL, "Result", "Financial Results", 1)
	got, err := b.FetchDay(context.Background(), time.Date(2025, 5, 14, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, "ACME LTD", got[0].Company)
	assert.Equal(t, "Financial Results", got[0].Headline)
	assert.Equal(t, "Audited results for Q4", got[0].Description)
	assert.Equal(t, "2025-05-14 18:30:12", got[0].Time)
	assert.Equal(t, bseAttachBase+"a1.pdf", got[0].PDFLink)
}

func TestNSEClient_FetchDay(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			http.SetCookie(w, &http.Cookie{Name: "nsit", Value: "s1", Path: "/"})
			return
		}
		if c, err := r.Cookie("nsit"); err != nil || c.Value != "s1" {
			http.Error(w, "no session", http.StatusUnauthorized)
			return
		}
		assert.Equal(t, "15-05-2025", r.URL.Query().Get("from_date"))
		w.Write([]byte(`[
			{"symbol":"ACME","sm_name":"Acme Limited","desc":"Outcome of Board Meeting","attchmntText":"Board approved a buyback","attchmntFile":"https://nsearchives.nseindia.com/a.pdf","an_dt":"15-May-2025 10:31:02"},
			{"symbol":"NOFILE","sm_name":"","desc":"General","attchmntText":"","attchmntFile":"","an_dt":"15-May-2025 11:00:00"}
		]`))
	}))
	defer srv.Close()

	n := NewNSEClient(srv.URL)
	got, err := n.FetchDay(context.Background(), time.Date(2025, 5, 15, 4, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, "Acme Limited", got[0].Company)
	assert.Equal(t, "Board approved a buyback", got[0].Description)
	assert.Equal(t, "https://nsearchives.nseindia.com/a.pdf", got[0].PDFLink)
	assert.Equal(t, 10, got[0].AnnouncedAt.Hour())
}

func TestExtractor_HTMLAndPDF(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head><title>Outcome</title></head><body><article>
			<h1>Outcome of Board Meeting</h1>
			<p>The Board of Directors approved a final dividend of Rs 5 per share and a strategic partnership with Globex.</p>
			<p>The company also reported record profit for the quarter ended March 2025, driven by strong order inflows.</p>
			<p>Revenue from operations grew twenty two percent year on year while operating margins expanded on the back of lower input costs and better realisations across the specialty chemicals portfolio.</p>
			<p>The Board further noted that the new plant at Dahej has been commissioned ahead of schedule and is expected to contribute meaningfully to revenue from the second quarter of the coming financial year.</p>
		</article></body></html>`))
	}))
	defer srv.Close()

	cache, err := datasource.NewCache(t.TempDir(), time.Hour)
	require.NoError(t, err)
	x := NewExtractor(cache)

	text, err := x.Extract(context.Background(), srv.URL+"/notice.html")
	require.NoError(t, err)
	assert.Contains(t, text, "strategic partnership")

	again, err := x.Extract(context.Background(), srv.URL+"/notice.html")
	require.NoError(t, err)
	assert.Equal(t, text, again)
	assert.Equal(t, 1, calls, "second extraction is served from cache")

	pdf, err := x.Extract(context.Background(), srv.URL+"/file.PDF")
	require.NoError(t, err)
	assert.Empty(t, pdf)
	assert.Equal(t, 1, calls)
}
