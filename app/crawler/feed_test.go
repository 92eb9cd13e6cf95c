package crawler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/thopica/basketball-lobster/app/database"
)

func feedServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, body)
	}))
}

func rssSource(name, url string) database.Source {
	return database.Source{
		Name:        name,
		URL:         url,
		CrawlType:   "rss",
		ContentType: "article",
	}
}

func TestCrawlFeed_MapsItems(t *testing.T) {
	server := feedServer(t, `<?xml version="1.0"?>
<rss version="2.0">
<channel>
<title>HoopsWire</title>
<item>
  <title>Celtics extend their winning streak</title>
  <link>https://hoopswire.example/celtics-streak</link>
  <description>Boston won its eighth straight game.</description>
  <author>jane@hoopswire.example (Jane Doe)</author>
  <pubDate>Mon, 02 Jan 2006 15:04:05 GMT</pubDate>
  <enclosure url="https://hoopswire.example/streak.jpg" type="image/jpeg" length="1000"/>
</item>
</channel>
</rss>`)
	defer server.Close()

	crawler := NewCrawler(server.Client(), "test-agent", "")
	candidates := crawler.Run(context.Background(), rssSource("HoopsWire", server.URL))

	if len(candidates) != 1 {
		t.Fatalf("Expected 1 candidate, got %d", len(candidates))
	}

	candidate := candidates[0]
	if candidate.URL != "https://hoopswire.example/celtics-streak" {
		t.Errorf("Unexpected URL: %s", candidate.URL)
	}
	if candidate.Headline != "Celtics extend their winning streak" {
		t.Errorf("Unexpected headline: %s", candidate.Headline)
	}
	if candidate.Text != "Boston won its eighth straight game." {
		t.Errorf("Unexpected text: %s", candidate.Text)
	}
	if candidate.SourceName != "HoopsWire" || candidate.ContentType != "article" {
		t.Errorf("Source attribution missing: %s/%s", candidate.SourceName, candidate.ContentType)
	}
	if candidate.ThumbnailURL != "https://hoopswire.example/streak.jpg" {
		t.Errorf("Expected enclosure thumbnail, got %s", candidate.ThumbnailURL)
	}
	if candidate.SourcePublishedAt == nil {
		t.Errorf("Expected parsed publish timestamp")
	}
}

func TestCrawlFeed_SkipsItemsMissingLinkOrTitle(t *testing.T) {
	server := feedServer(t, `<?xml version="1.0"?>
<rss version="2.0">
<channel>
<title>HoopsWire</title>
<item><title>No link here</title></item>
<item><link>https://hoopswire.example/no-title</link></item>
<item><title>Complete item</title><link>https://hoopswire.example/ok</link></item>
</channel>
</rss>`)
	defer server.Close()

	crawler := NewCrawler(server.Client(), "test-agent", "")
	candidates := crawler.Run(context.Background(), rssSource("HoopsWire", server.URL))

	if len(candidates) != 1 {
		t.Fatalf("Expected only the complete item, got %d candidates", len(candidates))
	}
	if candidates[0].URL != "https://hoopswire.example/ok" {
		t.Errorf("Unexpected candidate: %s", candidates[0].URL)
	}
}

func TestCrawlFeed_CapsItemCount(t *testing.T) {
	var items strings.Builder
	for i := 0; i < maxFeedItems+10; i++ {
		fmt.Fprintf(&items, `<item><title>Item %d</title><link>https://hoopswire.example/%d</link></item>`, i, i)
	}
	server := feedServer(t, `<?xml version="1.0"?><rss version="2.0"><channel><title>HoopsWire</title>`+items.String()+`</channel></rss>`)
	defer server.Close()

	crawler := NewCrawler(server.Client(), "test-agent", "")
	candidates := crawler.Run(context.Background(), rssSource("HoopsWire", server.URL))

	if len(candidates) != maxFeedItems {
		t.Errorf("Expected %d candidates, got %d", maxFeedItems, len(candidates))
	}
}

func TestCrawlFeed_EmbeddedImageFallback(t *testing.T) {
	server := feedServer(t, `<?xml version="1.0"?>
<rss version="2.0">
<channel>
<title>HoopsWire</title>
<item>
  <title>Recap</title>
  <link>https://hoopswire.example/recap</link>
  <content:encoded xmlns:content="http://purl.org/rss/1.0/modules/content/"><![CDATA[<p>Recap text</p><img src="https://hoopswire.example/recap.png">]]></content:encoded>
</item>
</channel>
</rss>`)
	defer server.Close()

	crawler := NewCrawler(server.Client(), "test-agent", "")
	candidates := crawler.Run(context.Background(), rssSource("HoopsWire", server.URL))

	if len(candidates) != 1 {
		t.Fatalf("Expected 1 candidate, got %d", len(candidates))
	}
	if candidates[0].ThumbnailURL != "https://hoopswire.example/recap.png" {
		t.Errorf("Expected embedded image fallback, got %q", candidates[0].ThumbnailURL)
	}
}

func TestCrawlFeed_HTTPErrorYieldsNoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	crawler := NewCrawler(server.Client(), "test-agent", "")
	candidates := crawler.Run(context.Background(), rssSource("HoopsWire", server.URL))

	if len(candidates) != 0 {
		t.Errorf("Expected no candidates on HTTP error, got %d", len(candidates))
	}
}

func TestCrawlFeed_SendsUserAgent(t *testing.T) {
	var gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		fmt.Fprint(w, `<?xml version="1.0"?><rss version="2.0"><channel><title>X</title></channel></rss>`)
	}))
	defer server.Close()

	crawler := NewCrawler(server.Client(), "basketball-lobster/1.0", "")
	crawler.Run(context.Background(), rssSource("HoopsWire", server.URL))

	if gotAgent != "basketball-lobster/1.0" {
		t.Errorf("Expected configured User-Agent, got %q", gotAgent)
	}
}

func TestRun_UnknownCrawlTypeYieldsNoCandidates(t *testing.T) {
	crawler := NewCrawler(http.DefaultClient, "test-agent", "")

	candidates := crawler.Run(context.Background(), database.Source{
		Name:      "Mystery",
		CrawlType: "carrier_pigeon",
	})

	if len(candidates) != 0 {
		t.Errorf("Expected no candidates for unknown crawl type, got %d", len(candidates))
	}
}
