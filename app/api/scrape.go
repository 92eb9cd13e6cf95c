package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// scrapeTimeout bounds the best-effort page fetch for user submissions.
const scrapeTimeout = 5 * time.Second

// scrapePage fetches a submitted URL and extracts its title and meta
// description for curation. Fully best-effort: any failure returns empty
// strings and the caller falls back to the URL itself.
func (h *Handler) scrapePage(ctx context.Context, pageURL string) (headline, description string) {
	timeoutCtx, cancel := context.WithTimeout(ctx, scrapeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", ""
	}
	req.Header.Set("User-Agent", h.userAgent)

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return "", ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", ""
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", ""
	}

	headline = strings.TrimSpace(doc.Find("title").First().Text())
	description, _ = doc.Find(`meta[name="description"]`).First().Attr("content")

	return headline, strings.TrimSpace(description)
}
