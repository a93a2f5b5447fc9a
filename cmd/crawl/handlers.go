package crawl

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonesrussell/spinneret/internal/agent"
	"github.com/jonesrussell/spinneret/internal/logger"
)

const summaryLimit = 120

// defaultHandlers builds the handler table attached to every class the
// command materializes. Templates reference these by name: "page" for
// generic pages and as the fallback page-level handler, "article" for
// content pages routed there by a rule callback.
func defaultHandlers(log logger.Interface) map[string]agent.Handler {
	return map[string]agent.Handler{
		"page":    pageHandler(log),
		"article": articleHandler(log),
	}
}

// pageHandler logs the title of each fetched page.
func pageHandler(log logger.Interface) agent.Handler {
	return func(_ context.Context, page *agent.Page) error {
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
		if err != nil {
			return fmt.Errorf("parse page %s: %w", page.URL, err)
		}

		title := strings.TrimSpace(doc.Find("title").First().Text())
		log.Info("Fetched page",
			"url", page.URL,
			"title", title,
			"status", page.StatusCode,
			"depth", page.Depth,
		)
		return nil
	}
}

// articleHandler extracts headline and summary from content pages.
func articleHandler(log logger.Interface) agent.Handler {
	return func(_ context.Context, page *agent.Page) error {
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
		if err != nil {
			return fmt.Errorf("parse article %s: %w", page.URL, err)
		}

		headline := strings.TrimSpace(doc.Find("h1").First().Text())
		if headline == "" {
			headline = strings.TrimSpace(doc.Find("title").First().Text())
		}
		summary, _ := doc.Find(`meta[name="description"]`).Attr("content")
		if summary == "" {
			summary = strings.TrimSpace(doc.Find("p").First().Text())
		}

		log.Info("Extracted article",
			"url", page.URL,
			"headline", headline,
			"summary", truncate(summary, summaryLimit),
			"rule", page.Rule,
		)
		return nil
	}
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
