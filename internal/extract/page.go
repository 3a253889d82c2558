package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/modelwatch-hq/release-scout/internal/domain"
)

var spaceRun = regexp.MustCompile(`[\s\x{00a0}]+`)

// Page isolates the textual content of an HTML document. Script and style
// blocks are removed before extraction; content inside <article> is
// preferred, then <main>, then the whole document. The document title and
// all h1 headings come back as separate fields for higher-precision
// matching. Degenerate input yields a zero-value page, never an error.
func Page(html string) domain.ExtractedPage {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return domain.ExtractedPage{}
	}

	doc.Find("script, style, noscript").Remove()

	page := domain.ExtractedPage{
		Title: flatten(doc.Find("title").First().Text()),
	}
	doc.Find("h1").Each(func(_ int, sel *goquery.Selection) {
		if h := flatten(sel.Text()); h != "" {
			page.Headings = append(page.Headings, h)
		}
	})

	if article := doc.Find("article"); article.Length() > 0 {
		page.Content = flatten(article.Text())
		return page
	}
	if main := doc.Find("main"); main.Length() > 0 {
		page.Content = flatten(main.Text())
		return page
	}
	page.Content = wholeDocumentText(html, doc)
	return page
}

// wholeDocumentText extracts the main body when no article/main region is
// marked up. Readability does a better job isolating the meaningful text;
// when it has nothing to offer the stripped document text is the fallback.
func wholeDocumentText(html string, doc *goquery.Document) string {
	if article, err := readability.FromReader(strings.NewReader(html), nil); err == nil {
		if text := flatten(article.TextContent); text != "" {
			return text
		}
	}
	return flatten(doc.Text())
}

// flatten collapses whitespace runs (including non-breaking spaces) to a
// single space and trims.
func flatten(s string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}
