// Package summary reads the error summary out of a rendered form page.
package summary

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"git.home.luguber.info/inful/formtrack/internal/classify"
	"git.home.luguber.info/inful/formtrack/internal/config"
	"git.home.luguber.info/inful/formtrack/internal/foundation/errors"
)

// Selectors locate the summary container and its heading.
type Selectors struct {
	Summary string
	Heading string
}

// DefaultSelectors match both the legacy and the GOV.UK summary markup.
func DefaultSelectors() Selectors {
	return Selectors{Summary: config.DefaultSummarySelector, Heading: config.DefaultHeadingSelector}
}

// SelectorsFrom takes the selectors from a scan config, falling back to defaults.
func SelectorsFrom(sc config.ScanConfig) Selectors {
	sel := DefaultSelectors()
	if sc.SummarySelector != "" {
		sel.Summary = sc.SummarySelector
	}
	if sc.HeadingSelector != "" {
		sel.Heading = sc.HeadingSelector
	}
	return sel
}

// Summary is the content of one page's error summary.
type Summary struct {
	Entries    []classify.ErrorEntry `json:"entries"`
	Heading    string                `json:"heading,omitempty"`
	HasHeading bool                  `json:"has_heading"`
}

// Parse reads an HTML document.
func Parse(r io.Reader) (*goquery.Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryParse, "failed to parse HTML").Build()
	}
	return goquery.NewDocumentFromNode(root), nil
}

// Extract parses r and reads its error summary.
func Extract(r io.Reader, sel Selectors) (*Summary, error) {
	doc, err := Parse(r)
	if err != nil {
		return nil, err
	}
	return FromDocument(doc, sel), nil
}

// FromDocument reads the error summary of an already parsed page. A page
// without a summary yields an empty result.
func FromDocument(doc *goquery.Document, sel Selectors) *Summary {
	s := &Summary{}

	doc.Find(sel.Summary).Find("a").Each(func(_ int, a *goquery.Selection) {
		s.Entries = append(s.Entries, classify.ErrorEntry{
			ID:      entryID(a),
			Message: collapse(a.Text()),
		})
	})

	if h := doc.Find(sel.Heading).First(); h.Length() > 0 {
		s.HasHeading = true
		s.Heading = collapse(h.Text())
	}
	return s
}

// entryID prefers the anchor's id and falls back to the fragment of its href.
func entryID(a *goquery.Selection) string {
	if id, ok := a.Attr("id"); ok && id != "" {
		return id
	}
	if href, ok := a.Attr("href"); ok {
		if _, frag, found := strings.Cut(href, "#"); found {
			return frag
		}
	}
	return ""
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
