package tagging

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"git.home.luguber.info/inful/formtrack/internal/analytics"
)

// SubmitSummaryFields are the yes/no questions shown on the submit summary page.
var SubmitSummaryFields = []string{
	"pensionsTaken",
	"pensionsTakenBefore",
	"pensionsTakenBetween",
	"overseasPensions",
}

const displaySuffix = "DisplayValue0"

// SubmitSummary reports the yes/no answer of each summary field. With a
// prefix such as "ip14" the ids become "ip14PensionsTakenDisplayValue0" and
// the category "ip14SubmitSummary". Answers other than "Yes" or "No" are skipped.
func SubmitSummary(doc *goquery.Document, prefix string) []analytics.Event {
	category := prefixed(prefix, "submitSummary")

	var out []analytics.Event
	for _, field := range SubmitSummaryFields {
		name := prefixed(prefix, field)
		s := doc.Find(`[id="` + name + displaySuffix + `"]`).First()
		if s.Length() == 0 {
			continue
		}
		switch strings.TrimSpace(s.Text()) {
		case "Yes":
			out = append(out, analytics.NewEvent(category, name, "yes"))
		case "No":
			out = append(out, analytics.NewEvent(category, name, "no"))
		}
	}
	return out
}

// prefixed joins prefix and name in camel case.
func prefixed(prefix, name string) string {
	if prefix == "" {
		return name
	}
	r, size := utf8.DecodeRuneInString(name)
	return prefix + string(unicode.ToUpper(r)) + name[size:]
}
