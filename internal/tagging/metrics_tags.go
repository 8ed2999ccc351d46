package tagging

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"git.home.luguber.info/inful/formtrack/internal/analytics"
)

// MetricsAttr is the attribute carrying "category:action:label".
const MetricsAttr = "data-metrics"

// MetricsTags emits one event per element with a data-metrics attribute, in
// document order. Parts after the third are ignored.
func MetricsTags(doc *goquery.Document) []analytics.Event {
	var out []analytics.Event
	doc.Find("[" + MetricsAttr + "]").Each(func(_ int, s *goquery.Selection) {
		raw, _ := s.Attr(MetricsAttr)
		parts := strings.Split(raw, ":")
		if len(parts) < 3 {
			slog.Debug("Skipping malformed metrics tag", slog.String("value", raw))
			return
		}
		out = append(out, analytics.NewEvent(parts[0], parts[1], parts[2]))
	})
	return out
}
