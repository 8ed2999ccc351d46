package tagging

import (
	"github.com/PuerkitoBio/goquery"

	"git.home.luguber.info/inful/formtrack/internal/analytics"
)

// ExitSurveyRadios are the exit survey radio button ids, in reporting order.
var ExitSurveyRadios = []string{
	"phoneOrWrite-yes",
	"phoneOrWrite-no",
	"phoneOrWriteNow-yes",
	"phoneOrWriteNow-no",
	"phoneOrWriteNow-don't_know",
	"recommend-very_likely",
	"recommend-likely",
	"recommend-not_likely_or_unlikely",
	"recommend-unlikely",
	"recommend-very_unlikely",
	"satisfaction-very_satisfied",
	"satisfaction-satisfied",
	"satisfaction-not_satisfied_or_dissatisfied",
	"satisfaction-dissatisfied",
	"satisfaction-very_dissatisfied",
}

// ExitSurveyCheckboxes are the exit survey checkbox ids, in reporting order.
var ExitSurveyCheckboxes = []string{
	"anythingElse-nothing_else",
	"anythingElse-online_help",
	"anythingElse-employer_help",
	"anythingElse-family_help",
	"anythingElse-agent_help",
	"anythingElse-may_need_help",
	"anythingElse-something_else",
}

// ExitSurvey emits (radio, selected, id) for every checked radio and then
// (checkbox, selected, id) for every checked checkbox.
func ExitSurvey(doc *goquery.Document) []analytics.Event {
	checked := make(map[string]bool)
	doc.Find("input[checked]").Each(func(_ int, s *goquery.Selection) {
		if id, ok := s.Attr("id"); ok {
			checked[id] = true
		}
	})

	var out []analytics.Event
	for _, id := range ExitSurveyRadios {
		if checked[id] {
			out = append(out, analytics.NewEvent("radio", "selected", id))
		}
	}
	for _, id := range ExitSurveyCheckboxes {
		if checked[id] {
			out = append(out, analytics.NewEvent("checkbox", "selected", id))
		}
	}
	return out
}
