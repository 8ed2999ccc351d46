package tagging

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/formtrack/internal/analytics"
)

func parse(t *testing.T, page string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	require.NoError(t, err)
	return doc
}

func ev(c, a, l string) analytics.Event { return analytics.NewEvent(c, a, l) }

func TestMetricsTags(t *testing.T) {
	doc := parse(t, `<body>
		<a data-metrics="link:click:start">Start</a>
		<div data-metrics="too:short"></div>
		<span data-metrics="a:b:c:d"></span>
		<p data-metrics=""></p>
		<button data-metrics="button:click:submit"></button>
	</body>`)

	assert.Equal(t, []analytics.Event{
		ev("link", "click", "start"),
		ev("a", "b", "c"),
		ev("button", "click", "submit"),
	}, MetricsTags(doc))
}

func TestMetricsTags_None(t *testing.T) {
	assert.Empty(t, MetricsTags(parse(t, `<p>nothing</p>`)))
}

func TestSubmitSummary(t *testing.T) {
	doc := parse(t, `<dl>
		<dd id="pensionsTakenDisplayValue0">Yes</dd>
		<dd id="pensionsTakenBeforeDisplayValue0"> No </dd>
		<dd id="overseasPensionsDisplayValue0">Maybe</dd>
		<dd id="ip14PensionsTakenDisplayValue0">No</dd>
		<dd id="ip14OverseasPensionsDisplayValue0">Yes</dd>
	</dl>`)

	assert.Equal(t, []analytics.Event{
		ev("submitSummary", "pensionsTaken", "yes"),
		ev("submitSummary", "pensionsTakenBefore", "no"),
	}, SubmitSummary(doc, ""))

	assert.Equal(t, []analytics.Event{
		ev("ip14SubmitSummary", "ip14PensionsTaken", "no"),
		ev("ip14SubmitSummary", "ip14OverseasPensions", "yes"),
	}, SubmitSummary(doc, "ip14"))
}

func TestPrefixed(t *testing.T) {
	assert.Equal(t, "pensionsTaken", prefixed("", "pensionsTaken"))
	assert.Equal(t, "ip16PensionsTaken", prefixed("ip16", "pensionsTaken"))
}

func TestExitSurvey(t *testing.T) {
	doc := parse(t, `<form>
		<input type="checkbox" id="anythingElse-family_help" checked>
		<input type="radio" id="recommend-likely" checked>
		<input type="radio" id="recommend-unlikely">
		<input type="radio" id="phoneOrWriteNow-don't_know" checked>
		<input type="checkbox" id="anythingElse-online_help" checked>
		<input type="radio" id="unrelated" checked>
	</form>`)

	assert.Equal(t, []analytics.Event{
		ev("radio", "selected", "phoneOrWriteNow-don't_know"),
		ev("radio", "selected", "recommend-likely"),
		ev("checkbox", "selected", "anythingElse-online_help"),
		ev("checkbox", "selected", "anythingElse-family_help"),
	}, ExitSurvey(doc))
}

func TestExitSurvey_NothingChecked(t *testing.T) {
	assert.Empty(t, ExitSurvey(parse(t, `<input type="radio" id="recommend-likely">`)))
}
