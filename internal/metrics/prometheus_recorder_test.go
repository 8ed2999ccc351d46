package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObservePageDuration(150 * time.Millisecond)
	pr.IncPageOutcome(PageTagged)
	pr.IncEvent("error-Amount")
	pr.IncEvent("error-Amount")
	pr.IncSinkFailure("nats")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(mfs) != 4 {
		t.Fatalf("expected 4 metric families, got %d", len(mfs))
	}
	for _, mf := range mfs {
		if mf.GetName() != "formtrack_pipeline_events_total" {
			continue
		}
		if got := mf.GetMetric()[0].GetCounter().GetValue(); got != 2 {
			t.Errorf("expected 2 error-Amount events, got %v", got)
		}
	}
}

func TestPrometheusRecorder_TagCategoriesShareOneSeries(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.IncEvent("error-Date")
	for i := range 50 {
		pr.IncEvent("attacker-" + strconv.Itoa(i))
	}
	pr.IncEvent("submitSummary")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() != "formtrack_pipeline_events_total" {
			continue
		}
		got := map[string]float64{}
		for _, m := range mf.GetMetric() {
			got[m.GetLabel()[0].GetValue()] = m.GetCounter().GetValue()
		}
		want := map[string]float64{"error-Date": 1, OtherLabel: 51}
		if len(got) != len(want) || got["error-Date"] != 1 || got[OtherLabel] != 51 {
			t.Errorf("expected %v, got %v", want, got)
		}
		return
	}
	t.Fatal("pipeline_events_total not gathered")
}

func TestTripleLabels(t *testing.T) {
	c, a, l := TripleLabels("error-Amount", "currentPensions", "negativeAmount")
	if c != "error-Amount" || a != "currentPensions" || l != "negativeAmount" {
		t.Errorf("classified triple changed: %s %s %s", c, a, l)
	}
	c, a, l = TripleLabels("error-Amount", "made-up", "negativeAmount")
	if c != OtherLabel || a != OtherLabel || l != OtherLabel {
		t.Errorf("expected foreign triple to collapse, got %s %s %s", c, a, l)
	}
}

func TestPrometheusRecorder_NilSafe(t *testing.T) {
	var pr *PrometheusRecorder
	pr.ObservePageDuration(time.Second)
	pr.IncPageOutcome(PageFailed)
	pr.IncEvent("x")
	pr.IncSinkFailure("y")
}

func TestHTTPHandler(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.IncPageOutcome(PageClean)

	srv := httptest.NewServer(HTTPHandler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `formtrack_pages_processed_total{outcome="clean"} 1`) {
		t.Errorf("expected page outcome in scrape, got:\n%s", body)
	}
}
