package analytics

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/formtrack/internal/classify"
	"git.home.luguber.info/inful/formtrack/internal/config"
	"git.home.luguber.info/inful/formtrack/internal/eventstore"
)

func TestFromClassification(t *testing.T) {
	ev := FromClassification(classify.Classify("currentPensionsAmt", "Enter 0 or more"))
	assert.Equal(t, Event{Category: "error-Amount", Action: "currentPensions", Label: "negativeAmount"}, ev)
	assert.Equal(t, "error-Amount:currentPensions:negativeAmount", ev.String())
}

func TestNewPageView(t *testing.T) {
	a := NewPageView("a.html")
	b := NewPageView("a.html")
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, "a.html", a.Source)
	assert.False(t, a.At.IsZero())
}

func TestMultiSink_EmitsToAllDespiteFailures(t *testing.T) {
	first := NewMemorySink("first")
	broken := NewMemorySink("broken")
	broken.FailWith(errors.New("boom"))
	last := NewMemorySink("last")

	m := NewMultiSink(first, broken, last)
	pv := NewPageView("page")
	ev := NewEvent("c", "a", "l")

	err := m.Emit(t.Context(), pv, ev)
	require.Error(t, err)
	assert.Equal(t, []string{"broken"}, FailedSinks(err))
	assert.ErrorContains(t, err, "broken: boom")

	assert.Equal(t, []Event{ev}, first.Events())
	assert.Equal(t, []Event{ev}, last.Events())
	assert.Empty(t, broken.Events())
}

func TestMultiSink_JoinsEveryFailure(t *testing.T) {
	a := NewMemorySink("a")
	a.FailWith(errors.New("x"))
	b := NewMemorySink("b")
	b.FailWith(errors.New("y"))

	err := NewMultiSink(a, b).Emit(t.Context(), NewPageView("p"), NewEvent("c", "a", "l"))
	assert.Equal(t, []string{"a", "b"}, FailedSinks(err))
	assert.Nil(t, FailedSinks(nil))
}

func TestMultiSink_Close(t *testing.T) {
	s := NewMemorySink("")
	m := NewMultiSink(s)
	require.NoError(t, m.Close())
	assert.Error(t, s.Emit(t.Context(), PageView{}, Event{}))
	assert.Len(t, m.Sinks(), 1)
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	s := NewLogSink(logger)

	pv := PageView{ID: "pv-1", Source: "form.html"}
	require.NoError(t, s.Emit(t.Context(), pv, NewEvent("error-Date", "psoDetails", "dateOutOfRange")))

	out := buf.String()
	assert.Contains(t, out, "page_view=pv-1")
	assert.Contains(t, out, "category=error-Date")
	assert.Contains(t, out, "action=psoDetails")
	assert.Contains(t, out, "label=dateOutOfRange")
}

func TestPrometheusSink(t *testing.T) {
	reg := prom.NewRegistry()
	s, err := NewPrometheusSink(reg)
	require.NoError(t, err)

	ev := NewEvent("error-Radio", "pensionsTaken", "mandatory")
	require.NoError(t, s.Emit(t.Context(), PageView{}, ev))
	require.NoError(t, s.Emit(t.Context(), PageView{}, ev))

	mfs, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, mfs, 1)
	assert.Equal(t, "formtrack_events_total", mfs[0].GetName())
	assert.InDelta(t, 2.0, mfs[0].GetMetric()[0].GetCounter().GetValue(), 0)

	// A second registration on the same registry is rejected.
	_, err = NewPrometheusSink(reg)
	assert.Error(t, err)
}

func TestPrometheusSink_ForeignTagsShareOneSeries(t *testing.T) {
	reg := prom.NewRegistry()
	s, err := NewPrometheusSink(reg)
	require.NoError(t, err)

	ctx := t.Context()
	require.NoError(t, s.Emit(ctx, PageView{}, NewEvent("error-Radio", "pensionsTaken", "mandatory")))
	for i := range 20 {
		label := fmt.Sprintf("label-%d", i)
		require.NoError(t, s.Emit(ctx, PageView{}, NewEvent("link", "click", label)))
		require.NoError(t, s.Emit(ctx, PageView{}, NewEvent("error-Radio", label, "mandatory")))
	}

	mfs, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, mfs, 1)
	// Label pairs are gathered sorted by name: action, category, label.
	series := map[string]float64{}
	for _, m := range mfs[0].GetMetric() {
		var parts []string
		for _, lp := range m.GetLabel() {
			parts = append(parts, lp.GetValue())
		}
		series[strings.Join(parts, ":")] = m.GetCounter().GetValue()
	}
	assert.Equal(t, map[string]float64{
		"pensionsTaken:error-Radio:mandatory": 1,
		"other:other:other":                   40,
	}, series)
}

func TestStoreSink(t *testing.T) {
	store, err := eventstore.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	projection := eventstore.NewFailureProjection(store)
	s := NewStoreSink(store, projection)

	pv := NewPageView("form.html")
	require.NoError(t, s.Emit(t.Context(), pv, NewEvent("error-Amount", "pensionDebits", "decimalPlaces")))
	require.NoError(t, s.Emit(t.Context(), pv, NewEvent("submitSummary", "pensionsTaken", "yes")))
	require.NoError(t, s.Close())

	recs, err := store.GetByPageView(t.Context(), pv.ID)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "decimalPlaces", recs[0].Label)
	assert.Equal(t, "form.html", recs[0].Source)

	top := projection.Top(1)
	require.Len(t, top, 1)
	assert.Equal(t, 1, top[0].Count)
	events, _ := projection.Totals()
	assert.Equal(t, 1, events)
}

func TestOpen(t *testing.T) {
	cfg := config.SinksConfig{
		Log:        true,
		Prometheus: true,
		Store:      &config.StoreConfig{Enabled: true, Path: t.TempDir() + "/events.db"},
	}
	m, err := Open(t.Context(), cfg, Deps{Registry: prom.NewRegistry()})
	require.NoError(t, err)

	var names []string
	for _, s := range m.Sinks() {
		names = append(names, s.Name())
	}
	assert.Equal(t, []string{"log", "prometheus", "store"}, names)
	require.NoError(t, m.Emit(t.Context(), NewPageView("p"), NewEvent("c", "a", "l")))
	require.NoError(t, m.Close())
}

func TestOpen_Empty(t *testing.T) {
	m, err := Open(t.Context(), config.SinksConfig{}, Deps{})
	require.NoError(t, err)
	assert.Empty(t, m.Sinks())
}
