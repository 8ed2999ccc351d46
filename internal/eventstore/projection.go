package eventstore

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"git.home.luguber.info/inful/formtrack/internal/classify"
)

// Count is the number of occurrences of one (category, action, label) triple.
type Count struct {
	Category string `json:"category"`
	Action   string `json:"action"`
	Label    string `json:"label"`
	Count    int    `json:"count"`
}

type tripleKey struct{ category, action, label string }

// FailureProjection maintains in-memory counts per classified failure,
// reconstructed from the store and kept current through Append. Records
// that are not classifier triples (page tags, survey answers) are ignored.
type FailureProjection struct {
	// writeMu orders Append against RebuildRange so a record is counted
	// exactly once whichever runs first.
	writeMu   sync.Mutex
	mu        sync.RWMutex
	store     Store
	counts    map[tripleKey]int
	pageViews map[string]struct{}
	lastSync  time.Time
}

// NewFailureProjection creates a projection backed by the given store.
func NewFailureProjection(store Store) *FailureProjection {
	return &FailureProjection{
		store:     store,
		counts:    make(map[tripleKey]int),
		pageViews: make(map[string]struct{}),
	}
}

// Rebuild reconstructs the projection from every event in the store.
func (p *FailureProjection) Rebuild(ctx context.Context) error {
	return p.RebuildRange(ctx, time.Time{}, time.Now().Add(time.Hour))
}

// RebuildRange reconstructs the projection from the events between start and end.
func (p *FailureProjection) RebuildRange(ctx context.Context, start, end time.Time) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	records, err := p.store.GetRange(ctx, start, end)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.counts = make(map[tripleKey]int)
	p.pageViews = make(map[string]struct{})
	for _, r := range records {
		p.applyLocked(r)
	}
	p.lastSync = time.Now()
	return nil
}

// Append writes r to the backing store and counts it.
func (p *FailureProjection) Append(ctx context.Context, r Record) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	if err := p.store.Append(ctx, r); err != nil {
		return err
	}
	p.Apply(r)
	return nil
}

// Apply counts a record without storing it. Records written to the
// backing store concurrently with a rebuild must go through Append.
func (p *FailureProjection) Apply(r Record) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.applyLocked(r)
}

func (p *FailureProjection) applyLocked(r Record) {
	if !classify.IsClassification(r.Category, r.Action, r.Label) {
		return
	}
	p.counts[tripleKey{r.Category, r.Action, r.Label}]++
	if r.PageViewID != "" {
		p.pageViews[r.PageViewID] = struct{}{}
	}
}

// Top returns the n most frequent triples, ties broken by category, action, label.
// n <= 0 returns all of them.
func (p *FailureProjection) Top(n int) []Count {
	p.mu.RLock()
	out := make([]Count, 0, len(p.counts))
	for k, c := range p.counts {
		out = append(out, Count{Category: k.category, Action: k.action, Label: k.label, Count: c})
	}
	p.mu.RUnlock()

	slices.SortFunc(out, func(a, b Count) int {
		return cmp.Or(
			cmp.Compare(b.Count, a.Count),
			cmp.Compare(a.Category, b.Category),
			cmp.Compare(a.Action, b.Action),
			cmp.Compare(a.Label, b.Label),
		)
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Totals returns the number of failures and of distinct page views with a failure.
func (p *FailureProjection) Totals() (events, pageViews int) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, c := range p.counts {
		events += c
	}
	return events, len(p.pageViews)
}

// LastSync returns when Rebuild last completed.
func (p *FailureProjection) LastSync() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastSync
}
