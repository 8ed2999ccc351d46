package analytics

import (
	"context"

	"git.home.luguber.info/inful/formtrack/internal/eventstore"
)

// StoreSink appends events to the event store and keeps an optional
// projection current.
type StoreSink struct {
	store      eventstore.Store
	projection *eventstore.FailureProjection
	owned      bool
}

// NewStoreSink writes to store. The caller keeps ownership of store. When
// projection is set it must be backed by store; records then go through
// projection.Append.
func NewStoreSink(store eventstore.Store, projection *eventstore.FailureProjection) *StoreSink {
	return &StoreSink{store: store, projection: projection}
}

func (s *StoreSink) Name() string { return "store" }

func (s *StoreSink) Emit(ctx context.Context, pv PageView, ev Event) error {
	rec := eventstore.Record{
		PageViewID: pv.ID,
		Source:     pv.Source,
		Category:   ev.Category,
		Action:     ev.Action,
		Label:      ev.Label,
		Timestamp:  pv.At,
	}
	if s.projection != nil {
		return s.projection.Append(ctx, rec)
	}
	return s.store.Append(ctx, rec)
}

// Close closes the store only when the sink opened it.
func (s *StoreSink) Close() error {
	if s.owned {
		return s.store.Close()
	}
	return nil
}
