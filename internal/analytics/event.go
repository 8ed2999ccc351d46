package analytics

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/formtrack/internal/classify"
)

// Event is one analytics call: emit(category, action, label).
type Event struct {
	Category string `json:"category"`
	Action   string `json:"action"`
	Label    string `json:"label"`
}

// NewEvent builds an event from its three parts.
func NewEvent(category, action, label string) Event {
	return Event{Category: category, Action: action, Label: label}
}

// FromClassification maps family, page and type onto category, action and label.
func FromClassification(c classify.Classification) Event {
	category, action, label := c.Triple()
	return Event{Category: category, Action: action, Label: label}
}

// String renders the event as "category:action:label".
func (e Event) String() string {
	return e.Category + ":" + e.Action + ":" + e.Label
}

// PageView groups the events produced by one page.
type PageView struct {
	ID     string    `json:"id"`
	Source string    `json:"source"`
	Path   string    `json:"path,omitempty"`
	At     time.Time `json:"at"`
}

// NewPageView starts a page view with a random id.
func NewPageView(source string) PageView {
	return PageView{ID: uuid.NewString(), Source: source, At: time.Now().UTC()}
}

// Envelope is the wire form of an event published to message brokers.
type Envelope struct {
	PageViewID string    `json:"page_view_id"`
	Source     string    `json:"source"`
	Path       string    `json:"path,omitempty"`
	Category   string    `json:"category"`
	Action     string    `json:"action"`
	Label      string    `json:"label"`
	Timestamp  time.Time `json:"timestamp"`
	MessageID  string    `json:"message_id,omitempty"`
}

// NewEnvelope combines a page view and one of its events.
func NewEnvelope(pv PageView, ev Event) Envelope {
	return Envelope{
		PageViewID: pv.ID,
		Source:     pv.Source,
		Path:       pv.Path,
		Category:   ev.Category,
		Action:     ev.Action,
		Label:      ev.Label,
		Timestamp:  pv.At,
	}
}

type messageIDKey struct{}

// MessageID names the seq-th event of a page view. Sinks that deduplicate
// use it so a replayed event is recognised as the original.
func MessageID(pv PageView, seq int) string {
	return pv.ID + "-" + strconv.Itoa(seq)
}

// WithMessageID attaches the id of the event about to be emitted to ctx.
func WithMessageID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, messageIDKey{}, id)
}

// MessageIDFrom returns the id set by WithMessageID, or "".
func MessageIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(messageIDKey{}).(string)
	return id
}
