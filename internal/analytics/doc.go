// Package analytics carries classified form events to their destinations.
//
// Every event is the triple (category, action, label) and belongs to a
// PageView, which groups the events produced by one rendered page. A Sink
// receives events one at a time; MultiSink fans an event out to several
// sinks and reports every failure without dropping the event for the
// remaining ones.
package analytics
