// Package pipeline turns a rendered page into analytics events.
//
// A Tracker parses the page once, reads the error summary, classifies every
// entry, checks the summary heading and runs the enabled page taggers. The
// resulting events are emitted in order: error events, then the summary
// event, then tags. A sink failure never stops the remaining emits; failed
// deliveries are kept in a DeadLetterQueue for replay.
package pipeline
