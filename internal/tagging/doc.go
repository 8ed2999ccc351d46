// Package tagging derives analytics events from page markup other than the
// error summary: explicit data-metrics attributes, the answers shown on the
// submit summary page and the exit survey selections.
//
// Every tagger is a pure function of the parsed document. Elements that are
// absent from the page are skipped.
package tagging
