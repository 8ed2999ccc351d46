// Package daemon runs formtrack as a long-lived service: the HTTP API, a
// watcher that processes pages dropped into a directory and scheduled jobs
// for failure reports and dead-letter replay.
package daemon
