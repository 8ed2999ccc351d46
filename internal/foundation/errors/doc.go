// Package errors provides the classified error primitives used across formtrack.
//
// Key features:
//   - ErrorCategory: Broad error classification (config, parse, sink, eventstore, etc.)
//   - ErrorSeverity: Impact level (fatal, error, warning, info)
//   - RetryStrategy: Retry behavior (never, immediate, backoff, rate limit)
//   - ClassifiedError: Structured error with category, severity and context
//   - ErrorBuilder: Fluent API for creating classified errors
//   - HTTP and CLI adapters for error presentation
//
// Example usage:
//
//	err := errors.NewError(errors.CategorySink, "publish failed").
//		WithRetry(errors.RetryBackoff).
//		WithContext("subject", subject).
//		WithCause(originalErr).
//		Build()
//
// The form error classifier never produces these errors; it has no failure path.
// They describe failures of the plumbing around it (reading pages, sinks, storage).
package errors
