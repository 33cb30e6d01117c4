// Package errors provides standardized error handling for the upload pipeline.
//
// # Error Classification
//
// Errors fall into three classes that drive worker behavior:
//
//   - Transient: exhausted retries, unreachable servers (the destination
//     keeps running; only the current task is lost)
//   - Invalid: bad input or data integrity faults such as mixed unit
//     systems in the archive (the record is dropped, nothing else changes)
//   - Fatal: rejected credentials (the destination's worker stops
//     permanently; retrying a bad login can never succeed)
//
// Classification integrates with Go's standard error handling: errors.Is,
// errors.As, and wrapping chains all work through ClassifiedError.
//
// # Usage
//
// Return a sentinel for a known condition:
//
//	if allServersDown {
//	    return errors.ErrUnreachable
//	}
//
// Wrap with context and a class:
//
//	return errors.WrapFatal(err, "tnc", "Deliver", "login")
//
// Check a class at a decision point:
//
//	if errors.IsFatal(err) {
//	    // stop the worker
//	}
package errors
