// Package weewx provides a delivery pipeline for posting weather observation
// records to remote collection services.
//
// # Architecture
//
// Each configured destination (a Weather Underground account, a PWSweather
// account, a CWOP station, ...) gets its own queue and its own background
// worker. The producer side never blocks on the network: a record is gated,
// augmented from the archive, formatted for the destination's wire protocol,
// and enqueued. The worker drains the queue and delivers each task with
// retry and backoff.
//
//	record → gate → augment → format → queue → worker → transport
//
// Destinations are fully independent. A destination whose credentials are
// rejected stops permanently; every other failure is contained to the one
// task that caused it.
//
// # Packages
//
// Pipeline:
//   - gate: admission gating (staleness, minimum post interval)
//   - augment: derived rain totals from the archive
//   - format/ambient, format/cwop: protocol formatters
//   - queue: per-destination FIFO with close signal
//   - delivery: worker state machine and Transport interface
//   - transport/ambienthttp, transport/tnc: the two transports
//   - destination: per-destination assembly
//   - service: top-level Submit/Shutdown surface
//
// Collaborators and infrastructure:
//   - record: observation record type
//   - archive: aggregate rain queries (interface + SQL adapter)
//   - units: unit systems and conversion
//   - config: destination and station configuration
//   - metric: Prometheus metrics
//   - errors: classified error handling
//   - pkg/retry: exponential backoff
package weewx
