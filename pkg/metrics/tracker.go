package metrics

import "time"

// TrackerMetrics provides observability for tracker operations.
//
// This interface is optional - pass nil to disable metrics collection with
// zero overhead.
type TrackerMetrics interface {
	// RecordRPC records a completed tracker operation with its outcome tag
	// and duration.
	//
	// Parameters:
	//   - operation: operation name (e.g., "login", "search")
	//   - tag: first element of the outcome (e.g., "OK", "ERROR", "404")
	//   - duration: time taken to process the operation
	RecordRPC(operation string, tag string, duration time.Duration)

	// SetLiveSessions updates the live session gauge.
	SetLiveSessions(count int)

	// RecordEvictions counts sessions removed by the idle reaper.
	RecordEvictions(count int)

	// RecordCatalogSize updates the registered file gauge.
	RecordCatalogSize(count int64)
}
