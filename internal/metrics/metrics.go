// Package metrics provides lightweight hooks for instrumentation.
package metrics

// Sign-in outcomes.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Account metrics
	IncUserRegistered()
	IncSignIn(status string) // status: "success" or "failed"

	// Session metrics
	IncSessionCreated()
	IncSessionRejected()

	// Ledger metrics
	IncEntryCreated()
	IncEntryDeleted()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
