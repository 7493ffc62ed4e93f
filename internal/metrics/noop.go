package metrics

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncUserRegistered is a no-op.
func (n *NoopRecorder) IncUserRegistered() {}

// IncSignIn is a no-op.
func (n *NoopRecorder) IncSignIn(status string) {}

// IncSessionCreated is a no-op.
func (n *NoopRecorder) IncSessionCreated() {}

// IncSessionRejected is a no-op.
func (n *NoopRecorder) IncSessionRejected() {}

// IncEntryCreated is a no-op.
func (n *NoopRecorder) IncEntryCreated() {}

// IncEntryDeleted is a no-op.
func (n *NoopRecorder) IncEntryDeleted() {}
