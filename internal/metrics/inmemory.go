package metrics

import "sync/atomic"

// Snapshot captures current in-memory counters.
type Snapshot struct {
	UsersRegistered  uint64
	SignInsSucceeded uint64
	SignInsFailed    uint64
	SessionsCreated  uint64
	SessionsRejected uint64
	EntriesCreated   uint64
	EntriesDeleted   uint64
}

// InMemoryRecorder stores metrics in memory.
type InMemoryRecorder struct {
	usersRegistered  atomic.Uint64
	signInsSucceeded atomic.Uint64
	signInsFailed    atomic.Uint64
	sessionsCreated  atomic.Uint64
	sessionsRejected atomic.Uint64
	entriesCreated   atomic.Uint64
	entriesDeleted   atomic.Uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		UsersRegistered:  m.usersRegistered.Load(),
		SignInsSucceeded: m.signInsSucceeded.Load(),
		SignInsFailed:    m.signInsFailed.Load(),
		SessionsCreated:  m.sessionsCreated.Load(),
		SessionsRejected: m.sessionsRejected.Load(),
		EntriesCreated:   m.entriesCreated.Load(),
		EntriesDeleted:   m.entriesDeleted.Load(),
	}
}

// IncUserRegistered increments the registration counter.
func (m *InMemoryRecorder) IncUserRegistered() {
	m.usersRegistered.Add(1)
}

// IncSignIn increments the sign-in counter for the given status.
func (m *InMemoryRecorder) IncSignIn(status string) {
	if status == StatusSuccess {
		m.signInsSucceeded.Add(1)
		return
	}
	m.signInsFailed.Add(1)
}

// IncSessionCreated increments the issued session counter.
func (m *InMemoryRecorder) IncSessionCreated() {
	m.sessionsCreated.Add(1)
}

// IncSessionRejected increments the counter of refused bearer tokens.
func (m *InMemoryRecorder) IncSessionRejected() {
	m.sessionsRejected.Add(1)
}

// IncEntryCreated increments the entry created counter.
func (m *InMemoryRecorder) IncEntryCreated() {
	m.entriesCreated.Add(1)
}

// IncEntryDeleted increments the entry deleted counter.
func (m *InMemoryRecorder) IncEntryDeleted() {
	m.entriesDeleted.Add(1)
}
