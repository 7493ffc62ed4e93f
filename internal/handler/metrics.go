package handler

import (
	"bufio"
	"fmt"
	"net/http"

	"github.com/mywallet/mywallet/internal/metrics"
)

// counterFamily is one counter metric with its labelled samples.
type counterFamily struct {
	name    string
	help    string
	samples []counterSample
}

type counterSample struct {
	labels string
	value  uint64
}

// MetricsHandler serves the in-memory counters.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics writes every counter in the Prometheus text format.
//
// GET /metrics
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	bw := bufio.NewWriter(w)
	for _, f := range families(h.snapshotter.Snapshot()) {
		fmt.Fprintf(bw, "# HELP %s %s\n# TYPE %s counter\n", f.name, f.help, f.name)
		for _, s := range f.samples {
			fmt.Fprintf(bw, "%s%s %d\n", f.name, s.labels, s.value)
		}
	}
	_ = bw.Flush()
}

func families(snap metrics.Snapshot) []counterFamily {
	single := func(v uint64) []counterSample { return []counterSample{{value: v}} }

	return []counterFamily{
		{"mywallet_users_registered_total", "Accounts created.", single(snap.UsersRegistered)},
		{"mywallet_sign_ins_total", "Sign-in attempts by outcome.", []counterSample{
			{labels: `{status="success"}`, value: snap.SignInsSucceeded},
			{labels: `{status="failed"}`, value: snap.SignInsFailed},
		}},
		{"mywallet_sessions_created_total", "Session tokens issued.", single(snap.SessionsCreated)},
		{"mywallet_sessions_rejected_total", "Ledger requests refused for a missing, unknown or expired bearer token.", single(snap.SessionsRejected)},
		{"mywallet_entries_created_total", "Ledger entries recorded.", single(snap.EntriesCreated)},
		{"mywallet_entries_deleted_total", "Ledger entries deleted.", single(snap.EntriesDeleted)},
	}
}
