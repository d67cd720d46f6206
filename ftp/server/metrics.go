package server

import (
	"fmt"

	"github.com/ValentinKolb/fetchd/ftp/proto"
	"github.com/VictoriaMetrics/metrics"
)

// serverMetrics bundles the instruments the request handler updates.
// Counters live in the global metrics set, so they aggregate across all
// server instances of the process.
type serverMetrics struct {
	bytesSent           *metrics.Counter
	readFailures        *metrics.Counter
	dataDialFailures    *metrics.Counter
	incompleteTransfers *metrics.Counter
}

func newServerMetrics(activeSessions func() float64) *serverMetrics {
	metrics.GetOrCreateGauge(`fetchd_sessions_active`, activeSessions)

	return &serverMetrics{
		bytesSent:           metrics.GetOrCreateCounter(`fetchd_bytes_sent_total`),
		readFailures:        metrics.GetOrCreateCounter(`fetchd_command_read_failures_total`),
		dataDialFailures:    metrics.GetOrCreateCounter(`fetchd_data_dial_failures_total`),
		incompleteTransfers: metrics.GetOrCreateCounter(`fetchd_incomplete_transfers_total`),
	}
}

// countRequest counts one answered request by operation and status token
func (m *serverMetrics) countRequest(op proto.Operation, status proto.Status) {
	name := fmt.Sprintf(`fetchd_requests_total{op=%q, status=%q}`, op.String(), status.Token())
	metrics.GetOrCreateCounter(name).Inc()
}
