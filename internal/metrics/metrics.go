package metrics

import (
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/soulgo/soulgo/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus counters/gauges for the protocol core.
var (
	FramesEncoded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "frames_encoded_total",
		Help: "Total frames encoded, by message family.",
	}, []string{"family"})
	FramesDecoded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "frames_decoded_total",
		Help: "Total frames decoded, by message family.",
	}, []string{"family"})
	SessionState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "session_state",
		Help: "1 on the session's current state, 0 otherwise, keyed by state name.",
	}, []string{"state"})
	TransferBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "transfer_bytes_total",
		Help: "Total bytes written by completed or partial downloads.",
	})
	CaptureMismatches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "capture_mismatches_total",
		Help: "Total mismatched frame pairs observed by the capture comparator.",
	})
	EventBusDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "event_bus_dropped_total",
		Help: "Total events dropped by the event bus under PolicyDrop.",
	})
	QueueOverflows = promauto.NewCounter(prometheus.CounterOpts{
		Name: "download_queue_overflow_total",
		Help: "Total download plans rejected because the batch queue buffer was full.",
	})
	MockServerConnections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mockserver_connections_total",
		Help: "Total connections accepted by the mock server.",
	})
	BuildInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "build_info",
		Help: "Build metadata (value is always 1).",
	}, []string{"version", "commit", "date"})
	Errors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "errors_total",
		Help: "Error counters by subsystem.",
	}, []string{"where"})

	readinessMu sync.RWMutex
	readinessFn func() bool
)

// Error label constants (stable label values to bound cardinality).
const (
	ErrSessionConnect = "session_connect"
	ErrSessionIO      = "session_io"
	ErrTransferIO     = "transfer_io"
	ErrPeerLookup     = "peer_lookup"
	ErrMockServerIO   = "mockserver_io"
	ErrMockHandshake  = "mockserver_handshake"
)

// StartHTTP serves Prometheus metrics at /metrics and a readiness probe at
// /ready, returning the running server for the caller to Shutdown.
func StartHTTP(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if IsReady() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready\n"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready\n"))
	})

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	go func() {
		logging.L().Info("metrics_listen", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.L().Error("metrics_http_error", "error", err)
		}
	}()
	return srv
}

// Local mirrored counters, cheap to read for CLI summary output without
// scraping Prometheus in-process.
var (
	localFramesEncoded   uint64
	localFramesDecoded   uint64
	localTransferBytes   uint64
	localCaptureMismatch uint64
	localEventBusDropped uint64
	localQueueOverflow   uint64
	localErrors          uint64
)

// Snapshot is a cheap copy of local counters.
type Snapshot struct {
	FramesEncoded     uint64
	FramesDecoded     uint64
	TransferBytes     uint64
	CaptureMismatches uint64
	EventBusDropped   uint64
	QueueOverflows    uint64
	Errors            uint64
}

func Snap() Snapshot {
	return Snapshot{
		FramesEncoded:     atomic.LoadUint64(&localFramesEncoded),
		FramesDecoded:     atomic.LoadUint64(&localFramesDecoded),
		TransferBytes:     atomic.LoadUint64(&localTransferBytes),
		CaptureMismatches: atomic.LoadUint64(&localCaptureMismatch),
		EventBusDropped:   atomic.LoadUint64(&localEventBusDropped),
		QueueOverflows:    atomic.LoadUint64(&localQueueOverflow),
		Errors:            atomic.LoadUint64(&localErrors),
	}
}

// IncFramesEncoded increments the encoded-frame counter for a message family
// ("server" or "peer").
func IncFramesEncoded(family string) {
	FramesEncoded.WithLabelValues(family).Inc()
	atomic.AddUint64(&localFramesEncoded, 1)
}

// IncFramesDecoded increments the decoded-frame counter for a message family.
func IncFramesDecoded(family string) {
	FramesDecoded.WithLabelValues(family).Inc()
	atomic.AddUint64(&localFramesDecoded, 1)
}

// SetSessionState sets the named state's gauge to 1 and clears the others.
func SetSessionState(states []string, current string) {
	for _, s := range states {
		if s == current {
			SessionState.WithLabelValues(s).Set(1)
		} else {
			SessionState.WithLabelValues(s).Set(0)
		}
	}
}

// AddTransferBytes records bytes written by a download.
func AddTransferBytes(n int64) {
	TransferBytes.Add(float64(n))
	atomic.AddUint64(&localTransferBytes, uint64(n))
}

// IncCaptureMismatch records one mismatched frame pair.
func IncCaptureMismatch() {
	CaptureMismatches.Inc()
	atomic.AddUint64(&localCaptureMismatch, 1)
}

// IncEventBusDropped records one event dropped under PolicyDrop.
func IncEventBusDropped() {
	EventBusDropped.Inc()
	atomic.AddUint64(&localEventBusDropped, 1)
}

// IncQueueOverflow records one download plan rejected by a full batch queue.
func IncQueueOverflow() {
	QueueOverflows.Inc()
	atomic.AddUint64(&localQueueOverflow, 1)
}

// IncMockServerConnection records one accepted mock-server connection.
func IncMockServerConnection() {
	MockServerConnections.Inc()
}

func IncError(label string) {
	Errors.WithLabelValues(label).Inc()
	atomic.AddUint64(&localErrors, 1)
}

// InitBuildInfo sets the build info gauge (should be called once at startup).
func InitBuildInfo(version, commit, date string) {
	BuildInfo.WithLabelValues(version, commit, date).Set(1)
	for _, lbl := range []string{
		ErrSessionConnect, ErrSessionIO, ErrTransferIO,
		ErrPeerLookup, ErrMockServerIO, ErrMockHandshake,
	} {
		Errors.WithLabelValues(lbl).Add(0)
	}
}

// SetReadinessFunc registers a function used by /ready and IsReady.
func SetReadinessFunc(fn func() bool) { readinessMu.Lock(); readinessFn = fn; readinessMu.Unlock() }

// IsReady invokes the registered readiness function if present.
func IsReady() bool {
	readinessMu.RLock()
	fn := readinessFn
	readinessMu.RUnlock()
	if fn == nil {
		return true
	}
	return fn()
}

// Ready is a concise alias used at call sites.
func Ready() bool { return IsReady() }
