package mockserver

import (
	"errors"

	"github.com/soulgo/soulgo/internal/metrics"
)

// Sentinel errors used for wrapping so callers can classify via errors.Is.
var (
	ErrListen  = errors.New("listen")
	ErrAccept  = errors.New("accept")
	ErrConn    = errors.New("conn_io")
	ErrContext = errors.New("context_cancelled")
)

func mapErrToMetric(err error) string {
	switch {
	case errors.Is(err, ErrConn):
		return metrics.ErrMockServerIO
	case errors.Is(err, ErrAccept), errors.Is(err, ErrListen):
		return metrics.ErrMockServerIO
	case errors.Is(err, ErrContext):
		return "context"
	default:
		return "other"
	}
}
