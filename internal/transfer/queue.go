package transfer

import (
	"context"

	"github.com/soulgo/soulgo/internal/logging"
	"github.com/soulgo/soulgo/internal/metrics"
	"github.com/soulgo/soulgo/internal/transport"
)

// Queue is a bounded, non-blocking batch submission point for downloads: a
// CLI batch invocation enqueues DownloadPlans and they drain through a
// single background worker. A full buffer drops the plan (counted, logged)
// rather than blocking the submitter.
type Queue struct {
	worker *transport.AsyncWorker[DownloadPlan]
}

// NewQueue starts a batch download queue with the given buffer size,
// draining plans via DownloadSingleFile and invoking onResult (if non-nil)
// with each attempt's outcome.
func NewQueue(ctx context.Context, bufSize int, onResult func(DownloadPlan, DownloadResult, error)) *Queue {
	process := func(plan DownloadPlan) error {
		result, err := DownloadSingleFile(ctx, plan)
		if onResult != nil {
			onResult(plan, result, err)
		}
		return err
	}
	hooks := transport.Hooks[DownloadPlan]{
		OnError: func(plan DownloadPlan, err error) {
			logging.L().Warn("download_failed", "virtual_path", plan.VirtualPath, "error", err)
		},
		OnDrop: func(plan DownloadPlan) error {
			metrics.IncQueueOverflow()
			logging.L().Warn("download_queue_overflow", "virtual_path", plan.VirtualPath)
			return &QueueOverflowError{VirtualPath: plan.VirtualPath}
		},
	}
	return &Queue{worker: transport.NewAsyncWorker(ctx, bufSize, process, hooks)}
}

// Submit enqueues plan for download, returning QueueOverflowError
// immediately if the buffer is full rather than blocking.
func (q *Queue) Submit(plan DownloadPlan) error {
	return q.worker.Submit(plan)
}

// Close stops accepting new plans and waits for in-flight work to drain.
func (q *Queue) Close() {
	q.worker.Close()
}
