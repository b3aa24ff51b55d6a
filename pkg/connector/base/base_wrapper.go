// Package base provides the foundational BaseWrapper that concrete
// wrappers embed. It owns the per-instance resources the lifecycle
// contract requires: the blocking runtime bridge, the buffered row
// set and its FIFO drain, the structured logger, and the metrics
// collector. Nothing here is shared across instances, so no locking
// discipline is needed.
//
// A wrapper embeds BaseWrapper and implements BeginScan on top of it:
//
//	type MyWrapper struct {
//	    *base.BaseWrapper
//	    client *http.Client
//	}
//
//	func New(...) *MyWrapper {
//	    return &MyWrapper{BaseWrapper: base.NewBaseWrapper("my_wrapper")}
//	}
//
// IterScan and EndScan are usually inherited unchanged.
package base

import (
	"time"

	"go.uber.org/zap"

	"github.com/openfdw/openfdw/pkg/logger"
	"github.com/openfdw/openfdw/pkg/metrics"
	"github.com/openfdw/openfdw/pkg/runtime"
	"github.com/openfdw/openfdw/pkg/value"
)

// BaseWrapper carries the scan-lifecycle state shared by all wrappers.
type BaseWrapper struct {
	name      string
	rt        *runtime.Runtime
	rows      RowSet
	logger    *zap.Logger
	collector *metrics.Collector
}

// NewBaseWrapper creates the embedded base for the named wrapper.
func NewBaseWrapper(name string) *BaseWrapper {
	return &BaseWrapper{
		name:      name,
		rt:        runtime.New(runtime.WithTimeout(2 * time.Minute)),
		logger:    logger.Get().With(zap.String("wrapper", name)),
		collector: metrics.NewCollector(name),
	}
}

// Name returns the wrapper name.
func (bw *BaseWrapper) Name() string {
	return bw.name
}

// Runtime returns the instance's blocking bridge.
func (bw *BaseWrapper) Runtime() *runtime.Runtime {
	return bw.rt
}

// Logger returns the instance's structured logger.
func (bw *BaseWrapper) Logger() *zap.Logger {
	return bw.logger
}

// Collector returns the instance's metrics collector.
func (bw *BaseWrapper) Collector() *metrics.Collector {
	return bw.collector
}

// SetRows installs the materialized result of a scan and records its
// outcome.
func (bw *BaseWrapper) SetRows(rows []*value.Row) {
	bw.rows.Replace(rows)
	if len(rows) == 0 {
		bw.collector.ScanFinished(metrics.StatusEmpty, 0)
		return
	}
	bw.collector.ScanFinished(metrics.StatusSuccess, len(rows))
}

// ScanFailed records a terminal scan failure and leaves the buffer
// empty.
func (bw *BaseWrapper) ScanFailed() {
	bw.rows.Clear()
	bw.collector.ScanFinished(metrics.StatusError, 0)
}

// IterScan pops one row from the front of the buffered set. It keeps
// returning ok=false once exhausted.
func (bw *BaseWrapper) IterScan() (*value.Row, bool) {
	return bw.rows.Pop()
}

// EndScan releases the buffered set unconditionally.
func (bw *BaseWrapper) EndScan() {
	bw.rows.Clear()
}

// Buffered returns the number of rows awaiting drain.
func (bw *BaseWrapper) Buffered() int {
	return bw.rows.Len()
}
