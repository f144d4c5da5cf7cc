package dupstat

import (
	"context"
	"sync/atomic"
	"time"
)

// DefaultProgressInterval is the default interval for progress updates.
const DefaultProgressInterval = 500 * time.Millisecond

// Stage identifies the pipeline step a scan is in.
type Stage int32

// Pipeline stages in execution order.
const (
	StageWalk Stage = iota
	StageHash
	StageConfirm
	StageDone
)

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case StageWalk:
		return "scanning"
	case StageHash:
		return "hashing"
	case StageConfirm:
		return "comparing"
	case StageDone:
		return "done"
	default:
		return "unknown"
	}
}

// Progress is a snapshot of scan counters.
type Progress struct {
	Stage      Stage
	Files      int64
	Bytes      int64
	Candidates int64
	Hashed     int64
	Errors     int64
}

// ProgressFunc receives periodic progress snapshots.
type ProgressFunc func(Progress)

// progress holds counters updated by the pipeline stages.
type progress struct {
	stage      atomic.Int32
	files      atomic.Int64
	bytes      atomic.Int64
	candidates atomic.Int64
	hashed     atomic.Int64
	errors     atomic.Int64
}

func (p *progress) setStage(s Stage) {
	p.stage.Store(int32(s))
}

func (p *progress) snapshot() Progress {
	return Progress{
		Stage:      Stage(p.stage.Load()),
		Files:      p.files.Load(),
		Bytes:      p.bytes.Load(),
		Candidates: p.candidates.Load(),
		Hashed:     p.hashed.Load(),
		Errors:     p.errors.Load(),
	}
}

// startProgressReporter invokes hook on each tick until the returned stop
// func is called or ctx is done. No hook call happens after stop returns.
func startProgressReporter(ctx context.Context, p *progress, hook ProgressFunc, interval time.Duration) func() {
	if hook == nil {
		return func() {}
	}

	if interval <= 0 {
		interval = DefaultProgressInterval
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	ticker := time.NewTicker(interval)

	go func() {
		defer close(done)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				hook(p.snapshot())
			case <-ctx.Done():
				return
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}
