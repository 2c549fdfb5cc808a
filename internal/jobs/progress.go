package jobs

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/domain"
)

// ProgressState is the lifecycle state of batch processing.
type ProgressState string

const (
	ProgressIdle       ProgressState = "idle"
	ProgressQueued     ProgressState = "queued"
	ProgressProcessing ProgressState = "processing"
	ProgressCompleted  ProgressState = "completed"
	ProgressError      ProgressState = "error"
)

var progressStates = []ProgressState{ProgressIdle, ProgressQueued, ProgressProcessing, ProgressCompleted, ProgressError}

const (
	stateIdle int32 = iota
	stateQueued
	stateProcessing
	stateCompleted
	stateError
)

// ProgressTracker follows one batch at a time. Every field is atomic so the
// ingester can update it while HTTP handlers read snapshots.
type ProgressTracker struct {
	state atomic.Int32

	total      atomic.Int64
	processed  atomic.Int64
	succeeded  atomic.Int64
	duplicates atomic.Int64
	failed     atomic.Int64

	startNanos atomic.Int64
	endNanos   atomic.Int64

	currentFile  atomic.Pointer[string]
	errorMessage atomic.Pointer[string]

	now func() time.Time
}

// NewProgressTracker creates an idle tracker. A nil clock means time.Now.
func NewProgressTracker(clock func() time.Time) *ProgressTracker {
	if clock == nil {
		clock = time.Now
	}
	return &ProgressTracker{now: clock}
}

// ProgressSnapshot is a point-in-time copy of a tracker.
type ProgressSnapshot struct {
	Status                    ProgressState `json:"status"`
	Total                     int64         `json:"total"`
	Processed                 int64         `json:"processed"`
	Succeeded                 int64         `json:"succeeded"`
	Duplicates                int64         `json:"duplicates"`
	Failed                    int64         `json:"failed"`
	CurrentFile               string        `json:"current_file,omitempty"`
	StartTime                 *time.Time    `json:"start_time,omitempty"`
	EndTime                   *time.Time    `json:"end_time,omitempty"`
	ErrorMessage              string        `json:"error_message,omitempty"`
	ProgressPercentage        float64       `json:"progress_percentage"`
	EstimatedRemainingSeconds *float64      `json:"estimated_remaining_seconds"`
}

// TryBegin claims the tracker for a new batch. It returns false while another
// batch is queued or processing.
func (p *ProgressTracker) TryBegin(source string) bool {
	for {
		s := p.state.Load()
		if s == stateQueued || s == stateProcessing {
			return false
		}
		if p.state.CompareAndSwap(s, stateQueued) {
			break
		}
	}
	p.clearCounters()
	p.currentFile.Store(&source)
	p.errorMessage.Store(nil)
	p.startNanos.Store(p.now().UnixNano())
	p.endNanos.Store(0)
	return true
}

// Start moves the tracker to processing with the batch size known.
func (p *ProgressTracker) Start(total int) {
	p.clearCounters()
	p.total.Store(int64(total))
	if p.startNanos.Load() == 0 {
		p.startNanos.Store(p.now().UnixNano())
	}
	p.state.Store(stateProcessing)
}

// Record counts one finished message.
func (p *ProgressTracker) Record(status domain.OutcomeStatus) {
	switch status {
	case domain.StatusProcessed:
		p.succeeded.Add(1)
	case domain.StatusDuplicate:
		p.duplicates.Add(1)
	default:
		p.failed.Add(1)
	}
	p.processed.Add(1)
}

// Complete marks the batch as finished.
func (p *ProgressTracker) Complete() {
	p.endNanos.Store(p.now().UnixNano())
	p.state.Store(stateCompleted)
}

// Fail marks the batch as aborted with err.
func (p *ProgressTracker) Fail(err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	p.errorMessage.Store(&msg)
	p.endNanos.Store(p.now().UnixNano())
	p.state.Store(stateError)
}

// Reset returns the tracker to idle, discarding all counters.
func (p *ProgressTracker) Reset() {
	p.clearCounters()
	p.currentFile.Store(nil)
	p.errorMessage.Store(nil)
	p.startNanos.Store(0)
	p.endNanos.Store(0)
	p.state.Store(stateIdle)
}

// Busy reports whether a batch is queued or processing.
func (p *ProgressTracker) Busy() bool {
	s := p.state.Load()
	return s == stateQueued || s == stateProcessing
}

func (p *ProgressTracker) clearCounters() {
	p.total.Store(0)
	p.processed.Store(0)
	p.succeeded.Store(0)
	p.duplicates.Store(0)
	p.failed.Store(0)
}

// Snapshot copies the tracker and derives the percentage and remaining-time estimate.
// The estimate is only present while processing and after the first message.
func (p *ProgressTracker) Snapshot() ProgressSnapshot {
	snap := ProgressSnapshot{
		Status:     progressStates[p.state.Load()],
		Total:      p.total.Load(),
		Processed:  p.processed.Load(),
		Succeeded:  p.succeeded.Load(),
		Duplicates: p.duplicates.Load(),
		Failed:     p.failed.Load(),
	}
	if f := p.currentFile.Load(); f != nil {
		snap.CurrentFile = *f
	}
	if e := p.errorMessage.Load(); e != nil {
		snap.ErrorMessage = *e
	}
	if n := p.startNanos.Load(); n != 0 {
		t := time.Unix(0, n).UTC()
		snap.StartTime = &t
	}
	if n := p.endNanos.Load(); n != 0 {
		t := time.Unix(0, n).UTC()
		snap.EndTime = &t
	}

	if snap.Total > 0 {
		snap.ProgressPercentage = round2(float64(snap.Processed) / float64(snap.Total) * 100)
	}

	if snap.Status == ProgressProcessing && snap.Processed > 0 && snap.StartTime != nil {
		elapsed := p.now().Sub(*snap.StartTime).Seconds()
		perItem := elapsed / float64(snap.Processed)
		remaining := round2(float64(snap.Total-snap.Processed) * perItem)
		if remaining < 0 {
			remaining = 0
		}
		snap.EstimatedRemainingSeconds = &remaining
	}
	return snap
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
