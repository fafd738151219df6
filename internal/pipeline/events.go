// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

// EventKind identifies a progress event.
type EventKind int

const (
	StageStarted EventKind = iota
	StageFinished
	RunFinished
)

func (k EventKind) String() string {
	switch k {
	case StageStarted:
		return "stage_started"
	case StageFinished:
		return "stage_finished"
	case RunFinished:
		return "run_finished"
	}
	return "unknown"
}

// Event reports progress of a run. Result is set for StageFinished only.
// Observers must treat State as read-only.
type Event struct {
	Kind   EventKind
	Stage  string
	Index  int
	Total  int
	Result *StageResult
	State  *ReviewState
}

// Observer receives progress events on the orchestrator's goroutine.
type Observer interface {
	Notify(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

func (f ObserverFunc) Notify(e Event) { f(e) }

// Observers fans an event out to several observers in order.
type Observers []Observer

func (obs Observers) Notify(e Event) {
	for _, o := range obs {
		if o != nil {
			o.Notify(e)
		}
	}
}
