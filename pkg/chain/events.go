package chain

import (
	"sync"

	log "github.com/inconshreveable/log15"
	"github.com/left-curve/left-curve-sub002/pkg/consensus"
	"github.com/left-curve/left-curve-sub002/pkg/dex"
)

// EventSink receives the events of every committed block in
// execution order.
type EventSink interface {
	Emit(block consensus.BlockInfo, events []dex.Event)
}

type nopSink struct{}

func (nopSink) Emit(consensus.BlockInfo, []dex.Event) {}

// LogSink writes events to a logger.
type LogSink struct {
	Logger log.Logger
}

func NewLogSink(l log.Logger) *LogSink {
	return &LogSink{Logger: l}
}

func (s *LogSink) Emit(block consensus.BlockInfo, events []dex.Event) {
	for _, e := range events {
		s.Logger.Info(e.EventType(), "height", block.Height, "event", e)
	}
}

// MultiSink sends the events to every sink in order.
type MultiSink []EventSink

func (m MultiSink) Emit(block consensus.BlockInfo, events []dex.Event) {
	for _, s := range m {
		s.Emit(block, events)
	}
}

// Recorder keeps every emitted event in memory.
type Recorder struct {
	mu     sync.Mutex
	events []dex.Event
}

func (r *Recorder) Emit(_ consensus.BlockInfo, events []dex.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
}

// Events returns the recorded events and clears the recorder.
func (r *Recorder) Events() []dex.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := r.events
	r.events = nil
	return e
}
