package importer

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Level is the severity of an import event.
type Level string

const (
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Kind tags the events a caller may want to pick out of the stream.
type Kind string

const (
	// KindSkippedRow marks a tabular row dropped before validation.
	KindSkippedRow Kind = "skipped_row"

	// KindDuplicates marks the end-of-batch list of skipped invoice numbers.
	KindDuplicates Kind = "duplicates"
)

// Event is one line of the import progress stream.
type Event struct {
	BatchID   string    `json:"batchId"`
	Time      time.Time `json:"time"`
	Level     Level     `json:"level"`
	Kind      Kind      `json:"kind,omitempty"`
	InvoiceNo string    `json:"invoiceNo,omitempty"`
	Message   string    `json:"message"`
}

// EventSink receives import progress events. Emit is called from several
// goroutines at once and must be safe for concurrent use.
type EventSink interface {
	Emit(Event)
}

// EventFunc adapts a function to EventSink.
type EventFunc func(Event)

// Emit calls f(e).
func (f EventFunc) Emit(e Event) { f(e) }

// discard drops every event.
var discard = EventFunc(func(Event) {})

// LogSink writes events to a logrus logger with batch and invoice fields.
func LogSink(logger logrus.FieldLogger) EventSink {
	return EventFunc(func(e Event) {
		entry := logger.WithField("batch", e.BatchID)
		if e.InvoiceNo != "" {
			entry = entry.WithField("invoiceNo", e.InvoiceNo)
		}

		switch e.Level {
		case LevelError:
			entry.Error(e.Message)
		case LevelWarn:
			entry.Warn(e.Message)
		default:
			entry.Info(e.Message)
		}
	})
}

// MultiSink fans each event out to every sink in order.
func MultiSink(sinks ...EventSink) EventSink {
	return EventFunc(func(e Event) {
		for _, s := range sinks {
			s.Emit(e)
		}
	})
}

// Recorder keeps every event it receives, for summary logs.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Emit records e.
func (r *Recorder) Emit(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events in arrival order.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Reset drops the recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
