// Package progress carries human-readable run status to the console and
// other listeners.
package progress

import (
	"sync"

	"airbnb-price-analyzer/utils"
)

// Sink receives free-text progress messages. Implementations must be safe
// for concurrent use.
type Sink interface {
	Emit(message string)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(message string)

func (f SinkFunc) Emit(message string) { f(message) }

// Discard drops every message.
var Discard Sink = SinkFunc(func(string) {})

// LoggerSink writes messages to the application logger at info level.
type LoggerSink struct {
	logger *utils.Logger
}

// NewLoggerSink creates a LoggerSink.
func NewLoggerSink(logger *utils.Logger) *LoggerSink {
	return &LoggerSink{logger: logger}
}

func (s *LoggerSink) Emit(message string) {
	s.logger.Info("%s", message)
}

// Multi fans each message out to every non-nil sink, in order.
func Multi(sinks ...Sink) Sink {
	var live []Sink
	for _, s := range sinks {
		if s != nil {
			live = append(live, s)
		}
	}
	return multiSink(live)
}

type multiSink []Sink

func (m multiSink) Emit(message string) {
	for _, s := range m {
		s.Emit(message)
	}
}

// Recorder keeps every message it receives.
type Recorder struct {
	mu       sync.Mutex
	messages []string
}

func (r *Recorder) Emit(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
}

// Messages returns a copy of the recorded messages.
func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.messages...)
}
