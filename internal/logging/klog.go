package logging

import (
	"fmt"

	"github.com/go-logr/logr"
	"github.com/rs/zerolog"
)

// zerologSink forwards klog output into zerolog. Informational transport messages only show up at
// debug level and klog errors are demoted to warnings, so client-go never writes above warning.
type zerologSink struct {
	logger zerolog.Logger
	name   string
	values []any
}

func klogBridge(logger zerolog.Logger) logr.Logger {
	return logr.New(&zerologSink{logger: logger})
}

func (s *zerologSink) Init(logr.RuntimeInfo) {}

func (s *zerologSink) Enabled(int) bool {
	return s.logger.GetLevel() <= zerolog.DebugLevel
}

func (s *zerologSink) Info(level int, msg string, keysAndValues ...any) {
	ev := s.logger.Debug().Int("v", level)
	s.write(ev, msg, keysAndValues)
}

func (s *zerologSink) Error(err error, msg string, keysAndValues ...any) {
	ev := s.logger.Warn()
	if err != nil {
		ev = ev.Err(err)
	}
	s.write(ev, msg, keysAndValues)
}

func (s *zerologSink) WithValues(keysAndValues ...any) logr.LogSink {
	values := make([]any, 0, len(s.values)+len(keysAndValues))
	values = append(values, s.values...)
	values = append(values, keysAndValues...)
	return &zerologSink{logger: s.logger, name: s.name, values: values}
}

func (s *zerologSink) WithName(name string) logr.LogSink {
	if s.name != "" {
		name = s.name + "." + name
	}
	return &zerologSink{logger: s.logger, name: name, values: s.values}
}

func (s *zerologSink) write(ev *zerolog.Event, msg string, keysAndValues []any) {
	if ev == nil {
		return
	}
	ev = ev.Str("component", "client-go")
	if s.name != "" {
		ev = ev.Str("logger", s.name)
	}
	kv := append(append([]any{}, s.values...), keysAndValues...)
	for i := 0; i+1 < len(kv); i += 2 {
		ev = ev.Interface(fmt.Sprint(kv[i]), kv[i+1])
	}
	ev.Msg(msg)
}
