// Package bridge translates plain logrus records into dispatcher events,
// so legacy logging flows through the same pipeline as instrumented code.
package bridge

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/stleox/seetrace/pkg/callsite"
	"github.com/stleox/seetrace/pkg/dispatch"
)

// one synthetic, always-registered event callsite per logrus level
var levelMeta = map[logrus.Level]*callsite.Metadata{
	logrus.PanicLevel: callsite.NewEvent("log", "log", callsite.LevelError),
	logrus.FatalLevel: callsite.NewEvent("log", "log", callsite.LevelError),
	logrus.ErrorLevel: callsite.NewEvent("log", "log", callsite.LevelError),
	logrus.WarnLevel:  callsite.NewEvent("log", "log", callsite.LevelWarn),
	logrus.InfoLevel:  callsite.NewEvent("log", "log", callsite.LevelInfo),
	logrus.DebugLevel: callsite.NewEvent("log", "log", callsite.LevelDebug),
	logrus.TraceLevel: callsite.NewEvent("log", "log", callsite.LevelTrace),
}

// Hook submits each log record as an event on a dispatcher. It enters no
// span; the record lands in whatever context the logging goroutine holds.
type Hook struct {
	d *dispatch.Dispatcher
}

// NewHook bridges records to d. A nil d targets the active pipeline at
// fire time.
func NewHook(d *dispatch.Dispatcher) *Hook {
	return &Hook{d: d}
}

func (h *Hook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *Hook) Fire(entry *logrus.Entry) error {
	d := h.d
	if d == nil {
		d = dispatch.Active()
	}
	if d == nil {
		return nil
	}

	md := levelMeta[entry.Level]
	if !d.Enabled(md) {
		return nil
	}

	values := make(callsite.Fields, len(entry.Data)+1)
	values["message"] = entry.Message
	for k, v := range entry.Data {
		values[k] = fmt.Sprint(v)
	}
	d.Event(md, values)
	return nil
}
