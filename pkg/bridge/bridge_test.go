package bridge

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	r "github.com/stretchr/testify/require"
	"github.com/stleox/seetrace/pkg/callsite"
	"github.com/stleox/seetrace/pkg/dispatch"
	"github.com/stleox/seetrace/pkg/filter"
	"github.com/stleox/seetrace/pkg/layer"
)

func TestHook_1(t *testing.T) {
	d, sink := mockPipeline("trace")

	log := mockLogger(d)
	log.WithField("user", "alice").Info("logged in")

	r.Len(t, sink.events, 1)
	ev := sink.events[0]
	r.Equal(t, "log", ev.md.Target)
	r.Equal(t, callsite.LevelInfo, ev.md.Level)
	r.Equal(t, "logged in", ev.values["message"])
	r.Equal(t, "alice", ev.values["user"])
}

func TestHook_LevelMapping(t *testing.T) {
	d, sink := mockPipeline("trace")
	log := mockLogger(d)

	log.Warn("careful")
	log.Error("broken")

	r.Len(t, sink.events, 2)
	r.Equal(t, callsite.LevelWarn, sink.events[0].md.Level)
	r.Equal(t, callsite.LevelError, sink.events[1].md.Level)
}

func TestHook_Filtered(t *testing.T) {
	// records below the directive threshold never become events
	d, sink := mockPipeline("log=warn")
	log := mockLogger(d)

	log.Info("quiet")
	r.Empty(t, sink.events)

	log.Warn("loud")
	r.Len(t, sink.events, 1)
}

func TestHook_NoPipeline(t *testing.T) {
	// a nil-target hook with no active pipeline drops the record
	log := logrus.New()
	log.SetOutput(io.Discard)
	log.AddHook(NewHook(nil))
	log.Info("nowhere")
}

// mockers

type sinkEvent struct {
	md     *callsite.Metadata
	values callsite.Fields
}

type sinkLayer struct {
	layer.Base
	events []sinkEvent
}

func (s *sinkLayer) OnEvent(md *callsite.Metadata, values callsite.Fields) {
	s.events = append(s.events, sinkEvent{md: md, values: values})
}

func mockPipeline(directives string) (*dispatch.Dispatcher, *sinkLayer) {
	sink := &sinkLayer{}
	chain := layer.NewBuilder().
		With(layer.WithFilter(sink, filter.New(directives))).
		Build()
	return dispatch.New(chain), sink
}

func mockLogger(d *dispatch.Dispatcher) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	log.AddHook(NewHook(d))
	return log
}
