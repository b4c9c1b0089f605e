package layer

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stleox/seetrace/pkg/callsite"
	"github.com/stleox/seetrace/pkg/registry"
)

// Console writes span lifecycle and event lines through a dedicated logrus
// logger. It deliberately shares nothing with the process logger so a
// bridge hook on the latter can't feed back into it.
type Console struct {
	Base
	log *logrus.Logger
}

func NewConsole() *Console {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		DisableColors:   true,
		TimestampFormat: time.DateTime,
	})
	logger.SetLevel(logrus.TraceLevel)
	return &Console{log: logger}
}

// SetOutput redirects the console stream, mainly for tests.
func (c *Console) SetOutput(w io.Writer) {
	c.log.SetOutput(w)
}

func logrusLevel(l callsite.Level) logrus.Level {
	switch l {
	case callsite.LevelError:
		return logrus.ErrorLevel
	case callsite.LevelWarn:
		return logrus.WarnLevel
	case callsite.LevelInfo:
		return logrus.InfoLevel
	case callsite.LevelDebug:
		return logrus.DebugLevel
	default:
		return logrus.TraceLevel
	}
}

func logrusFields(values callsite.Fields) logrus.Fields {
	out := make(logrus.Fields, len(values))
	for k, v := range values {
		out[k] = v
	}
	return out
}

func (c *Console) OnNewSpan(id registry.SpanID, rec *registry.Record) {
	md := rec.Metadata()
	c.log.WithField("span", id.String()).
		WithField("target", md.Target).
		WithFields(logrusFields(rec.Fields())).
		Log(logrusLevel(md.Level), "new span "+md.Name)
}

func (c *Console) OnEnter(id registry.SpanID, rec *registry.Record) {
	c.log.WithField("span", id.String()).Trace("enter " + rec.Metadata().Name)
}

func (c *Console) OnExit(id registry.SpanID, rec *registry.Record) {
	c.log.WithField("span", id.String()).Trace("exit " + rec.Metadata().Name)
}

func (c *Console) OnClose(id registry.SpanID, rec *registry.Record) {
	md := rec.Metadata()
	c.log.WithField("span", id.String()).
		WithField("elapsed", time.Since(rec.Start()).String()).
		Log(logrusLevel(md.Level), "close "+md.Name)
}

func (c *Console) OnEvent(md *callsite.Metadata, values callsite.Fields) {
	msg := md.Name
	if m, hit := values["message"]; hit {
		msg = m
	}
	c.log.WithField("target", md.Target).
		WithFields(logrusFields(values)).
		Log(logrusLevel(md.Level), msg)
}
