package callsite

import (
	"testing"

	r "github.com/stretchr/testify/require"
)

func TestLevel_Order(t *testing.T) {
	r.True(t, LevelOff < LevelError)
	r.True(t, LevelError < LevelWarn)
	r.True(t, LevelWarn < LevelInfo)
	r.True(t, LevelInfo < LevelDebug)
	r.True(t, LevelDebug < LevelTrace)
}

func TestLevel_Enables(t *testing.T) {
	// "enabled" means at least as verbose as requested
	r.True(t, LevelDebug.Enables(LevelInfo))
	r.True(t, LevelDebug.Enables(LevelDebug))
	r.False(t, LevelInfo.Enables(LevelDebug))
	r.False(t, LevelOff.Enables(LevelError))
	// an Off request is never enabled
	r.False(t, LevelTrace.Enables(LevelOff))
}

func TestParseLevel(t *testing.T) {
	for want, name := range map[Level]string{
		LevelOff:   "off",
		LevelError: "error",
		LevelWarn:  "WARN",
		LevelInfo:  "Info",
		LevelDebug: "debug",
		LevelTrace: "trace",
	} {
		got, ok := ParseLevel(name)
		r.True(t, ok)
		r.Equal(t, want, got)
	}

	_, ok := ParseLevel("verbose")
	r.False(t, ok)
}

func TestMetadata_String(t *testing.T) {
	md := NewSpan("query", "app::db", LevelDebug, "table")
	r.Equal(t, "span app::db[query]@debug", md.String())

	ev := NewEvent("hit", "app::cache", LevelTrace)
	r.Equal(t, "event app::cache[hit]@trace", ev.String())
}
