package callsite

import "strings"

// Level is a verbosity level. Higher values are more verbose; LevelOff
// disables everything.
type Level uint8

const (
	LevelOff Level = iota
	LevelError
	LevelWarn
	LevelInfo
	LevelDebug
	LevelTrace
)

var levelNames = [...]string{"off", "error", "warn", "info", "debug", "trace"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// Enables reports whether a threshold of l allows a record requested at
// level req. "Enabled" means the threshold is at least as verbose.
func (l Level) Enables(req Level) bool {
	return l >= req && req != LevelOff
}

// ParseLevel parses a level name, case-insensitively.
func ParseLevel(s string) (Level, bool) {
	for i, name := range levelNames {
		if strings.EqualFold(s, name) {
			return Level(i), true
		}
	}
	return LevelOff, false
}
