package callsite

import "fmt"

// Kind distinguishes span callsites from event callsites.
type Kind uint8

const (
	KindSpan Kind = iota
	KindEvent
)

func (k Kind) String() string {
	if k == KindSpan {
		return "span"
	}
	return "event"
}

// Metadata describes one instrumentation callsite. Instances are built once,
// usually in a package-level var, and never mutated afterwards; their pointer
// identity is the callsite identity and is stable for the process lifetime,
// so a *Metadata can key caches directly.
type Metadata struct {
	// Name of the span or event, e.g. "handle_request".
	Name string
	// Target is a hierarchical path, segments joined by "::",
	// e.g. "app::db::pool".
	Target string
	// Level the callsite is requested at.
	Level Level
	// Kind: span or event.
	Kind Kind
	// FieldNames lists the field keys this callsite may record.
	FieldNames []string
	// Source location, informational only.
	File string
	Line int
}

// Fields carries the field values recorded at a callsite.
type Fields map[string]string

func (m *Metadata) String() string {
	return fmt.Sprintf("%s %s[%s]@%s", m.Kind, m.Target, m.Name, m.Level)
}

// NewSpan builds span metadata.
func NewSpan(name, target string, level Level, fieldNames ...string) *Metadata {
	return &Metadata{Name: name, Target: target, Level: level, Kind: KindSpan, FieldNames: fieldNames}
}

// NewEvent builds event metadata.
func NewEvent(name, target string, level Level, fieldNames ...string) *Metadata {
	return &Metadata{Name: name, Target: target, Level: level, Kind: KindEvent, FieldNames: fieldNames}
}
