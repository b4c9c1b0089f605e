package filter

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/stleox/seetrace/pkg/callsite"
)

// Directive is one compiled filter rule:
// `target[span-name{field="value",...}]=level`.
type Directive struct {
	// Target prefix; empty matches every target.
	Target string
	// SpanName filters on the callsite name; empty matches every name.
	SpanName string
	// Fields are matched against runtime field values.
	Fields []FieldMatch
	// Level is the verbosity threshold this rule grants.
	Level callsite.Level

	// declaration position, the tie-break between equally specific rules
	order int
}

// FieldMatch matches one field value, either exactly (quoted in the
// directive) or by pattern (unquoted, compiled as a regexp).
type FieldMatch struct {
	Name  string
	Value string
	re    *regexp.Regexp
}

func (m *FieldMatch) match(values callsite.Fields) bool {
	v, hit := values[m.Name]
	if !hit {
		return false
	}
	if m.re != nil {
		return m.re.MatchString(v)
	}
	if m.Value == "" {
		// bare `{field}` asserts presence only
		return true
	}
	return v == m.Value
}

// matchMeta checks the value-independent part of the rule.
func (d *Directive) matchMeta(md *callsite.Metadata) bool {
	if d.Target != "" && !strings.HasPrefix(md.Target, d.Target) {
		return false
	}
	if d.SpanName != "" && d.SpanName != md.Name {
		return false
	}
	return true
}

func (d *Directive) matchFields(values callsite.Fields) bool {
	for i := range d.Fields {
		if !d.Fields[i].match(values) {
			return false
		}
	}
	return true
}

// specificity counts the present components. Ranking also uses target
// length, so "app::db" beats "app".
func (d *Directive) specificity() int {
	s := 0
	if d.Target != "" {
		s++
	}
	if d.SpanName != "" {
		s++
	}
	if len(d.Fields) > 0 {
		s++
	}
	return s
}

// Parse compiles a directive string into a most-specific-first rule set and
// the default level. Unparseable segments are skipped with a diagnostic;
// parsing never fails as a whole.
func Parse(text string) ([]Directive, callsite.Level) {
	defaultLevel := callsite.LevelOff
	hasDefault := false
	var dirs []Directive

	for i, seg := range splitSegments(text) {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		if lvl, ok := callsite.ParseLevel(seg); ok {
			// bare level sets the default; the last one wins
			defaultLevel = lvl
			hasDefault = true
			continue
		}
		d, err := parseSegment(seg)
		if err != nil {
			logrus.WithError(err).Warnf("SeeTrace couldn't parse directive segment %q", seg)
			continue
		}
		d.order = i
		dirs = append(dirs, d)
	}

	if !hasDefault && len(dirs) == 0 {
		// an empty or fully invalid spec falls back to the packaged default
		if lvl, ok := callsite.ParseLevel("info"); ok {
			defaultLevel = lvl
		}
	}

	// most specific first; longer target prefix first; declaration order
	// breaks the remaining ties
	sort.SliceStable(dirs, func(i, j int) bool {
		si, sj := dirs[i].specificity(), dirs[j].specificity()
		if si != sj {
			return si > sj
		}
		if len(dirs[i].Target) != len(dirs[j].Target) {
			return len(dirs[i].Target) > len(dirs[j].Target)
		}
		return dirs[i].order < dirs[j].order
	})

	return dirs, defaultLevel
}

// splitSegments splits on top-level commas, leaving `{...}` field lists
// intact.
func splitSegments(text string) []string {
	var segs []string
	depth := 0
	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '{', '[':
			depth++
		case '}', ']':
			depth--
		case ',':
			if depth == 0 {
				segs = append(segs, text[start:i])
				start = i + 1
			}
		}
	}
	return append(segs, text[start:])
}

func parseSegment(seg string) (Directive, error) {
	var d Directive

	lhs := seg
	// the level separator is the first '=' after the bracket part
	eq := -1
	if end := strings.LastIndexByte(seg, ']'); end >= 0 {
		if i := strings.IndexByte(seg[end:], '='); i >= 0 {
			eq = end + i
		}
	} else {
		eq = strings.IndexByte(seg, '=')
	}
	if eq >= 0 {
		lhs = seg[:eq]
		lvl, ok := callsite.ParseLevel(strings.TrimSpace(seg[eq+1:]))
		if !ok {
			return d, fmt.Errorf("invalid level %q", seg[eq+1:])
		}
		d.Level = lvl
	} else {
		// a bare target enables everything under it
		d.Level = callsite.LevelTrace
	}

	if open := strings.IndexByte(lhs, '['); open >= 0 {
		end := strings.LastIndexByte(lhs, ']')
		if end < open {
			return d, fmt.Errorf("unbalanced brackets")
		}
		if err := parseSpanPart(lhs[open+1:end], &d); err != nil {
			return d, err
		}
		lhs = lhs[:open]
	}
	d.Target = strings.TrimSpace(lhs)
	if d.Target == "" && d.SpanName == "" && len(d.Fields) == 0 {
		return d, fmt.Errorf("empty directive")
	}
	return d, nil
}

// parseSpanPart parses `span-name{field="value",...}`.
func parseSpanPart(part string, d *Directive) error {
	name := part
	if open := strings.IndexByte(part, '{'); open >= 0 {
		end := strings.LastIndexByte(part, '}')
		if end < open {
			return fmt.Errorf("unbalanced braces")
		}
		for _, fm := range strings.Split(part[open+1:end], ",") {
			fm = strings.TrimSpace(fm)
			if fm == "" {
				continue
			}
			match, err := parseFieldMatch(fm)
			if err != nil {
				return err
			}
			d.Fields = append(d.Fields, match)
		}
		name = part[:open]
	}
	d.SpanName = strings.TrimSpace(name)
	return nil
}

func parseFieldMatch(fm string) (FieldMatch, error) {
	eq := strings.IndexByte(fm, '=')
	if eq < 0 {
		return FieldMatch{Name: fm}, nil
	}
	name := strings.TrimSpace(fm[:eq])
	value := strings.TrimSpace(fm[eq+1:])
	if name == "" {
		return FieldMatch{}, fmt.Errorf("field matcher %q has no name", fm)
	}
	if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' {
		// quoted values match exactly
		return FieldMatch{Name: name, Value: value[1 : len(value)-1]}, nil
	}
	re, err := regexp.Compile(value)
	if err != nil {
		return FieldMatch{}, fmt.Errorf("field pattern %q: %w", value, err)
	}
	return FieldMatch{Name: name, Value: value, re: re}, nil
}
