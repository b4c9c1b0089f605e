package filter

import (
	"testing"

	r "github.com/stretchr/testify/require"
	"github.com/stleox/seetrace/pkg/callsite"
)

func TestParse_1(t *testing.T) {
	// bare level sets the default
	dirs, def := Parse("debug")
	r.Empty(t, dirs)
	r.Equal(t, callsite.LevelDebug, def)
}

func TestParse_2(t *testing.T) {
	// target directive plus default
	dirs, def := Parse("info,app::db=trace")
	r.Len(t, dirs, 1)
	r.Equal(t, callsite.LevelInfo, def)
	r.Equal(t, "app::db", dirs[0].Target)
	r.Equal(t, callsite.LevelTrace, dirs[0].Level)
}

func TestParse_3(t *testing.T) {
	// full form with span name and field matchers
	dirs, _ := Parse(`app[request{method="GET",attempt=[0-9]+}]=debug`)
	r.Len(t, dirs, 1)
	r.Equal(t, "app", dirs[0].Target)
	r.Equal(t, "request", dirs[0].SpanName)
	r.Len(t, dirs[0].Fields, 2)
	r.Equal(t, "method", dirs[0].Fields[0].Name)
	r.Equal(t, "GET", dirs[0].Fields[0].Value)
	r.Nil(t, dirs[0].Fields[0].re)
	r.NotNil(t, dirs[0].Fields[1].re)
}

func TestParse_4(t *testing.T) {
	// a bare target enables everything under it
	dirs, _ := Parse("app::db")
	r.Len(t, dirs, 1)
	r.Equal(t, callsite.LevelTrace, dirs[0].Level)
}

func TestParse_BadSegment(t *testing.T) {
	// unparseable segments are dropped, the rest survives
	dirs, def := Parse("info,app=notalevel,app::db=debug")
	r.Len(t, dirs, 1)
	r.Equal(t, "app::db", dirs[0].Target)
	r.Equal(t, callsite.LevelInfo, def)
}

func TestParse_SpecificityOrder(t *testing.T) {
	// longer target prefix ranks first regardless of declaration order
	dirs, _ := Parse("app=info,app::db=debug")
	r.Len(t, dirs, 2)
	r.Equal(t, "app::db", dirs[0].Target)
	r.Equal(t, "app", dirs[1].Target)

	// more present components beat target length
	dirs, _ = Parse("app::db::pool=debug,app[request]=warn")
	r.Equal(t, "request", dirs[0].SpanName)
}

func TestParse_TieBreak(t *testing.T) {
	// equal specificity, equal target length: declaration order wins
	dirs, _ := Parse(`app[req{method="GET"}]=trace,app[req{method="POST"}]=off`)
	r.Len(t, dirs, 2)
	r.Equal(t, "GET", dirs[0].Fields[0].Value)
	r.Equal(t, "POST", dirs[1].Fields[0].Value)
}
