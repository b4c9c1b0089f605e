package layer

import (
	"bytes"
	"testing"

	r "github.com/stretchr/testify/require"
	"github.com/stleox/seetrace/pkg/callsite"
	"github.com/stleox/seetrace/pkg/registry"
)

func TestConsole_SpanLines(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole()
	c.SetOutput(&buf)

	store := registry.NewStore()
	id := store.Create(mdWork, registry.Disabled, callsite.Fields{"method": "GET"})
	rec := store.Get(id)

	c.OnNewSpan(id, rec)
	c.OnEnter(id, rec)
	c.OnExit(id, rec)
	c.OnClose(id, rec)

	out := buf.String()
	r.Contains(t, out, "new span work")
	r.Contains(t, out, "enter work")
	r.Contains(t, out, "exit work")
	r.Contains(t, out, "close work")
	r.Contains(t, out, "method=GET")
	r.Contains(t, out, id.String())
}

func TestConsole_EventLine(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole()
	c.SetOutput(&buf)

	md := callsite.NewEvent("cache_hit", "test::cache", callsite.LevelDebug, "key")
	c.OnEvent(md, callsite.Fields{"key": "users:1", "message": "hit"})

	out := buf.String()
	r.Contains(t, out, "hit")
	r.Contains(t, out, "key=\"users:1\"")
	r.Contains(t, out, "target=\"test::cache\"")
}
