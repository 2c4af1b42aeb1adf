package destination

import (
	"strconv"
	"strings"

	"github.com/memgraph-tools/mgmigrate/internal/value"
)

// paramBuilder hands out fresh $p0, $p1, ... parameter names for a single
// statement and accumulates the bound values behind them.
type paramBuilder struct {
	counter int
	params  *value.Map
}

func newParamBuilder() *paramBuilder {
	return &paramBuilder{params: value.NewMap(4)}
}

// bind assigns v a fresh parameter name and returns its "$name" reference
// for use in the statement text.
func (p *paramBuilder) bind(v value.Value) string {
	key := "p" + strconv.Itoa(p.counter)
	p.counter++
	p.params.InsertUnsafe(key, v)
	return "$" + key
}

// escapeName backtick-quotes a label, relationship type, or property name,
// doubling any backtick already present in it.
func escapeName(name string) string {
	var b strings.Builder
	b.Grow(len(name) + 2)
	b.WriteByte('`')
	for _, c := range name {
		if c == '`' {
			b.WriteString("``")
		} else {
			b.WriteRune(c)
		}
	}
	b.WriteByte('`')
	return b.String()
}

// writeProperties appends a "{key: $p0, key2: $p1}" property map literal
// to b, binding each property value through params.
func writeProperties(b *strings.Builder, params *paramBuilder, properties *value.Map) {
	b.WriteByte('{')
	first := true
	properties.Range(func(key string, v value.Value) bool {
		if !first {
			b.WriteString(", ")
		}
		first = false
		b.WriteString(escapeName(key))
		b.WriteString(": ")
		b.WriteString(params.bind(v))
		return true
	})
	b.WriteByte('}')
}

// writeIDMatcher appends "alias.`key` = $p0 AND alias.`key2` = $p1" to b,
// identifying a node by a set of identity properties.
func writeIDMatcher(b *strings.Builder, params *paramBuilder, alias string, id *value.Map) {
	first := true
	id.Range(func(key string, v value.Value) bool {
		if !first {
			b.WriteString(" AND ")
		}
		first = false
		b.WriteString(alias)
		b.WriteByte('.')
		b.WriteString(escapeName(key))
		b.WriteString(" = ")
		b.WriteString(params.bind(v))
		return true
	})
}
