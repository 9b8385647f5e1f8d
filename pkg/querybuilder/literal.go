package querybuilder

import (
	"io"
	"strings"
)

// literal is a GraphQL input value written by one printer, so spacing and
// escaping rules live in a single place.
type literal interface {
	writeTo(w io.StringWriter)
}

// rawLit is written verbatim: numbers, booleans, enum values.
type rawLit string

// stringLit is written quoted and escaped.
type stringLit string

// listLit is written as [a, b].
type listLit []literal

// objectLit is written as { k: v, k2: v2 } keeping entry order.
type objectLit []entry

type entry struct {
	key   string
	value literal
}

func (r rawLit) writeTo(w io.StringWriter) {
	_, _ = w.WriteString(string(r))
}

var stringEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

func (s stringLit) writeTo(w io.StringWriter) {
	_, _ = w.WriteString(`"`)
	_, _ = w.WriteString(stringEscaper.Replace(string(s)))
	_, _ = w.WriteString(`"`)
}

func (l listLit) writeTo(w io.StringWriter) {
	_, _ = w.WriteString("[")
	for i, item := range l {
		if i > 0 {
			_, _ = w.WriteString(", ")
		}
		item.writeTo(w)
	}
	_, _ = w.WriteString("]")
}

func (o objectLit) writeTo(w io.StringWriter) {
	_, _ = w.WriteString("{ ")
	writeEntries(w, o)
	_, _ = w.WriteString(" }")
}

// writeEntries writes "k: v, k2: v2"; it is shared by objects and
// argument lists.
func writeEntries(w io.StringWriter, entries []entry) {
	for i, e := range entries {
		if i > 0 {
			_, _ = w.WriteString(", ")
		}
		_, _ = w.WriteString(e.key)
		_, _ = w.WriteString(": ")
		e.value.writeTo(w)
	}
}

func render(l literal) string {
	var b strings.Builder
	l.writeTo(&b)
	return b.String()
}
