package querybuilder

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"
)

const indentUnit = "  "

// stringTracker follows string literal boundaries one rune at a time.
type stringTracker struct {
	inString bool
	escaped  bool
}

// consume reports whether r belongs to a string literal, quotes included.
func (t *stringTracker) consume(r rune) bool {
	if t.inString {
		switch {
		case t.escaped:
			t.escaped = false
		case r == '\\':
			t.escaped = true
		case r == '"':
			t.inString = false
		}
		return true
	}
	if r == '"' {
		t.inString = true
		return true
	}
	return false
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

// FormatQuery re-indents query text: every '{' ends its line and indents
// what follows, every '}' goes on its own line one level out, and whitespace
// runs outside string literals collapse to one space. Formatting formatted
// text returns it unchanged.
func FormatQuery(query string) string {
	var (
		out     bytes.Buffer
		tracker stringTracker
		depth   int
	)
	newline := func() {
		out.WriteByte('\n')
		out.WriteString(strings.Repeat(indentUnit, max(depth, 0)))
	}

	for _, r := range query {
		if tracker.consume(r) {
			out.WriteRune(r)
			continue
		}
		switch {
		case r == '{':
			out.WriteByte('{')
			depth++
			newline()
		case r == '}':
			trimTrailingSpace(&out)
			depth--
			newline()
			out.WriteByte('}')
		case isSpace(r):
			if !endsWithSpace(&out) {
				out.WriteByte(' ')
			}
		default:
			out.WriteRune(r)
		}
	}
	return strings.TrimSpace(out.String())
}

func trimTrailingSpace(b *bytes.Buffer) {
	data := b.Bytes()
	n := len(data)
	for n > 0 {
		c := data[n-1]
		if c != ' ' && c != '\n' && c != '\t' && c != '\r' {
			break
		}
		n--
	}
	b.Truncate(n)
}

func endsWithSpace(b *bytes.Buffer) bool {
	data := b.Bytes()
	if len(data) == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRune(data)
	return isSpace(r)
}

// ValidateQuery checks that braces balance outside string literals and that
// every string literal is terminated. Square brackets are not checked.
func ValidateQuery(query string) (bool, []string) {
	if strings.TrimSpace(query) == "" {
		return false, []string{"Query cannot be empty"}
	}

	var tracker stringTracker
	depth := 0
	for i, r := range query {
		if tracker.consume(r) {
			continue
		}
		switch r {
		case '{':
			depth++
		case '}':
			if depth == 0 {
				return false, []string{fmt.Sprintf("Unexpected closing brace at position %d", i)}
			}
			depth--
		}
	}

	var errs []string
	if depth > 0 {
		errs = append(errs, fmt.Sprintf("Unclosed braces: %d", depth))
	}
	if tracker.inString {
		errs = append(errs, "Unterminated string")
	}
	return len(errs) == 0, errs
}
