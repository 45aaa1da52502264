package beancount

import (
	"fmt"
	"strings"
	"time"
)

// ParseError reports ledger text that could not be read.
type ParseError struct {
	Line    int
	Column  int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, e.Message)
}

// cursor reads the head of a directive straight from the ledger text: its
// date, the keyword or flag after it, and a transaction's strings, tags and
// links. Quoted strings may run over several lines.
type cursor struct {
	src   string
	pos   int
	start int
	line  int
}

type header struct {
	texts []string
	tags  []string
	links []string
}

func (c *cursor) errorAt(pos int, format string, args ...any) *ParseError {
	seen := c.src[c.start:pos]
	line := c.line + strings.Count(seen, "\n")
	col := pos - c.start + 1
	if i := strings.LastIndexByte(seen, '\n'); i >= 0 {
		col = len(seen) - i
	}
	return &ParseError{Line: line, Column: col, Message: fmt.Sprintf(format, args...)}
}

func (c *cursor) skipSpace() {
	for c.pos < len(c.src) && isSpace(c.src[c.pos]) {
		c.pos++
	}
}

// atEnd reports whether the line holds nothing more than a comment.
func (c *cursor) atEnd() bool {
	c.skipSpace()
	if c.pos >= len(c.src) {
		return true
	}
	switch c.src[c.pos] {
	case '\n', '\r', ';':
		return true
	}
	return false
}

func (c *cursor) word() string {
	c.skipSpace()
	start := c.pos
	for c.pos < len(c.src) && !isSpace(c.src[c.pos]) && c.src[c.pos] != '\n' && c.src[c.pos] != '\r' {
		c.pos++
	}
	return c.src[start:c.pos]
}

// dated reports whether the directive starts with a date.
func (c *cursor) dated() bool {
	c.skipSpace()
	return c.pos < len(c.src) && isDigit(c.src[c.pos])
}

// date consumes YYYY-MM-DD (or YYYY/MM/DD) and checks it is a real day.
func (c *cursor) date() (Date, error) {
	c.skipSpace()
	start := c.pos
	tok := c.word()
	if len(tok) != 10 || (tok[4] != '-' && tok[4] != '/') || tok[7] != tok[4] {
		return Date{}, c.errorAt(start, "invalid date %q", tok)
	}
	year, ok1 := digits(tok[0:4])
	month, ok2 := digits(tok[5:7])
	day, ok3 := digits(tok[8:10])
	d := Date{Year: year, Month: time.Month(month), Day: day}
	if !ok1 || !ok2 || !ok3 || !d.Valid() {
		return Date{}, c.errorAt(start, "invalid date %q", tok)
	}
	return d, nil
}

func (c *cursor) quoted() (string, error) {
	start := c.pos
	c.pos++

	var b strings.Builder
	for c.pos < len(c.src) {
		ch := c.src[c.pos]
		switch {
		case ch == '\\' && c.pos+1 < len(c.src):
			b.WriteByte(c.src[c.pos+1])
			c.pos += 2
			continue
		case ch == '"':
			c.pos++
			return b.String(), nil
		}
		b.WriteByte(ch)
		c.pos++
	}
	return "", c.errorAt(start, "unterminated string")
}

// header reads the rest of a transaction's first line.
func (c *cursor) header() (header, error) {
	var h header
	for !c.atEnd() {
		switch c.src[c.pos] {
		case '"':
			text, err := c.quoted()
			if err != nil {
				return header{}, err
			}
			h.texts = append(h.texts, text)
		case '#':
			h.tags = append(h.tags, c.word()[1:])
		case '^':
			h.links = append(h.links, c.word()[1:])
		default:
			c.word()
		}
	}
	return h, nil
}

func digits(s string) (int, bool) {
	n := 0
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return 0, false
		}
		n = n*10 + int(s[i]-'0')
	}
	return n, len(s) > 0
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' }

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
