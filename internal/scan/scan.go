// Package scan finds and rewrites definite-integral constructs embedded in
// math markup. A construct has the shape
//
//	\int_{lower}^{upper}\left(body\right)dvar
//
// where the bounds may also appear unbraced when they are a single token.
// Extraction counts delimiters instead of pattern-matching, so nested braces
// and nested \left( \right) pairs inside the bounds and body work.
package scan

import "strings"

// DefaultMaxPasses caps the rewrite loop. A resolved construct can in
// principle introduce new markup, so the loop needs a hard stop.
const DefaultMaxPasses = 32

// Construct is one matched integral with its byte span in the source.
type Construct struct {
	Start int
	End   int
	Lower string
	Upper string
	Body  string
	Var   string
}

// Raw returns the matched source text.
func (c Construct) Raw(src string) string { return src[c.Start:c.End] }

// Complete reports whether all parts of the template are filled in.
func (c Construct) Complete() bool {
	return strings.TrimSpace(c.Lower) != "" &&
		strings.TrimSpace(c.Upper) != "" &&
		strings.TrimSpace(c.Body) != ""
}

// Next returns the first construct starting at or after from.
func Next(src string, from int) (Construct, bool) {
	for i := from; i < len(src); {
		rel := strings.Index(src[i:], `\int_`)
		if rel < 0 {
			return Construct{}, false
		}
		start := i + rel
		if c, ok := parseAt(src, start); ok {
			return c, true
		}
		i = start + 1
	}
	return Construct{}, false
}

// parseAt parses a construct whose `\int_` begins at start.
func parseAt(src string, start int) (Construct, bool) {
	pos := start + len(`\int_`)

	lower, pos, ok := scanBound(src, pos, '^')
	if !ok {
		return Construct{}, false
	}
	if pos >= len(src) || src[pos] != '^' {
		return Construct{}, false
	}
	pos++
	upper, pos, ok := scanBound(src, pos, 0)
	if !ok {
		return Construct{}, false
	}

	if !strings.HasPrefix(src[pos:], `\left(`) {
		return Construct{}, false
	}
	bodyStart := pos + len(`\left(`)
	bodyEnd, ok := matchRight(src, bodyStart)
	if !ok {
		return Construct{}, false
	}
	body := src[bodyStart:bodyEnd]
	pos = bodyEnd + len(`\right)`)

	if pos+1 >= len(src) || src[pos] != 'd' || !isLetter(src[pos+1]) {
		return Construct{}, false
	}
	v := src[pos+1 : pos+2]
	pos += 2

	return Construct{
		Start: start,
		End:   pos,
		Lower: lower,
		Upper: upper,
		Body:  body,
		Var:   v,
	}, true
}

// scanBound reads a bound: either a brace-balanced {..} group or a bare run
// ending at stop, whitespace, or a backslash. An unbraced lower bound stops
// at the '^' separator; the upper bound stops at the \left that follows.
func scanBound(src string, pos int, stop byte) (string, int, bool) {
	if pos >= len(src) {
		return "", pos, false
	}
	if src[pos] == '{' {
		end, ok := matchBrace(src, pos)
		if !ok {
			return "", pos, false
		}
		return src[pos+1 : end], end + 1, true
	}
	start := pos
	for pos < len(src) {
		ch := src[pos]
		if ch == '\\' || ch == ' ' || ch == '\t' || (stop != 0 && ch == stop) {
			break
		}
		pos++
	}
	if pos == start {
		return "", pos, false
	}
	return src[start:pos], pos, true
}

// matchBrace returns the index of the '}' closing the '{' at open.
func matchBrace(src string, open int) (int, bool) {
	depth := 0
	for i := open; i < len(src); i++ {
		switch src[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// matchRight finds the \right) pairing the \left( whose body begins at
// start, counting nested \left( \right) pairs.
func matchRight(src string, start int) (int, bool) {
	depth := 1
	for i := start; i < len(src); {
		switch {
		case strings.HasPrefix(src[i:], `\left(`):
			depth++
			i += len(`\left(`)
		case strings.HasPrefix(src[i:], `\right)`):
			depth--
			if depth == 0 {
				return i, true
			}
			i += len(`\right)`)
		default:
			i++
		}
	}
	return 0, false
}

func isLetter(ch byte) bool {
	return ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z'
}

// Stats summarizes one rewrite run.
type Stats struct {
	Found     int
	Rewritten int
	Skipped   int
}

// Rewrite replaces every resolvable construct in src. A construct the
// resolver rejects is skipped and scanning continues after it, so one broken
// integral never blocks the rest of the cell. Constructs whose raw text
// already failed once are not resolved again.
func Rewrite(src string, resolve func(Construct) (string, error)) (string, Stats) {
	return RewriteMax(src, DefaultMaxPasses, resolve)
}

// RewriteMax is Rewrite with an explicit pass cap.
func RewriteMax(src string, maxPasses int, resolve func(Construct) (string, error)) (string, Stats) {
	var stats Stats
	attempted := make(map[string]bool)
	cursor := 0

	for pass := 0; pass < maxPasses; pass++ {
		c, ok := Next(src, cursor)
		if !ok {
			break
		}
		stats.Found++
		raw := c.Raw(src)

		if !c.Complete() || attempted[raw] {
			stats.Skipped++
			cursor = c.Start + 1
			continue
		}

		replacement, err := resolve(c)
		if err != nil {
			attempted[raw] = true
			stats.Skipped++
			cursor = c.Start + 1
			continue
		}

		src = src[:c.Start] + replacement + src[c.End:]
		stats.Rewritten++
		cursor = c.Start
	}
	return src, stats
}

// Contains reports whether src holds at least one complete construct. The
// probe side of the integral handler uses this.
func Contains(src string) bool {
	for from := 0; ; {
		c, ok := Next(src, from)
		if !ok {
			return false
		}
		if c.Complete() {
			return true
		}
		from = c.Start + 1
	}
}
