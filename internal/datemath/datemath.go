// Package datemath implements the date-math preprocessor described in
// spec.md §4.1: it rewrites `<name{math{format|tz}}>`-style tokens
// against a request-time clock, leaving every other token untouched.
//
// The implementation is a small hand-rolled state machine over the
// token's bytes, in the spirit of a classic single-pass tokenizer: one
// cursor, one explicit state stack, no backtracking. Go's text/template
// and most SQL lexers in the retrieval pack are shaped the same way;
// this grammar (bracket, placeholder, nested format block) doesn't
// share enough structure with any of them to reuse code, only style.
package datemath

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	defaultFormat = "uuuu.MM.dd"
)

type state int

const (
	stateOutside state = iota
	stateInPlaceholder
	stateInDateFormat
)

// Clock returns the instant a resolution call treats as "now". The
// same func is reused for every token in one call so that a sequence
// of date-math expressions resolves consistently (spec.md §5: "The
// clock is read once at context creation... and reused for every
// date-math token").
type Clock func() time.Time

// ResolveExpressions rewrites each expression in exprs, in order,
// producing a same-length slice. A token not bracketed by `<...>` is
// passed through byte-for-byte. A leading `-` is preserved as an
// exclusion marker only once a wildcard (`*` or `?`) has appeared in
// an earlier expression in the sequence; when preserved, the remainder
// of the token is still date-math resolved and the `-` is
// re-prepended. This is a deliberately preserved legacy behavior
// (spec.md §9 Open Question): a literal name beginning with `-` and no
// prior wildcard is passed through including its dash.
func ResolveExpressions(exprs []string, clock Clock) ([]string, error) {
	out := make([]string, len(exprs))
	wildcardSeen := false
	for i, expr := range exprs {
		stripped := expr
		hasDashMarker := false
		if wildcardSeen && strings.HasPrefix(expr, "-") {
			hasDashMarker = true
			stripped = expr[1:]
		}

		resolved, err := ResolveExpression(stripped, clock)
		if err != nil {
			return nil, fmt.Errorf("expression %d (%q): %w", i, expr, err)
		}
		if hasDashMarker {
			resolved = "-" + resolved
		}
		out[i] = resolved

		if strings.ContainsAny(expr, "*?") {
			wildcardSeen = true
		}
	}
	return out, nil
}

// ResolveExpression rewrites a single expression. Expressions not
// bracketed by `<...>` pass through unchanged.
func ResolveExpression(expr string, clock Clock) (string, error) {
	if !strings.HasPrefix(expr, "<") {
		return expr, nil
	}

	now := clock()

	var out strings.Builder
	var mathExpr strings.Builder
	var format strings.Builder

	stack := []state{stateOutside}
	pendingFormat := ""
	pendingTZ := ""
	closed := false

	runes := []rune(expr)
	i := 1 // skip the leading '<'
	for i < len(runes) {
		c := runes[i]
		top := stack[len(stack)-1]

		if c == '\\' {
			if i+1 >= len(runes) {
				return "", fmt.Errorf("trailing escape character in expression %q", expr)
			}
			i++
			switch top {
			case stateOutside:
				out.WriteRune(runes[i])
			case stateInPlaceholder:
				mathExpr.WriteRune(runes[i])
			case stateInDateFormat:
				format.WriteRune(runes[i])
			}
			i++
			continue
		}

		switch c {
		case '{':
			switch top {
			case stateOutside:
				stack = append(stack, stateInPlaceholder)
				mathExpr.Reset()
				pendingFormat, pendingTZ = "", ""
			case stateInPlaceholder:
				stack = append(stack, stateInDateFormat)
				format.Reset()
			case stateInDateFormat:
				return "", fmt.Errorf("stray '{' inside date format block in expression %q", expr)
			}
			i++
			continue
		case '}':
			switch top {
			case stateOutside:
				return "", fmt.Errorf("unescaped '}' outside a placeholder in expression %q", expr)
			case stateInDateFormat:
				parts := strings.SplitN(format.String(), "|", 2)
				pendingFormat = parts[0]
				if len(parts) == 2 {
					pendingTZ = parts[1]
				}
				stack = stack[:len(stack)-1]
			case stateInPlaceholder:
				rendered, err := renderPlaceholder(mathExpr.String(), pendingFormat, pendingTZ, now)
				if err != nil {
					return "", fmt.Errorf("in expression %q: %w", expr, err)
				}
				out.WriteString(rendered)
				stack = stack[:len(stack)-1]
			}
			i++
			continue
		case '>':
			if top == stateOutside {
				closed = true
				i++
				goto done
			}
			// '>' has no special meaning while accumulating a math
			// expression or format pattern.
		}

		switch top {
		case stateOutside:
			out.WriteRune(c)
		case stateInPlaceholder:
			mathExpr.WriteRune(c)
		case stateInDateFormat:
			format.WriteRune(c)
		}
		i++
	}
done:

	if len(stack) != 1 {
		return "", fmt.Errorf("unbalanced placeholder in expression %q", expr)
	}
	if !closed {
		return "", fmt.Errorf("missing closing '>' in expression %q", expr)
	}
	if i != len(runes) {
		return "", fmt.Errorf("trailing content after '>' in expression %q", expr)
	}
	result := out.String()
	if result == "" {
		return "", fmt.Errorf("date math expression %q resolved to an empty name", expr)
	}
	return result, nil
}

func renderPlaceholder(mathExpr, format, tz string, now time.Time) (string, error) {
	if format == "" {
		format = defaultFormat
	}
	loc := time.UTC
	if tz != "" {
		l, err := parseTimezone(tz)
		if err != nil {
			return "", err
		}
		loc = l
	}

	resolved, err := evalMathExpr(mathExpr, now.In(loc))
	if err != nil {
		return "", err
	}
	return formatJavaPattern(format, resolved.In(loc)), nil
}

func parseTimezone(tz string) (*time.Location, error) {
	if tz == "UTC" || tz == "Z" {
		return time.UTC, nil
	}
	if loc, err := time.LoadLocation(tz); err == nil {
		return loc, nil
	}
	// fall back to a fixed numeric offset, e.g. "+01:00" or "-0700"
	layout := "-07:00"
	if !strings.Contains(tz, ":") {
		layout = "-0700"
	}
	t, err := time.Parse(layout, tz)
	if err != nil {
		return nil, fmt.Errorf("unrecognized time zone %q", tz)
	}
	_, offset := t.Zone()
	return time.FixedZone(tz, offset), nil
}

// evalMathExpr evaluates an expression such as "now/d" or "now-2M+1d"
// against anchor. Every math expression must anchor on the literal
// "now" — INER has no notion of an arbitrary literal-date anchor.
func evalMathExpr(expr string, anchor time.Time) (time.Time, error) {
	if !strings.HasPrefix(expr, "now") {
		return time.Time{}, fmt.Errorf("date math expression %q must start with 'now'", expr)
	}
	t := anchor
	rest := expr[len("now"):]
	i := 0
	for i < len(rest) {
		op := rest[i]
		if op != '+' && op != '-' && op != '/' {
			return time.Time{}, fmt.Errorf("invalid date math operator %q in %q", string(op), expr)
		}
		i++

		start := i
		for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
			i++
		}
		amountStr := rest[start:i]
		if i >= len(rest) {
			return time.Time{}, fmt.Errorf("missing unit in date math expression %q", expr)
		}
		unit := rest[i]
		i++

		amount := 1
		if amountStr != "" {
			n, err := strconv.Atoi(amountStr)
			if err != nil {
				return time.Time{}, fmt.Errorf("invalid amount %q in %q", amountStr, expr)
			}
			amount = n
		}

		switch op {
		case '+':
			var err error
			t, err = addUnit(t, unit, amount)
			if err != nil {
				return time.Time{}, err
			}
		case '-':
			var err error
			t, err = addUnit(t, unit, -amount)
			if err != nil {
				return time.Time{}, err
			}
		case '/':
			if amountStr != "" {
				return time.Time{}, fmt.Errorf("rounding operator '/' takes no amount in %q", expr)
			}
			var err error
			t, err = roundDownUnit(t, unit)
			if err != nil {
				return time.Time{}, err
			}
		}
	}
	return t, nil
}

func addUnit(t time.Time, unit byte, amount int) (time.Time, error) {
	switch unit {
	case 'y':
		return t.AddDate(amount, 0, 0), nil
	case 'M':
		return t.AddDate(0, amount, 0), nil
	case 'w':
		return t.AddDate(0, 0, amount*7), nil
	case 'd':
		return t.AddDate(0, 0, amount), nil
	case 'H', 'h':
		return t.Add(time.Duration(amount) * time.Hour), nil
	case 'm':
		return t.Add(time.Duration(amount) * time.Minute), nil
	case 's':
		return t.Add(time.Duration(amount) * time.Second), nil
	default:
		return time.Time{}, fmt.Errorf("unknown date math unit %q", string(unit))
	}
}

func roundDownUnit(t time.Time, unit byte) (time.Time, error) {
	y, mo, d := t.Date()
	switch unit {
	case 'y':
		return time.Date(y, time.January, 1, 0, 0, 0, 0, t.Location()), nil
	case 'M':
		return time.Date(y, mo, 1, 0, 0, 0, 0, t.Location()), nil
	case 'w':
		offset := (int(t.Weekday()) + 6) % 7 // Monday as week start
		return time.Date(y, mo, d-offset, 0, 0, 0, 0, t.Location()), nil
	case 'd':
		return time.Date(y, mo, d, 0, 0, 0, 0, t.Location()), nil
	case 'H', 'h':
		return time.Date(y, mo, d, t.Hour(), 0, 0, 0, t.Location()), nil
	case 'm':
		return time.Date(y, mo, d, t.Hour(), t.Minute(), 0, 0, t.Location()), nil
	case 's':
		return time.Date(y, mo, d, t.Hour(), t.Minute(), t.Second(), 0, t.Location()), nil
	default:
		return time.Time{}, fmt.Errorf("unknown date math unit %q", string(unit))
	}
}

// formatJavaPattern renders t using a java.time.DateTimeFormatter-style
// pattern: runs of the same letter select a field, and the run length
// controls zero-padded width (e.g. "uuuu" = 4-digit year, "MM" =
// 2-digit month). Any other character is copied through literally.
func formatJavaPattern(pattern string, t time.Time) string {
	var b strings.Builder
	runes := []rune(pattern)
	i := 0
	for i < len(runes) {
		c := runes[i]
		j := i
		for j < len(runes) && runes[j] == c {
			j++
		}
		run := j - i

		switch c {
		case 'y', 'u':
			fmt.Fprintf(&b, "%0*d", run, t.Year())
		case 'M':
			if run >= 3 {
				b.WriteString(t.Month().String()[:min(run, 3)])
			} else {
				fmt.Fprintf(&b, "%0*d", run, int(t.Month()))
			}
		case 'd':
			fmt.Fprintf(&b, "%0*d", run, t.Day())
		case 'H':
			fmt.Fprintf(&b, "%0*d", run, t.Hour())
		case 'h':
			h := t.Hour() % 12
			if h == 0 {
				h = 12
			}
			fmt.Fprintf(&b, "%0*d", run, h)
		case 'm':
			fmt.Fprintf(&b, "%0*d", run, t.Minute())
		case 's':
			fmt.Fprintf(&b, "%0*d", run, t.Second())
		default:
			b.WriteString(string(runes[i:j]))
		}
		i = j
	}
	return b.String()
}
