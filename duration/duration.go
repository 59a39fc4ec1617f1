// Package duration parses the offset strings used by `fromNow` and the
// $fromNow operator: an optional sign followed by whitespace-tolerant,
// ordered, once-each unit components (years, months, weeks, days, hours,
// minutes, seconds), each spelled in one of several accepted forms.
// Grounded on original_source/rs/src/fromnow.rs's nom grammar.
package duration

import (
	"strconv"
	"strings"
	"time"
)

// unit lists the accepted spellings for one component, longest-first so a
// greedy match doesn't stop at a prefix of a longer spelling (e.g. "sec"
// before "seconds" would leave a dangling "onds").
type unit struct {
	names []string
	scale time.Duration
}

// "a year"/"a month" aren't precise lengths of time, but fromNow follows
// the original's assumption of 365 and 30 days respectively.
var units = []unit{
	{[]string{"years", "year", "yr", "y"}, 365 * 24 * time.Hour},
	{[]string{"months", "month", "mo"}, 30 * 24 * time.Hour},
	{[]string{"weeks", "week", "wk", "w"}, 7 * 24 * time.Hour},
	{[]string{"days", "day", "d"}, 24 * time.Hour},
	{[]string{"hours", "hour", "h"}, time.Hour},
	{[]string{"minutes", "minute", "min", "m"}, time.Minute},
	{[]string{"seconds", "second", "sec", "s"}, time.Second},
}

// Parse parses an offset string into a time.Duration. Components must
// appear in the order years, months, weeks, days, hours, minutes, seconds,
// each at most once; whitespace is allowed anywhere. An empty (or
// all-whitespace) string parses as a zero duration.
func Parse(input string) (time.Duration, bool) {
	s := input
	s = skipSpace(s)

	neg := false
	if len(s) > 0 && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = skipSpace(s[1:])
	}

	var total time.Duration
	for _, u := range units {
		rest, n, ok := tryComponent(s, u)
		if !ok {
			continue
		}
		total += time.Duration(n) * u.scale
		s = skipSpace(rest)
	}

	if s != "" {
		return 0, false
	}
	if neg {
		total = -total
	}
	return total, true
}

// tryComponent attempts to consume one `<int><unit-name>` component at the
// front of s (after leading whitespace has already been skipped by the
// caller). Returns the remainder, the parsed integer, and whether a
// component was present at all.
func tryComponent(s string, u unit) (rest string, n int64, ok bool) {
	digits := 0
	for digits < len(s) && s[digits] >= '0' && s[digits] <= '9' {
		digits++
	}
	if digits == 0 {
		return s, 0, false
	}
	val, err := strconv.ParseInt(s[:digits], 10, 64)
	if err != nil {
		return s, 0, false
	}
	after := skipSpace(s[digits:])
	for _, name := range u.names {
		if strings.HasPrefix(after, name) {
			return after[len(name):], val, true
		}
	}
	return s, 0, false
}

func skipSpace(s string) string {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r') {
		i++
	}
	return s[i:]
}
