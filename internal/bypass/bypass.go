// Package bypass matches hosts against a proxy bypass list in the format
// stored in the ProxyOverride registry value.
package bypass

import (
	"net"
	"strings"
)

// Local is the bypass entry that matches plain host names.
const Local = "<local>"

// List is a parsed bypass list. The zero value matches nothing.
type List struct {
	patterns []string
	local    bool
}

// Parse splits a ';' separated bypass list. Entries are trimmed and
// lowercased; empty and duplicate entries are dropped. Whitespace and ','
// are accepted as separators too.
func Parse(s string) *List {
	l := &List{}
	seen := make(map[string]bool)

	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ';' || r == ',' || r == ' ' || r == '\t' || r == '\r' || r == '\n'
	})
	for _, f := range fields {
		p := strings.ToLower(f)
		if seen[p] {
			continue
		}
		seen[p] = true

		if p == Local {
			l.local = true
			continue
		}
		l.patterns = append(l.patterns, stripScheme(p))
	}
	return l
}

// Patterns returns the wildcard entries, excluding <local>.
func (l *List) Patterns() []string {
	result := make([]string, len(l.patterns))
	copy(result, l.patterns)
	return result
}

// Local reports whether the list contains <local>.
func (l *List) Local() bool {
	return l.local
}

// String renders the list in ProxyOverride form.
func (l *List) String() string {
	entries := l.Patterns()
	if l.local {
		entries = append(entries, Local)
	}
	return strings.Join(entries, ";")
}

// Match reports whether host bypasses the proxy. host may carry a port.
func (l *List) Match(host string) bool {
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "" {
		return false
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")

	if l.local && !strings.Contains(host, ".") && net.ParseIP(host) == nil {
		return true
	}
	for _, p := range l.patterns {
		if Glob(p, host) {
			return true
		}
	}
	return false
}

// Glob matches value against pattern, where '*' matches any run of
// characters, including none.
func Glob(pattern, value string) bool {
	if !strings.Contains(pattern, "*") {
		return pattern == value
	}

	segments := strings.Split(pattern, "*")

	// First segment is anchored at the start.
	if !strings.HasPrefix(value, segments[0]) {
		return false
	}
	value = value[len(segments[0]):]

	// Last segment is anchored at the end.
	last := segments[len(segments)-1]
	middle := segments[1 : len(segments)-1]

	for _, seg := range middle {
		idx := strings.Index(value, seg)
		if idx == -1 {
			return false
		}
		value = value[idx+len(seg):]
	}

	return len(value) >= len(last) && strings.HasSuffix(value, last)
}

func stripScheme(p string) string {
	for _, scheme := range []string{"http://", "https://"} {
		if strings.HasPrefix(p, scheme) {
			return p[len(scheme):]
		}
	}
	return p
}
