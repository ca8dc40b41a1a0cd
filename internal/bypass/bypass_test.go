package bypass

import "testing"

func TestMatch(t *testing.T) {
	tests := []struct {
		name   string
		list   string
		host   string
		want   bool
	}{
		// Exact match
		{"exact match", "example.com", "example.com", true},
		{"exact match case insensitive", "Example.COM", "example.com", true},
		{"exact no match", "example.com", "other.com", false},
		{"exact no match subdomain", "example.com", "sub.example.com", false},

		// Wildcards
		{"leading wildcard", "*.example.com", "sub.example.com", true},
		{"leading wildcard deep", "*.example.com", "a.b.example.com", true},
		{"leading wildcard no bare", "*.example.com", "example.com", false},
		{"trailing wildcard ip", "127.*", "127.0.0.1", true},
		{"trailing wildcard no match", "10.*", "110.0.0.1", false},
		{"inner wildcard", "sf-*.corp", "sf-build.corp", true},
		{"two wildcards", "*-api.*.corp", "backend-api.eu.corp", true},
		{"universal", "*", "anything.example.org", true},

		// <local>
		{"local plain name", "<local>", "intranet", true},
		{"local dotted name", "<local>", "intranet.corp", false},
		{"local ip", "<local>", "10.0.0.1", false},
		{"local case", "<LOCAL>", "printer", true},

		// Separators and list forms
		{"second entry", "a.com;b.com", "b.com", true},
		{"spaces around", " a.com ; b.com ", "b.com", true},
		{"comma", "a.com,b.com", "b.com", true},
		{"scheme prefix", "http://a.com", "a.com", true},

		// Host forms
		{"with port", "example.com", "example.com:443", true},
		{"ipv6 literal", "::1", "[::1]:8080", true},
		{"empty host", "example.com", "", false},
		{"empty list", "", "example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Parse(tt.list).Match(tt.host); got != tt.want {
				t.Errorf("Parse(%q).Match(%q) = %v, want %v", tt.list, tt.host, got, tt.want)
			}
		})
	}
}

func TestGlob(t *testing.T) {
	tests := []struct {
		pattern, value string
		want           bool
	}{
		{"abc", "abc", true},
		{"a*", "a", true},
		{"*c", "abc", true},
		{"a*c", "ac", true},
		{"a*c", "ab", false},
		{"a*b*c", "axbyc", true},
		{"a*b*c", "axcyb", false},
		{"*aa", "aaa", true},
		{"aa*aa", "aaa", false},
	}

	for _, tt := range tests {
		if got := Glob(tt.pattern, tt.value); got != tt.want {
			t.Errorf("Glob(%q, %q) = %v, want %v", tt.pattern, tt.value, got, tt.want)
		}
	}
}

func TestParse(t *testing.T) {
	l := Parse("localhost;127.*;<local>;LOCALHOST;;")

	if got := l.Patterns(); len(got) != 2 {
		t.Errorf("Patterns() = %v, want 2 entries", got)
	}
	if !l.Local() {
		t.Error("Local() = false, want true")
	}
	if got, want := l.String(), "localhost;127.*;<local>"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestZeroList(t *testing.T) {
	var l List
	if l.Match("example.com") {
		t.Error("zero List should match nothing")
	}
	if l.String() != "" {
		t.Errorf("String() = %q, want empty", l.String())
	}
}
