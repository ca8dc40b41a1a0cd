package sysproxy

import (
	"net/url"
	"strconv"
	"strings"
)

const defaultHTTPPort = 80

// ParseAddress splits a persisted proxy server string into host and port.
//
// Two forms are accepted: "host:port" and the per-protocol form
// "http=host:port;https=host:port;...". For the latter the http entry is
// used, or the first entry when there is none. Parsing never fails: input
// that cannot be read as host:port or as a URL authority is returned as the
// host with port 80.
func ParseAddress(raw string) (string, uint16) {
	if strings.Contains(raw, "=") {
		raw = selectProtocolEntry(raw)
	}

	if i := strings.LastIndex(raw, ":"); i >= 0 {
		if port, err := strconv.ParseUint(raw[i+1:], 10, 16); err == nil {
			return raw[:i], uint16(port)
		}
	}

	if u, err := url.Parse("http://" + raw); err == nil && u.Hostname() != "" {
		if u.Port() == "" {
			return u.Hostname(), defaultHTTPPort
		}
		// An authority with an unusable port is not a parse.
		if p, err := strconv.ParseUint(u.Port(), 10, 16); err == nil {
			return u.Hostname(), uint16(p)
		}
	}

	return raw, defaultHTTPPort
}

// selectProtocolEntry returns the address part of the http entry of a
// "proto=addr;proto=addr" list, falling back to the first entry.
func selectProtocolEntry(raw string) string {
	entries := strings.Split(raw, ";")
	chosen := entries[0]
	for _, entry := range entries {
		key, _, ok := strings.Cut(entry, "=")
		if ok && strings.EqualFold(strings.TrimSpace(key), "http") {
			chosen = entry
			break
		}
	}

	_, value, _ := strings.Cut(chosen, "=")
	return strings.TrimSpace(value)
}
