// Package pac renders manual proxy settings as a proxy auto-configuration
// script and answers which route the current settings give a host.
package pac

import (
	"fmt"
	"strings"

	"github.com/rennerdo30/sysproxy/internal/bypass"
	"github.com/rennerdo30/sysproxy/internal/sysproxy"
)

// ContentType is the MIME type PAC scripts are served with.
const ContentType = "application/x-ns-proxy-autoconfig"

// Route is the outcome of Resolve.
type Route struct {
	Host   string `json:"host"`
	Mode   string `json:"mode"`
	Result string `json:"result"` // PAC style: "PROXY h:p", "DIRECT", or "PAC <url>"
}

// Resolve reports how snap routes requests to host. Automatic settings are
// reported as the script URL since the script is not evaluated.
func Resolve(snap sysproxy.Snapshot, host string) Route {
	r := Route{Host: host, Mode: snap.Mode().String(), Result: "DIRECT"}

	switch snap.Mode() {
	case sysproxy.ModeManual:
		if !bypass.Parse(snap.Manual.Bypass).Match(host) {
			r.Result = "PROXY " + snap.Manual.Server()
		}
	case sysproxy.ModeAuto:
		r.Result = "PAC " + snap.Auto.URL
	}
	return r
}

// Generate creates a PAC script equivalent to p. A disabled proxy yields a
// script that always returns DIRECT.
func Generate(p sysproxy.ManualProxy) string {
	var sb strings.Builder

	sb.WriteString(`// Proxy auto-configuration generated by sysproxy

function FindProxyForURL(url, host) {
    host = host.toLowerCase();

`)

	if !p.Enable || strings.TrimSpace(p.Host) == "" {
		sb.WriteString("    return \"DIRECT\";\n}\n")
		return sb.String()
	}

	list := bypass.Parse(p.Bypass)
	if list.Local() {
		sb.WriteString("    // <local>\n")
		sb.WriteString("    if (isPlainHostName(host)) {\n")
		sb.WriteString("        return \"DIRECT\";\n")
		sb.WriteString("    }\n\n")
	}

	if patterns := list.Patterns(); len(patterns) > 0 {
		conditions := make([]string, 0, len(patterns))
		for _, pattern := range patterns {
			conditions = append(conditions, fmt.Sprintf(`shExpMatch(host, "%s")`, escapeJS(pattern)))
		}
		sb.WriteString("    // Bypass list\n")
		sb.WriteString(fmt.Sprintf("    if (%s) {\n", strings.Join(conditions, " ||\n        ")))
		sb.WriteString("        return \"DIRECT\";\n")
		sb.WriteString("    }\n\n")
	}

	sb.WriteString("    // Default\n")
	sb.WriteString(fmt.Sprintf("    return \"PROXY %s; DIRECT\";\n", escapeJS(p.Server())))
	sb.WriteString("}\n")

	return sb.String()
}

// escapeJS escapes a string for use in a JavaScript string literal.
func escapeJS(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "'", "\\'")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
