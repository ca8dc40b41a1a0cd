package pac

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rennerdo30/sysproxy/internal/sysproxy"
)

func TestGenerate(t *testing.T) {
	script := Generate(sysproxy.ManualProxy{
		Enable: true,
		Host:   "10.0.0.1",
		Port:   3128,
		Bypass: "*.corp;127.*;<local>",
	})

	assert.Contains(t, script, "function FindProxyForURL(url, host)")
	assert.Contains(t, script, "isPlainHostName(host)")
	assert.Contains(t, script, `shExpMatch(host, "*.corp")`)
	assert.Contains(t, script, `shExpMatch(host, "127.*")`)
	assert.Contains(t, script, `return "PROXY 10.0.0.1:3128; DIRECT";`)
	assert.Equal(t, strings.Count(script, "{"), strings.Count(script, "}"))
}

func TestGenerate_NoBypass(t *testing.T) {
	script := Generate(sysproxy.ManualProxy{Enable: true, Host: "proxy", Port: 8080})

	assert.NotContains(t, script, "shExpMatch")
	assert.NotContains(t, script, "isPlainHostName")
	assert.Contains(t, script, `return "PROXY proxy:8080; DIRECT";`)
}

func TestGenerate_Disabled(t *testing.T) {
	for _, p := range []sysproxy.ManualProxy{
		{},
		{Enable: false, Host: "proxy", Port: 8080},
		{Enable: true, Host: " "},
	} {
		script := Generate(p)
		assert.Contains(t, script, `return "DIRECT";`)
		assert.NotContains(t, script, "PROXY")
	}
}

func TestGenerate_EscapesPatterns(t *testing.T) {
	script := Generate(sysproxy.ManualProxy{Enable: true, Host: "p", Port: 1, Bypass: `a"b.com`})
	assert.Contains(t, script, `shExpMatch(host, "a\"b.com")`)
}

func TestResolve(t *testing.T) {
	manual := sysproxy.Snapshot{Manual: sysproxy.ManualProxy{
		Enable: true, Host: "10.0.0.1", Port: 3128, Bypass: "*.corp;<local>",
	}}
	auto := sysproxy.Snapshot{Auto: sysproxy.AutoProxy{Enable: true, URL: "http://wpad/wpad.dat"}}

	tests := []struct {
		name string
		snap sysproxy.Snapshot
		host string
		want string
	}{
		{"proxied", manual, "example.com", "PROXY 10.0.0.1:3128"},
		{"bypassed", manual, "git.corp", "DIRECT"},
		{"plain name", manual, "intranet", "DIRECT"},
		{"auto", auto, "example.com", "PAC http://wpad/wpad.dat"},
		{"direct", sysproxy.Snapshot{}, "example.com", "DIRECT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Resolve(tt.snap, tt.host)
			assert.Equal(t, tt.want, r.Result)
			assert.Equal(t, tt.host, r.Host)
			assert.Equal(t, tt.snap.Mode().String(), r.Mode)
		})
	}
}
