package sysproxy

import (
	"fmt"
	"strconv"
)

// InternetSetOption option codes.
const (
	internetOptionRefresh              = 37
	internetOptionProxySettingsChanged = 95
	internetOptionPerConnectionOption  = 75
)

// Per-connection option kinds (INTERNET_PER_CONN_*).
const (
	perConnFlags         = 1
	perConnProxyServer   = 2
	perConnProxyBypass   = 3
	perConnAutoConfigURL = 4
)

// Values for the perConnFlags option (PROXY_TYPE_*).
const (
	proxyTypeDirect       = 0x00000001
	proxyTypeProxy        = 0x00000002
	proxyTypeAutoProxyURL = 0x00000004
	proxyTypeAutoDetect   = 0x00000008
)

// Mode is one of the mutually exclusive proxy modes.
type Mode int

const (
	// ModeDirect disables proxying.
	ModeDirect Mode = iota
	// ModeManual routes through a fixed server.
	ModeManual
	// ModeAuto uses a proxy auto-configuration URL.
	ModeAuto
)

func (m Mode) String() string {
	switch m {
	case ModeDirect:
		return "direct"
	case ModeManual:
		return "manual"
	case ModeAuto:
		return "auto"
	default:
		return "mode(" + strconv.Itoa(int(m)) + ")"
	}
}

// ParseMode converts "direct", "manual" or "auto" into a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "direct", "off", "none":
		return ModeDirect, nil
	case "manual":
		return ModeManual, nil
	case "auto", "pac":
		return ModeAuto, nil
	default:
		return ModeDirect, fmt.Errorf("unknown proxy mode: %q", s)
	}
}

// State is a complete target proxy configuration. Applying a State always
// replaces the whole configuration; there are no partial updates.
type State struct {
	Mode   Mode
	Server string
	Bypass string
	URL    string
}

// DirectState returns the state with proxying disabled.
func DirectState() State {
	return State{Mode: ModeDirect}
}

// ManualState returns the state routing through host:port.
func ManualState(host string, port uint16, bypass string) State {
	return State{
		Mode:   ModeManual,
		Server: ManualProxy{Host: host, Port: port}.Server(),
		Bypass: bypass,
	}
}

// AutoState returns the state using the PAC script at url.
func AutoState(url string) State {
	return State{Mode: ModeAuto, URL: url}
}

// option is one per-connection option record before it is laid out in
// native memory. Text is used for every kind except perConnFlags.
type option struct {
	Kind  uint32
	Flags uint32
	Text  string
}

func (o option) isText() bool {
	return o.Kind != perConnFlags
}

// options returns the records that describe s, flags first.
func (s State) options() []option {
	switch s.Mode {
	case ModeManual:
		return []option{
			{Kind: perConnFlags, Flags: proxyTypeProxy | proxyTypeDirect},
			{Kind: perConnProxyServer, Text: s.Server},
			{Kind: perConnProxyBypass, Text: s.Bypass},
		}
	case ModeAuto:
		return []option{
			{Kind: perConnFlags, Flags: proxyTypeAutoDetect | proxyTypeAutoProxyURL | proxyTypeDirect},
			{Kind: perConnAutoConfigURL, Text: s.URL},
		}
	default:
		return []option{
			{Kind: perConnFlags, Flags: proxyTypeDirect},
		}
	}
}
