// Package sysproxy reads and writes the operating system's global HTTP/HTTPS
// proxy configuration.
package sysproxy

import (
	"errors"
	"fmt"
	"strconv"
)

// ManualProxy is a snapshot of the manual (fixed server) proxy settings.
type ManualProxy struct {
	// Enable reports whether traffic is routed through Host:Port.
	Enable bool `yaml:"enable" json:"enable"`
	// Host is the proxy host name or address.
	Host string `yaml:"host" json:"host"`
	// Port is the proxy port.
	Port uint16 `yaml:"port" json:"port"`
	// Bypass is the OS formatted list of hosts that skip the proxy, kept verbatim.
	Bypass string `yaml:"bypass" json:"bypass"`
}

// Server returns the "host:port" string written to the OS.
func (p ManualProxy) Server() string {
	return p.Host + ":" + strconv.FormatUint(uint64(p.Port), 10)
}

// AutoProxy is a snapshot of the proxy auto-configuration (PAC) settings.
type AutoProxy struct {
	// Enable is true when a PAC URL is present in the settings store.
	Enable bool `yaml:"enable" json:"enable"`
	// URL is the PAC script location.
	URL string `yaml:"url" json:"url"`
}

// Manager allows managing system proxy settings.
//
// Every call goes straight to the OS; nothing is cached between calls. The
// OS configuration is shared by all processes, so callers that write
// concurrently must serialize themselves.
type Manager interface {
	// GetManualProxy reads the manual proxy settings.
	GetManualProxy() (ManualProxy, error)
	// SetManualProxy applies p. A disabled p switches the system to direct
	// connections and its other fields are ignored.
	SetManualProxy(p ManualProxy) error
	// GetAutoProxy reads the auto-configuration settings.
	GetAutoProxy() (AutoProxy, error)
	// SetAutoProxy applies p. A disabled p switches the system to direct
	// connections.
	SetAutoProxy(p AutoProxy) error
}

// New returns a new system proxy manager for the current platform.
func New() Manager {
	return newPlatformManager()
}

// Supported reports whether the current platform has a working manager.
func Supported() bool {
	return platformSupported
}

var (
	// ErrNotSupported is returned when the platform does not support system proxy configuration.
	ErrNotSupported = errors.New("system proxy configuration not supported on this platform")

	// ErrStoreUnavailable is returned when the persisted proxy settings cannot be opened.
	ErrStoreUnavailable = errors.New("proxy settings store unavailable")

	// ErrInvalidProxy is returned for settings that cannot be written.
	ErrInvalidProxy = errors.New("invalid proxy settings")

	// ErrArenaReleased is returned when an option list is used after its buffers were freed.
	ErrArenaReleased = errors.New("option list already released")
)

// OSError is a failed native configuration call.
type OSError struct {
	// Option is the InternetSetOption option code that failed.
	Option uint32
	// Code is the OS reported error code.
	Code uint32
	Err  error
}

func (e *OSError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("InternetSetOption(%d) failed with code %d: %v", e.Option, e.Code, e.Err)
	}
	return fmt.Sprintf("InternetSetOption(%d) failed with code %d", e.Option, e.Code)
}

func (e *OSError) Unwrap() error {
	return e.Err
}
