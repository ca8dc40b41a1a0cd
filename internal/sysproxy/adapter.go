package sysproxy

import (
	"fmt"
	"strings"

	"github.com/rennerdo30/sysproxy/internal/logging"
)

// adapter implements Manager on top of a settings store for reads and the
// option setter for writes.
type adapter struct {
	open storeOpener
	inet optionSetter
}

func newAdapter(open storeOpener, inet optionSetter) *adapter {
	return &adapter{open: open, inet: inet}
}

func (a *adapter) GetManualProxy() (ManualProxy, error) {
	return readManual(a.open)
}

func (a *adapter) SetManualProxy(p ManualProxy) error {
	if !p.Enable {
		return a.apply(DirectState())
	}
	if strings.TrimSpace(p.Host) == "" {
		return fmt.Errorf("%w: manual proxy host is required", ErrInvalidProxy)
	}
	return a.apply(ManualState(p.Host, p.Port, p.Bypass))
}

func (a *adapter) GetAutoProxy() (AutoProxy, error) {
	return readAuto(a.open)
}

func (a *adapter) SetAutoProxy(p AutoProxy) error {
	if !p.Enable {
		return a.apply(DirectState())
	}
	if strings.TrimSpace(p.URL) == "" {
		return fmt.Errorf("%w: auto-config URL is required", ErrInvalidProxy)
	}
	return a.apply(AutoState(p.URL))
}

func (a *adapter) apply(s State) error {
	log := logging.WithComponent("sysproxy")
	log.Debug("Applying proxy settings", "mode", s.Mode.String(), "server", s.Server, "url", s.URL)

	if err := applyState(a.inet, s); err != nil {
		log.Warn("Failed to apply proxy settings", "mode", s.Mode.String(), "error", err)
		return fmt.Errorf("apply %s proxy: %w", s.Mode, err)
	}
	return nil
}

// ApplyState writes s through m using the matching facade call.
func ApplyState(m Manager, s State) error {
	switch s.Mode {
	case ModeManual:
		host, port := ParseAddress(s.Server)
		return m.SetManualProxy(ManualProxy{Enable: true, Host: host, Port: port, Bypass: s.Bypass})
	case ModeAuto:
		return m.SetAutoProxy(AutoProxy{Enable: true, URL: s.URL})
	case ModeDirect:
		return m.SetManualProxy(ManualProxy{})
	default:
		return fmt.Errorf("%w: unknown mode %s", ErrInvalidProxy, s.Mode)
	}
}
