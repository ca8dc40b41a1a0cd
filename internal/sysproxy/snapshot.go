package sysproxy

import "fmt"

// Snapshot is the full proxy configuration captured at one point in time.
type Snapshot struct {
	Manual ManualProxy `yaml:"manual" json:"manual"`
	Auto   AutoProxy   `yaml:"auto" json:"auto"`
}

// Capture reads both halves of the current configuration.
func Capture(m Manager) (Snapshot, error) {
	manual, err := m.GetManualProxy()
	if err != nil {
		return Snapshot{}, fmt.Errorf("read manual proxy: %w", err)
	}
	auto, err := m.GetAutoProxy()
	if err != nil {
		return Snapshot{}, fmt.Errorf("read auto proxy: %w", err)
	}
	return Snapshot{Manual: manual, Auto: auto}, nil
}

// Mode returns the effective mode. An enabled manual proxy takes precedence
// over a PAC URL.
func (s Snapshot) Mode() Mode {
	switch {
	case s.Manual.Enable:
		return ModeManual
	case s.Auto.Enable:
		return ModeAuto
	default:
		return ModeDirect
	}
}

// State returns the State that reproduces the snapshot.
func (s Snapshot) State() State {
	switch s.Mode() {
	case ModeManual:
		return ManualState(s.Manual.Host, s.Manual.Port, s.Manual.Bypass)
	case ModeAuto:
		return AutoState(s.Auto.URL)
	default:
		return DirectState()
	}
}

// Restore writes the snapshot back through m.
//
// Only the mode reported by Mode is applied. A snapshot holding both an
// enabled manual proxy and a PAC URL restores the manual proxy alone, and
// the PAC URL is gone from the store afterwards.
func (s Snapshot) Restore(m Manager) error {
	switch s.Mode() {
	case ModeManual:
		return m.SetManualProxy(s.Manual)
	case ModeAuto:
		return m.SetAutoProxy(s.Auto)
	default:
		return m.SetManualProxy(ManualProxy{})
	}
}
