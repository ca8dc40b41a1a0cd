//go:build !cgo

package tray

import "github.com/rennerdo30/sysproxy/internal/logging"

// noopMenuItem is a no-op menu item for builds without CGo.
type noopMenuItem struct {
	clickCh chan struct{}
}

func (m *noopMenuItem) SetTitle(_ string)        {}
func (m *noopMenuItem) SetTooltip(_ string)      {}
func (m *noopMenuItem) Enable()                  {}
func (m *noopMenuItem) Disable()                 {}
func (m *noopMenuItem) Check()                   {}
func (m *noopMenuItem) Uncheck()                 {}
func (m *noopMenuItem) Clicked() <-chan struct{} { return m.clickCh }

// noopSystrayAdapter is used when CGo is not available. Run blocks until
// Quit so the process stays up and keeps serving its other duties.
type noopSystrayAdapter struct {
	quit chan struct{}
}

func (a *noopSystrayAdapter) Run(onReady func(), onExit func()) {
	logging.Warn("System tray not available (built without CGo)")
	onReady()
	<-a.quit
	onExit()
}

func (a *noopSystrayAdapter) SetIcon(_ []byte)    {}
func (a *noopSystrayAdapter) SetTitle(_ string)   {}
func (a *noopSystrayAdapter) SetTooltip(_ string) {}
func (a *noopSystrayAdapter) AddMenuItem(_, _ string) MenuItem {
	return &noopMenuItem{clickCh: make(chan struct{})}
}
func (a *noopSystrayAdapter) AddMenuItemCheckbox(_, _ string) MenuItem {
	return &noopMenuItem{clickCh: make(chan struct{})}
}
func (a *noopSystrayAdapter) AddSeparator() {}

func (a *noopSystrayAdapter) Quit() {
	select {
	case <-a.quit:
	default:
		close(a.quit)
	}
}

// defaultAdapter is the no-op systray adapter for non-CGo builds.
var defaultAdapter SystrayAdapter = &noopSystrayAdapter{quit: make(chan struct{})}
