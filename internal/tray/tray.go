// Package tray puts a proxy switcher into the system tray.
package tray

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rennerdo30/sysproxy/internal/logging"
	"github.com/rennerdo30/sysproxy/internal/sysproxy"
)

// MenuItem is the part of a tray menu entry the switcher uses.
type MenuItem interface {
	SetTitle(title string)
	SetTooltip(tooltip string)
	Enable()
	Disable()
	Check()
	Uncheck()
	Clicked() <-chan struct{}
}

// SystrayAdapter provides an interface for systray operations.
// This allows mocking the systray package for testing.
type SystrayAdapter interface {
	Run(onReady func(), onExit func())
	SetIcon(iconBytes []byte)
	SetTitle(title string)
	SetTooltip(tooltip string)
	AddMenuItem(title string, tooltip string) MenuItem
	AddMenuItemCheckbox(title string, tooltip string) MenuItem
	AddSeparator()
	Quit()
}

// Entry is a proxy setting offered in the menu.
type Entry struct {
	Name  string
	State sysproxy.State
}

// Config holds tray configuration.
type Config struct {
	Manager sysproxy.Manager
	Entries []Entry

	// Refresh is how often the menu re-reads the settings to pick up
	// changes made elsewhere. Zero disables polling.
	Refresh time.Duration
}

// Tray is a system tray proxy switcher.
type Tray struct {
	manager sysproxy.Manager
	entries []Entry
	refresh time.Duration
	adapter SystrayAdapter

	mu     sync.Mutex
	status sysproxy.Mode
	mode   MenuItem
	items  []MenuItem
	direct MenuItem

	quit     chan struct{}
	quitOnce sync.Once
}

// New creates a tray using the platform systray.
func New(cfg Config) *Tray {
	return NewWithAdapter(cfg, defaultAdapter)
}

// NewWithAdapter creates a tray with a custom adapter.
func NewWithAdapter(cfg Config, adapter SystrayAdapter) *Tray {
	return &Tray{
		manager: cfg.Manager,
		entries: cfg.Entries,
		refresh: cfg.Refresh,
		adapter: adapter,
		quit:    make(chan struct{}),
	}
}

// Run shows the tray and blocks until Quit is selected or ctx is done.
func (t *Tray) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		select {
		case <-ctx.Done():
		case <-t.quit:
			cancel()
		}
		t.adapter.Quit()
	}()

	t.adapter.Run(func() { t.onReady(ctx) }, t.onExit)
}

func (t *Tray) onReady(ctx context.Context) {
	t.adapter.SetTitle("sysproxy")
	t.adapter.SetTooltip("System proxy")

	t.mu.Lock()
	t.mode = t.adapter.AddMenuItem("Mode: unknown", "Current proxy mode")
	t.mode.Disable()
	t.adapter.AddSeparator()

	t.direct = t.adapter.AddMenuItemCheckbox("Direct", "Turn the system proxy off")
	t.items = make([]MenuItem, len(t.entries))
	for i, e := range t.entries {
		t.items[i] = t.adapter.AddMenuItemCheckbox(e.Name, describe(e.State))
	}
	t.adapter.AddSeparator()

	refresh := t.adapter.AddMenuItem("Refresh", "Re-read the proxy settings")
	quit := t.adapter.AddMenuItem("Quit", "Quit sysproxy")
	direct, items := t.direct, t.items
	t.mu.Unlock()

	t.Sync()

	go t.watch(ctx, direct, Entry{Name: "Direct", State: sysproxy.DirectState()})
	for i, item := range items {
		go t.watch(ctx, item, t.entries[i])
	}

	go func() {
		var tick <-chan time.Time
		if t.refresh > 0 {
			ticker := time.NewTicker(t.refresh)
			defer ticker.Stop()
			tick = ticker.C
		}

		for {
			select {
			case <-ctx.Done():
				return
			case <-tick:
				t.Sync()
			case <-refresh.Clicked():
				t.Sync()
			case <-quit.Clicked():
				t.Quit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {
	t.Quit()
}

// watch applies e each time item is clicked.
func (t *Tray) watch(ctx context.Context, item MenuItem, e Entry) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-item.Clicked():
			t.Apply(e)
		}
	}
}

// Apply switches the system proxy to e and updates the menu.
func (t *Tray) Apply(e Entry) {
	log := logging.WithComponent("tray")

	if err := sysproxy.ApplyState(t.manager, e.State); err != nil {
		log.Error("Failed to apply proxy setting", "entry", e.Name, "error", err)
		t.setFailed(err)
		return
	}
	log.Info("Applied proxy setting", "entry", e.Name, "mode", e.State.Mode.String())
	t.Sync()
}

// Sync re-reads the settings and updates the icon, tooltip and checkmarks.
func (t *Tray) Sync() {
	snap, err := sysproxy.Capture(t.manager)
	if err != nil {
		logging.WithComponent("tray").Warn("Failed to read proxy settings", "error", err)
		t.setFailed(err)
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.status = snap.Mode()

	current := snap.State()
	t.adapter.SetIcon(iconFor(t.status, false))
	t.adapter.SetTooltip("System proxy: " + describe(current))

	if t.mode != nil {
		t.mode.SetTitle("Mode: " + t.status.String())
	}
	if t.direct != nil {
		setChecked(t.direct, current.Mode == sysproxy.ModeDirect)
	}
	for i, item := range t.items {
		setChecked(item, matches(t.entries[i].State, current))
	}
}

func (t *Tray) setFailed(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.adapter.SetTooltip("System proxy error: " + err.Error())
	t.adapter.SetIcon(iconFor(t.status, true))
}

// Quit closes the tray. It is safe to call more than once.
func (t *Tray) Quit() {
	t.quitOnce.Do(func() { close(t.quit) })
}

func setChecked(item MenuItem, checked bool) {
	if checked {
		item.Check()
	} else {
		item.Uncheck()
	}
}

// matches reports whether the entry describes the current settings. Bypass
// lists are ignored so an entry stays checked after the list was edited.
func matches(entry, current sysproxy.State) bool {
	if entry.Mode != current.Mode {
		return false
	}
	switch entry.Mode {
	case sysproxy.ModeManual:
		return entry.Server == current.Server
	case sysproxy.ModeAuto:
		return entry.URL == current.URL
	default:
		return true
	}
}

func describe(s sysproxy.State) string {
	switch s.Mode {
	case sysproxy.ModeManual:
		return fmt.Sprintf("manual %s", s.Server)
	case sysproxy.ModeAuto:
		return fmt.Sprintf("auto %s", s.URL)
	default:
		return "direct"
	}
}
