//go:build windows

package sysproxy

import (
	"errors"
	"fmt"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"
)

const platformSupported = true

const internetSettingsKey = `Software\Microsoft\Windows\CurrentVersion\Internet Settings`

var (
	modwininet             = windows.NewLazySystemDLL("wininet.dll")
	procInternetSetOptionW = modwininet.NewProc("InternetSetOptionW")
)

func newPlatformManager() Manager {
	return newAdapter(openRegistryStore, wininet{})
}

type registryStore struct {
	key registry.Key
}

func openRegistryStore() (settingsStore, error) {
	k, err := registry.OpenKey(registry.CURRENT_USER, internetSettingsKey, registry.QUERY_VALUE)
	if err != nil {
		return nil, fmt.Errorf("open registry key: %w", err)
	}
	return registryStore{key: k}, nil
}

func (s registryStore) Integer(name string) (uint64, bool) {
	v, _, err := s.key.GetIntegerValue(name)
	if err != nil {
		return 0, false
	}
	return v, true
}

func (s registryStore) String(name string) (string, bool) {
	v, _, err := s.key.GetStringValue(name)
	if err != nil {
		return "", false
	}
	return v, true
}

func (s registryStore) Close() error {
	return s.key.Close()
}

// wininet calls InternetSetOptionW with a NULL internet handle, which
// targets the global settings.
type wininet struct{}

func (wininet) SetOption(option uint32, buf unsafe.Pointer, size uint32) error {
	if err := procInternetSetOptionW.Find(); err != nil {
		return fmt.Errorf("load InternetSetOptionW: %w", err)
	}

	r1, _, e1 := procInternetSetOptionW.Call(0, uintptr(option), uintptr(buf), uintptr(size))
	if r1 != 0 {
		return nil
	}

	oe := &OSError{Option: option}
	var errno syscall.Errno
	if errors.As(e1, &errno) && errno != 0 {
		oe.Code = uint32(errno)
		oe.Err = errno
	}
	return oe
}
