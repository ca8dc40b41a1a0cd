//go:build !windows

package sysproxy

const platformSupported = false

// unsupportedManager fails every call. Other platforms keep their proxy
// settings in stores this package does not drive.
type unsupportedManager struct{}

func newPlatformManager() Manager {
	return unsupportedManager{}
}

func (unsupportedManager) GetManualProxy() (ManualProxy, error) {
	return ManualProxy{}, ErrNotSupported
}

func (unsupportedManager) SetManualProxy(ManualProxy) error {
	return ErrNotSupported
}

func (unsupportedManager) GetAutoProxy() (AutoProxy, error) {
	return AutoProxy{}, ErrNotSupported
}

func (unsupportedManager) SetAutoProxy(AutoProxy) error {
	return ErrNotSupported
}
