package sysproxy

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestManualProxy_Server(t *testing.T) {
	assert.Equal(t, "127.0.0.1:8080", ManualProxy{Host: "127.0.0.1", Port: 8080}.Server())
	assert.Equal(t, "[::1]:3128", ManualProxy{Host: "[::1]", Port: 3128}.Server())
	assert.Equal(t, "proxy:0", ManualProxy{Host: "proxy"}.Server())
}

func TestNew(t *testing.T) {
	mgr := New()
	assert.NotNil(t, mgr)

	var _ Manager = mgr
}

func TestSupported(t *testing.T) {
	assert.Equal(t, runtime.GOOS == "windows", Supported())
}

func TestErrNotSupported(t *testing.T) {
	assert.NotNil(t, ErrNotSupported)
	assert.Contains(t, ErrNotSupported.Error(), "not supported")
}

func TestUnsupportedPlatform(t *testing.T) {
	// On Windows this would read and modify the real registry.
	if runtime.GOOS == "windows" {
		t.Skip("Skipping on Windows to avoid modifying system settings")
	}

	mgr := New()

	_, err := mgr.GetManualProxy()
	assert.ErrorIs(t, err, ErrNotSupported)
	_, err = mgr.GetAutoProxy()
	assert.ErrorIs(t, err, ErrNotSupported)
	assert.ErrorIs(t, mgr.SetManualProxy(ManualProxy{Enable: true, Host: "127.0.0.1", Port: 8080}), ErrNotSupported)
	assert.ErrorIs(t, mgr.SetAutoProxy(AutoProxy{}), ErrNotSupported)
}
