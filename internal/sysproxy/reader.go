package sysproxy

import "fmt"

// Value names under the Internet Settings key.
const (
	valueProxyEnable   = "ProxyEnable"
	valueProxyServer   = "ProxyServer"
	valueProxyOverride = "ProxyOverride"
	valueAutoConfigURL = "AutoConfigURL"
)

// settingsStore is a read-only view of the persisted proxy settings. Lookups
// report false when the value is absent or has the wrong type.
type settingsStore interface {
	Integer(name string) (uint64, bool)
	String(name string) (string, bool)
	Close() error
}

type storeOpener func() (settingsStore, error)

func openStore(open storeOpener) (settingsStore, error) {
	store, err := open()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return store, nil
}

func readManual(open storeOpener) (ManualProxy, error) {
	store, err := openStore(open)
	if err != nil {
		return ManualProxy{}, err
	}
	defer store.Close()

	var p ManualProxy
	if enable, ok := store.Integer(valueProxyEnable); ok {
		p.Enable = enable == 1
	}
	if server, ok := store.String(valueProxyServer); ok && server != "" {
		p.Host, p.Port = ParseAddress(server)
	}
	p.Bypass, _ = store.String(valueProxyOverride)

	return p, nil
}

func readAuto(open storeOpener) (AutoProxy, error) {
	store, err := openStore(open)
	if err != nil {
		return AutoProxy{}, err
	}
	defer store.Close()

	url, ok := store.String(valueAutoConfigURL)
	return AutoProxy{Enable: ok, URL: url}, nil
}
