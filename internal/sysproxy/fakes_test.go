package sysproxy

import (
	"errors"
	"testing"
	"unicode/utf16"
	"unsafe"

	"github.com/stretchr/testify/require"
)

// memStore is an in-memory settingsStore.
type memStore struct {
	values map[string]any
	opens  int
	closes int
}

func newMemStore() *memStore {
	return &memStore{values: map[string]any{}}
}

func (s *memStore) opener() storeOpener {
	return func() (settingsStore, error) {
		s.opens++
		return memHandle{s}, nil
	}
}

type memHandle struct{ s *memStore }

func (h memHandle) Integer(name string) (uint64, bool) {
	v, ok := h.s.values[name].(uint64)
	return v, ok
}

func (h memHandle) String(name string) (string, bool) {
	v, ok := h.s.values[name].(string)
	return v, ok
}

func (h memHandle) Close() error {
	h.s.closes++
	return nil
}

func failingOpener(err error) storeOpener {
	return func() (settingsStore, error) {
		return nil, err
	}
}

type setCall struct {
	Option  uint32
	Size    uint32
	Options []option
}

// recordingSetter records every SetOption call, decoding the option list
// while its buffers are still alive. When store is set it persists the
// submitted settings the way WinINet does.
type recordingSetter struct {
	t      *testing.T
	calls  []setCall
	failOn map[uint32]error
	store  *memStore
}

func newRecordingSetter(t *testing.T) *recordingSetter {
	return &recordingSetter{t: t, failOn: map[uint32]error{}}
}

func (r *recordingSetter) SetOption(opt uint32, buf unsafe.Pointer, size uint32) error {
	call := setCall{Option: opt, Size: size}
	if opt == internetOptionPerConnectionOption {
		call.Options = decodeList(r.t, buf, size)
	} else {
		require.Nil(r.t, buf)
		require.Zero(r.t, size)
	}
	r.calls = append(r.calls, call)

	if err, ok := r.failOn[opt]; ok {
		return err
	}
	if r.store != nil && opt == internetOptionPerConnectionOption {
		r.persist(call.Options)
	}
	return nil
}

func (r *recordingSetter) persist(opts []option) {
	for _, o := range opts {
		switch o.Kind {
		case perConnFlags:
			if o.Flags&proxyTypeProxy != 0 {
				r.store.values[valueProxyEnable] = uint64(1)
			} else {
				r.store.values[valueProxyEnable] = uint64(0)
			}
			if o.Flags&proxyTypeAutoProxyURL == 0 {
				delete(r.store.values, valueAutoConfigURL)
			}
		case perConnProxyServer:
			r.store.values[valueProxyServer] = o.Text
		case perConnProxyBypass:
			r.store.values[valueProxyOverride] = o.Text
		case perConnAutoConfigURL:
			r.store.values[valueAutoConfigURL] = o.Text
		}
	}
}

func (r *recordingSetter) optionCodes() []uint32 {
	codes := make([]uint32, 0, len(r.calls))
	for _, c := range r.calls {
		codes = append(codes, c.Option)
	}
	return codes
}

func decodeList(t *testing.T, buf unsafe.Pointer, size uint32) []option {
	t.Helper()
	require.NotNil(t, buf)
	require.Equal(t, perConnOptionListSize, size)

	list := (*perConnOptionList)(buf)
	require.Equal(t, perConnOptionListSize, list.Size)
	require.Nil(t, list.Connection)
	require.NotNil(t, list.Options)

	raw := unsafe.Slice(list.Options, list.OptionCount)
	out := make([]option, 0, len(raw))
	for i := range raw {
		if raw[i].Option == perConnFlags {
			out = append(out, option{Kind: raw[i].Option, Flags: uint32(raw[i].Value)})
			continue
		}
		out = append(out, option{Kind: raw[i].Option, Text: readWide(&raw[i])})
	}
	return out
}

func readWide(o *perConnOption) string {
	p := *(*unsafe.Pointer)(unsafe.Pointer(&o.Value))
	var units []uint16
	for i := 0; ; i++ {
		u := *(*uint16)(unsafe.Add(p, 2*i))
		if u == 0 {
			break
		}
		units = append(units, u)
	}
	return string(utf16.Decode(units))
}

var errAccessDenied = errors.New("access denied")
