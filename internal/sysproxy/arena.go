package sysproxy

import (
	"fmt"
	"runtime"
	"strings"
	"unicode/utf16"
	"unsafe"
)

// optionArena owns a native option list together with every buffer it
// points into. All of it stays pinned until Release; the list must not be
// handed to the OS after that.
type optionArena struct {
	pinner   runtime.Pinner
	buffers  [][]uint16
	options  []perConnOption
	header   *perConnOptionList
	released bool
}

func newOptionArena(opts []option) (*optionArena, error) {
	a := &optionArena{
		options: make([]perConnOption, len(opts)),
	}

	for i, opt := range opts {
		a.options[i].Option = opt.Kind
		if !opt.isText() {
			a.options[i].Value = uint64(opt.Flags)
			continue
		}

		buf, err := encodeWide(opt.Text)
		if err != nil {
			a.Release()
			return nil, err
		}
		a.pinner.Pin(&buf[0])
		a.buffers = append(a.buffers, buf)
		a.options[i].Value = uint64(uintptr(unsafe.Pointer(&buf[0])))
	}

	a.header = &perConnOptionList{
		Size:        perConnOptionListSize,
		OptionCount: uint32(len(a.options)),
	}
	if len(a.options) > 0 {
		a.pinner.Pin(&a.options[0])
		a.header.Options = &a.options[0]
	}
	a.pinner.Pin(a.header)

	return a, nil
}

// list returns the native list header.
func (a *optionArena) list() (*perConnOptionList, error) {
	if a.released {
		return nil, ErrArenaReleased
	}
	return a.header, nil
}

// Release unpins and drops every buffer. It is safe to call more than once.
func (a *optionArena) Release() {
	if a.released {
		return
	}
	a.pinner.Unpin()
	a.buffers = nil
	a.options = nil
	a.header = nil
	a.released = true
}

// encodeWide converts s to a NUL terminated UTF-16 buffer.
func encodeWide(s string) ([]uint16, error) {
	if strings.IndexByte(s, 0) >= 0 {
		return nil, fmt.Errorf("%w: string contains NUL: %q", ErrInvalidProxy, s)
	}
	return append(utf16.Encode([]rune(s)), 0), nil
}
