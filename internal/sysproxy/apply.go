package sysproxy

import "unsafe"

// optionSetter is the InternetSetOption entry point.
type optionSetter interface {
	SetOption(option uint32, buf unsafe.Pointer, size uint32) error
}

// applyState builds the option list for s, submits it and tells the system
// to pick it up. The three native calls run in order and the first failure
// is returned. Settings already submitted are not rolled back.
func applyState(inet optionSetter, s State) error {
	arena, err := newOptionArena(s.options())
	if err != nil {
		return err
	}
	defer arena.Release()

	return submit(inet, arena)
}

func submit(inet optionSetter, arena *optionArena) error {
	list, err := arena.list()
	if err != nil {
		return err
	}

	if err := inet.SetOption(internetOptionPerConnectionOption, unsafe.Pointer(list), perConnOptionListSize); err != nil {
		return err
	}
	if err := inet.SetOption(internetOptionProxySettingsChanged, nil, 0); err != nil {
		return err
	}
	return inet.SetOption(internetOptionRefresh, nil, 0)
}
