package sysproxy

import "unsafe"

// perConnOption mirrors INTERNET_PER_CONN_OPTIONW. Value holds the union of
// a DWORD, an LPWSTR and a FILETIME; uint64 gives it the union's size and
// the same offset on 32 and 64 bit targets.
type perConnOption struct {
	Option uint32
	Value  uint64
}

// perConnOptionList mirrors INTERNET_PER_CONN_OPTION_LISTW.
type perConnOptionList struct {
	Size        uint32
	Connection  *uint16
	OptionCount uint32
	OptionError uint32
	Options     *perConnOption
}

var perConnOptionListSize = uint32(unsafe.Sizeof(perConnOptionList{}))
