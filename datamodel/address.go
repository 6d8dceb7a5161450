package datamodel

import (
	"strconv"
	"strings"

	"github.com/IvanBrykalov/uicore/dataexpr"
)

const (
	sizeName    = "size"
	literalName = "literal"
)

var reservedNames = map[string]struct{}{
	"it": {}, "ev": {}, "true": {}, "false": {}, sizeName: {}, literalName: {},
}

// checkName validates a top-level variable or transform name. Reserved
// names are matched case-insensitively.
func checkName(name string) error {
	if name == "" {
		return ErrIllegalName
	}
	lower := strings.ToLower(name)
	if c := lower[0]; c < 'a' || c > 'z' {
		return ErrIllegalName
	}
	for i := 1; i < len(lower); i++ {
		c := lower[i]
		if c != '_' && (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			return ErrIllegalName
		}
	}
	if _, ok := reservedNames[lower]; ok {
		return ErrReservedName
	}
	return nil
}

// parsePath splits "a.b[2][0].c" into address entries. It fails on empty
// segments, negative or malformed indices and anything after a closing
// bracket other than another index.
func parsePath(path string) (dataexpr.Address, bool) {
	if path == "" {
		return nil, false
	}
	segs := strings.Split(path, ".")
	addr := make(dataexpr.Address, 0, len(segs)*2)
	for _, seg := range segs {
		open := strings.IndexByte(seg, '[')
		if seg == "" || open == 0 {
			return nil, false
		}
		if open < 0 {
			addr = append(addr, dataexpr.AddressEntry{Name: seg})
			continue
		}
		addr = append(addr, dataexpr.AddressEntry{Name: seg[:open]})
		rest := seg[open:]
		for rest != "" {
			end := strings.IndexByte(rest, ']')
			if rest[0] != '[' || end < 0 {
				return nil, false
			}
			i, err := strconv.Atoi(rest[1:end])
			if err != nil || i < 0 {
				return nil, false
			}
			addr = append(addr, dataexpr.AddressEntry{Index: i})
			rest = rest[end+1:]
		}
	}
	return addr, true
}

// literalInt reports whether addr is literal.int[N].
func literalInt(addr dataexpr.Address) (int, bool) {
	if len(addr) != 3 || addr[0].Name != literalName || addr[1].Name != "int" || addr[2].Name != "" {
		return 0, false
	}
	return addr[2].Index, true
}
