// Package filters implements the mandatory built-in "never-export" filter
// battery (spec.md §4.2), grounded line-for-line on the original
// SymbolGenerator's unexported_symbol_filters.cpp, which itself documents
// that it mirrors CMake's WINDOWS_EXPORT_ALL_SYMBOLS / bindexplib behavior.
package filters

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/clawmancat/symgen/internal/coff"
)

// Filter is one built-in structural check; it returns true to keep the
// symbol, false to reject it.
type Filter struct {
	Name string
	Keep func(sym coff.Symbol, reader *coff.Reader) bool
}

var arm64ecThunkPattern = regexp.MustCompile(`^\$i?(entry|exit)_thunk$`)

// Battery is the ordered list of built-in filters applied in spec.md §4.2's
// numbered order; the first failing filter names the rejection reason.
var Battery = []Filter{
	{"symbol-type", keepSymbolType},
	{"destructors", keepNonDestructor},
	{"constants", keepNonReadonlyConstant},
	{"rx-functions", keepRXFunction},
	{"dot-symbols", keepNonDotSymbol},
	{"managed-code", keepNonManagedCode},
	{"arm64ec-thunks", keepNonARM64ECThunk},
}

// ApplyAll runs the battery in order and returns the name of the first
// filter that rejected sym, or "" if every filter kept it.
func ApplyAll(sym coff.Symbol, reader *coff.Reader) string {
	for _, f := range Battery {
		if !f.Keep(sym, reader) {
			return f.Name
		}
	}
	return ""
}

// stripDecorationPrefix drops leading whitespace, truncates at the first '@'
// when the name starts with an underscore, and then drops one leading
// underscore on i386 only — grounded on
// unexported_symbol_filters.cpp's remove_prefix.
func stripDecorationPrefix(name string, machine uint16) string {
	i := 0
	for i < len(name) && unicode.IsSpace(rune(name[i])) {
		i++
	}
	name = name[i:]

	if strings.HasPrefix(name, "_") {
		if at := strings.IndexByte(name, '@'); at != -1 {
			name = name[:at]
		}
	}

	if machine == coff.MachineI386 && strings.HasPrefix(name, "_") {
		name = name[1:]
	}

	return name
}

// keepSymbolType keeps only data (0x00) and function (0x20) symbols —
// Microsoft's toolchain never emits any other type value.
func keepSymbolType(sym coff.Symbol, _ *coff.Reader) bool {
	return sym.IsData() || sym.IsFunction()
}

// keepNonDestructor rejects scalar/vector deleting destructors (??_G/??_E),
// which must never be exported.
func keepNonDestructor(sym coff.Symbol, reader *coff.Reader) bool {
	base := stripDecorationPrefix(sym.Name, reader.Machine)
	return !strings.HasPrefix(base, "??_G") && !strings.HasPrefix(base, "??_E")
}

// keepNonReadonlyConstant rejects read-only data symbols: they're typically
// inlined duplicates across translation units, and exporting them causes
// link collisions.
func keepNonReadonlyConstant(sym coff.Symbol, reader *coff.Reader) bool {
	if !sym.IsData() {
		return true
	}
	return reader.SectionFlagsFor(sym)&coff.SectionWriteBit != 0
}

// keepRXFunction rejects function symbols whose owning section has neither
// the READ nor the EXECUTE bit set.
func keepRXFunction(sym coff.Symbol, reader *coff.Reader) bool {
	if !sym.IsFunction() {
		return true
	}
	flags := reader.SectionFlagsFor(sym)
	return flags&(coff.SectionReadBit|coff.SectionExecuteBit) != 0
}

// keepNonDotSymbol rejects any decorated name containing a '.'.
func keepNonDotSymbol(sym coff.Symbol, _ *coff.Reader) bool {
	return !strings.Contains(sym.Name, ".")
}

// keepNonManagedCode rejects managed-code (C++/CLI) thunks.
func keepNonManagedCode(sym coff.Symbol, reader *coff.Reader) bool {
	base := stripDecorationPrefix(sym.Name, reader.Machine)
	if strings.Contains(base, "$$F") || strings.Contains(base, "$$J") {
		return false
	}
	switch base {
	case "__t2m", "__m2mep", "__mep":
		return false
	}
	return true
}

// keepNonARM64ECThunk rejects ARM64EC entry/exit thunks, only on that
// machine type.
func keepNonARM64ECThunk(sym coff.Symbol, reader *coff.Reader) bool {
	if reader.Machine != coff.MachineARM64EC {
		return true
	}
	base := stripDecorationPrefix(sym.Name, reader.Machine)
	return !arm64ecThunkPattern.MatchString(base)
}
