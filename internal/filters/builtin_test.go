package filters

import (
	"testing"

	"github.com/clawmancat/symgen/internal/coff"
)

func readerWithSections(machine uint16, flagsBySection ...uint32) *coff.Reader {
	table := make([]uint32, len(flagsBySection)+1)
	copy(table[1:], flagsBySection)
	return coff.NewForTesting(machine, table)
}

func TestKeepSymbolType(t *testing.T) {
	reader := readerWithSections(coff.MachineI386)

	tests := []struct {
		name string
		typ  uint16
		want bool
	}{
		{"data", coff.SymTypeNull, true},
		{"function", coff.SymTypeFunction, true},
		{"other", 0x01, false},
	}

	for _, tt := range tests {
		sym := coff.Symbol{Name: "_foo", Type: tt.typ, SectionNumber: coff.SymSectionUndefined}
		if got := keepSymbolType(sym, reader); got != tt.want {
			t.Errorf("%s: keepSymbolType = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestKeepNonDestructor(t *testing.T) {
	reader := readerWithSections(coff.MachineI386)

	tests := []struct {
		name string
		want bool
	}{
		{"??_G?Foo@@UAEPAXI@Z", false},
		{"??_E?Foo@@UAEPAXI@Z", false},
		{"?Foo@@QAEXXZ", true},
	}

	for _, tt := range tests {
		sym := coff.Symbol{Name: tt.name, SectionNumber: coff.SymSectionUndefined}
		if got := keepNonDestructor(sym, reader); got != tt.want {
			t.Errorf("%s: keepNonDestructor = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestKeepNonReadonlyConstant(t *testing.T) {
	reader := readerWithSections(coff.MachineI386)

	dataSym := coff.Symbol{Name: "_x", Type: coff.SymTypeNull, SectionNumber: coff.SymSectionUndefined}
	// Sentinel section number means section flags are always 0 (no WRITE
	// bit), so a data symbol with an undefined section must be rejected.
	if keepNonReadonlyConstant(dataSym, reader) {
		t.Errorf("expected read-only constant in sentinel section to be rejected")
	}

	fnSym := coff.Symbol{Name: "_f", Type: coff.SymTypeFunction, SectionNumber: coff.SymSectionUndefined}
	if !keepNonReadonlyConstant(fnSym, reader) {
		t.Errorf("function symbols must pass the constants filter unconditionally")
	}
}

func TestKeepRXFunction(t *testing.T) {
	reader := readerWithSections(coff.MachineI386)

	fnSym := coff.Symbol{Name: "_f", Type: coff.SymTypeFunction, SectionNumber: coff.SymSectionUndefined}
	if keepRXFunction(fnSym, reader) {
		t.Errorf("function in a zero-flag (sentinel) section must be rejected")
	}

	dataSym := coff.Symbol{Name: "_x", Type: coff.SymTypeNull, SectionNumber: coff.SymSectionUndefined}
	if !keepRXFunction(dataSym, reader) {
		t.Errorf("data symbols must pass the rx-functions filter unconditionally")
	}
}

func TestKeepNonDotSymbol(t *testing.T) {
	if keepNonDotSymbol(coff.Symbol{Name: "foo.bar"}, nil) {
		t.Errorf("dotted symbol name should be rejected")
	}
	if !keepNonDotSymbol(coff.Symbol{Name: "foobar"}, nil) {
		t.Errorf("plain symbol name should pass")
	}
}

func TestKeepNonManagedCode(t *testing.T) {
	// AMD64 (0x8664): no i386 underscore stripping, so "__t2m" is compared as-is.
	reader := readerWithSections(0x8664)

	tests := []struct {
		name string
		want bool
	}{
		{"foo$$F", false},
		{"foo$$J", false},
		{"__t2m", false},
		{"__m2mep", false},
		{"__mep", false},
		{"regular_symbol", true},
	}

	for _, tt := range tests {
		if got := keepNonManagedCode(coff.Symbol{Name: tt.name}, reader); got != tt.want {
			t.Errorf("%s: keepNonManagedCode = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestKeepNonARM64ECThunk(t *testing.T) {
	arm64ec := readerWithSections(coff.MachineARM64EC)
	i386 := readerWithSections(coff.MachineI386)

	if keepNonARM64ECThunk(coff.Symbol{Name: "$ientry_thunk"}, arm64ec) {
		t.Errorf("entry thunk should be rejected on ARM64EC")
	}
	if keepNonARM64ECThunk(coff.Symbol{Name: "$exit_thunk"}, arm64ec) {
		t.Errorf("exit thunk should be rejected on ARM64EC")
	}
	if !keepNonARM64ECThunk(coff.Symbol{Name: "$ientry_thunk"}, i386) {
		t.Errorf("thunk pattern should be ignored on non-ARM64EC machines")
	}
}

func TestApplyAllOrdersFilters(t *testing.T) {
	reader := readerWithSections(coff.MachineI386)

	// A destructor symbol of an unsupported type should be rejected by
	// symbol-type first, since that filter runs before destructors.
	sym := coff.Symbol{Name: "??_GFoo@@UAEPAXI@Z", Type: 0x01, SectionNumber: coff.SymSectionUndefined}
	if reason := ApplyAll(sym, reader); reason != "symbol-type" {
		t.Errorf("ApplyAll = %q, want %q", reason, "symbol-type")
	}
}
