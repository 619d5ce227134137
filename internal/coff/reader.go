// Package coff is the COFF reader collaborator: a thin, read-only view over
// a compiled object file's header, section table, and symbol table. It is
// the only part of this module that touches the object-file byte layout; as
// spec.md frames it, this is an external-collaborator concern, not part of
// the symbol-selection core.
package coff

import (
	"debug/pe"
)

// Section flag bits, named after the original SymbolGenerator's
// coff_utils.hpp constants.
const (
	SectionReadBit    = 0x40000000
	SectionWriteBit   = 0x80000000
	SectionExecuteBit = 0x20000000
)

// Symbol type values Microsoft's toolchain ever emits.
const (
	SymTypeNull     = 0x00
	SymTypeFunction = 0x20
)

// Sentinel section-number values from the COFF spec.
const (
	SymSectionUndefined int16 = 0
	SymSectionAbsolute  int16 = -1
	SymSectionDebug     int16 = -2
)

// MachineARM64EC is the ARM64 "emulation-compatible" machine code.
const MachineARM64EC = 0xA641

// MachineI386 is the classic x86 machine code.
const MachineI386 = 0x014C

// Symbol is one entry of a COFF symbol table.
type Symbol struct {
	Name          string
	Type          uint16
	SectionNumber int16
}

// IsData reports whether the symbol's type marks it as data (SYM_TYPE_NULL);
// Microsoft's toolchain only ever sets the type field to 0x00 or 0x20.
func (s Symbol) IsData() bool { return s.Type == SymTypeNull }

// IsFunction reports whether the symbol's type marks it as a function.
func (s Symbol) IsFunction() bool { return s.Type == SymTypeFunction }

// Reader exposes the subset of a parsed .obj file the symbol-selection
// engine needs: the machine field, section flags, and the symbol table.
type Reader struct {
	Machine uint16
	symbols []Symbol
	// sectionFlags[i] is the Characteristics of 1-indexed section i (COFF
	// section numbers are 1-based; index 0 is unused padding).
	sectionFlags []uint32
}

// Open parses path as a COFF object file.
func Open(path string) (*Reader, error) {
	f, err := pe.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sectionFlags := make([]uint32, len(f.Sections)+1)
	for i, sec := range f.Sections {
		sectionFlags[i+1] = sec.Characteristics
	}

	symbols := make([]Symbol, 0, len(f.COFFSymbols))
	for _, raw := range f.COFFSymbols {
		name, err := raw.FullName(f.StringTable)
		if err != nil {
			name = string(raw.Name[:])
		}
		symbols = append(symbols, Symbol{
			Name:          name,
			Type:          raw.Type,
			SectionNumber: raw.SectionNumber,
		})
	}

	return &Reader{
		Machine:      f.Machine,
		symbols:      symbols,
		sectionFlags: sectionFlags,
	}, nil
}

// NewForTesting builds a Reader directly from a machine field and a
// 1-indexed section-flags table, without going through a real object file.
// Index 0 of sectionFlags is unused padding, matching Open's own layout.
func NewForTesting(machine uint16, sectionFlags []uint32) *Reader {
	return &Reader{Machine: machine, sectionFlags: sectionFlags}
}

// Symbols returns the object file's symbol table, in file order.
func (r *Reader) Symbols() []Symbol {
	return r.symbols
}

// SectionFlagsFor returns the Characteristics of the section owning sym, or
// 0 for the sentinel section numbers (UNDEFINED/ABSOLUTE/DEBUG) or any
// out-of-range index, per spec.md §4.2's section-flag lookup policy.
func (r *Reader) SectionFlagsFor(sym Symbol) uint32 {
	n := sym.SectionNumber
	if n == SymSectionUndefined || n == SymSectionAbsolute || n == SymSectionDebug {
		return 0
	}
	if n < 1 || int(n) >= len(r.sectionFlags) {
		return 0
	}
	return r.sectionFlags[n]
}
