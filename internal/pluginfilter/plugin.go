// Package pluginfilter is the dynamic-plugin-loader collaborator (spec.md
// §4.4, §9 "Plugin ABI"). Go's standard plugin package plays the same role
// here as LoadLibrary+GetProcAddress did in the original DLL-based ABI; per
// the Design Note, the raw COFF pointer pair is replaced with an
// ABI-stable SymbolView value instead of passing host-internal pointers
// across the plugin boundary.
package pluginfilter

import (
	goplugin "plugin"
)

// SymbolView is the ABI-stable replacement for the original's
// `(const char* demangled, const void* symbol, const void* reader)` triple:
// a plain, self-describing snapshot of the facts a plugin could plausibly
// need, instead of raw pointers into this process's internal COFF reader.
type SymbolView struct {
	Decorated  string
	Demangled  string
	Type       uint16
	IsData     bool
	IsFunction bool
	Machine    uint16
	SectionFlags uint32
}

// Filter is invoked once per otherwise-included symbol; it returns true to
// keep the symbol, false to reject it.
type Filter func(view SymbolView) bool

// entryPointName is the exported symbol every plugin must provide.
const entryPointName = "KeepSymbol"

// Load resolves path as a Go plugin and looks up its KeepSymbol entry
// point. Both failure to load the plugin and failure to resolve the entry
// point are fatal per spec.md §4.4 — callers should treat a non-nil error
// as unrecoverable.
func Load(path string) (Filter, error) {
	p, err := goplugin.Open(path)
	if err != nil {
		return nil, err
	}

	sym, err := p.Lookup(entryPointName)
	if err != nil {
		return nil, err
	}

	fn, ok := sym.(func(SymbolView) bool)
	if !ok {
		fn2, ok2 := sym.(*func(SymbolView) bool)
		if !ok2 {
			return nil, errMismatchedSignature
		}
		return Filter(*fn2), nil
	}
	return Filter(fn), nil
}

var errMismatchedSignature = pluginSignatureError{}

type pluginSignatureError struct{}

func (pluginSignatureError) Error() string {
	return "plugin's " + entryPointName + " does not have the expected signature func(pluginfilter.SymbolView) bool"
}

// AlwaysKeep is the identity filter used when no plugin is configured.
func AlwaysKeep(SymbolView) bool { return true }
