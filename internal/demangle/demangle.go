// Package demangle is the name-demangler collaborator: it maps a decorated
// COFF symbol name to a human-readable C++ name. As spec.md §1 frames it,
// this is an out-of-scope external collaborator with an interface; no C++
// demangling library exists anywhere in the example corpus, so this package
// provides a best-effort stand-in for the common MSVC decoration scheme
// (`?name@ns1@ns2@@...`), good enough to drive namespace-rule matching.
package demangle

import (
	"strings"
	"sync"
)

// Demangler maps a decorated symbol name to its demangled form.
type Demangler interface {
	Demangle(decorated string) string
}

// MSVCDemangler undecorates the common `?name@ns...@@type-info` scheme.
// Platform demanglers (e.g. Windows' DbgHelp UnDecorateSymbolName) are
// documented non-reentrant, so every call is serialized behind mu, mirroring
// spec.md §5's "demangler is not thread-safe" contract.
type MSVCDemangler struct {
	mu sync.Mutex
}

// NewMSVCDemangler constructs a ready-to-use demangler.
func NewMSVCDemangler() *MSVCDemangler {
	return &MSVCDemangler{}
}

// Demangle returns the demangled form of decorated. Names it does not
// recognize (not starting with '?') are returned as-is after stripping a
// leading underscore and trailing stdcall "@N" suffix, which is as close to
// "demangled" as a plain C symbol gets.
func (d *MSVCDemangler) Demangle(decorated string) string {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !strings.HasPrefix(decorated, "?") {
		return stripCDecoration(decorated)
	}

	body := decorated[1:]
	end := strings.Index(body, "@@")
	if end == -1 {
		return decorated
	}
	qualified := body[:end]

	parts := strings.Split(qualified, "@")
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}

	for i, p := range parts {
		parts[i] = specialNameToReadable(p)
	}

	return strings.Join(parts, "::")
}

// specialNameToReadable maps the handful of MSVC special-member codes
// (constructor/destructor/assignment) to a readable token; anything else is
// returned unchanged.
func specialNameToReadable(part string) string {
	switch part {
	case "?0":
		return "{ctor}"
	case "?1":
		return "{dtor}"
	case "?4":
		return "operator="
	default:
		return part
	}
}

func stripCDecoration(name string) string {
	if strings.HasPrefix(name, "_") {
		name = name[1:]
	}
	if at := strings.IndexByte(name, '@'); at != -1 {
		name = name[:at]
	}
	return name
}
