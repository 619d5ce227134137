// Package pipeline combines the built-in filter battery, the four rule
// vectors, and the optional plugin into the single per-symbol decision
// function described by spec.md §4.5. It is a direct port of
// original_source/SymbolGenerator/translation_unit_processor.cpp's parse()
// state machine.
package pipeline

import (
	"github.com/clawmancat/symgen/internal/coff"
	"github.com/clawmancat/symgen/internal/demangle"
	"github.com/clawmancat/symgen/internal/filters"
	"github.com/clawmancat/symgen/internal/pluginfilter"
	"github.com/clawmancat/symgen/internal/rules"
	"github.com/clawmancat/symgen/internal/symtok"
)

// State is the closed five-variant decision state spec.md §3 calls for. It
// must stay a tagged enum rather than collapse into booleans, since §4.5's
// interaction rules depend on distinguishing NotIncluded from Included from
// Excluded before the final terminal collapse.
type State int

const (
	NotIncluded State = iota
	Included
	Excluded
	ForceIncluded
	ForceExcluded
)

// Kept reports whether a terminal state should be emitted.
func (s State) Kept() bool {
	return s == Included || s == ForceIncluded
}

// Result is the outcome of deciding one symbol.
type Result struct {
	State           State
	RejectingFilter string // non-empty only when a built-in filter rejected the symbol
}

// Decide runs spec.md §4.5 steps 2-6 for one symbol that was not found in
// the per-TU cache: demangle, tokenize, built-in battery, force rules,
// namespace rules, plugin.
func Decide(sym coff.Symbol, reader *coff.Reader, demangler demangle.Demangler, rs *rules.RuleSet, plugin pluginfilter.Filter) Result {
	demangled := demangler.Demangle(sym.Name)
	components := symtok.Tokenize(demangled)

	if reason := filters.ApplyAll(sym, reader); reason != "" {
		return Result{State: ForceExcluded, RejectingFilter: reason}
	}

	state := NotIncluded

	if rs.ForceInclude.MatchAny(demangled) {
		state = ForceIncluded
	} else if rs.ForceExclude.MatchAny(demangled) {
		state = ForceExcluded
	}

	if state == NotIncluded {
		state = applyNamespaceRules(components, rs)
	}

	if (state == Included || state == ForceIncluded) && plugin != nil {
		if !plugin(viewOf(sym, reader, demangled)) {
			state = ForceExcluded
		}
	}

	return Result{State: state}
}

// applyNamespaceRules walks every namespace component except the last (the
// symbol's own name), checking includes before excludes within each
// component, letting a later exclude override an earlier include.
func applyNamespaceRules(components []string, rs *rules.RuleSet) State {
	state := NotIncluded
	if len(components) == 0 {
		return state
	}

	for _, ns := range components[:len(components)-1] {
		if state == NotIncluded && !rs.Include.Empty() {
			if rs.Include.MatchAny(ns) {
				state = Included
			}
		}

		if (state == NotIncluded || state == Included) && !rs.Exclude.Empty() {
			if rs.Exclude.MatchAny(ns) {
				state = Excluded
			}
		}
	}

	return state
}

func viewOf(sym coff.Symbol, reader *coff.Reader, demangled string) pluginfilter.SymbolView {
	return pluginfilter.SymbolView{
		Decorated:    sym.Name,
		Demangled:    demangled,
		Type:         sym.Type,
		IsData:       sym.IsData(),
		IsFunction:   sym.IsFunction(),
		Machine:      reader.Machine,
		SectionFlags: reader.SectionFlagsFor(sym),
	}
}
