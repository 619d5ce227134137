package pipeline

import (
	"testing"

	"github.com/clawmancat/symgen/internal/coff"
	"github.com/clawmancat/symgen/internal/pluginfilter"
	"github.com/clawmancat/symgen/internal/rules"
)

type stubDemangler struct {
	out map[string]string
}

func (s stubDemangler) Demangle(decorated string) string {
	if v, ok := s.out[decorated]; ok {
		return v
	}
	return decorated
}

// rxReader returns a Reader whose section 1 carries READ|EXECUTE, so a
// function symbol placed there passes the built-in rx-functions filter.
func rxReader(machine uint16) *coff.Reader {
	return coff.NewForTesting(machine, []uint32{0, coff.SectionReadBit | coff.SectionExecuteBit})
}

func mustCompile(t *testing.T, include, exclude, forceInclude, forceExclude string) *rules.RuleSet {
	t.Helper()
	rs, err := rules.Compile(include, exclude, forceInclude, forceExclude)
	if err != nil {
		t.Fatalf("rules.Compile failed: %v", err)
	}
	return rs
}

func TestDecideNamespaceInclude(t *testing.T) {
	// scenario 1 from spec.md §8: ns::foo, y=ns, no other rules.
	demangler := stubDemangler{out: map[string]string{"?foo@ns@@YAHXZ": "ns::foo"}}
	sym := coff.Symbol{Name: "?foo@ns@@YAHXZ", Type: coff.SymTypeFunction, SectionNumber: 1}
	reader := rxReader(coff.MachineI386)

	rs := mustCompile(t, "ns", "", "", "")
	result := Decide(sym, reader, demangler, rs, nil)
	if !result.State.Kept() {
		t.Errorf("expected symbol to be kept, got state %v", result.State)
	}
}

func TestDecideNamespaceExcludeWins(t *testing.T) {
	// scenario 2: same input, n=ns added -> excluded.
	demangler := stubDemangler{out: map[string]string{"?foo@ns@@YAHXZ": "ns::foo"}}
	sym := coff.Symbol{Name: "?foo@ns@@YAHXZ", Type: coff.SymTypeFunction, SectionNumber: 1}
	reader := rxReader(coff.MachineI386)

	rs := mustCompile(t, "ns", "ns", "", "")
	result := Decide(sym, reader, demangler, rs, nil)
	if result.State.Kept() {
		t.Errorf("expected symbol to be excluded, got state %v", result.State)
	}
}

func TestDecideForceIncludeBeatsNamespaceExclude(t *testing.T) {
	// scenario 3: y=ns n=ns yo=ns::foo -> force-include wins.
	demangler := stubDemangler{out: map[string]string{"?foo@ns@@YAHXZ": "ns::foo"}}
	sym := coff.Symbol{Name: "?foo@ns@@YAHXZ", Type: coff.SymTypeFunction, SectionNumber: 1}
	reader := rxReader(coff.MachineI386)

	rs := mustCompile(t, "ns", "ns", "ns::foo", "")
	result := Decide(sym, reader, demangler, rs, nil)
	if result.State != ForceIncluded {
		t.Errorf("expected ForceIncluded, got %v", result.State)
	}
}

func TestDecideLastComponentExcludedFromNamespaceMatch(t *testing.T) {
	// scenario 4: single-component names never match namespace rules, since
	// the last component (the symbol's own name) is excluded from the walk.
	demangler := stubDemangler{out: map[string]string{"?a@@YAHXZ": "a"}}
	sym := coff.Symbol{Name: "?a@@YAHXZ", Type: coff.SymTypeFunction, SectionNumber: 1}
	reader := rxReader(coff.MachineI386)

	rs := mustCompile(t, ".*", "", "", "")
	result := Decide(sym, reader, demangler, rs, nil)
	if result.State.Kept() {
		t.Errorf("expected symbol not to be included via namespace rules, got %v", result.State)
	}

	rsForce := mustCompile(t, ".*", "", ".*", "")
	result = Decide(sym, reader, demangler, rsForce, nil)
	if !result.State.Kept() {
		t.Errorf("expected symbol to be force-included, got %v", result.State)
	}
}

func TestDecideBuiltinBatteryPrecedesUserRules(t *testing.T) {
	// scenario 5: a deleting destructor must be rejected even if a
	// force-include rule would otherwise match.
	demangler := stubDemangler{out: map[string]string{"??_GFoo@@UAEPAXI@Z": "Foo::`scalar deleting destructor'"}}
	sym := coff.Symbol{Name: "??_GFoo@@UAEPAXI@Z", Type: coff.SymTypeFunction, SectionNumber: 1}
	reader := rxReader(coff.MachineI386)

	rs := mustCompile(t, "", "", ".*", "")
	result := Decide(sym, reader, demangler, rs, nil)
	if result.State.Kept() {
		t.Errorf("expected destructor to be rejected regardless of force-include, got %v", result.State)
	}
	if result.RejectingFilter != "destructors" {
		t.Errorf("expected rejection reason %q, got %q", "destructors", result.RejectingFilter)
	}
}

func TestDecidePluginRejectBeatsInclude(t *testing.T) {
	demangler := stubDemangler{out: map[string]string{"?foo@ns@@YAHXZ": "ns::foo"}}
	sym := coff.Symbol{Name: "?foo@ns@@YAHXZ", Type: coff.SymTypeFunction, SectionNumber: 1}
	reader := rxReader(coff.MachineI386)

	rs := mustCompile(t, "ns", "", "", "")
	var reject pluginfilter.Filter = func(pluginfilter.SymbolView) bool { return false }

	result := Decide(sym, reader, demangler, rs, reject)
	if result.State.Kept() {
		t.Errorf("expected plugin rejection to override namespace include, got %v", result.State)
	}
}

func TestDecidePluginOnlyInvokedWhenOtherwiseIncluded(t *testing.T) {
	demangler := stubDemangler{out: map[string]string{"?foo@ns@@YAHXZ": "ns::foo"}}
	sym := coff.Symbol{Name: "?foo@ns@@YAHXZ", Type: coff.SymTypeFunction, SectionNumber: 1}
	reader := rxReader(coff.MachineI386)

	rs := mustCompile(t, "", "", "", "")
	called := false
	var track pluginfilter.Filter = func(pluginfilter.SymbolView) bool {
		called = true
		return true
	}

	result := Decide(sym, reader, demangler, rs, track)
	if result.State.Kept() {
		t.Errorf("expected symbol not to be included with no matching rule")
	}
	if called {
		t.Errorf("plugin should not be invoked for a symbol that wasn't otherwise included")
	}
}
