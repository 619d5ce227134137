// Package tu processes one translation unit end to end: open the COFF
// object file, consult its sibling cache, run the decision pipeline on
// whatever the cache didn't already answer, and write the cache back if it
// changed. Grounded on
// original_source/SymbolGenerator/translation_unit_processor.{hpp,cpp}'s
// process() method.
package tu

import (
	"fmt"

	"github.com/clawmancat/symgen/internal/cache"
	"github.com/clawmancat/symgen/internal/coff"
	"github.com/clawmancat/symgen/internal/common"
	"github.com/clawmancat/symgen/internal/demangle"
	"github.com/clawmancat/symgen/internal/pipeline"
	"github.com/clawmancat/symgen/internal/pluginfilter"
	"github.com/clawmancat/symgen/internal/rules"
)

// Result is what one TU contributes to the global merge: its included
// symbols, in COFF symbol-table order.
type Result struct {
	ObjPath  string
	Included []string
}

// Processor owns everything scoped to a single worker's lifetime: per
// spec.md §5, the COFF reader, the per-TU cache map, and the included list
// are never shared across workers.
type Processor struct {
	Demangler demangle.Demangler
	Rules     *rules.RuleSet
	Plugin    pluginfilter.Filter
	Settings  cache.Settings
	UseCache  bool
	Log       *common.Logger
}

// Process runs one TU: opens objPath, loads its sibling .objcache (when
// caching is enabled), decides every symbol, and writes the cache back if
// anything changed.
func (p *Processor) Process(objPath string) (Result, error) {
	reader, err := coff.Open(objPath)
	if err != nil {
		return Result{}, fmt.Errorf("reading %s: %w", objPath, err)
	}

	cachePath := common.ReplaceFileExt(objPath, ".objcache")

	var c *cache.Cache
	if p.UseCache {
		loaded, incompatibleReason, err := cache.Load(cachePath, p.Settings)
		if err != nil {
			return Result{}, fmt.Errorf("loading cache %s: %w", cachePath, err)
		}
		if incompatibleReason != "" {
			p.Log.Warningf(fmt.Sprintf("cache %s incompatible with current settings (%s), reparsing from scratch", cachePath, incompatibleReason))
		}
		c = loaded
	} else {
		c = cache.Empty()
	}

	symbols := reader.Symbols()
	included := make([]string, 0, len(symbols))
	keptCount := 0

	for _, sym := range symbols {
		if wasIncluded, hit := c.Lookup(sym.Name); hit {
			if wasIncluded {
				included = append(included, sym.Name)
				keptCount++
			}
			continue
		}

		result := pipeline.Decide(sym, reader, p.Demangler, p.Rules, p.Plugin)
		keep := result.State.Kept()
		c.Record(sym.Name, keep)
		if keep {
			included = append(included, sym.Name)
			keptCount++
		}
	}

	p.Log.Verbosef(fmt.Sprintf("%s: %d symbols found, keeping %d/%d", objPath, len(symbols), keptCount, len(symbols)))

	if p.UseCache && c.Dirty() {
		if err := cache.Store(cachePath, p.Settings, c); err != nil {
			return Result{}, fmt.Errorf("writing cache %s: %w", cachePath, err)
		}
	}

	return Result{ObjPath: objPath, Included: included}, nil
}
