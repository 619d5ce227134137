// Package manifest emits the final .def file (spec.md §4.8): a LIBRARY
// header, an EXPORTS section, and the deduplicated symbol set with
// optional dense ordinals. Grounded on
// original_source/SymbolGenerator/main.cpp's output-stream loop.
package manifest

import (
	"bufio"
	"fmt"
	"os"
	"sort"

	"github.com/clawmancat/symgen/internal/common"
)

// MaxOrdinal is the ordinal-space ceiling named in spec.md §3 and §4.8:
// emission must abort before reaching it.
const MaxOrdinal = 65535

// Write renders libraryName, the deduplicated symbol set, and (optionally)
// dense ordinals to outputPath. Symbols are sorted lexicographically by
// decorated name before ordinal assignment, per SPEC_FULL.md's resolution
// of the emission-order Open Question, so output is reproducible across
// runs.
func Write(outputPath, libraryName string, symbols map[string]struct{}, emitOrdinals bool) error {
	if len(symbols) >= MaxOrdinal {
		return fmt.Errorf("too many exported symbols (%d >= %d): add filters to reduce the export set", len(symbols), MaxOrdinal)
	}

	sorted := make([]string, 0, len(symbols))
	for name := range symbols {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)

	if err := common.MkdirForFile(outputPath); err != nil {
		return err
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)

	fmt.Fprintf(w, "LIBRARY %s\n", libraryName)
	w.WriteString("EXPORTS\n")

	for i, name := range sorted {
		if emitOrdinals {
			fmt.Fprintf(w, "  %s @%d NONAME\n", name, i+1)
		} else {
			fmt.Fprintf(w, "  %s\n", name)
		}
	}

	return w.Flush()
}
