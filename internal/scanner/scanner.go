// Package scanner is the recursive directory-scan collaborator (spec.md
// §1, "produces a list of paths"), grounded on
// original_source/SymbolGenerator/utility.hpp's find_all_of_type.
package scanner

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// FindObjectFiles walks root recursively and returns every file whose
// extension is .obj, in the order filepath.WalkDir visits them.
func FindObjectFiles(root string) ([]string, error) {
	var paths []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".obj") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return paths, nil
}
