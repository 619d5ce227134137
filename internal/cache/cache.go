// Package cache implements the per-TU on-disk decision cache codec
// (spec.md §4.6): textual load/store plus the settings-compatibility
// predicate that decides whether a loaded cache may be reused. Grounded on
// original_source/SymbolGenerator/translation_unit_processor.cpp's
// load_cache/write_cache and utility.hpp's check_settings_compatible, with
// the manual line-scanning style mirrored from the teacher's own
// internal/client/dep-files.go.
package cache

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/clawmancat/symgen/internal/common"
)

// FormatVersion is written as the cache file's #VERSION line. Per spec.md
// §9's Open Question ("the cache format lacks a version marker in the
// earlier revision... implementations should include a version line and
// reject mismatched versions as malformed"), this reimplementation always
// writes and checks one.
const FormatVersion = "1"

// Recognized setting keys, corresponding to the CLI flags that influence
// per-symbol decisions.
var SettingKeys = []string{"y", "n", "yo", "no", "fn"}

// Settings is the subset of configuration values the cache validity check
// depends on: one entry per recognized key that was actually set.
type Settings map[string]string

// Cache is one TU's loaded (possibly empty) decision map.
type Cache struct {
	Symbols map[string]bool // decorated name -> was included
	dirty   bool
}

// Empty returns a fresh, empty cache, used when no cache file exists or an
// existing one is incompatible.
func Empty() *Cache {
	return &Cache{Symbols: make(map[string]bool)}
}

// Lookup returns the cached decision for name, if any.
func (c *Cache) Lookup(name string) (included bool, ok bool) {
	included, ok = c.Symbols[name]
	return
}

// Record stores a decision and marks the cache dirty if it's new.
func (c *Cache) Record(name string, included bool) {
	if _, exists := c.Symbols[name]; !exists {
		c.dirty = true
	}
	c.Symbols[name] = included
}

// Dirty reports whether any symbol was recorded that wasn't already cached.
func (c *Cache) Dirty() bool {
	return c.dirty
}

// Load reads path (a sibling .objcache file). A missing file is not an
// error: it returns an empty cache. An incompatible cache (settings
// mismatch) is logged by the caller via the returned incompatibility reason
// and its symbol map is discarded; a malformed file is a hard error.
func Load(path string, current Settings) (c *Cache, incompatibleReason string, err error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return Empty(), "", nil
	}
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	const (
		sectionNone = iota
		sectionVersion
		sectionSettings
		sectionSymbols
	)

	section := sectionNone
	cachedSettings := Settings{}
	symbols := make(map[string]bool)
	sawVersionLine := false

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		switch {
		case line == "#VERSION":
			section = sectionVersion
			continue
		case line == "#SETTINGS":
			section = sectionSettings
			continue
		case line == "#SYMBOLS":
			section = sectionSymbols
			continue
		case strings.HasPrefix(line, "#"):
			return nil, "", fmt.Errorf("cache file %s: unknown section marker %q", path, line)
		}

		switch section {
		case sectionVersion:
			sawVersionLine = true
			if line != FormatVersion {
				return nil, "", fmt.Errorf("cache file %s: unsupported version %q (expected %q)", path, line, FormatVersion)
			}
		case sectionSettings:
			k, v, ok := splitKV(line)
			if !ok {
				return nil, "", fmt.Errorf("cache file %s: malformed settings line %q", path, line)
			}
			cachedSettings[k] = v
		case sectionSymbols:
			k, v, ok := splitKV(line)
			if !ok {
				return nil, "", fmt.Errorf("cache file %s: malformed symbol line %q", path, line)
			}
			symbols[k] = v == "T"
		default:
			return nil, "", fmt.Errorf("cache file %s: data before any section marker", path)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, "", err
	}
	if !sawVersionLine {
		return nil, "", fmt.Errorf("cache file %s: missing #VERSION section", path)
	}

	if reason := Compatible(cachedSettings, current); reason != "" {
		return Empty(), reason, nil
	}

	return &Cache{Symbols: symbols}, "", nil
}

// Store writes the cache to path atomically, recording current's settings
// verbatim.
func Store(path string, current Settings, c *Cache) error {
	var b strings.Builder

	b.WriteString("#VERSION\n")
	b.WriteString(FormatVersion)
	b.WriteString("\n")

	b.WriteString("#SETTINGS\n")
	for _, key := range SettingKeys {
		if v, ok := current[key]; ok {
			fmt.Fprintf(&b, "%s=%s\n", key, v)
		}
	}

	b.WriteString("#SYMBOLS\n")
	names := make([]string, 0, len(c.Symbols))
	for name := range c.Symbols {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		flag := "F"
		if c.Symbols[name] {
			flag = "T"
		}
		fmt.Fprintf(&b, "%s=%s\n", name, flag)
	}

	if err := common.MkdirForFile(path); err != nil {
		return err
	}
	return common.AtomicWriteFile(path, []byte(b.String()))
}

// Compatible implements spec.md §4.6's compatibility predicate: the set of
// keys must match exactly, and for each key the whitespace-separated token
// multisets must be equal (so reordering a rule list doesn't invalidate the
// cache). It returns "" if compatible, or a human-readable reason if not.
func Compatible(cached, current Settings) string {
	for key := range cached {
		if _, ok := current[key]; !ok {
			return fmt.Sprintf("setting %s is set in cache but not present currently", key)
		}
	}
	for key := range current {
		if _, ok := cached[key]; !ok {
			return fmt.Sprintf("setting %s is set currently but not present in cache", key)
		}
	}

	for key, cachedValue := range cached {
		currentValue := current[key]
		if !sameTokenMultiset(cachedValue, currentValue) {
			return fmt.Sprintf("setting %s has a different value in cache (%s) than its current value (%s)", key, cachedValue, currentValue)
		}
	}

	return ""
}

func sameTokenMultiset(a, b string) bool {
	ta := strings.Fields(a)
	tb := strings.Fields(b)
	if len(ta) != len(tb) {
		return false
	}
	sort.Strings(ta)
	sort.Strings(tb)
	for i := range ta {
		if ta[i] != tb[i] {
			return false
		}
	}
	return true
}

func splitKV(line string) (k, v string, ok bool) {
	idx := strings.IndexByte(line, '=')
	if idx == -1 {
		return "", "", false
	}
	return line[:idx], line[idx+1:], true
}
