// Package rules compiles the four user-supplied ordered regex vectors
// (include / exclude / force-include / force-exclude) from their
// space-separated flag values, grounded on
// original_source/SymbolGenerator/rule_cache.hpp.
package rules

import (
	"fmt"
	"regexp"
	"strings"
)

// Set holds one rule category: its compiled full-match regexes and the raw
// source string the flag carried (retained verbatim for cache comparison,
// spec.md §4.6).
type Set struct {
	Raw     string
	Regexes []*regexp.Regexp
}

// RuleSet is the four compiled rule vectors (spec.md §4.3).
type RuleSet struct {
	Include      Set // "y"
	Exclude      Set // "n"
	ForceInclude Set // "yo"
	ForceExclude Set // "no"
}

// Compile parses the four space-delimited flag values into a RuleSet. An
// empty raw value compiles to an empty (non-nil) rule set, not an error.
func Compile(include, exclude, forceInclude, forceExclude string) (*RuleSet, error) {
	rs := &RuleSet{}
	var err error

	if rs.Include, err = compileOne(include); err != nil {
		return nil, fmt.Errorf("include rules (-y): %w", err)
	}
	if rs.Exclude, err = compileOne(exclude); err != nil {
		return nil, fmt.Errorf("exclude rules (-n): %w", err)
	}
	if rs.ForceInclude, err = compileOne(forceInclude); err != nil {
		return nil, fmt.Errorf("force-include rules (-yo): %w", err)
	}
	if rs.ForceExclude, err = compileOne(forceExclude); err != nil {
		return nil, fmt.Errorf("force-exclude rules (-no): %w", err)
	}

	return rs, nil
}

func compileOne(raw string) (Set, error) {
	set := Set{Raw: raw}
	for _, token := range strings.Fields(raw) {
		re, err := regexp.Compile(fullMatchPattern(token))
		if err != nil {
			return Set{}, fmt.Errorf("bad pattern %q: %w", token, err)
		}
		set.Regexes = append(set.Regexes, re)
	}
	return set, nil
}

// fullMatchPattern anchors a user pattern to whole-string match semantics
// (spec.md §4.5: "the regex must match the whole string").
func fullMatchPattern(pattern string) string {
	return "^(?:" + pattern + ")$"
}

// MatchAny reports whether any regex in the set fully matches str.
func (s Set) MatchAny(str string) bool {
	for _, re := range s.Regexes {
		if re.MatchString(str) {
			return true
		}
	}
	return false
}

// Empty reports whether the set carries no patterns.
func (s Set) Empty() bool {
	return len(s.Regexes) == 0
}
