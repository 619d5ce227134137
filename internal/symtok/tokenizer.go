// Package symtok implements the symbol-name tokenizer (spec.md §4.1):
// splitting a demangled C++ name into namespace-qualifier components while
// respecting template angle-bracket nesting and backtick-quoted
// "special name" regions, so that rule matching never descends into
// `foo<bar::baz>` or `` `dynamic initializer for 'X::Y'' `` constructs.
package symtok

import "strings"

// Tokenize splits demangled on "::" outside any template nesting and
// outside any backtick-quoted special-name region, returning the ordered
// namespace components (last element is the symbol's own name).
func Tokenize(demangled string) []string {
	if demangled == "" {
		return nil
	}

	var components []string
	var current strings.Builder

	templateDepth := 0
	quoteDepth := 0

	runes := []rune(demangled)
	n := len(runes)

	for i := 0; i < n; i++ {
		c := runes[i]

		switch {
		case quoteDepth == 0 && c == '<':
			templateDepth++
			current.WriteRune(c)
			continue
		case quoteDepth == 0 && c == '>':
			if templateDepth > 0 {
				templateDepth--
			}
			current.WriteRune(c)
			continue
		case templateDepth == 0 && c == '`':
			quoteDepth++
			current.WriteRune(c)
			continue
		case templateDepth == 0 && c == '\'':
			current.WriteRune(c)
			if quoteDepth > 0 {
				if isEndOfQuote(runes, i+1) {
					quoteDepth--
				} else {
					quoteDepth++
				}
			}
			continue
		}

		if templateDepth == 0 && quoteDepth == 0 && c == ':' && i+1 < n && runes[i+1] == ':' {
			components = append(components, current.String())
			current.Reset()
			i++ // skip second ':'
			continue
		}

		current.WriteRune(c)
	}

	components = append(components, current.String())
	return components
}

// isEndOfQuote reports whether the apostrophe at position pos-1 closes the
// current quoted region: it does when followed by "::", another "'", or
// end-of-string; any other following character means this apostrophe begins
// a new nested quoted region instead.
func isEndOfQuote(runes []rune, pos int) bool {
	if pos >= len(runes) {
		return true
	}
	if runes[pos] == '\'' {
		return true
	}
	if pos+1 < len(runes) && runes[pos] == ':' && runes[pos+1] == ':' {
		return true
	}
	return false
}
