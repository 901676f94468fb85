// Package textindex implements the substring index used for username and
// item-name search. The index is rebuilt wholesale on any mutation to the
// underlying set (§4.2) — at the scale this engine targets (a handful of
// users and items at a single kiosk) a full rebuild plus a linear
// substring scan is cheap and, unlike a trigram or fuzzy index, matches
// the literal "contains as substring" contract exactly.
package textindex

import "strings"

// Element is one (id, searchable text) pair handed to Build.
type Element struct {
	ID   uint64
	Text string
}

// Index answers substring queries over a fixed snapshot of elements.
type Index struct {
	caseSensitive bool
	elements      []Element
}

// Build constructs an index over elements. When caseSensitive is false,
// Search matches regardless of case.
func Build(elements []Element, caseSensitive bool) *Index {
	cp := make([]Element, len(elements))
	copy(cp, elements)
	return &Index{caseSensitive: caseSensitive, elements: cp}
}

// Search returns every id whose text contains query as a substring,
// honoring the case-sensitivity policy fixed at Build time. An empty
// query returns every element id. Order is stable across identical
// inputs (insertion order of the Build call) but otherwise unspecified.
func (idx *Index) Search(query string) []uint64 {
	if idx == nil {
		return nil
	}
	needle := query
	if !idx.caseSensitive {
		needle = strings.ToLower(needle)
	}
	out := make([]uint64, 0, len(idx.elements))
	for _, el := range idx.elements {
		if needle == "" {
			out = append(out, el.ID)
			continue
		}
		haystack := el.Text
		if !idx.caseSensitive {
			haystack = strings.ToLower(haystack)
		}
		if strings.Contains(haystack, needle) {
			out = append(out, el.ID)
		}
	}
	return out
}
