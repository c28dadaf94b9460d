package ffi

import (
	"fmt"
	"slices"
	"strings"
)

// IndexEntry is one binding module's contribution to the aggregated entry point.
type IndexEntry struct {
	ImportPath string
	Names      []string
}

// Collision records an exported name provided by more than one module.
type Collision struct {
	Name   string
	First  string // import path that exported the name first
	Second string
}

func (c Collision) String() string {
	return fmt.Sprintf("%s is exported by both %s and %s", c.Name, c.First, c.Second)
}

// Index accumulates entries for one generation run. Entries are only appended;
// the rendered file re-exports each module with a wildcard. A name exported by
// more than one module is pinned to its first module with an explicit export,
// which takes precedence over the ambiguous wildcards.
type Index struct {
	entries   []IndexEntry
	owners    map[string]string
	contested []string
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{owners: make(map[string]string)}
}

// Add appends an entry and reports names already exported by earlier entries.
func (x *Index) Add(importPath string, names []string) []Collision {
	var collisions []Collision
	for _, name := range names {
		if owner, ok := x.owners[name]; ok {
			if !slices.Contains(x.contested, name) {
				x.contested = append(x.contested, name)
			}
			collisions = append(collisions, Collision{Name: name, First: owner, Second: importPath})
			continue
		}
		x.owners[name] = importPath
	}

	x.entries = append(x.entries, IndexEntry{
		ImportPath: importPath,
		Names:      append([]string(nil), names...),
	})
	return collisions
}

// Entries returns the accumulated entries in insertion order.
func (x *Index) Entries() []IndexEntry {
	return append([]IndexEntry(nil), x.entries...)
}

// Len is the number of modules added.
func (x *Index) Len() int {
	return len(x.entries)
}

// Render produces the aggregated entry-point source.
func (x *Index) Render() []byte {
	var b strings.Builder
	b.WriteString("// Code generated by rustport. DO NOT EDIT.\n\n")
	for _, e := range x.entries {
		fmt.Fprintf(&b, "export * from %q;\n", e.ImportPath)
	}

	if len(x.contested) == 0 {
		return []byte(b.String())
	}

	// group contested names by owner, owners in order of first contest
	var owners []string
	pinned := make(map[string][]string)
	for _, name := range x.contested {
		owner := x.owners[name]
		if _, ok := pinned[owner]; !ok {
			owners = append(owners, owner)
		}
		pinned[owner] = append(pinned[owner], name)
	}
	b.WriteString("\n")
	for _, owner := range owners {
		fmt.Fprintf(&b, "export { %s } from %q;\n", strings.Join(pinned[owner], ", "), owner)
	}
	return []byte(b.String())
}
