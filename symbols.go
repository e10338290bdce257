package gosolve

import "sort"

// SymbolTable interns symbol names for one request. The parser shares one
// *Sym per name so every occurrence in a system refers to the same node.
type SymbolTable struct {
	byID  []*Sym
	index map[string]int
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{index: make(map[string]int)}
}

// Intern returns the symbol for name, creating it on first use.
func (t *SymbolTable) Intern(name string) *Sym {
	if id, ok := t.index[name]; ok {
		return t.byID[id]
	}
	s := S(name)
	t.index[name] = len(t.byID)
	t.byID = append(t.byID, s)
	return s
}

// Lookup returns the interned symbol for name without creating it.
func (t *SymbolTable) Lookup(name string) (*Sym, bool) {
	id, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.byID[id], true
}

// Len returns the number of interned symbols.
func (t *SymbolTable) Len() int { return len(t.byID) }

// Names returns every interned name in lexicographic order.
func (t *SymbolTable) Names() []string {
	names := make([]string, len(t.byID))
	for i, s := range t.byID {
		names[i] = s.name
	}
	sort.Strings(names)
	return names
}
