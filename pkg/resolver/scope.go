package resolver

import "fmt"

// SymbolKind classifies a declaration.
type SymbolKind int

const (
	SymbolVar SymbolKind = iota
	SymbolConst
	SymbolFunction
	SymbolParameter
	SymbolNative
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolVar:
		return "variable"
	case SymbolConst:
		return "constant"
	case SymbolFunction:
		return "function"
	case SymbolParameter:
		return "parameter"
	case SymbolNative:
		return "native function"
	default:
		return fmt.Sprintf("symbol_kind_%d", int(k))
	}
}

func (k SymbolKind) callable() bool {
	return k == SymbolFunction || k == SymbolNative
}

type symbol struct {
	name        string
	slot        int
	kind        SymbolKind
	pure        bool
	defined     bool
	initialized bool
	assigned    int
	accessed    int
	line        int
}

// scope is one lexical level. A scope opened inside a pure scope is pure.
type scope struct {
	symbols map[string]*symbol
	order   []*symbol
	pure    bool
}

func newScope(pure bool) *scope {
	return &scope{symbols: make(map[string]*symbol), pure: pure}
}

func (s *scope) lookup(name string) (*symbol, bool) {
	sym, ok := s.symbols[name]
	return sym, ok
}

func (s *scope) add(sym *symbol) {
	s.symbols[sym.name] = sym
	s.order = append(s.order, sym)
}

// truncate drops every symbol added after the first n.
func (s *scope) truncate(n int) {
	for _, sym := range s.order[n:] {
		if current, ok := s.symbols[sym.name]; ok && current == sym {
			delete(s.symbols, sym.name)
		}
	}
	s.order = s.order[:n]
}
