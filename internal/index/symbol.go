// Package index builds a minimal project-wide symbol outline for embedding
// in the system prompt, grounded on the teacher's internal/treesitter
// package, scoped to Go source (the project's own language) rather than the
// teacher's multi-language ambition.
package index

// Kind classifies an extracted symbol.
type Kind int

const (
	KindPackage Kind = iota
	KindFunction
	KindMethod
	KindStruct
	KindInterface
	KindType
	KindConst
	KindVar
)

func (k Kind) String() string {
	switch k {
	case KindPackage:
		return "pkg"
	case KindFunction:
		return "func"
	case KindMethod:
		return "method"
	case KindStruct:
		return "struct"
	case KindInterface:
		return "interface"
	case KindType:
		return "type"
	case KindConst:
		return "const"
	case KindVar:
		return "var"
	default:
		return "unknown"
	}
}

// Symbol is one top-level declaration extracted from a source file.
type Symbol struct {
	Name      string
	Kind      Kind
	Receiver  string // method receiver type, empty for plain functions
	StartLine int
	EndLine   int
}
