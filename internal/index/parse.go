package index

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
)

// Supported reports whether path has a grammar this package can parse.
func Supported(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".go")
}

// ParseFile reads and parses a Go source file into its top-level symbols.
func ParseFile(path string) ([]Symbol, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSource(src)
}

// ParseSource parses Go source bytes into top-level symbols.
func ParseSource(src []byte) ([]Symbol, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(golang.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	return extractTop(tree.RootNode(), src), nil
}

func extractTop(root *sitter.Node, src []byte) []Symbol {
	var out []Symbol
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		switch child.Type() {
		case "package_clause":
			if nc := child.NamedChild(0); nc != nil && nc.Type() == "package_identifier" {
				out = append(out, Symbol{Name: text(nc, src), Kind: KindPackage, StartLine: line(child), EndLine: endLine(child)})
			}
		case "function_declaration":
			out = append(out, extractFunc(child, src))
		case "method_declaration":
			out = append(out, extractMethod(child, src))
		case "type_declaration":
			out = append(out, extractTypes(child, src)...)
		case "const_declaration":
			out = append(out, extractSpecs(child, src, "const_spec", KindConst)...)
		case "var_declaration":
			out = append(out, extractSpecs(child, src, "var_spec", KindVar)...)
		}
	}
	return out
}

func extractFunc(node *sitter.Node, src []byte) Symbol {
	sym := Symbol{Kind: KindFunction, StartLine: line(node), EndLine: endLine(node)}
	if n := node.ChildByFieldName("name"); n != nil {
		sym.Name = text(n, src)
	}
	return sym
}

func extractMethod(node *sitter.Node, src []byte) Symbol {
	sym := Symbol{Kind: KindMethod, StartLine: line(node), EndLine: endLine(node)}
	if n := node.ChildByFieldName("name"); n != nil {
		sym.Name = text(n, src)
	}
	if recv := node.ChildByFieldName("receiver"); recv != nil {
		sym.Receiver = receiverType(recv, src)
	}
	return sym
}

func receiverType(receiver *sitter.Node, src []byte) string {
	for i := 0; i < int(receiver.ChildCount()); i++ {
		child := receiver.Child(i)
		if child.Type() == "parameter_declaration" {
			if t := child.ChildByFieldName("type"); t != nil {
				return text(t, src)
			}
		}
	}
	return ""
}

func extractTypes(node *sitter.Node, src []byte) []Symbol {
	var out []Symbol
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() != "type_spec" && child.Type() != "type_alias" {
			continue
		}
		sym := Symbol{Kind: KindType, StartLine: line(child), EndLine: endLine(child)}
		if n := child.ChildByFieldName("name"); n != nil {
			sym.Name = text(n, src)
		}
		if t := child.ChildByFieldName("type"); t != nil {
			switch t.Type() {
			case "struct_type":
				sym.Kind = KindStruct
			case "interface_type":
				sym.Kind = KindInterface
			}
		}
		out = append(out, sym)
	}
	return out
}

func extractSpecs(node *sitter.Node, src []byte, specType string, kind Kind) []Symbol {
	var out []Symbol
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() != specType {
			continue
		}
		if n := child.ChildByFieldName("name"); n != nil {
			out = append(out, Symbol{Name: text(n, src), Kind: kind, StartLine: line(child), EndLine: endLine(child)})
		}
	}
	return out
}

func text(n *sitter.Node, src []byte) string { return n.Content(src) }
func line(n *sitter.Node) int                { return int(n.StartPoint().Row) + 1 }
func endLine(n *sitter.Node) int             { return int(n.EndPoint().Row) + 1 }
