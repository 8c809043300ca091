// Package tools implements the static tool catalog: each tool exposes
// {name, description, JSON schema, execute(args) -> Result} per spec.md
// §4.2, grounded on the teacher's internal/mcptools handlers.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/x/ansi"
	"github.com/xonecas/symbagent/internal/transport"
)

// maxDisplayChars is the output-truncation ceiling named in spec.md §4.2.
const maxDisplayChars = 10000

// Handler executes one tool call and returns its stringified result text
// plus whether the result represents an error.
type Handler func(ctx context.Context, arguments json.RawMessage) (text string, isError bool, err error)

// Tool is one catalog entry.
type Tool struct {
	Name        string
	Description string
	Parameters  json.RawMessage
	Handle      Handler
}

// Catalog dispatches tool calls by name and enforces the shared
// output-truncation contract across every registered tool.
type Catalog struct {
	tools map[string]Tool
	order []string
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{tools: make(map[string]Tool)}
}

// Register adds a tool to the catalog.
func (c *Catalog) Register(t Tool) {
	if _, exists := c.tools[t.Name]; !exists {
		c.order = append(c.order, t.Name)
	}
	c.tools[t.Name] = t
}

// Specs returns the catalog's wire-facing tool definitions in registration
// order, suitable for transport.Opts.Tools.
func (c *Catalog) Specs() []transport.Tool {
	out := make([]transport.Tool, 0, len(c.order))
	for _, name := range c.order {
		t := c.tools[name]
		out = append(out, transport.Tool{Name: t.Name, Description: t.Description, Parameters: t.Parameters})
	}
	return out
}

// Execute implements toolloop.Executor: dispatch by name, then apply the
// shared display-width-aware truncation to the returned text.
func (c *Catalog) Execute(ctx context.Context, name string, arguments json.RawMessage) (string, bool, error) {
	t, ok := c.tools[name]
	if !ok {
		return "", true, fmt.Errorf("tool.not_found: unknown tool %q", name)
	}
	text, isError, err := t.Handle(ctx, arguments)
	if err != nil {
		return "", true, err
	}
	return truncateDisplay(text), isError, nil
}

// truncateDisplay enforces the 10,000 display-character ceiling using a
// width-aware cut so multi-byte runes are never split mid-sequence.
func truncateDisplay(s string) string {
	if ansi.StringWidth(s) <= maxDisplayChars {
		return s
	}
	truncated := ansi.Truncate(s, maxDisplayChars, "")
	return fmt.Sprintf("%s\n\n[truncated: true, total_bytes: %d]", truncated, len(s))
}
