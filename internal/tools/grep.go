package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xonecas/symbagent/internal/filesearch"
)

// GrepArgs are the arguments to the Grep tool.
type GrepArgs struct {
	Pattern       string `json:"pattern"`
	Path          string `json:"path,omitempty"`
	CaseSensitive bool   `json:"case_sensitive,omitempty"`
	MaxResults    int    `json:"max_results,omitempty"`
}

const defaultGrepMaxResults = 200

// NewGrepTool builds the content-search tool, additive to spec.md §4.2's
// named six, grounded on the teacher's filesearch.Searcher with
// ContentSearch enabled.
func NewGrepTool(root string) Tool {
	return Tool{
		Name:        "Grep",
		Description: "Search file contents for a regular expression pattern, honoring .gitignore. Returns matching path:line:content triples.",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"pattern":        {"type": "string", "description": "Regular expression to search for"},
				"path":           {"type": "string", "description": "Subdirectory to search (default: whole working directory)"},
				"case_sensitive": {"type": "boolean", "description": "Match case-sensitively (default false)"},
				"max_results":    {"type": "integer", "description": "Maximum number of matches to return (default 200)"}
			},
			"required": ["pattern"]
		}`),
		Handle: newGrepHandler(root),
	}
}

func newGrepHandler(root string) Handler {
	return func(ctx context.Context, arguments json.RawMessage) (string, bool, error) {
		var args GrepArgs
		if err := json.Unmarshal(arguments, &args); err != nil {
			return errf("Invalid arguments: %v", err)
		}
		if args.Pattern == "" {
			return errf("pattern is required")
		}

		searchRoot := root
		if args.Path != "" {
			resolved, err := resolvePath(root, args.Path)
			if err != nil {
				return errf("%v", err)
			}
			searchRoot = resolved
		}

		searcher, err := filesearch.NewSearcher(searchRoot)
		if err != nil {
			return errf("Failed to initialize search: %v", err)
		}

		maxResults := args.MaxResults
		if maxResults <= 0 {
			maxResults = defaultGrepMaxResults
		}

		results, err := searcher.Search(ctx, filesearch.Options{
			Pattern:       args.Pattern,
			ContentSearch: true,
			MaxResults:    maxResults,
			CaseSensitive: args.CaseSensitive,
			RootDir:       searchRoot,
		})
		if err != nil {
			return errf("Search failed: %v", err)
		}
		if len(results) == 0 {
			return ok("No matches found.")
		}

		var b strings.Builder
		for _, r := range results {
			fmt.Fprintf(&b, "%s:%d:%s\n", r.Path, r.Line, r.Content)
		}
		return ok(b.String())
	}
}
