package tools

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/xonecas/symbagent/internal/filesearch"
)

// GlobArgs are the arguments to the FileSearch tool.
type GlobArgs struct {
	Pattern    string `json:"pattern"`
	Path       string `json:"path,omitempty"`
	MaxResults int    `json:"max_results,omitempty"`
}

const defaultGlobMaxResults = 200

// NewFileSearchTool builds the filename-search tool, additive to
// spec.md §4.2's named six, grounded on the teacher's filesearch.Searcher
// with ContentSearch disabled.
func NewFileSearchTool(root string) Tool {
	return Tool{
		Name:        "FileSearch",
		Description: "Search for files by name using a regular expression, honoring .gitignore. Returns matching paths.",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"pattern":     {"type": "string", "description": "Regular expression to match against file names and paths"},
				"path":        {"type": "string", "description": "Subdirectory to search (default: whole working directory)"},
				"max_results": {"type": "integer", "description": "Maximum number of paths to return (default 200)"}
			},
			"required": ["pattern"]
		}`),
		Handle: newFileSearchHandler(root),
	}
}

func newFileSearchHandler(root string) Handler {
	return func(ctx context.Context, arguments json.RawMessage) (string, bool, error) {
		var args GlobArgs
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
			maxResults = defaultGlobMaxResults
		}

		results, err := searcher.Search(ctx, filesearch.Options{
			Pattern:       args.Pattern,
			ContentSearch: false,
			MaxResults:    maxResults,
			RootDir:       searchRoot,
		})
		if err != nil {
			return errf("Search failed: %v", err)
		}
		if len(results) == 0 {
			return ok("No matching files found.")
		}

		var paths []string
		for _, r := range results {
			paths = append(paths, r.Path)
		}
		return ok(strings.Join(paths, "\n"))
	}
}
