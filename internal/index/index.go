package index

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/xonecas/symbagent/internal/filesearch"
)

// MaxOutlineBytes caps the rendered outline so it doesn't dominate the
// system prompt's share of the context window.
const MaxOutlineBytes = 16 * 1024

// Index holds a project-wide symbol map, one entry per indexed file.
type Index struct {
	mu    sync.RWMutex
	files map[string][]Symbol
	root  string
}

// New creates an empty index rooted at dir.
func New(root string) *Index {
	return &Index{files: make(map[string][]Symbol), root: root}
}

// Build walks the project tree once, parsing every supported file.
// Non-fatal if root isn't a git repo or .gitignore is absent.
func (idx *Index) Build() error {
	matcher, err := filesearch.NewGitignoreMatcher(filepath.Join(idx.root, ".gitignore"))
	if err != nil {
		matcher, _ = filesearch.NewGitignoreMatcher("")
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	return filepath.WalkDir(idx.root, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		rel, err := filepath.Rel(idx.root, path)
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			if matcher.Matches(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if matcher.Matches(rel, false) || !Supported(path) {
			return nil
		}
		info, err := d.Info()
		if err != nil || info.Size() > 1<<20 {
			return nil
		}
		syms, err := ParseFile(path)
		if err != nil || len(syms) == 0 {
			return nil
		}
		idx.files[rel] = syms
		return nil
	})
}

// UpdateFile re-parses a single file after a write or edit tool call.
func (idx *Index) UpdateFile(absPath string) {
	rel, err := filepath.Rel(idx.root, absPath)
	if err != nil || !Supported(absPath) {
		return
	}
	syms, err := ParseFile(absPath)

	idx.mu.Lock()
	defer idx.mu.Unlock()
	if err != nil || len(syms) == 0 {
		delete(idx.files, rel)
		return
	}
	idx.files[rel] = syms
}

// Snapshot returns a defensive copy of the indexed file -> symbols map.
func (idx *Index) Snapshot() map[string][]Symbol {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	out := make(map[string][]Symbol, len(idx.files))
	for k, v := range idx.files {
		out[k] = v
	}
	return out
}

// Outline renders a compact per-file symbol listing for system-prompt
// injection, capped at MaxOutlineBytes.
func (idx *Index) Outline() string {
	snap := idx.Snapshot()
	if len(snap) == 0 {
		return ""
	}

	paths := make([]string, 0, len(snap))
	for p := range snap {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var b strings.Builder
	b.WriteString("# Project Symbols\n")
	for _, path := range paths {
		line := renderFile(snap[path])
		if line == "" {
			continue
		}
		entry := fmt.Sprintf("%s:\n%s", path, line)
		if b.Len()+len(entry) > MaxOutlineBytes {
			fmt.Fprintf(&b, "# ... truncated (%d files total)\n", len(paths))
			break
		}
		b.WriteString(entry)
	}
	return b.String()
}

// fileOutline groups one file's symbols by category for compact rendering.
type fileOutline struct {
	methods map[string][]string
	funcs   []string
	types   []string
	consts  []string
	vars    []string
}

func renderFile(syms []Symbol) string {
	g := fileOutline{methods: make(map[string][]string)}
	for _, s := range syms {
		switch s.Kind {
		case KindPackage:
		case KindFunction:
			g.funcs = append(g.funcs, s.Name)
		case KindMethod:
			recv := s.Receiver
			if recv == "" {
				recv = "?"
			}
			g.methods[recv] = append(g.methods[recv], s.Name)
		case KindStruct:
			g.types = append(g.types, s.Name+" (struct)")
		case KindInterface:
			g.types = append(g.types, s.Name+" (interface)")
		case KindType:
			g.types = append(g.types, s.Name)
		case KindConst:
			g.consts = append(g.consts, s.Name)
		case KindVar:
			g.vars = append(g.vars, s.Name)
		}
	}
	if len(g.funcs) == 0 && len(g.methods) == 0 && len(g.types) == 0 && len(g.consts) == 0 && len(g.vars) == 0 {
		return ""
	}

	var b strings.Builder
	if len(g.types) > 0 {
		fmt.Fprintf(&b, "  type: %s\n", strings.Join(g.types, ", "))
	}
	recvs := make([]string, 0, len(g.methods))
	for r := range g.methods {
		recvs = append(recvs, r)
	}
	sort.Strings(recvs)
	for _, r := range recvs {
		fmt.Fprintf(&b, "  %s: %s\n", r, strings.Join(g.methods[r], ", "))
	}
	if len(g.funcs) > 0 {
		fmt.Fprintf(&b, "  fn: %s\n", strings.Join(g.funcs, ", "))
	}
	if len(g.consts) > 0 {
		fmt.Fprintf(&b, "  const: %s\n", strings.Join(g.consts, ", "))
	}
	if len(g.vars) > 0 {
		fmt.Fprintf(&b, "  var: %s\n", strings.Join(g.vars, ", "))
	}
	return b.String()
}
