package agent

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xonecas/symbagent/internal/index"
)

// LoadAgentInstructions searches for AGENTS.md files from the current
// working directory up to the filesystem root, then the user's config
// directory, and returns their concatenated contents with project-level
// instructions taking precedence. Grounded on the teacher's
// internal/llm/prompt.go LoadAgentInstructions, unchanged in shape.
func LoadAgentInstructions() string {
	var instructions []string

	cwd, err := os.Getwd()
	if err == nil {
		dir := cwd
		for {
			path := filepath.Join(dir, "AGENTS.md")
			if content := readFileIfExists(path); content != "" {
				instructions = append(instructions, fmt.Sprintf("Instructions from: %s\n%s", path, content))
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		path := filepath.Join(home, ".config", "symbagent", "AGENTS.md")
		if content := readFileIfExists(path); content != "" {
			instructions = append(instructions, fmt.Sprintf("Instructions from: %s\n%s", path, content))
		}
	}

	for i, j := 0, len(instructions)-1; i < j; i, j = i+1, j-1 {
		instructions[i], instructions[j] = instructions[j], instructions[i]
	}
	return strings.Join(instructions, "\n\n")
}

func readFileIfExists(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// BuildSystemPrompt assembles the dynamic system prompt the controller
// installs at the top of every turn: the base template, AGENTS.md
// instructions, and the project symbol index outline. Grounded on the
// teacher's internal/llm/prompt.go BuildSystemPrompt, adapted to this
// project's single Go-source index instead of the teacher's
// multi-language tree-sitter outline.
func BuildSystemPrompt(base string, idx *index.Index) string {
	var parts []string
	if instructions := LoadAgentInstructions(); instructions != "" {
		parts = append(parts, instructions)
	}
	if idx != nil {
		if outline := idx.Outline(); outline != "" {
			parts = append(parts, outline)
		}
	}
	parts = append(parts, base)
	return strings.Join(parts, "\n\n---\n\n")
}
