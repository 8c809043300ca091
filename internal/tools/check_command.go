package tools

import (
	"regexp"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// destructivePattern pairs a compiled regex with the fixed reason category
// spec.md §4.2 names for it.
type destructivePattern struct {
	reason  string
	pattern *regexp.Regexp
}

// destructivePatterns is the fixed corpus of destructive-command checks,
// evaluated over a whitespace-normalized, lowercased rendering of the
// command. Grounded on internal/shell/block.go's BannedCommands list but
// scoped to the reason taxonomy spec.md §4.2 names exactly.
var destructivePatterns = []destructivePattern{
	{"recursive delete", regexp.MustCompile(`\brm\s+(-\w*r\w*|--recursive)\b`)},
	{"filesystem format", regexp.MustCompile(`\bmkfs(\.\w+)?\b`)},
	{"raw disk write", regexp.MustCompile(`\bdd\s+.*\bof=/dev/`)},
	{"device write", regexp.MustCompile(`>\s*/dev/sd[a-z]`)},
	{"device write", regexp.MustCompile(`\bshred\b.*\s/dev/`)},
	{"git force push", regexp.MustCompile(`\bgit\s+push\b.*(--force\b|-f\b)`)},
	{"git hard reset", regexp.MustCompile(`\bgit\s+reset\b.*--hard\b`)},
	{"git force clean", regexp.MustCompile(`\bgit\s+clean\b.*(-\w*f\w*|--force)`)},
	{"fork bomb", regexp.MustCompile(`:\(\)\s*\{\s*:\s*\|\s*:\s*&\s*\}\s*;?\s*:`)},
	{"system shutdown/reboot", regexp.MustCompile(`\b(shutdown|reboot|poweroff|halt)\b`)},
}

// CheckCommand returns the destructive-pattern reason for command, or ""
// if none apply. Each pattern is tried against the words the execution
// parser (mvdan.cc/sh/v3/syntax) sees and against the raw command,
// whitespace-normalized and lowercased, since operators such as
// redirections and function definitions are not words.
func CheckCommand(command string) string {
	normalized := normalizeCommand(command)
	verbatim := strings.ToLower(strings.Join(strings.Fields(command), " "))
	for _, p := range destructivePatterns {
		if p.pattern.MatchString(normalized) || p.pattern.MatchString(verbatim) {
			return p.reason
		}
	}
	return ""
}

// normalizeCommand tokenizes command with the shell parser, then rejoins
// the literal words with single spaces, lowercased — "whitespace-
// normalized, lowercased" per spec.md §4.2.
func normalizeCommand(command string) string {
	var words []string
	parser := syntax.NewParser()
	file, err := parser.Parse(strings.NewReader(command), "")
	if err != nil {
		// Unparseable input still gets checked verbatim rather than
		// silently passing.
		return strings.ToLower(strings.Join(strings.Fields(command), " "))
	}

	syntax.Walk(file, func(node syntax.Node) bool {
		if lit, isLit := node.(*syntax.Lit); isLit {
			words = append(words, lit.Value)
		}
		return true
	})

	return strings.ToLower(strings.Join(words, " "))
}
