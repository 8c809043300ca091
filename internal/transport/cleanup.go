package transport

import "strings"

// eosMarkers are stripped from assistant text per spec.md §4.1 cleanup policy.
var eosMarkers = []string{"<|im_end|>", "<|eot_id|>", "</s>"}

// cleanText strips EOS markers, leading newlines, and trailing whitespace.
func cleanText(s string) string {
	for _, marker := range eosMarkers {
		s = strings.ReplaceAll(s, marker, "")
	}
	s = strings.TrimLeft(s, "\n")
	s = strings.TrimRight(s, " \t\n\r")
	return s
}
