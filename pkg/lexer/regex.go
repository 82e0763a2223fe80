package lexer

import (
	"regexp"
	"strings"
)

// keywordRegex finds keyword occurrences left to right without overlap. The two
// spellings share no prefix or suffix, so one alternation yields the same matches as
// scanning for each keyword on its own.
var keywordRegex = regexp.MustCompile(`duck|goose`)

// StripComment returns s truncated at the first comment marker
func StripComment(s string) string {
	if i := strings.IndexByte(s, Comment); i >= 0 {
		return s[:i]
	}

	return s
}

// MatchKeywords returns every keyword occurrence in s as [start, end) byte offsets
func MatchKeywords(s string) [][]int {
	return keywordRegex.FindAllStringIndex(s, -1)
}
