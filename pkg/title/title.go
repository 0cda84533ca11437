// Package title derives short display titles for chats from message text
// without calling a model. Both heuristics are pure and total: they never
// fail and always return a non-empty title of at most MaxLen characters.
package title

import (
	"strings"
	"unicode/utf8"

	"github.com/mesh-intelligence/chatkeep/pkg/types"
)

// MaxLen is the maximum title length in characters.
const MaxLen = 50

const (
	ellipsis = "..."

	// Truncation points that leave room for the ellipsis.
	firstMessageCut = 40
	exchangeCut     = MaxLen - len(ellipsis)
	fallbackLimit   = 40
	fallbackCut     = fallbackLimit - len(ellipsis)

	headlineMaxWords = 10
)

// FromFirstMessage derives a title from the first message of a chat.
//
// A short question on the first line wins. Otherwise the first short line
// that reads like a headline (no trailing period, at most ten words) is
// used, then the first sentence of the first line, then its first five
// words.
func FromFirstMessage(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return types.DefaultChatTitle
	}

	lines := strings.Split(text, "\n")
	first := strings.TrimSpace(lines[0])

	if strings.HasSuffix(first, "?") && runeLen(first) <= MaxLen {
		return first
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if isHeadline(line) {
			return line
		}
	}

	if sentence := firstSentence(first); sentence != "" && runeLen(sentence) <= MaxLen {
		return sentence
	}

	words := firstWords(first, 5)
	if runeLen(words) > firstMessageCut {
		words = truncate(words, firstMessageCut) + ellipsis
	}
	if words == "" {
		return types.DefaultChatTitle
	}
	return words
}

// isHeadline reports whether a trimmed line can stand as a title on its own.
func isHeadline(line string) bool {
	if line == "" || runeLen(line) > MaxLen {
		return false
	}
	if strings.HasSuffix(line, ".") {
		return false
	}
	return len(strings.Fields(line)) <= headlineMaxWords
}

// firstSentence returns the text before the first sentence terminator. A
// line that opens with a terminator has an empty first sentence.
func firstSentence(line string) string {
	if i := strings.IndexAny(line, ".!?"); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSpace(line)
}

// firstWords joins the first n whitespace-separated words of s.
func firstWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// truncate cuts s to at most n characters without splitting a rune.
func truncate(s string, n int) string {
	if runeLen(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
