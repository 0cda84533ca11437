package title

import (
	"regexp"
	"strings"

	"github.com/mesh-intelligence/chatkeep/pkg/types"
)

// Limits for question titles taken from the user's text.
const (
	questionMaxWords  = 8
	questionHeadWords = 6
)

var startsWithHow = regexp.MustCompile(`(?i)^how\b`)

// FromExchange derives a title from the user's first message and the
// assistant's first reply. It is called once per chat, when the first
// assistant message is recorded.
func FromExchange(userText, assistantText string) string {
	userText = strings.TrimSpace(userText)
	if userText == "" {
		return types.DefaultChatTitle
	}

	words := union(keywords(userText), keywords(assistantText))
	category := Classify(userText, assistantText)

	t := compose(userText, category, words)

	t = strings.Join(strings.Fields(t), " ")
	if runeLen(t) > MaxLen {
		t = truncate(t, exchangeCut) + ellipsis
	}

	if runeLen(t) < 3 || strings.EqualFold(t, types.DefaultChatTitle) {
		t = firstWords(userText, 4)
		if runeLen(t) > fallbackLimit {
			t = truncate(t, fallbackCut) + ellipsis
		}
	}

	if t == "" {
		return types.DefaultChatTitle
	}
	return t
}

// compose picks the title shape for the exchange.
func compose(userText string, category Category, words []string) string {
	if strings.HasSuffix(userText, "?") {
		question := strings.Fields(strings.ReplaceAll(userText, "?", ""))
		if len(question) <= questionMaxWords {
			return userText
		}
		return head(question, questionHeadWords) + "?"
	}

	switch category {
	case CategoryCode, CategoryProject:
		return titleCase(matching(category, words), 3)
	case CategoryLearning:
		if startsWithHow.MatchString(userText) {
			return firstWords(userText, 6)
		}
		return "Understanding " + head(words, 3)
	case CategoryProblem:
		return "Solving " + titleCase(words, 3)
	case CategoryAnalysis:
		return titleCase(words, 3) + " Analysis"
	}

	if len(words) == 0 {
		return firstWords(userText, 5)
	}
	return titleCase(words, 4)
}
