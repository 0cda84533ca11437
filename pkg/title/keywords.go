package title

import (
	"regexp"
	"strings"
	"unicode"
)

// stopwords holds English function words that never make useful keywords.
var stopwords = toSet(
	// articles and determiners
	"a", "an", "the", "this", "that", "these", "those", "some", "any", "each",
	"every", "all", "both", "either", "neither", "such", "other", "another",
	// pronouns
	"i", "me", "my", "mine", "myself", "we", "us", "our", "ours", "you",
	"your", "yours", "he", "him", "his", "she", "her", "hers", "it", "its",
	"they", "them", "their", "theirs", "what", "which", "who", "whom",
	"whose", "there", "here",
	// auxiliary and modal verbs
	"am", "is", "are", "was", "were", "be", "been", "being", "have", "has",
	"had", "having", "do", "does", "did", "doing", "will", "would", "shall",
	"should", "can", "could", "may", "might", "must",
	// conjunctions
	"and", "or", "but", "nor", "so", "yet", "because", "although", "though",
	"while", "if", "then", "than", "whether", "unless",
	// prepositions and adverbs
	"of", "to", "in", "on", "at", "by", "for", "with", "about", "from", "into",
	"onto", "over", "under", "between", "through", "during", "before",
	"after", "above", "below", "up", "down", "out", "off", "again", "just",
	"very", "too", "also", "not", "no", "how", "why", "when", "where", "now",
	"only", "own", "same", "more", "most",
)

// maxKeywords bounds the keywords taken from a single text.
const maxKeywords = 5

// keywords lowercases text, strips punctuation, and returns the first
// maxKeywords tokens longer than two characters that are not stopwords.
func keywords(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || r == '_' {
			return unicode.ToLower(r)
		}
		return -1
	}, text)

	var out []string
	for _, tok := range strings.Fields(cleaned) {
		if runeLen(tok) <= 2 {
			continue
		}
		if _, stop := stopwords[tok]; stop {
			continue
		}
		out = append(out, tok)
		if len(out) == maxKeywords {
			break
		}
	}
	return out
}

// union merges keyword lists, keeping first-seen order and dropping
// duplicates.
func union(lists ...[]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, list := range lists {
		for _, k := range list {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, k)
		}
	}
	return out
}

// Category classifies an exchange by topic.
type Category string

// Categories in the order they are tested.
const (
	CategoryNone     Category = ""
	CategoryCode     Category = "code"
	CategoryProject  Category = "project"
	CategoryLearning Category = "learning"
	CategoryProblem  Category = "problem"
	CategoryAnalysis Category = "analysis"
)

type categoryRule struct {
	category Category
	pattern  *regexp.Regexp
}

// categoryRules is tested in order; the first match wins.
var categoryRules = []categoryRule{
	{CategoryCode, regexp.MustCompile(`(?i)\b(code|coding|program|function|debug|api|javascript|typescript|python|golang|java|rust|react|vue|angular|node|sql|database|algorithm|script|compile|syntax|frontend|backend|html|css|git|docker|kubernetes|deploy|software|developer|component|hook)`)},
	{CategoryProject, regexp.MustCompile(`(?i)\b(project|roadmap|plan|milestone|timeline|launch|startup|business|product|strategy|goal|career|portfolio|build)`)},
	{CategoryLearning, regexp.MustCompile(`(?i)\b(learn|study|understand|explain|tutorial|course|teach|beginner|concept|guide|lesson|practice)`)},
	{CategoryProblem, regexp.MustCompile(`(?i)\b(error|issue|problem|fix|bug|broken|fail|crash|trouble|wrong|solve|stuck|exception)`)},
	{CategoryAnalysis, regexp.MustCompile(`(?i)\b(analy[sz]|compare|comparison|evaluat|review|assess|metric|data|statistic|trend|versus)`)},
}

// Classify returns the first category whose pattern matches any of the
// texts, or CategoryNone.
func Classify(texts ...string) Category {
	for _, rule := range categoryRules {
		for _, t := range texts {
			if rule.pattern.MatchString(t) {
				return rule.category
			}
		}
	}
	return CategoryNone
}

// matching returns the keywords that match the category's pattern.
func matching(category Category, words []string) []string {
	for _, rule := range categoryRules {
		if rule.category != category {
			continue
		}
		var out []string
		for _, w := range words {
			if rule.pattern.MatchString(w) {
				out = append(out, w)
			}
		}
		return out
	}
	return nil
}

// titleCase joins the first n words, each with an upper-cased first letter.
func titleCase(words []string, n int) string {
	if len(words) > n {
		words = words[:n]
	}
	out := make([]string, len(words))
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		out[i] = string(r)
	}
	return strings.Join(out, " ")
}

// head returns at most n leading words joined by spaces.
func head(words []string, n int) string {
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
