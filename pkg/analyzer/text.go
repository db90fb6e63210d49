package analyzer

import (
	"sort"
	"strings"
	"unicode"
)

// stopwords are ignored when counting terms.
var stopwords = map[string]struct{}{
	"a": {}, "about": {}, "after": {}, "all": {}, "also": {}, "an": {}, "and": {},
	"any": {}, "are": {}, "as": {}, "at": {}, "be": {}, "because": {}, "been": {},
	"before": {}, "being": {}, "between": {}, "both": {}, "but": {}, "by": {},
	"can": {}, "could": {}, "did": {}, "do": {}, "does": {}, "each": {}, "for": {},
	"from": {}, "had": {}, "has": {}, "have": {}, "how": {}, "i": {}, "if": {},
	"in": {}, "into": {}, "is": {}, "it": {}, "its": {}, "just": {}, "may": {},
	"more": {}, "most": {}, "must": {}, "no": {}, "not": {}, "of": {}, "on": {},
	"one": {}, "only": {}, "or": {}, "other": {}, "our": {}, "out": {}, "over": {},
	"same": {}, "see": {}, "should": {}, "so": {}, "some": {}, "such": {},
	"than": {}, "that": {}, "the": {}, "their": {}, "them": {}, "then": {},
	"there": {}, "these": {}, "they": {}, "this": {}, "those": {}, "through": {},
	"to": {}, "under": {}, "up": {}, "use": {}, "used": {}, "using": {}, "very": {},
	"via": {}, "was": {}, "we": {}, "were": {}, "what": {}, "when": {}, "where": {},
	"which": {}, "while": {}, "who": {}, "will": {}, "with": {}, "would": {},
	"you": {}, "your": {},
	// docs navigation noise
	"click": {}, "link": {}, "menu": {}, "page": {}, "next": {}, "previous": {},
	"edit": {}, "feedback": {}, "article": {},
}

// IsStopword reports whether word is ignored in term counts.
func IsStopword(word string) bool {
	_, ok := stopwords[strings.ToLower(word)]
	return ok
}

// words splits text into lowercase alphanumeric tokens.
func words(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\'' && r != '_'
	})
}

// WordFrequency counts non-stopword terms.
func WordFrequency(text string) map[string]int {
	frequencies := make(map[string]int)
	for _, w := range words(text) {
		w = strings.Trim(w, "'")
		if w == "" || IsStopword(w) {
			continue
		}
		frequencies[w]++
	}
	return frequencies
}

// TopTerms returns up to n terms by descending frequency, ties broken alphabetically.
func TopTerms(text string, n int) []string {
	frequencies := WordFrequency(text)

	type termCount struct {
		term  string
		count int
	}
	counts := make([]termCount, 0, len(frequencies))
	for k, v := range frequencies {
		counts = append(counts, termCount{k, v})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].count != counts[j].count {
			return counts[i].count > counts[j].count
		}
		return counts[i].term < counts[j].term
	})

	if len(counts) < n {
		n = len(counts)
	}
	top := make([]string, n)
	for i := 0; i < n; i++ {
		top[i] = counts[i].term
	}
	return top
}

// sentenceCount counts terminal punctuation runs, at least one for non-empty text.
func sentenceCount(text string) int {
	count := 0
	inTerminal := false
	for _, r := range text {
		switch r {
		case '.', '!', '?':
			if !inTerminal {
				count++
			}
			inTerminal = true
		default:
			inTerminal = false
		}
	}
	if count == 0 && strings.TrimSpace(text) != "" {
		return 1
	}
	return count
}

// syllables approximates English syllables by counting vowel groups.
func syllables(word string) int {
	count := 0
	prevVowel := false
	for _, r := range word {
		vowel := strings.ContainsRune("aeiouy", r)
		if vowel && !prevVowel {
			count++
		}
		prevVowel = vowel
	}
	if strings.HasSuffix(word, "e") && count > 1 {
		count--
	}
	if count == 0 {
		count = 1
	}
	return count
}
