// Package normalize cleans raw OCR output with a fixed, ordered list of
// substitutions for recurring Tesseract misrecognitions in mixed
// Korean/English documents.
package normalize

import (
	"regexp"
	"strings"
)

// Rule is one pattern -> replacement substitution. Rules are applied in list
// order; later rules may rely on earlier rules' output.
type Rule struct {
	Pattern     *regexp.Regexp
	Replacement string
}

// DefaultRules is the substitution sequence for kor+eng OCR output. Matched
// spans are rewritten, everything else passes through untouched.
var DefaultRules = []Rule{
	// Whitespace first so every later pattern sees single spaces.
	{regexp.MustCompile(`\s+`), " "},

	// Page number labels left over from headers/footers.
	{regexp.MustCompile(`\b\d+\s*페이지`), ""},

	// Known misreads.
	{regexp.MustCompile(`APIz\s*\}\s*(\d+)`), "API $1"},
	{regexp.MustCompile(`(\d+)\s*원`), "${1}원"},
	{regexp.MustCompile(`낙짜\s*전부`), "날짜 정보"},
	{regexp.MustCompile(`날짜\s*전부`), "날짜 정보"},

	// Fused camel-case words from missing spaces. Runs before the name
	// fixes below so those can re-fuse what this splits.
	{regexp.MustCompile(`([A-Z])([a-z]+)([A-Z])`), "$1$2 $3"},
	{regexp.MustCompile(`([a-z])([A-Z])`), "$1 $2"},

	// Product and stack names that OCR tends to split or fuse.
	{regexp.MustCompile(`Spring\s*Boot`), "Spring Boot"},
	{regexp.MustCompile(`Java\s*Script`), "JavaScript"},
	{regexp.MustCompile(`Node\.\s*js`), "Node.js"},
	{regexp.MustCompile(`React\s*JS`), "React.js"},
	{regexp.MustCompile(`Python\s*Script`), "Python"},
	{regexp.MustCompile(`Docker\s*Container`), "Docker"},

	// Drop stray symbols outside the expected character set.
	{regexp.MustCompile("[^0-9A-Za-z_\\s.,!?;:\\-()\\[\\]{}가-힣@#$%^&*+=|~`<>/\\\\]"), ""},
}

// Normalizer applies an ordered substitution list followed by a Hangul
// spacing pass. It never fails; worst case the input comes back unchanged.
type Normalizer struct {
	rules []Rule
}

func New(rules []Rule) *Normalizer {
	return &Normalizer{rules: rules}
}

func Default() *Normalizer {
	return New(DefaultRules)
}

func (n *Normalizer) Apply(text string) string {
	for _, r := range n.rules {
		text = r.Pattern.ReplaceAllString(text, r.Replacement)
	}
	// Deletions above can leave doubled spaces.
	text = strings.Join(strings.Fields(text), " ")
	return collapseHangulRuns(text)
}

// collapseHangulRuns joins runs of three or more single Hangul syllables
// separated by single spaces ("열 정 에" -> "열정에"), a common OCR artifact
// on stylized Korean headings. Two-syllable pairs are left alone since they
// are usually legitimate words.
func collapseHangulRuns(text string) string {
	fields := strings.Split(text, " ")
	out := make([]string, 0, len(fields))
	run := make([]string, 0, 8)

	flush := func() {
		if len(run) >= 3 {
			out = append(out, strings.Join(run, ""))
		} else {
			out = append(out, run...)
		}
		run = run[:0]
	}

	for _, f := range fields {
		if isSingleHangul(f) {
			run = append(run, f)
			continue
		}
		if len(run) > 0 {
			flush()
		}
		out = append(out, f)
	}
	if len(run) > 0 {
		flush()
	}
	return strings.Join(out, " ")
}

func isSingleHangul(s string) bool {
	runes := []rune(s)
	return len(runes) == 1 && runes[0] >= '가' && runes[0] <= '힣'
}
