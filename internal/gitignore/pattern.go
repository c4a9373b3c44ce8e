package gitignore

import (
	"strings"
	"unicode/utf8"
)

// maxMatchSteps bounds the backtracking done for a single Match call.
// Patterns that exceed it are treated as non-matching.
const maxMatchSteps = 10000

type tokenKind uint8

const (
	tokLiteral tokenKind = iota
	tokStar
	tokDoubleStar
	tokQuestion
)

// token is one element of a compiled pattern.
type token struct {
	kind tokenKind
	lit  string // only for tokLiteral
}

// Pattern is a single compiled .gitignore line.
type Pattern struct {
	// Raw is the trimmed source line, including any leading "!".
	Raw string
	// Line is the 1-indexed line number in the source file (0 if compiled standalone).
	Line int
	// Negated is set for lines starting with "!".
	Negated bool
	// Anchored is set for lines starting with "/".
	Anchored bool

	tokens []token
}

// Compile compiles one .gitignore line.
// It returns nil for blank lines, comments, a bare "!" and any line that
// leaves nothing to match once its prefixes are stripped.
func Compile(line string) *Pattern {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	p := &Pattern{Raw: line}
	body := line

	if strings.HasPrefix(body, "!") {
		p.Negated = true
		body = strings.TrimSpace(body[1:])
		if body == "" {
			return nil
		}
	}

	if strings.HasPrefix(body, "/") {
		p.Anchored = true
		body = body[1:]
	}

	p.tokens = tokenize(body)
	if len(p.tokens) == 0 {
		return nil
	}
	return p
}

// tokenize splits a pattern body into tokens. "**" is recognized before "*",
// and "*" before "?", so no character is interpreted twice.
func tokenize(body string) []token {
	var tokens []token
	var lit strings.Builder

	flush := func() {
		if lit.Len() > 0 {
			tokens = append(tokens, token{kind: tokLiteral, lit: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '*':
			flush()
			if i+1 < len(body) && body[i+1] == '*' {
				tokens = append(tokens, token{kind: tokDoubleStar})
				i++
			} else {
				tokens = append(tokens, token{kind: tokStar})
			}
		case '?':
			flush()
			tokens = append(tokens, token{kind: tokQuestion})
		default:
			lit.WriteByte(body[i])
		}
	}
	flush()

	return tokens
}

// Match reports whether the pattern matches the slash-separated path s.
//
// Anchored patterns must start matching at the beginning of s; unanchored
// ones may also start right after any "/". Once the pattern is consumed the
// rest of s must be empty or start with "/".
func (p *Pattern) Match(s string) bool {
	if p == nil {
		return false
	}

	budget := maxMatchSteps
	if matchTokens(p.tokens, s, &budget) {
		return true
	}
	if p.Anchored {
		return false
	}

	for i := 0; i < len(s); i++ {
		if s[i] != '/' {
			continue
		}
		if matchTokens(p.tokens, s[i+1:], &budget) {
			return true
		}
		if budget <= 0 {
			return false
		}
	}
	return false
}

// matchTokens reports whether toks match a prefix of s that ends at the end of
// s or at a "/".
func matchTokens(toks []token, s string, budget *int) bool {
	*budget--
	if *budget < 0 {
		return false
	}

	if len(toks) == 0 {
		return s == "" || s[0] == '/'
	}

	t := toks[0]
	switch t.kind {
	case tokLiteral:
		if !strings.HasPrefix(s, t.lit) {
			return false
		}
		return matchTokens(toks[1:], s[len(t.lit):], budget)

	case tokQuestion:
		if s == "" || s[0] == '/' {
			return false
		}
		_, size := utf8.DecodeRuneInString(s)
		return matchTokens(toks[1:], s[size:], budget)

	case tokStar:
		for i := 0; ; i++ {
			if matchTokens(toks[1:], s[i:], budget) {
				return true
			}
			if i == len(s) || s[i] == '/' || *budget < 0 {
				return false
			}
		}

	case tokDoubleStar:
		for i := 0; i <= len(s); i++ {
			if matchTokens(toks[1:], s[i:], budget) {
				return true
			}
			if *budget < 0 {
				return false
			}
		}
		return false
	}

	return false
}

// String returns a debug representation of the pattern.
func (p *Pattern) String() string {
	if p == nil {
		return "<nil>"
	}
	var flags []string
	if p.Negated {
		flags = append(flags, "negated")
	}
	if p.Anchored {
		flags = append(flags, "anchored")
	}
	if len(flags) == 0 {
		return p.Raw
	}
	return p.Raw + " [" + strings.Join(flags, ",") + "]"
}

// ParsePatterns extracts the non-empty, non-comment lines of gitignore content.
func ParsePatterns(content string) []string {
	var patterns []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns
}

// compileContent compiles every line of a .gitignore file, in file order,
// dropping lines that do not compile.
func compileContent(content string) []*Pattern {
	lines := strings.Split(content, "\n")
	patterns := make([]*Pattern, 0, len(lines))
	for i, line := range lines {
		p := Compile(line)
		if p == nil {
			continue
		}
		p.Line = i + 1
		patterns = append(patterns, p)
	}
	return patterns
}
