package docfill

import (
	"strings"
)

type tokenKind int

const (
	tokenPlaceholder tokenKind = iota
	tokenOpenIf
	tokenOpenForeach
	tokenCloseIf
	tokenCloseForeach
)

// Placeholder prefixes and block closers.
const (
	PrefixIf      = "if:"
	PrefixForeach = "foreach:"
	PrefixMath    = "math:"
	PrefixList    = "list:"
	CloseIf       = "/if"
	CloseForeach  = "/foreach"
)

// token is one ${...} span of a text.
type token struct {
	kind  tokenKind
	body  string
	start int
	end   int
}

func classify(body string) tokenKind {
	trimmed := strings.TrimSpace(body)
	switch {
	case strings.HasPrefix(trimmed, PrefixIf):
		return tokenOpenIf
	case strings.HasPrefix(trimmed, PrefixForeach):
		return tokenOpenForeach
	case trimmed == CloseIf:
		return tokenCloseIf
	case trimmed == CloseForeach:
		return tokenCloseForeach
	}
	return tokenPlaceholder
}

// closerOf returns the close kind paired with an open kind.
func closerOf(kind tokenKind) tokenKind {
	if kind == tokenOpenIf {
		return tokenCloseIf
	}
	return tokenCloseForeach
}

// scanTokens finds every ${...} span in text. A span without a closing brace
// ends the scan.
func scanTokens(text string) []token {
	var tokens []token
	pos := 0
	for {
		open := strings.Index(text[pos:], "${")
		if open < 0 {
			return tokens
		}
		open += pos

		closeIdx := strings.IndexByte(text[open+2:], '}')
		if closeIdx < 0 {
			return tokens
		}
		closeIdx += open + 2

		body := text[open+2 : closeIdx]
		tokens = append(tokens, token{
			kind:  classify(body),
			body:  body,
			start: open,
			end:   closeIdx + 1,
		})
		pos = closeIdx + 1
	}
}

// matchBlock returns the index of the close token pairing with the open token
// at tokens[i], or -1. Open and close tokens of the same kind nest; other
// kinds are ignored.
func matchBlock(tokens []token, i int) int {
	open := tokens[i].kind
	closer := closerOf(open)

	depth := 1
	for j := i + 1; j < len(tokens); j++ {
		switch tokens[j].kind {
		case open:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return j
			}
		}
	}
	return -1
}

// smartQuotes maps the quotes Word's autocorrect inserts to ASCII.
var smartQuotes = strings.NewReplacer(
	"“", `"`, "”", `"`, "„", `"`, "‟", `"`,
	"‘", "'", "’", "'", "‚", "'", "‛", "'",
)

// ProcessText replaces every placeholder and block in text. Blocks are paired
// innermost-first; an unpaired open or close token is left as literal text, as
// is any placeholder no processor claims.
func (c *Chain) ProcessText(text string, data Data) string {
	if !strings.Contains(text, "${") {
		return text
	}

	tokens := scanTokens(text)
	if len(tokens) == 0 {
		return text
	}

	var sb strings.Builder
	pos := 0
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]

		switch tok.kind {
		case tokenOpenIf, tokenOpenForeach:
			j := matchBlock(tokens, i)
			if j < 0 {
				c.logger().WithField("token", text[tok.start:tok.end]).Debug("%v", NewParseError("block is never closed", tok.body, tok.start))
				continue
			}

			sb.WriteString(text[pos:tok.start])
			block := "${" + c.normalize(tok.body) + "}" + text[tok.end:tokens[j].end]
			if out, ok := c.Dispatch(block, data); ok {
				sb.WriteString(out)
			} else {
				sb.WriteString(text[tok.start:tokens[j].end])
			}
			pos = tokens[j].end
			i = j

		case tokenCloseIf, tokenCloseForeach:
			c.logger().WithField("token", text[tok.start:tok.end]).Debug("%v", NewParseError("close token without open block", tok.body, tok.start))

		default:
			sb.WriteString(text[pos:tok.start])
			if out, ok := c.Dispatch(c.normalize(tok.body), data); ok {
				sb.WriteString(out)
			} else {
				c.logger().WithField("placeholder", tok.body).Debug("no processor claimed placeholder")
				sb.WriteString(text[tok.start:tok.end])
			}
			pos = tok.end
		}
	}
	sb.WriteString(text[pos:])

	return sb.String()
}

func (c *Chain) normalize(body string) string {
	if !c.fixSmartQuotes {
		return body
	}
	return smartQuotes.Replace(body)
}

// Placeholders lists the bodies of every ${...} span in text, block markers
// included, in order of appearance.
func Placeholders(text string) []string {
	tokens := scanTokens(text)
	bodies := make([]string, len(tokens))
	for i, tok := range tokens {
		bodies[i] = tok.body
	}
	return bodies
}
