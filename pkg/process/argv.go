package process

import "strings"

// ParseArgv turns the single configured "arguments" string into an ordered
// argv token list. No shell is invoked; this is a pure tokenizer matching
// a conservative subset of POSIX shell quoting:
//
//   - tokens separate on unescaped whitespace outside quotes
//   - double quotes toggle "in-quotes" mode; whitespace inside is literal
//   - backslash escapes '"' and '\'; any other escaped rune is preserved
//     literally as the backslash followed by that rune
//   - a trailing unmatched backslash is preserved literally
//   - empty tokens are never emitted, except that an open quote at
//     end-of-string yields the accumulated content as a final token
func ParseArgv(s string) []string {
	var (
		tokens  []string
		cur     strings.Builder
		inQuote bool
		haveCur bool
	)

	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]

		switch {
		case r == '\\':
			if i+1 >= len(runes) {
				// Trailing unmatched backslash: preserved literally.
				cur.WriteRune('\\')
				haveCur = true
				continue
			}
			next := runes[i+1]
			switch next {
			case '"', '\\':
				// Recognized escape: consume both, emit the escaped rune.
				cur.WriteRune(next)
				haveCur = true
				i++
			default:
				// Unrecognized escape: the backslash itself is preserved
				// literally and the following rune is left for the next
				// loop iteration to process under its normal rules (so a
				// following whitespace still acts as a separator).
				cur.WriteRune('\\')
				haveCur = true
			}

		case r == '"':
			inQuote = !inQuote
			haveCur = true

		case isSpace(r) && !inQuote:
			if haveCur {
				tokens = append(tokens, cur.String())
				cur.Reset()
				haveCur = false
			}

		default:
			cur.WriteRune(r)
			haveCur = true
		}
	}

	if haveCur {
		tokens = append(tokens, cur.String())
	}

	return tokens
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r':
		return true
	default:
		return false
	}
}

// EscapeArgv renders argv back into a single string that ParseArgv will
// read back as the same token list, used both as the canonical escaper
// for round-trip testing and for diagnostics.
func EscapeArgv(argv []string) string {
	parts := make([]string, 0, len(argv))
	for _, tok := range argv {
		parts = append(parts, escapeToken(tok))
	}
	return strings.Join(parts, " ")
}

func escapeToken(tok string) string {
	needsQuote := tok == ""
	for _, r := range tok {
		if isSpace(r) || r == '"' {
			needsQuote = true
			break
		}
	}

	var b strings.Builder
	if needsQuote {
		b.WriteByte('"')
	}
	for _, r := range tok {
		switch r {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	if needsQuote {
		b.WriteByte('"')
	}
	return b.String()
}
