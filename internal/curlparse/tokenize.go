package curlparse

import (
	"strings"
)

// Tokenize splits a shell command line into words. It understands single
// quotes, double quotes with backslash escapes, $'...' strings and
// backslash-newline continuations.
func Tokenize(cmd string) ([]string, error) {
	var (
		tokens  []string
		cur     strings.Builder
		started bool
	)
	flush := func() {
		if started {
			tokens = append(tokens, cur.String())
			cur.Reset()
			started = false
		}
	}

	rs := []rune(cmd)
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			flush()

		case r == '\\':
			if i+1 >= len(rs) {
				cur.WriteRune(r)
				started = true
				continue
			}
			next := rs[i+1]
			if next == '\n' {
				i++
				continue
			}
			if next == '\r' && i+2 < len(rs) && rs[i+2] == '\n' {
				i += 2
				continue
			}
			cur.WriteRune(next)
			started = true
			i++

		case r == '\'':
			end := indexRune(rs, i+1, '\'')
			if end < 0 {
				return nil, ErrUnterminatedQuote
			}
			cur.WriteString(string(rs[i+1 : end]))
			started = true
			i = end

		case r == '"':
			end, err := readDoubleQuoted(rs, i+1, &cur)
			if err != nil {
				return nil, err
			}
			started = true
			i = end

		case r == '$' && i+1 < len(rs) && rs[i+1] == '\'':
			end, err := readANSIC(rs, i+2, &cur)
			if err != nil {
				return nil, err
			}
			started = true
			i = end

		default:
			cur.WriteRune(r)
			started = true
		}
	}
	flush()
	return tokens, nil
}

func indexRune(rs []rune, from int, target rune) int {
	for j := from; j < len(rs); j++ {
		if rs[j] == target {
			return j
		}
	}
	return -1
}

// readDoubleQuoted reads until the closing quote and returns its index.
func readDoubleQuoted(rs []rune, from int, out *strings.Builder) (int, error) {
	for j := from; j < len(rs); j++ {
		switch rs[j] {
		case '"':
			return j, nil
		case '\\':
			if j+1 < len(rs) {
				switch rs[j+1] {
				case '"', '\\', '$', '`':
					out.WriteRune(rs[j+1])
					j++
					continue
				case '\n':
					j++
					continue
				}
			}
			out.WriteRune('\\')
		default:
			out.WriteRune(rs[j])
		}
	}
	return 0, ErrUnterminatedQuote
}

// readANSIC reads a $'...' body and returns the index of the closing quote.
func readANSIC(rs []rune, from int, out *strings.Builder) (int, error) {
	for j := from; j < len(rs); j++ {
		switch rs[j] {
		case '\'':
			return j, nil
		case '\\':
			if j+1 >= len(rs) {
				return 0, ErrUnterminatedQuote
			}
			j++
			switch rs[j] {
			case 'n':
				out.WriteRune('\n')
			case 't':
				out.WriteRune('\t')
			case 'r':
				out.WriteRune('\r')
			case '\\', '\'', '"':
				out.WriteRune(rs[j])
			default:
				out.WriteRune('\\')
				out.WriteRune(rs[j])
			}
		default:
			out.WriteRune(rs[j])
		}
	}
	return 0, ErrUnterminatedQuote
}
