package newick

import (
	"fmt"
	"strconv"
	"strings"
)

// SyntaxError describes the first violation found in a Newick string.
type SyntaxError struct {
	// Offset is the byte offset of the offending character.
	Offset int

	// Reason is a short human-readable description.
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("newick: %s at offset %d", e.Reason, e.Offset)
}

// IsValid reports whether text is a well-formed Newick tree description.
func IsValid(text string) bool {
	return Validate(text) == nil
}

// Validate returns nil if text is a well-formed Newick tree description,
// or a *SyntaxError locating the first problem.
func Validate(text string) error {
	var (
		depth     int
		canOpen   = true // '(' allowed: at start, after '(' or ','
		labelled  bool   // current node already has a label
		hasLength bool   // current node already has a branch length
		inLabel   bool   // previous byte was part of an unquoted label
	)

	n := len(text)
	for i := 0; i < n; i++ {
		c := text[i]
		wasLabel := inLabel
		inLabel = false

		switch c {
		case ' ', '\t', '\n', '\r':
			continue

		case '[':
			end := strings.IndexByte(text[i+1:], ']')
			if end < 0 {
				return syntaxErr(i, "unterminated comment")
			}
			i += end + 1

		case ']':
			return syntaxErr(i, "unexpected ']'")

		case '\'':
			if labelled || hasLength {
				return syntaxErr(i, "unexpected quoted label")
			}
			start := i
			closed := false
			for i++; i < n; i++ {
				if text[i] != '\'' {
					continue
				}
				if i+1 < n && text[i+1] == '\'' {
					i++
					continue
				}
				closed = true
				break
			}
			if !closed {
				return syntaxErr(start, "unterminated quoted label")
			}
			labelled = true
			canOpen = false

		case '(':
			if !canOpen {
				return syntaxErr(i, "unexpected '('")
			}
			depth++
			labelled, hasLength = false, false

		case ',':
			if depth == 0 {
				return syntaxErr(i, "',' outside parentheses")
			}
			labelled, hasLength = false, false
			canOpen = true

		case ')':
			if depth == 0 {
				return syntaxErr(i, "unbalanced ')'")
			}
			depth--
			labelled, hasLength = false, false
			canOpen = false

		case ':':
			if hasLength {
				return syntaxErr(i, "duplicate branch length")
			}
			end, err := scanLength(text, i+1)
			if err != nil {
				return err
			}
			hasLength = true
			canOpen = false
			i = end - 1

		case ';':
			if depth != 0 {
				return syntaxErr(i, "unbalanced '('")
			}
			for j := i + 1; j < n; j++ {
				if !isBlank(text[j]) {
					return syntaxErr(j, "unexpected content after ';'")
				}
			}
			return nil

		default:
			if c < 0x20 || c == 0x7f {
				return syntaxErr(i, "control character")
			}
			if hasLength {
				return syntaxErr(i, "label after branch length")
			}
			if labelled && !wasLabel {
				return syntaxErr(i, "unexpected label")
			}
			labelled = true
			inLabel = true
			canOpen = false
		}
	}

	return syntaxErr(n, "missing terminating ';'")
}

// scanLength reads a branch length starting at from, skipping leading
// blanks. It returns the offset just past the number.
func scanLength(text string, from int) (int, error) {
	i := from
	for i < len(text) && isBlank(text[i]) {
		i++
	}
	start := i
	for i < len(text) && isNumberByte(text[i]) {
		i++
	}
	if start == i {
		return 0, syntaxErr(start, "missing branch length")
	}
	if _, err := strconv.ParseFloat(text[start:i], 64); err != nil {
		return 0, syntaxErr(start, "invalid branch length")
	}
	return i, nil
}

func isBlank(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isNumberByte(c byte) bool {
	return (c >= '0' && c <= '9') || c == '.' || c == 'e' || c == 'E' || c == '+' || c == '-'
}

func syntaxErr(offset int, reason string) *SyntaxError {
	return &SyntaxError{Offset: offset, Reason: reason}
}
