package pattern

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrBadGrammar indicates a ticket-id grammar that does not compile.
var ErrBadGrammar = errors.New("invalid ticket id grammar")

// DefaultExpr matches conventional ticket identifiers: one or more letters,
// a hyphen, one or more digits (e.g. "ENG-123").
const DefaultExpr = `[A-Za-z]+-[0-9]+`

// Grammar extracts ticket identifiers from branch names.
// Matching is case-insensitive and the leftmost match wins; results are
// normalized to uppercase. A Grammar is pure: no I/O, deterministic,
// safe for concurrent use.
type Grammar struct {
	re *regexp.Regexp
}

// Default returns the grammar for conventional "ABC-123" identifiers.
func Default() *Grammar {
	g, err := Compile(DefaultExpr)
	if err != nil {
		panic(fmt.Sprintf("pattern: default grammar: %v", err))
	}
	return g
}

// Compile builds a Grammar from a regular expression.
// The expression is matched case-insensitively anywhere in the branch name.
func Compile(expr string) (*Grammar, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, fmt.Errorf("%w: empty expression", ErrBadGrammar)
	}
	re, err := regexp.Compile("(?i)" + expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadGrammar, err)
	}
	return &Grammar{re: re}, nil
}

// Extract returns the ticket identifier found in branchName, uppercased.
// The second return value is false when no identifier is present.
func (g *Grammar) Extract(branchName string) (string, bool) {
	match := g.re.FindString(branchName)
	if match == "" {
		return "", false
	}
	return strings.ToUpper(match), true
}

// ExtractTicketID extracts an identifier using the default grammar.
func ExtractTicketID(branchName string) (string, bool) {
	return Default().Extract(branchName)
}
