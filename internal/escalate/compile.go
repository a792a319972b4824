// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Escalint Contributors

// Package escalate decides whether a proposed policy admits a
// (path, capability) pair the current policy does not. Patterns are
// compiled to regular expressions, each policy becomes a boolean
// formula over two free string constants, and the escalation query
// new-and-not-current is discharged through an SMT solver. A
// satisfying model is the concrete escalation witness.
package escalate

import (
	"github.com/escalint/escalint/internal/policy"
	"github.com/escalint/escalint/internal/smtlib"
)

// literalClass matches one character of the literal alphabet without
// the path separator: letters, digits, "-", "_", ".". Keeping "/" out
// of this class is what gives "+" its single-segment meaning.
var literalClass = smtlib.ReUnion(
	smtlib.ReRange('a', 'z'),
	smtlib.ReRange('A', 'Z'),
	smtlib.ReRange('0', '9'),
	smtlib.StrToRe("-"),
	smtlib.StrToRe("_"),
	smtlib.StrToRe("."),
)

// pathClass extends literalClass with the separator, for the trailing
// multi-segment wildcard.
var pathClass = smtlib.ReUnion(literalClass, smtlib.StrToRe("/"))

// CompilePattern translates a path pattern into a regex term whose
// language is exactly the set of paths the pattern matches:
//
//   - a literal run matches itself
//   - "+" matches one or more literal-class characters (never "/")
//   - a trailing "*" matches zero or more path-class characters
//
// A "*" that is not final is literal text, per the pattern contract.
func CompilePattern(pattern string) (smtlib.Term, error) {
	if err := policy.ValidatePattern(pattern); err != nil {
		return nil, err
	}

	tokens := policy.Tokenize(pattern)
	fragments := make([]smtlib.Term, 0, len(tokens))
	for _, tok := range tokens {
		switch tok.Kind {
		case policy.TokenLiteral:
			fragments = append(fragments, smtlib.StrToRe(tok.Text))
		case policy.TokenSegment:
			fragments = append(fragments, smtlib.RePlus(literalClass))
		case policy.TokenTail:
			fragments = append(fragments, smtlib.ReStar(pathClass))
		}
	}
	return smtlib.ReConcat(fragments...), nil
}
