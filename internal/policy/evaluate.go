// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Escalint Contributors

package policy

import (
	"strings"

	"github.com/gobwas/glob"
	"github.com/samber/oops"

	"github.com/escalint/escalint/internal/policy/priority"
)

// Evaluator answers concrete (path, capability) queries against a
// single policy snapshot. It mirrors the solver-side semantics: the
// highest-priority matching pattern's capability list governs, and any
// matching deny rule vetoes the grant. The checker uses it to confirm
// solver witnesses; tests use it as the reference semantics.
type Evaluator struct {
	rules  []compiledRule
	denies []glob.Glob
}

type compiledRule struct {
	pattern string
	matcher glob.Glob
	grants  map[Capability]struct{}
}

// compileMatcher translates a pattern into a glob: "+" becomes "?*"
// with "/" as separator (one or more characters within a segment), a
// trailing "*" becomes the separator-crossing "**", and literal runs
// are quoted so a non-final "*" stays literal.
func compileMatcher(pattern string) (glob.Glob, error) {
	var b strings.Builder
	for _, tok := range Tokenize(pattern) {
		switch tok.Kind {
		case TokenLiteral:
			b.WriteString(glob.QuoteMeta(tok.Text))
		case TokenSegment:
			b.WriteString("?*")
		case TokenTail:
			b.WriteString("**")
		}
	}
	g, err := glob.Compile(b.String(), '/')
	if err != nil {
		return nil, oops.
			Code(ErrCodeInvalidPattern).
			With("pattern", pattern).
			Wrapf(err, "compile matcher for %q", pattern)
	}
	return g, nil
}

// NewEvaluator validates and compiles a policy for concrete queries.
func NewEvaluator(p Policy) (*Evaluator, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	ev := &Evaluator{}
	patterns := p.Patterns()
	priority.Sort(patterns)

	for _, pattern := range patterns {
		matcher, err := compileMatcher(pattern)
		if err != nil {
			return nil, err
		}
		grants, denied := Grants(p[pattern])
		if denied {
			ev.denies = append(ev.denies, matcher)
		}
		if len(grants) == 0 {
			continue
		}
		set := make(map[Capability]struct{}, len(grants))
		for _, c := range grants {
			set[c] = struct{}{}
		}
		ev.rules = append(ev.rules, compiledRule{
			pattern: pattern,
			matcher: matcher,
			grants:  set,
		})
	}

	return ev, nil
}

// Allows reports whether the policy grants the capability on the path.
// Paths outside the literal alphabet are never granted. The empty path
// is a legal query: a bare "*" pattern matches it.
func (ev *Evaluator) Allows(path string, cap Capability) bool {
	for i := 0; i < len(path); i++ {
		if !isLiteralChar(path[i]) {
			return false
		}
	}
	for _, d := range ev.denies {
		if d.Match(path) {
			return false
		}
	}
	for _, r := range ev.rules {
		if !r.matcher.Match(path) {
			continue
		}
		// Highest-priority match decides; lower matches are shadowed.
		_, ok := r.grants[cap]
		return ok
	}
	return false
}
