// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Escalint Contributors

package escalate

import (
	"github.com/escalint/escalint/internal/policy"
	"github.com/escalint/escalint/internal/policy/priority"
	"github.com/escalint/escalint/internal/smtlib"
)

// BuildFormula constructs the boolean formula that holds exactly when
// the policy grants cap on path, over two free string constants.
//
// Grants are an if-then-else cascade ordered by pattern priority: the
// outermost ite tests the highest-priority pattern, so the single
// highest-priority matching pattern dictates the capability set and
// shadows every lower match. Deny is a disjunction layered outside the
// cascade: a matching deny rule vetoes the grant regardless of where
// it sits in the priority order.
func BuildFormula(p policy.Policy, path, cap smtlib.Term) (smtlib.Term, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var denyPatterns, allowPatterns []string
	grantsByPattern := make(map[string][]policy.Capability, len(p))
	for _, pattern := range p.Patterns() {
		grants, denied := policy.Grants(p[pattern])
		if denied {
			denyPatterns = append(denyPatterns, pattern)
		}
		if len(grants) > 0 {
			allowPatterns = append(allowPatterns, pattern)
			grantsByPattern[pattern] = grants
		}
	}

	var denies []smtlib.Term
	for _, pattern := range denyPatterns {
		re, err := CompilePattern(pattern)
		if err != nil {
			return nil, err
		}
		denies = append(denies, smtlib.InRe(path, re))
	}

	priority.Sort(allowPatterns)

	// Fold lowest priority first so the last wrap, the highest-priority
	// pattern, ends up outermost.
	isAllowed := smtlib.Term(smtlib.False)
	for i := len(allowPatterns) - 1; i >= 0; i-- {
		pattern := allowPatterns[i]
		re, err := CompilePattern(pattern)
		if err != nil {
			return nil, err
		}
		capTerms := make([]smtlib.Term, 0, len(grantsByPattern[pattern]))
		for _, c := range grantsByPattern[pattern] {
			capTerms = append(capTerms, smtlib.Eq(cap, smtlib.String(c)))
		}
		isAllowed = smtlib.Ite(smtlib.InRe(path, re), smtlib.Or(capTerms...), isAllowed)
	}

	if len(denies) == 0 {
		return isAllowed, nil
	}
	return smtlib.And(isAllowed, smtlib.Not(smtlib.Or(denies...))), nil
}
