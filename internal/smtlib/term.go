// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Escalint Contributors

// Package smtlib builds and renders SMT-LIB 2 terms for the fragment
// the checker needs: booleans, string equality, and regular-expression
// membership. Terms are immutable once built and render to the textual
// form any SMT-LIB 2 conformant solver accepts.
package smtlib

import (
	"fmt"
	"strings"
)

// Term is a renderable SMT-LIB expression.
type Term interface {
	fmt.Stringer
}

// Symbol is a bare symbol: a constant name or a literal like "true".
type Symbol string

func (s Symbol) String() string { return string(s) }

// Boolean literal symbols.
const (
	True  Symbol = "true"
	False Symbol = "false"
)

// String is an SMT-LIB string literal. It renders quoted, with the
// solver's quote-doubling escape.
type String string

func (s String) String() string {
	return `"` + strings.ReplaceAll(string(s), `"`, `""`) + `"`
}

// app is a function application.
type app struct {
	fn   string
	args []Term
}

func (a app) String() string {
	var b strings.Builder
	b.WriteByte('(')
	b.WriteString(a.fn)
	for _, arg := range a.args {
		b.WriteByte(' ')
		b.WriteString(arg.String())
	}
	b.WriteByte(')')
	return b.String()
}

// Apply builds a raw function application.
func Apply(fn string, args ...Term) Term {
	return app{fn: fn, args: args}
}

// And conjoins terms. No terms renders true; a single term is returned
// unwrapped.
func And(terms ...Term) Term {
	switch len(terms) {
	case 0:
		return True
	case 1:
		return terms[0]
	}
	return app{fn: "and", args: terms}
}

// Or disjoins terms. No terms renders false; a single term is returned
// unwrapped.
func Or(terms ...Term) Term {
	switch len(terms) {
	case 0:
		return False
	case 1:
		return terms[0]
	}
	return app{fn: "or", args: terms}
}

// Not negates a term.
func Not(t Term) Term {
	return app{fn: "not", args: []Term{t}}
}

// Eq is term equality.
func Eq(a, b Term) Term {
	return app{fn: "=", args: []Term{a, b}}
}

// Ite is if-then-else.
func Ite(cond, then, els Term) Term {
	return app{fn: "ite", args: []Term{cond, then, els}}
}

// InRe asserts regular-expression membership of a string term.
func InRe(str, re Term) Term {
	return app{fn: "str.in_re", args: []Term{str, re}}
}

// StrToRe is the regex matching exactly one string.
func StrToRe(s string) Term {
	return app{fn: "str.to_re", args: []Term{String(s)}}
}

// ReRange is the regex matching one character in [lo, hi].
func ReRange(lo, hi byte) Term {
	return app{fn: "re.range", args: []Term{String(lo), String(hi)}}
}

// ReUnion unions regexes. A single operand is returned unwrapped.
func ReUnion(res ...Term) Term {
	if len(res) == 1 {
		return res[0]
	}
	return app{fn: "re.union", args: res}
}

// ReConcat concatenates regexes in order. A single operand is returned
// unwrapped.
func ReConcat(res ...Term) Term {
	if len(res) == 1 {
		return res[0]
	}
	return app{fn: "re.++", args: res}
}

// ReStar is Kleene star.
func ReStar(re Term) Term {
	return app{fn: "re.*", args: []Term{re}}
}

// RePlus is one-or-more repetition.
func RePlus(re Term) Term {
	return app{fn: "re.+", args: []Term{re}}
}

// --- Script commands ---

// SortString is the string sort name.
const SortString = "String"

// DeclareConst renders a constant declaration command.
func DeclareConst(name, sort string) string {
	return "(declare-const " + name + " " + sort + ")"
}

// Assert renders an assertion command.
func Assert(t Term) string {
	return "(assert " + t.String() + ")"
}

// CheckSat is the decision command.
const CheckSat = "(check-sat)"

// GetValue renders a model query for the named constants.
func GetValue(names ...string) string {
	return "(get-value (" + strings.Join(names, " ") + "))"
}
