// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Escalint Contributors

package smtlib_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/escalint/escalint/internal/smtlib"
)

func TestSymbol(t *testing.T) {
	assert.Equal(t, "path", smtlib.Symbol("path").String())
	assert.Equal(t, "true", smtlib.True.String())
	assert.Equal(t, "false", smtlib.False.String())
}

func TestString_Escaping(t *testing.T) {
	assert.Equal(t, `"secret/app"`, smtlib.String("secret/app").String())
	assert.Equal(t, `""`, smtlib.String("").String())
	assert.Equal(t, `"a""b"`, smtlib.String(`a"b`).String())
}

func TestAnd(t *testing.T) {
	a, b := smtlib.Symbol("a"), smtlib.Symbol("b")
	assert.Equal(t, "true", smtlib.And().String())
	assert.Equal(t, "a", smtlib.And(a).String())
	assert.Equal(t, "(and a b)", smtlib.And(a, b).String())
}

func TestOr(t *testing.T) {
	a, b := smtlib.Symbol("a"), smtlib.Symbol("b")
	assert.Equal(t, "false", smtlib.Or().String())
	assert.Equal(t, "a", smtlib.Or(a).String())
	assert.Equal(t, "(or a b)", smtlib.Or(a, b).String())
}

func TestBooleanConnectives(t *testing.T) {
	a := smtlib.Symbol("a")
	assert.Equal(t, "(not a)", smtlib.Not(a).String())
	assert.Equal(t, `(= cap "read")`, smtlib.Eq(smtlib.Symbol("cap"), smtlib.String("read")).String())
	assert.Equal(t, "(ite a true false)", smtlib.Ite(a, smtlib.True, smtlib.False).String())
}

func TestRegexConstructors(t *testing.T) {
	assert.Equal(t, `(str.to_re "abc")`, smtlib.StrToRe("abc").String())
	assert.Equal(t, `(re.range "a" "z")`, smtlib.ReRange('a', 'z').String())

	lz := smtlib.ReRange('a', 'z')
	slash := smtlib.StrToRe("/")
	assert.Equal(t, `(re.union (re.range "a" "z") (str.to_re "/"))`, smtlib.ReUnion(lz, slash).String())
	assert.Equal(t, `(re.range "a" "z")`, smtlib.ReUnion(lz).String(), "single operand unwrapped")

	assert.Equal(t, `(re.++ (str.to_re "a") (str.to_re "b"))`,
		smtlib.ReConcat(smtlib.StrToRe("a"), smtlib.StrToRe("b")).String())
	assert.Equal(t, `(str.to_re "a")`, smtlib.ReConcat(smtlib.StrToRe("a")).String(), "single operand unwrapped")

	assert.Equal(t, `(re.* (re.range "a" "z"))`, smtlib.ReStar(lz).String())
	assert.Equal(t, `(re.+ (re.range "a" "z"))`, smtlib.RePlus(lz).String())

	assert.Equal(t, `(str.in_re path (str.to_re "x"))`,
		smtlib.InRe(smtlib.Symbol("path"), smtlib.StrToRe("x")).String())
}

func TestCommands(t *testing.T) {
	assert.Equal(t, "(declare-const path String)", smtlib.DeclareConst("path", smtlib.SortString))
	assert.Equal(t, "(assert (not a))", smtlib.Assert(smtlib.Not(smtlib.Symbol("a"))))
	assert.Equal(t, "(check-sat)", smtlib.CheckSat)
	assert.Equal(t, "(get-value (path cap))", smtlib.GetValue("path", "cap"))
}
