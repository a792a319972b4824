// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Escalint Contributors

package escalate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/escalint/escalint/internal/policy"
	"github.com/escalint/escalint/pkg/errutil"
)

// Rendered character classes, shared across golden assertions.
const (
	litClass      = `(re.union (re.range "a" "z") (re.range "A" "Z") (re.range "0" "9") (str.to_re "-") (str.to_re "_") (str.to_re "."))`
	pathClassText = `(re.union ` + litClass + ` (str.to_re "/"))`
)

func TestCompilePattern_NoWildcards(t *testing.T) {
	re, err := CompilePattern("secret/app/prod")
	require.NoError(t, err)
	// A wildcard-free pattern compiles to exactly its own string.
	assert.Equal(t, `(str.to_re "secret/app/prod")`, re.String())
}

func TestCompilePattern_TrailingStar(t *testing.T) {
	re, err := CompilePattern("secret/app/*")
	require.NoError(t, err)
	assert.Equal(t,
		`(re.++ (str.to_re "secret/app/") (re.* `+pathClassText+`))`,
		re.String())
}

func TestCompilePattern_SegmentWildcard(t *testing.T) {
	re, err := CompilePattern("secret/app/+")
	require.NoError(t, err)
	assert.Equal(t,
		`(re.++ (str.to_re "secret/app/") (re.+ `+litClass+`))`,
		re.String())
}

func TestCompilePattern_InteriorSegment(t *testing.T) {
	re, err := CompilePattern("secret/+/prod")
	require.NoError(t, err)
	assert.Equal(t,
		`(re.++ (str.to_re "secret/") (re.+ `+litClass+`) (str.to_re "/prod"))`,
		re.String())
}

func TestCompilePattern_BareWildcards(t *testing.T) {
	re, err := CompilePattern("*")
	require.NoError(t, err)
	assert.Equal(t, `(re.* `+pathClassText+`)`, re.String())

	re, err = CompilePattern("+")
	require.NoError(t, err)
	assert.Equal(t, `(re.+ `+litClass+`)`, re.String())
}

func TestCompilePattern_AdjacentWildcards(t *testing.T) {
	// No empty-literal fragment appears between the wildcards.
	re, err := CompilePattern("secret/+*")
	require.NoError(t, err)
	assert.Equal(t,
		`(re.++ (str.to_re "secret/") (re.+ `+litClass+`) (re.* `+pathClassText+`))`,
		re.String())
}

func TestCompilePattern_NonFinalStarIsLiteral(t *testing.T) {
	re, err := CompilePattern("a*b")
	require.NoError(t, err)
	assert.Equal(t, `(str.to_re "a*b")`, re.String())
}

func TestCompilePattern_Invalid(t *testing.T) {
	_, err := CompilePattern("")
	errutil.AssertErrorCode(t, err, policy.ErrCodeInvalidPattern)

	_, err = CompilePattern("secret/a b")
	errutil.AssertErrorCode(t, err, policy.ErrCodeInvalidPattern)
}
