// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Escalint Contributors

package escalate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/escalint/escalint/internal/policy"
	"github.com/escalint/escalint/internal/smtlib"
	"github.com/escalint/escalint/pkg/errutil"
)

var (
	pathVar = smtlib.Symbol("path")
	capVar  = smtlib.Symbol("cap")
)

func TestBuildFormula_EmptyPolicy(t *testing.T) {
	f, err := BuildFormula(policy.Policy{}, pathVar, capVar)
	require.NoError(t, err)
	assert.Equal(t, "false", f.String())
}

func TestBuildFormula_SingleRule(t *testing.T) {
	f, err := BuildFormula(policy.Policy{
		"secret/app": {policy.CapabilityRead},
	}, pathVar, capVar)
	require.NoError(t, err)
	assert.Equal(t,
		`(ite (str.in_re path (str.to_re "secret/app")) (= cap "read") false)`,
		f.String())
}

func TestBuildFormula_CapabilityDisjunction(t *testing.T) {
	f, err := BuildFormula(policy.Policy{
		"secret/app": {policy.CapabilityWrite, policy.CapabilityRead},
	}, pathVar, capVar)
	require.NoError(t, err)
	// Capabilities are sorted, so the rendering is deterministic.
	assert.Equal(t,
		`(ite (str.in_re path (str.to_re "secret/app")) (or (= cap "read") (= cap "write")) false)`,
		f.String())
}

func TestBuildFormula_PriorityCascade(t *testing.T) {
	f, err := BuildFormula(policy.Policy{
		"secret/app/*":  {policy.CapabilityRead},
		"secret/app/db": {policy.CapabilityWrite},
	}, pathVar, capVar)
	require.NoError(t, err)

	// The literal pattern outranks the wildcard, so its ite is outermost
	// and shadows the wildcard on paths both match.
	assert.Equal(t,
		`(ite (str.in_re path (str.to_re "secret/app/db")) (= cap "write") `+
			`(ite (str.in_re path (re.++ (str.to_re "secret/app/") (re.* `+pathClassText+`))) (= cap "read") false))`,
		f.String())
}

func TestBuildFormula_DenyLayeredOutside(t *testing.T) {
	f, err := BuildFormula(policy.Policy{
		"secret/app/*":     {policy.CapabilityRead},
		"secret/app/admin": {policy.CapabilityDeny},
	}, pathVar, capVar)
	require.NoError(t, err)

	assert.Equal(t,
		`(and `+
			`(ite (str.in_re path (re.++ (str.to_re "secret/app/") (re.* `+pathClassText+`))) (= cap "read") false) `+
			`(not (str.in_re path (str.to_re "secret/app/admin"))))`,
		f.String())
}

func TestBuildFormula_DenyAlongsideGrants(t *testing.T) {
	f, err := BuildFormula(policy.Policy{
		"secret/app": {policy.CapabilityRead, policy.CapabilityDeny},
	}, pathVar, capVar)
	require.NoError(t, err)

	// The rule contributes to both the cascade and the deny veto.
	assert.Equal(t,
		`(and `+
			`(ite (str.in_re path (str.to_re "secret/app")) (= cap "read") false) `+
			`(not (str.in_re path (str.to_re "secret/app"))))`,
		f.String())
}

func TestBuildFormula_DenyOnlyPolicy(t *testing.T) {
	f, err := BuildFormula(policy.Policy{
		"secret/app": {policy.CapabilityDeny},
	}, pathVar, capVar)
	require.NoError(t, err)

	assert.Equal(t,
		`(and false (not (str.in_re path (str.to_re "secret/app"))))`,
		f.String())
}

func TestBuildFormula_MultipleDenies(t *testing.T) {
	f, err := BuildFormula(policy.Policy{
		"a": {policy.CapabilityDeny},
		"b": {policy.CapabilityDeny},
	}, pathVar, capVar)
	require.NoError(t, err)

	assert.Equal(t,
		`(and false (not (or (str.in_re path (str.to_re "a")) (str.in_re path (str.to_re "b")))))`,
		f.String())
}

func TestBuildFormula_InvalidPolicy(t *testing.T) {
	_, err := BuildFormula(policy.Policy{"": {policy.CapabilityRead}}, pathVar, capVar)
	errutil.AssertErrorCode(t, err, policy.ErrCodeInvalidPattern)

	_, err = BuildFormula(policy.Policy{"secret/app": {}}, pathVar, capVar)
	errutil.AssertErrorCode(t, err, policy.ErrCodeEmptyCapabilities)
}
