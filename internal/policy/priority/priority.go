// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Escalint Contributors

// Package priority implements the precedence order among path patterns.
// When several patterns match a path, the highest-priority pattern's
// capability list governs; the order below reproduces the secrets
// system's documented rule selection.
package priority

import (
	"sort"
	"strings"
)

// noWildcard marks the absence of a wildcard for the first tie-break.
const noWildcard = int(^uint(0) >> 1)

// firstWildcard returns the index of the first wildcard in the pattern:
// the first "+", or the position of a trailing "*", whichever comes
// first. A "*" that is not final is literal text and does not count.
func firstWildcard(pattern string) int {
	idx := strings.IndexByte(pattern, '+')
	if strings.HasSuffix(pattern, "*") {
		tail := len(pattern) - 1
		if idx < 0 || tail < idx {
			idx = tail
		}
	}
	if idx < 0 {
		return noWildcard
	}
	return idx
}

// literalLen counts the pattern's non-wildcard characters.
func literalLen(pattern string) int {
	n := len(pattern) - strings.Count(pattern, "+")
	if strings.HasSuffix(pattern, "*") {
		n--
	}
	return n
}

// Compare orders two patterns by precedence: positive when a outranks
// b, negative when b outranks a, zero only when a == b. Tie-breaks run
// in sequence; the first that distinguishes the patterns decides.
//
//  1. Later first-wildcard position wins (no wildcard beats any).
//  2. A pattern without a trailing "*" beats one with it.
//  3. Fewer "+" wildcards win.
//  4. More literal characters win.
//  5. The lexicographically smaller pattern wins.
func Compare(a, b string) int {
	if a == b {
		return 0
	}

	if d := firstWildcard(a) - firstWildcard(b); d != 0 {
		return d
	}

	aTail := strings.HasSuffix(a, "*")
	bTail := strings.HasSuffix(b, "*")
	if aTail != bTail {
		if bTail {
			return 1
		}
		return -1
	}

	if d := strings.Count(b, "+") - strings.Count(a, "+"); d != 0 {
		return d
	}

	if d := literalLen(a) - literalLen(b); d != 0 {
		return d
	}

	// Smaller string wins, so the comparison is reversed.
	return strings.Compare(b, a)
}

// Sort orders patterns in place, highest priority first.
func Sort(patterns []string) {
	sort.Slice(patterns, func(i, j int) bool {
		return Compare(patterns[i], patterns[j]) > 0
	})
}
