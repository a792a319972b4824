// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Escalint Contributors

package smtlib

import (
	"strconv"
	"strings"

	"github.com/samber/oops"
)

// ParseValues reads the s-expression a solver prints for get-value,
// of the form ((name "value") (name "value") ...), and returns the
// decoded bindings.
func ParseValues(s string) (map[string]string, error) {
	p := &sexprParser{input: s}
	p.skipSpace()
	if !p.consume('(') {
		return nil, p.errorf("expected value list")
	}

	values := make(map[string]string)
	for {
		p.skipSpace()
		if p.consume(')') {
			break
		}
		if !p.consume('(') {
			return nil, p.errorf("expected binding")
		}
		name, err := p.symbol()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		value, err := p.stringLit()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if !p.consume(')') {
			return nil, p.errorf("unterminated binding for %s", name)
		}
		values[name] = value
	}
	return values, nil
}

type sexprParser struct {
	input string
	pos   int
}

func (p *sexprParser) errorf(format string, args ...any) error {
	return oops.
		Code("SOLVER_INTERNAL").
		With("output", p.input).
		With("position", p.pos).
		Errorf("malformed solver value output: "+format, args...)
}

func (p *sexprParser) skipSpace() {
	for p.pos < len(p.input) {
		switch p.input[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *sexprParser) consume(c byte) bool {
	if p.pos < len(p.input) && p.input[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

func (p *sexprParser) symbol() (string, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '(' || c == ')' || c == '"' {
			break
		}
		p.pos++
	}
	if p.pos == start {
		return "", p.errorf("expected symbol")
	}
	return p.input[start:p.pos], nil
}

// stringLit reads a quoted string literal and decodes the solver's
// escapes: doubled quotes and \u{...} / \uXXXX sequences.
func (p *sexprParser) stringLit() (string, error) {
	if !p.consume('"') {
		return "", p.errorf("expected string literal")
	}
	var b strings.Builder
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if c == '"' {
			p.pos++
			if p.pos < len(p.input) && p.input[p.pos] == '"' {
				// Doubled quote escape.
				b.WriteByte('"')
				p.pos++
				continue
			}
			return decodeUnicodeEscapes(b.String())
		}
		b.WriteByte(c)
		p.pos++
	}
	return "", p.errorf("unterminated string literal")
}

// decodeUnicodeEscapes replaces \u{H...} and \uHHHH sequences with the
// characters they denote. Everything else passes through unchanged.
func decodeUnicodeEscapes(s string) (string, error) {
	if !strings.Contains(s, `\u`) {
		return s, nil
	}
	var b strings.Builder
	for i := 0; i < len(s); {
		if s[i] != '\\' || i+1 >= len(s) || s[i+1] != 'u' {
			b.WriteByte(s[i])
			i++
			continue
		}
		rest := s[i+2:]
		var hex string
		var width int
		if strings.HasPrefix(rest, "{") {
			end := strings.IndexByte(rest, '}')
			if end < 0 {
				return "", oops.Errorf("unterminated unicode escape in %q", s)
			}
			hex = rest[1:end]
			width = 2 + end + 1
		} else {
			if len(rest) < 4 {
				return "", oops.Errorf("truncated unicode escape in %q", s)
			}
			hex = rest[:4]
			width = 6
		}
		code, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return "", oops.Wrapf(err, "unicode escape in %q", s)
		}
		b.WriteRune(rune(code))
		i += width
	}
	return b.String(), nil
}
