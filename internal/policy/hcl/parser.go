// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Escalint Contributors

// Package hcl parses the deployed policy source syntax into the
// checker's policy mapping. The syntax is a sequence of path stanzas:
//
//	path "secret/app/*" {
//	  capabilities = ["read", "list"]
//	}
//
// A pattern may appear in several stanzas; their capability lists are
// merged set-wise before hand-off to the checker.
package hcl

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/samber/oops"

	"github.com/escalint/escalint/internal/policy"
)

// policyLexer defines the token types for the policy source syntax.
var policyLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `"[^"]*"`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_-]*`},
	{Name: "Punct", Pattern: `[{}\[\],=]`},
	{Name: "comment", Pattern: `#[^\n]*`},
	{Name: "whitespace", Pattern: `\s+`},
})

// Document is the parsed form of a policy source file.
type Document struct {
	Pos     lexer.Position `parser:""`
	Stanzas []*PathStanza  `parser:"@@*"`
}

// PathStanza is a single path block.
//
// Grammar: "path" String "{" "capabilities" "=" "[" String ("," String)* ","? "]" "}"
type PathStanza struct {
	Pos          lexer.Position `parser:""`
	Pattern      string         `parser:"'path' @String"`
	Capabilities []string       `parser:"'{' 'capabilities' '=' '[' @String (',' @String)* ','? ']' '}'"`
}

// parser is the singleton participle parser instance.
var parser *participle.Parser[Document]

func init() {
	var err error
	parser, err = participle.Build[Document](
		participle.Lexer(policyLexer),
		participle.Unquote("String"),
		participle.UseLookahead(2),
	)
	if err != nil {
		panic(fmt.Sprintf("failed to build policy parser: %v", err))
	}
}

// Parse parses policy source text into the checker's policy mapping.
// Duplicate patterns are merged set-wise. The result is validated
// against the pattern alphabet and capability rules.
func Parse(src string) (policy.Policy, error) {
	doc, err := parser.ParseString("", src)
	if err != nil {
		return nil, oops.
			Code(policy.ErrCodeParse).
			Wrapf(err, "parsing policy source")
	}

	p := make(policy.Policy, len(doc.Stanzas))
	for _, stanza := range doc.Stanzas {
		caps := make([]policy.Capability, 0, len(stanza.Capabilities))
		for _, c := range stanza.Capabilities {
			caps = append(caps, policy.Capability(c))
		}
		policy.Merge(p, stanza.Pattern, caps)
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
