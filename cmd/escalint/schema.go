// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Escalint Contributors

package main

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"

	"github.com/escalint/escalint/internal/policy"
	"github.com/escalint/escalint/internal/server"
)

// NewSchemaCmd creates the schema subcommand.
func NewSchemaCmd() *cobra.Command {
	var request bool

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema for policy documents",
		Long: `Print the JSON schema a JSON policy document is validated against.
With --request, print the schema of the POST /v1/check request body
instead, reflected from the API types.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			if !request {
				fmt.Fprintln(out, string(policy.SchemaJSON()))
				return nil
			}

			reflector := &jsonschema.Reflector{
				DoNotReference: true,
			}
			schema := reflector.Reflect(&server.CheckRequest{})
			data, err := json.MarshalIndent(schema, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(data))
			return nil
		},
	}

	cmd.Flags().BoolVar(&request, "request", false, "print the check request schema instead")

	return cmd
}
