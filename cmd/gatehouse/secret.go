// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package main

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

// secretBytes is the size of a generated signing key. 32 bytes matches
// the HMAC-SHA256 block the tokens are signed with.
const secretBytes = 32

// NewSecretCmd creates the secret subcommand.
func NewSecretCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "secret",
		Short: "Generate a random token signing secret",
		Long: `Generate a cryptographically random signing secret, printed as
standard base64. Pass it to the server through GATEHOUSE_TOKEN_SECRET.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key := make([]byte, secretBytes)
			if _, err := rand.Read(key); err != nil {
				return oops.Code("SECRET_GENERATE_FAILED").Wrap(err)
			}
			cmd.Println(base64.StdEncoding.EncodeToString(key))
			return nil
		},
	}
}
