// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/gatehouse/gatehouse/internal/devtls"
	"github.com/gatehouse/gatehouse/internal/xdg"
)

// NewCertsCmd creates the certs subcommand.
func NewCertsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "certs",
		Short: "Generate a self-signed TLS certificate for local development",
		Long: `Generate a self-signed certificate and key for serving the API over
HTTPS in local development, written to the XDG config directory. Point
serve at them with --tls-cert and --tls-key.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			hosts, err := cmd.Flags().GetStringSlice("host")
			if err != nil {
				return err
			}
			dir, err := cmd.Flags().GetString("dir")
			if err != nil {
				return err
			}
			if dir == "" {
				dir = xdg.CertsDir()
			}

			certPEM, keyPEM, err := devtls.Generate(hosts)
			if err != nil {
				return err
			}
			if err := devtls.Save(dir, certPEM, keyPEM); err != nil {
				return err
			}

			cmd.Println("certificate:", devtls.CertPath(dir))
			cmd.Println("key:        ", devtls.KeyPath(dir))
			return nil
		},
	}

	cmd.Flags().StringSlice("host", []string{"localhost", "127.0.0.1"}, "DNS name or IP to cover (repeatable)")
	cmd.Flags().String("dir", "", "output directory (default: XDG config dir)")

	return cmd
}
