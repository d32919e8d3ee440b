// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package main

import (
	"bytes"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runSecret(t *testing.T) string {
	t.Helper()

	cmd := NewSecretCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)

	require.NoError(t, cmd.Execute())
	return strings.TrimSpace(buf.String())
}

func TestSecretCommand_GeneratesUsableKey(t *testing.T) {
	output := runSecret(t)

	key, err := base64.StdEncoding.DecodeString(output)
	require.NoError(t, err, "output should be standard base64")
	assert.Len(t, key, secretBytes)
}

func TestSecretCommand_KeysAreUnique(t *testing.T) {
	assert.NotEqual(t, runSecret(t), runSecret(t))
}
