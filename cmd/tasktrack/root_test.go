package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_Use(t *testing.T) {
	require.NotNil(t, rootCmd)
	assert.Equal(t, "tasktrack", rootCmd.Use)
}

func TestRootCmd_GlobalFlags(t *testing.T) {
	jsonFlag := rootCmd.PersistentFlags().Lookup("json")
	require.NotNil(t, jsonFlag)
	assert.Equal(t, "false", jsonFlag.DefValue)

	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
}

func TestRootCmd_Subcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "sweep", "migrate", "token", "dep", "task"} {
		assert.True(t, names[want], "missing command %s", want)
	}

	sub := map[string]bool{}
	for _, c := range depCmd.Commands() {
		sub[c.Name()] = true
	}
	for _, want := range []string{"add", "list", "rm", "check", "chain", "history"} {
		assert.True(t, sub[want], "missing dep command %s", want)
	}
}

func TestRootCmd_Help(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs([]string{"--help"})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "dependencies between tasks")
}
