package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStructureCmd(t *testing.T) {
	cmd := NewStructureCmd()

	assert.Equal(t, "structure [paths...]", cmd.Use)
	for _, flag := range []string{"json", "yaml", "csv", "dot", "output", "sort", "show-unreachable", "no-cache", "config"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "missing flag %s", flag)
	}
}

func TestStructureCommandOutputFormat(t *testing.T) {
	assert.Equal(t, "text", string((&StructureCommand{}).outputFormat()))
	assert.Equal(t, "json", string((&StructureCommand{json: true}).outputFormat()))
	assert.Equal(t, "yaml", string((&StructureCommand{yaml: true}).outputFormat()))
	assert.Equal(t, "csv", string((&StructureCommand{csv: true}).outputFormat()))
	assert.Equal(t, "dot", string((&StructureCommand{dot: true}).outputFormat()))
}

func TestStructureCmdRunsOnDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.cfg.yaml")
	doc := `
functions:
  - name: f
    nodes:
      - id: A
        statements: ["return"]
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cmd := NewStructureCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{path})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "f (")
	assert.Contains(t, out.String(), "- block A")
}

func TestStructureCmdRejectsConflictingFormats(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.cfg.yaml")
	doc := `
functions:
  - name: f
    nodes:
      - id: A
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cmd := NewStructureCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--json", "--yaml", path})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only one of")
}

func TestStructureCmdRequiresArgs(t *testing.T) {
	cmd := NewStructureCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{})

	assert.Error(t, cmd.Execute())
}

func TestNewVersionCmd(t *testing.T) {
	cmd := NewVersionCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "scopeflow")
}

func TestInitCmd(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer func() { _ = os.Chdir(wd) }()

	cmd := NewInitCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())
	assert.FileExists(t, filepath.Join(dir, ".scopeflow.toml"))

	// A second run without --force refuses to overwrite.
	again := NewInitCmd()
	again.SetOut(&bytes.Buffer{})
	again.SetErr(&bytes.Buffer{})
	again.SetArgs([]string{})
	assert.Error(t, again.Execute())
}
