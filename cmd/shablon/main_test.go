package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/shablon/internal/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func useDB(t *testing.T) {
	t.Helper()
	t.Setenv("SHABLON_DB", filepath.Join(t.TempDir(), "cmd.db"))
	t.Setenv("SHABLON_LOG_LEVEL", "error")
}

func TestMigrateSeedTemplates(t *testing.T) {
	useDB(t)

	out, err := execute(t, "", "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "is up to date")

	out, err = execute(t, "", "seed")
	require.NoError(t, err)
	assert.Equal(t, "seeded template 1\n", out)

	out, err = execute(t, "", "seed")
	require.NoError(t, err)
	assert.Equal(t, "template 1 already present\n", out)

	out, err = execute(t, "", "templates")
	require.NoError(t, err)
	assert.Contains(t, out, "Consultation booking")
	assert.Contains(t, out, "STEPS")
}

func TestCompileGraphNext(t *testing.T) {
	useDB(t)

	out, err := execute(t, "", "compile", "testdata/greeting.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "compiled template 1: 3 steps, 0 variables, 2 transitions")
	assert.Contains(t, out, "dropped transition #2: unknown_to (local id 9)")

	out, err = execute(t, "", "graph", "1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "graph TD"))

	out, err = execute(t, "", "next", "1", "--answers", `{"timeOfDay":"evening"}`)
	require.NoError(t, err)
	var next nextOutput
	require.NoError(t, json.Unmarshal([]byte(out), &next))
	require.NotNil(t, next.Step)
	assert.Equal(t, "Good evening", next.Step.Title)

	_, err = execute(t, "", "next", "1", "--answers", `{"timeOfDay":"night"}`)
	assert.Equal(t, cli.ExitFailure, cli.ExitCode(err))

	_, err = execute(t, "", "next", "999", "--answers", `{}`)
	assert.Equal(t, cli.ExitUsage, cli.ExitCode(err))
}

func TestPlay(t *testing.T) {
	useDB(t)
	_, err := execute(t, "", "compile", "testdata/greeting.yaml")
	require.NoError(t, err)

	out, err := execute(t, "1\n", "play", "1", "--graph")
	require.NoError(t, err)
	assert.Contains(t, out, "## Good afternoon")
	assert.Contains(t, out, "class s2 current;")

	_, err = execute(t, "exit\n", "play", "1")
	assert.ErrorIs(t, err, cli.ErrRunIncomplete)
	assert.Equal(t, cli.ExitFailure, cli.ExitCode(err))
}

func TestRenameDelete(t *testing.T) {
	useDB(t)
	_, err := execute(t, "", "seed")
	require.NoError(t, err)

	_, err = execute(t, "", "rename", "1", "Booking")
	require.NoError(t, err)
	out, err := execute(t, "", "templates")
	require.NoError(t, err)
	assert.Contains(t, out, "Booking")

	out, err = execute(t, "", "delete", "1")
	require.NoError(t, err)
	assert.Equal(t, "deleted template 1\n", out)

	_, err = execute(t, "", "delete", "1")
	assert.Equal(t, cli.ExitUsage, cli.ExitCode(err))

	_, err = execute(t, "", "delete", "abc")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "shablon version")
}

func TestValidate(t *testing.T) {
	useDB(t)
	_, err := execute(t, "", "seed")
	require.NoError(t, err)

	out, err := execute(t, "", "validate", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "no unconditional fallback")
	assert.Contains(t, out, "Graph is valid!")

	_, err = execute(t, "", "validate", "42")
	assert.Equal(t, cli.ExitUsage, cli.ExitCode(err))
}
