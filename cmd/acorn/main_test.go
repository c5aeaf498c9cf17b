package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ARTM2000/acorn"
)

// run executes the root command with colors off and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	for _, k := range []string{acorn.EnvMaxIterations, acorn.EnvServiceMarkers, acorn.EnvProducerMarkers} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--no-color"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestGraphCmd(t *testing.T) {
	out, err := run(t, "graph")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	var order []string
	for _, l := range lines {
		if strings.Contains(l, ". *main.") {
			order = append(order, strings.Fields(l)[1])
		}
	}
	assert.Equal(t, []string{
		"*main.Config",
		"*main.Logger",
		"*main.Database",
		"*main.UserRepository",
		"*main.UserService",
		"*main.Mailer",
	}, order)

	assert.Contains(t, out, "*main.Mailer (produced by *main.UserService) [producer]")
	assert.Contains(t, out, "dependents: *main.Database, *main.UserService")
	assert.Contains(t, out, "result: row-result")
}

func TestGraphCmd_Config(t *testing.T) {
	t.Run("bound too low", func(t *testing.T) {
		_, err := run(t, "--max-iterations", "5", "graph")
		assert.ErrorIs(t, err, acorn.ErrResolutionExhausted)
	})

	t.Run("invalid bound", func(t *testing.T) {
		_, err := run(t, "--max-iterations", "0", "graph")
		assert.ErrorIs(t, err, acorn.ErrInvalidConfig)
	})

	t.Run("bound from env file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "acorn.env")
		require.NoError(t, os.WriteFile(path, []byte("ACORN_MAX_ITERATIONS=3\n"), 0o600))

		_, err := run(t, "--env-file", path, "graph")
		assert.ErrorIs(t, err, acorn.ErrResolutionExhausted)
	})

	t.Run("flag wins over env file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "acorn.env")
		require.NoError(t, os.WriteFile(path, []byte("ACORN_MAX_ITERATIONS=3\n"), 0o600))

		_, err := run(t, "--env-file", path, "--max-iterations", "100", "graph")
		assert.NoError(t, err)
	})
}

func TestReloadCmd(t *testing.T) {
	t.Run("cascade follows dependents", func(t *testing.T) {
		out, err := run(t, "reload", "Database", "--cascade")
		require.NoError(t, err)

		assert.Contains(t, out, "unchanged *main.Config")
		assert.Contains(t, out, "unchanged *main.Logger")
		assert.Contains(t, out, "reloaded  *main.Database")
		assert.Contains(t, out, "reloaded  *main.UserRepository")
		assert.Contains(t, out, "reloaded  *main.UserService")
		assert.Contains(t, out, "unchanged *main.Mailer")
	})

	t.Run("without cascade", func(t *testing.T) {
		out, err := run(t, "reload", "*main.Database")
		require.NoError(t, err)

		assert.Contains(t, out, "reloaded  *main.Database")
		assert.Contains(t, out, "unchanged *main.UserRepository")
	})

	t.Run("produced service", func(t *testing.T) {
		out, err := run(t, "reload", "Mailer")
		require.NoError(t, err)
		assert.Contains(t, out, "reloaded  *main.Mailer")
		assert.Contains(t, out, "unchanged *main.UserService")
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := run(t, "reload", "Cache")
		assert.ErrorIs(t, err, acorn.ErrServiceNotFound)
	})

	t.Run("missing argument", func(t *testing.T) {
		_, err := run(t, "reload")
		assert.Error(t, err)
	})
}

func TestPrintChanges(t *testing.T) {
	tags := acorn.MustDescribe(func() []string { return []string{"a", "b"} })
	limits := acorn.MustDescribe(func() map[string]int { return map[string]int{"a": 1} })
	c, err := acorn.Bootstrap(acorn.DefaultConfig(), []*acorn.Descriptor{tags, limits})
	require.NoError(t, err)

	before := c.Services()
	require.NoError(t, c.Reload(tags, false))

	var out bytes.Buffer
	printChanges(&out, c.ServicesDetails(), before)
	assert.Contains(t, out.String(), "reloaded  []string")
	assert.Contains(t, out.String(), "unchanged map[string]int")
}

func TestShortName(t *testing.T) {
	tests := map[string]string{
		"*main.Database":  "Database",
		"main.Config":     "Config",
		"**pkg.Something": "Something",
		"int":             "int",
	}
	for in, want := range tests {
		assert.Equal(t, want, shortName(in), in)
	}
}
