package cli

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()

	assert.Equal(t, "clubhouse", cmd.Use)

	for _, name := range []string{"config", "verbose", "format"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), "missing --%s flag", name)
	}
	assert.Equal(t, "text", cmd.PersistentFlags().Lookup("format").DefValue)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()

	for _, path := range [][]string{
		{"serve"},
		{"migrate"},
		{"summary"},
		{"admin", "grant"},
		{"admin", "revoke"},
	} {
		found, _, err := cmd.Find(path)
		require.NoError(t, err, "command %v not found", path)
		assert.Equal(t, path[len(path)-1], found.Name())
	}
}

func TestSummaryFlags(t *testing.T) {
	cmd := NewRootCommand()
	summary, _, err := cmd.Find([]string{"summary"})
	require.NoError(t, err)

	for _, name := range []string{"from", "to", "account", "group", "beneficiary"} {
		assert.NotNil(t, summary.Flags().Lookup(name), "missing --%s flag", name)
	}
}

func TestInvalidFormat(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"migrate", "--format", "xml"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "xml"`)
}

// run executes the CLI with args and returns what it wrote to stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}
