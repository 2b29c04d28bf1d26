package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestCompileCommand_Argument(t *testing.T) {
	out, _, err := runCommand(t, "compile", ".account | .name | limit(5)")
	require.NoError(t, err)

	assert.Contains(t, out, `<fetch version="1.0" mapping="logical" top="5">`)
	assert.Contains(t, out, `<attribute name="name"></attribute>`)
}

func TestCompileCommand_InputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "query.fpq")
	require.NoError(t, os.WriteFile(path, []byte(".contact | .fullname | limit(3)\n"), 0o644))

	out, _, err := runCommand(t, "compile", "--input", path)
	require.NoError(t, err)
	assert.Contains(t, out, `<entity name="contact">`)
}

func TestCompileCommand_OutputFile(t *testing.T) {
	target := filepath.Join(t.TempDir(), "query.xml")

	_, _, err := runCommand(t, "compile", "--output", target, ".account | limit(1)")
	require.NoError(t, err)

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(content), `top="1"`)
}

func TestCompileCommand_FlagOverrides(t *testing.T) {
	out, _, err := runCommand(t, "compile", "--default-limit", "250", "--fetch-version", "1.1", ".account")
	require.NoError(t, err)
	assert.Contains(t, out, `version="1.1"`)
	assert.Contains(t, out, `top="250"`)
}

func TestCompileCommand_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fetchpipe.yaml")
	require.NoError(t, os.WriteFile(path, []byte("default_limit: 7\n"), 0o644))

	out, _, err := runCommand(t, "--config", path, "compile", ".account")
	require.NoError(t, err)
	assert.Contains(t, out, `top="7"`)
}

func TestCompileCommand_SummaryFormat(t *testing.T) {
	out, _, err := runCommand(t, "compile", "--format", "summary",
		".account as a | a.name | join(.contact as c on c.accountid -> a.accountid)")
	require.NoError(t, err)
	assert.Contains(t, out, "Entity:        account")
	assert.Contains(t, out, "Joins:         1")
	assert.NotContains(t, out, "<fetch")
}

func TestCompileCommand_UnknownFormat(t *testing.T) {
	_, _, err := runCommand(t, "compile", "--format", "yaml", ".account")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}

func TestCompileCommand_InvalidQuery(t *testing.T) {
	_, _, err := runCommand(t, "compile", ".account | limit(10) | page(1, 10)")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestCompileCommand_MissingInputFile(t *testing.T) {
	_, _, err := runCommand(t, "compile", "--input", "/nonexistent/query.fpq")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read file")
}

func TestCompileCommand_WatchRequiresInput(t *testing.T) {
	_, _, err := runCommand(t, "compile", "--watch", ".account")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--watch requires --input")
}

func TestTokensCommand(t *testing.T) {
	out, _, err := runCommand(t, "tokens", ".account | .revenue >= 1000")
	require.NoError(t, err)

	assert.Contains(t, out, "LITERAL")
	assert.Contains(t, out, "account")
	assert.Contains(t, out, ">=")
	assert.Contains(t, out, "tokens")
}

func TestTokensCommand_LexError(t *testing.T) {
	_, _, err := runCommand(t, "tokens", ".account | .name == 'oops")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unterminated")
}

func TestVersionCommand(t *testing.T) {
	out, _, err := runCommand(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "fetchpipe v")
}

func TestPrintError(t *testing.T) {
	var buf bytes.Buffer
	printError(&buf, assert.AnError)
	assert.Contains(t, buf.String(), "error:")
	assert.Contains(t, buf.String(), assert.AnError.Error())
}
